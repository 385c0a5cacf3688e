package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

type mockAdminLedger struct{ mock.Mock }

func (m *mockAdminLedger) ApproveWithdrawal(ctx context.Context, txID uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, txID)
	tx, _ := args.Get(0).(*entity.Transaction)
	return tx, args.Error(1)
}

func (m *mockAdminLedger) RejectWithdrawal(ctx context.Context, txID uuid.UUID, reason string) (*entity.Transaction, error) {
	args := m.Called(ctx, txID, reason)
	tx, _ := args.Get(0).(*entity.Transaction)
	return tx, args.Error(1)
}

func (m *mockAdminLedger) AdminWalletAvailable(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAdminLedger) AdminWalletAdjust(ctx context.Context, userID uuid.UUID, amount int64, direction valueobject.WalletDirection) (*entity.Transaction, error) {
	args := m.Called(ctx, userID, amount, direction)
	tx, _ := args.Get(0).(*entity.Transaction)
	return tx, args.Error(1)
}

func (m *mockAdminLedger) SystemAccount(ctx context.Context) (*entity.SystemAccount, error) {
	args := m.Called(ctx)
	acc, _ := args.Get(0).(*entity.SystemAccount)
	return acc, args.Error(1)
}

func TestAdminHandler_ApproveWithdrawal_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &AdminHandler{ledger: nil}
	r.POST("/admin/withdrawals/:id/approve", handler.ApproveWithdrawal)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin/withdrawals/invalid-uuid/approve", "").Code)
}

func TestAdminHandler_RejectWithdrawal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	record := entity.NewTransaction(uuid.New(), valueobject.TxWithdraw, valueobject.TxFailed, 1_000_000)

	svc := new(mockAdminLedger)
	svc.On("RejectWithdrawal", mock.Anything, record.ID, "неверные реквизиты").Return(record, nil)

	r := gin.New()
	r.POST("/admin/withdrawals/:id/reject", NewAdminHandler(svc).RejectWithdrawal)

	w := do(r, http.MethodPost, "/admin/withdrawals/"+record.ID.String()+"/reject", `{"reason":"неверные реквизиты"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)

	// причина обязательна
	w = do(r, http.MethodPost, "/admin/withdrawals/"+record.ID.String()+"/reject", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_WalletWithdraw(t *testing.T) {
	gin.SetMode(gin.TestMode)
	adminID := uuid.New()

	svc := new(mockAdminLedger)
	svc.On("AdminWalletAdjust", mock.Anything, adminID, int64(60_000), valueobject.WalletDecrease).
		Return(nil, apperror.ErrInsufficientFunds)

	r := gin.New()
	r.POST("/admin/wallet/withdraw", withUser(adminID), NewAdminHandler(svc).WalletWithdraw)

	w := do(r, http.MethodPost, "/admin/wallet/withdraw", `{"amount":60000}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertExpectations(t)
}

func TestAdminHandler_WalletAndSystemAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockAdminLedger)
	svc.On("AdminWalletAvailable", mock.Anything).Return(int64(50_000), nil)
	svc.On("SystemAccount", mock.Anything).Return(&entity.SystemAccount{EscrowBalance: 300_000, ProfitAmount: 50_000}, nil)

	h := NewAdminHandler(svc)
	r := gin.New()
	r.GET("/admin/wallet", h.Wallet)
	r.GET("/admin/system-account", h.SystemAccount)

	w := do(r, http.MethodGet, "/admin/wallet", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":50000}`, w.Body.String())

	w = do(r, http.MethodGet, "/admin/system-account", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"escrowBalance":300000`)
}
