package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/repository/memory"
)

type mockNotifier struct {
	mock.Mock
	mu      sync.Mutex
	notices []entity.Notice
}

func (m *mockNotifier) Notify(ctx context.Context, notice entity.Notice) error {
	m.mu.Lock()
	m.notices = append(m.notices, notice)
	m.mu.Unlock()
	args := m.Called(notice.RecipientUserID)
	return args.Error(0)
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notices)
}

func newLedger(t *testing.T) (*LedgerService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewLedgerService(memory.LedgerRepo{Store: store}, store, 5), store
}

func addUser(store *memory.Store, balance int64) uuid.UUID {
	id := uuid.New()
	store.AddUser(entity.User{ID: id, Fullname: "Nguyen Van A", Role: "user", Balance: balance})
	return id
}

func TestLedger_DebitMovesFundsToEscrow(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 1_000_000)

	tx, err := svc.Debit(ctx, user, 400_000)
	require.NoError(t, err)
	assert.Equal(t, valueobject.TxDebit, tx.Kind)
	assert.Equal(t, valueobject.TxSuccess, tx.Status)
	assert.NotEmpty(t, tx.OrderID)

	balance, err := svc.Balance(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(600_000), balance)

	acc, err := svc.SystemAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(400_000), acc.EscrowBalance)
}

func TestLedger_DebitInsufficientFunds(t *testing.T) {
	svc, store := newLedger(t)
	user := addUser(store, 500_000)

	_, err := svc.Debit(context.Background(), user, 600_000)
	assert.True(t, apperror.IsInsufficientFunds(err))
	assert.Empty(t, store.Transactions())
	assert.Equal(t, int64(500_000), store.TotalUserBalance())
}

func TestLedger_InvalidAmounts(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 100)

	_, err := svc.Debit(ctx, user, 0)
	assert.True(t, apperror.IsValidation(err))
	_, err = svc.Credit(ctx, user, -5)
	assert.True(t, apperror.IsValidation(err))
	_, err = svc.Refund(ctx, user, -1, uuid.New())
	assert.True(t, apperror.IsValidation(err))
	_, err = svc.AdminWalletAdjust(ctx, user, 10, "sideways")
	assert.True(t, apperror.IsValidation(err))
}

func TestLedger_InternalTransfersConserveTotal(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	renter := addUser(store, 2_000_000)
	owner := addUser(store, 0)

	totalBefore := store.TotalUserBalance()

	debit, err := svc.Debit(ctx, renter, 1_000_000)
	require.NoError(t, err)
	refund, err := svc.Refund(ctx, renter, 300_000, debit.ID)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, owner, 700_000)
	require.NoError(t, err)

	acc, err := svc.SystemAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, totalBefore, store.TotalUserBalance()+acc.EscrowBalance)
	assert.Equal(t, int64(0), acc.EscrowBalance)
	require.NotNil(t, refund.OriginalTransactionID)
	assert.Equal(t, debit.ID, *refund.OriginalTransactionID)
	assert.Len(t, store.Transactions(), 3)
}

func TestLedger_FailedStepRollsBack(t *testing.T) {
	svc, store := newLedger(t)
	user := addUser(store, 1_000)
	store.Fail["CreateTransaction"] = errors.New("connection reset")

	_, err := svc.Debit(context.Background(), user, 500)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))

	acc, _ := svc.SystemAccount(context.Background())
	assert.Equal(t, int64(0), acc.EscrowBalance)
	assert.Equal(t, int64(1_000), store.TotalUserBalance())
}

func TestLedger_AdminWallet(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	admin := addUser(store, 0)

	_, err := svc.AdminWalletAdjust(ctx, admin, 10_000, valueobject.WalletIncrease)
	require.NoError(t, err)
	_, err = svc.AdminWalletAdjust(ctx, admin, 4_000, valueobject.WalletDecrease)
	require.NoError(t, err)

	available, err := svc.AdminWalletAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000), available)

	_, err = svc.AdminWalletAdjust(ctx, admin, 6_001, valueobject.WalletDecrease)
	assert.True(t, apperror.IsInsufficientFunds(err))
}

func TestLedger_DepositConfirmedOnce(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 0)

	dep, err := svc.InitiateDeposit(ctx, user, 200_000)
	require.NoError(t, err)
	assert.Equal(t, valueobject.TxInitiated, dep.Status)
	assert.Nil(t, dep.CompletedAt)

	event := PaymentEvent{OrderID: dep.OrderID, Succeeded: true, Amount: 200_000}
	confirmed, err := svc.ConfirmPayment(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, valueobject.TxSuccess, confirmed.Status)

	_, err = svc.ConfirmPayment(ctx, event)
	require.NoError(t, err)

	balance, _ := svc.Balance(ctx, user)
	assert.Equal(t, int64(200_000), balance)
}

func TestLedger_DepositFailed(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 0)

	dep, err := svc.InitiateDeposit(ctx, user, 50_000)
	require.NoError(t, err)

	res, err := svc.ConfirmPayment(ctx, PaymentEvent{OrderID: dep.OrderID, Succeeded: false})
	require.NoError(t, err)
	assert.Equal(t, valueobject.TxFailed, res.Status)

	balance, _ := svc.Balance(ctx, user)
	assert.Equal(t, int64(0), balance)

	_, err = svc.ConfirmPayment(ctx, PaymentEvent{OrderID: "missing"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestLedger_WithdrawalApproved(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 300_000)
	admin := uuid.New()
	store.AddUser(entity.User{ID: admin, Role: entity.RoleAdmin})

	notifier := new(mockNotifier)
	notifier.On("Notify", mock.Anything).Return(nil)
	svc.SetNotifier(notifier, memory.UserRepo{Store: store})

	w, err := svc.RequestWithdrawal(ctx, user, 100_000, "0123456789", "Vietcombank")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), w.Fee)
	assert.Equal(t, valueobject.TxInitiated, w.Status)

	balance, _ := svc.Balance(ctx, user)
	assert.Equal(t, int64(200_000), balance)

	approved, err := svc.ApproveWithdrawal(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.TxSuccess, approved.Status)

	acc, _ := svc.SystemAccount(ctx)
	assert.Equal(t, int64(5_000), acc.ProfitAmount)
	available, _ := svc.AdminWalletAvailable(ctx)
	assert.Equal(t, int64(5_000), available)

	_, err = svc.ApproveWithdrawal(ctx, w.ID)
	assert.True(t, apperror.IsNotAllowed(err))

	// заявка администратору и результат пользователю
	assert.Eventually(t, func() bool { return notifier.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestLedger_WithdrawalRejectedRefundsBalance(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 300_000)

	w, err := svc.RequestWithdrawal(ctx, user, 100_000, "0123456789", "ACB")
	require.NoError(t, err)

	_, err = svc.RejectWithdrawal(ctx, w.ID, "")
	assert.True(t, apperror.IsValidation(err))

	rejected, err := svc.RejectWithdrawal(ctx, w.ID, "неверный номер счёта")
	require.NoError(t, err)
	assert.Equal(t, valueobject.TxFailed, rejected.Status)
	require.NotNil(t, rejected.ReasonRejected)

	balance, _ := svc.Balance(ctx, user)
	assert.Equal(t, int64(300_000), balance)

	acc, _ := svc.SystemAccount(ctx)
	assert.Equal(t, int64(0), acc.ProfitAmount)
}

func TestLedger_WithdrawalValidation(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 1_000)

	_, err := svc.RequestWithdrawal(ctx, user, 2_000, "1", "ACB")
	assert.True(t, apperror.IsInsufficientFunds(err))
	_, err = svc.RequestWithdrawal(ctx, user, 500, "", "ACB")
	assert.True(t, apperror.IsValidation(err))

	dep, err := svc.InitiateDeposit(ctx, user, 10)
	require.NoError(t, err)
	_, err = svc.ApproveWithdrawal(ctx, dep.ID)
	assert.True(t, apperror.IsValidation(err))
}

func TestLedger_ListTransactionsDefaultLimit(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	user := addUser(store, 1_000)

	for i := 0; i < 3; i++ {
		_, err := svc.Debit(ctx, user, 100)
		require.NoError(t, err)
	}

	txs, err := svc.ListTransactions(ctx, user, 0, -1)
	require.NoError(t, err)
	assert.Len(t, txs, 3)

	txs, err = svc.ListTransactions(ctx, user, 2, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}
