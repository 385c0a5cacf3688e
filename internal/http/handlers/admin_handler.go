package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/dto"
	"github.com/Toan888/SpaceHub-BE/internal/http/handlers/common"
	"github.com/Toan888/SpaceHub-BE/internal/validation"
)

type AdminLedger interface {
	ApproveWithdrawal(ctx context.Context, txID uuid.UUID) (*entity.Transaction, error)
	RejectWithdrawal(ctx context.Context, txID uuid.UUID, reason string) (*entity.Transaction, error)
	AdminWalletAvailable(ctx context.Context) (int64, error)
	AdminWalletAdjust(ctx context.Context, userID uuid.UUID, amount int64, direction valueobject.WalletDirection) (*entity.Transaction, error)
	SystemAccount(ctx context.Context) (*entity.SystemAccount, error)
}

// AdminHandler - операции администратора с выводами и кошельком платформы.
type AdminHandler struct {
	ledger AdminLedger
}

func NewAdminHandler(ledger AdminLedger) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

// ApproveWithdrawal обрабатывает POST /api/admin/withdrawals/:id/approve.
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	txID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	record, err := h.ledger.ApproveWithdrawal(c.Request.Context(), txID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// RejectWithdrawal обрабатывает POST /api/admin/withdrawals/:id/reject.
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	txID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.RejectWithdrawalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	reason, err := validation.NormalizeText("причина", req.Reason, validation.MaxRejectReasonLength)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	record, err := h.ledger.RejectWithdrawal(c.Request.Context(), txID, reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Wallet обрабатывает GET /api/admin/wallet.
func (h *AdminHandler) Wallet(c *gin.Context) {
	available, err := h.ledger.AdminWalletAvailable(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdminWalletResponse{Available: available})
}

// WalletWithdraw обрабатывает POST /api/admin/wallet/withdraw: вывод прибыли платформы.
func (h *AdminHandler) WalletWithdraw(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	var req dto.AdminWalletWithdrawRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	record, err := h.ledger.AdminWalletAdjust(c.Request.Context(), adminID, req.Amount, valueobject.WalletDecrease)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SystemAccount обрабатывает GET /api/admin/system-account.
func (h *AdminHandler) SystemAccount(c *gin.Context) {
	account, err := h.ledger.SystemAccount(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
