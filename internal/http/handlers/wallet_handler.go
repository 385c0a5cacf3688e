package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/dto"
	"github.com/Toan888/SpaceHub-BE/internal/http/handlers/common"
	"github.com/Toan888/SpaceHub-BE/internal/service"
	"github.com/Toan888/SpaceHub-BE/internal/validation"
)

type WalletService interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Transaction, error)
	InitiateDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.Transaction, error)
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount int64, account, bank string) (*entity.Transaction, error)
	ConfirmPayment(ctx context.Context, event service.PaymentEvent) (*entity.Transaction, error)
}

// WalletHandler обслуживает баланс, журнал и внешние пополнения и выводы пользователя.
type WalletHandler struct {
	wallet WalletService
}

func NewWalletHandler(wallet WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// GetBalance обрабатывает GET /api/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	balance, err := h.wallet.Balance(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Balance: balance})
}

// ListTransactions обрабатывает GET /api/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	limit, offset := common.GetPagination(c)
	items, err := h.wallet.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	if items == nil {
		items = []entity.Transaction{}
	}
	c.JSON(http.StatusOK, items)
}

// Deposit обрабатывает POST /api/wallet/deposits. orderId уходит в платёжный шлюз.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	var req dto.DepositRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	record, err := h.wallet.InitiateDeposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Withdraw обрабатывает POST /api/wallet/withdrawals.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	var req dto.WithdrawalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	if err := validation.ValidateBeneficiary(req.BeneficiaryAccount, req.BeneficiaryBank); err != nil {
		common.RespondAppError(c, err)
		return
	}

	record, err := h.wallet.RequestWithdrawal(c.Request.Context(), userID, req.Amount, req.BeneficiaryAccount, req.BeneficiaryBank)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Webhook обрабатывает POST /api/payments/webhook. Подпись проверяет middleware.
func (h *WalletHandler) Webhook(c *gin.Context) {
	var req dto.PaymentWebhookRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	record, err := h.wallet.ConfirmPayment(c.Request.Context(), service.PaymentEvent{
		OrderID:   req.OrderID,
		Succeeded: req.Succeeded,
		Amount:    req.Amount,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": record.OrderID, "status": record.Status})
}
