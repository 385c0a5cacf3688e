package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
)

// Transaction - неизменяемая запись о движении средств.
type Transaction struct {
	ID                    uuid.UUID                     `db:"id" json:"id"`
	UserID                uuid.UUID                     `db:"user_id" json:"userId"`
	Amount                int64                         `db:"amount" json:"amount"`
	Fee                   int64                         `db:"fee" json:"fee"`
	Kind                  valueobject.TransactionKind   `db:"kind" json:"kind"`
	Status                valueobject.TransactionStatus `db:"status" json:"status"`
	OrderID               string                        `db:"order_id" json:"orderId"`
	Description           string                        `db:"description" json:"description"`
	OriginalTransactionID *uuid.UUID                    `db:"original_transaction_id" json:"originalTransactionId,omitempty"`
	BeneficiaryAccount    *string                       `db:"beneficiary_account" json:"beneficiaryAccount,omitempty"`
	BeneficiaryBank       *string                       `db:"beneficiary_bank" json:"beneficiaryBank,omitempty"`
	ReasonRejected        *string                       `db:"reason_rejected" json:"reasonRejected,omitempty"`
	CreatedAt             time.Time                     `db:"created_at" json:"createdAt"`
	CompletedAt           *time.Time                    `db:"completed_at" json:"completedAt,omitempty"`
}

// NewTransaction создаёт запись с уникальным orderId.
func NewTransaction(userID uuid.UUID, kind valueobject.TransactionKind, status valueobject.TransactionStatus, amount int64) *Transaction {
	now := time.Now()
	tx := &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Status:      status,
		Description: kind.Description(),
		CreatedAt:   now,
	}
	tx.OrderID = tx.ID.String()
	if status.IsFinal() {
		tx.CompletedAt = &now
	}
	return tx
}

// SystemAccount - счётчики платформы: эскроу и накопленная комиссия.
type SystemAccount struct {
	EscrowBalance int64     `db:"escrow_balance" json:"escrowBalance"`
	ProfitAmount  int64     `db:"profit_amount" json:"profitAmount"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
