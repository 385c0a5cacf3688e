package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
)

// LedgerRepository - атомарные счётчики балансов и журнал транзакций.
// Все изменения счётчиков выполняются как x = x ± n без чтения старого значения.
type LedgerRepository interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	IncreaseBalance(ctx context.Context, userID uuid.UUID, amount int64) error
	// DecreaseBalance списывает средства, только если их хватает, иначе apperror.ErrInsufficientFunds.
	DecreaseBalance(ctx context.Context, userID uuid.UUID, amount int64) error

	AdjustEscrow(ctx context.Context, delta int64) error
	AddProfit(ctx context.Context, delta int64) error
	SystemAccount(ctx context.Context) (*entity.SystemAccount, error)
	// LockSystemAccount сериализует операции с кошельком платформы.
	LockSystemAccount(ctx context.Context) error

	CreateTransaction(ctx context.Context, tx *entity.Transaction) error
	UpdateTransaction(ctx context.Context, tx *entity.Transaction) error
	FindTransactionForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindTransactionByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Transaction, error)
	SumByKind(ctx context.Context, kind valueobject.TransactionKind, status valueobject.TransactionStatus) (int64, error)
}
