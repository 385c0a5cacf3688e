package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/repository/common"
)

// CHECK ограничения балансов из миграции 001.
const (
	userBalanceCheck = "users_balance_non_negative"
	escrowCheck      = "system_account_escrow_non_negative"
)

// ErrNegativeEscrow - попытка вывести из эскроу больше, чем в нём есть.
var ErrNegativeEscrow = errors.New("escrow balance would become negative")

// balanceError переводит нарушения CHECK на балансах в доменные ошибки. nil - ошибка другая.
func balanceError(err error) error {
	switch {
	case common.IsCheckViolation(err, userBalanceCheck):
		return apperror.ErrInsufficientFunds
	case common.IsCheckViolation(err, escrowCheck):
		return ErrNegativeEscrow
	}
	return nil
}

// LedgerRepository работает с балансами пользователей, счётом платформы и журналом транзакций.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	if err := common.Conn(ctx, r.db).GetContext(ctx, &balance, `SELECT balance FROM users WHERE id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.ErrUserNotFound
		}
		return 0, fmt.Errorf("ledger repository: balance %w", err)
	}
	return balance, nil
}

func (r *LedgerRepository) IncreaseBalance(ctx context.Context, userID uuid.UUID, amount int64) error {
	res, err := common.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET balance = balance + $2 WHERE id = $1`, userID, amount)
	if err != nil {
		return fmt.Errorf("ledger repository: increase balance %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

// DecreaseBalance списывает средства одним условным UPDATE без предварительного чтения.
func (r *LedgerRepository) DecreaseBalance(ctx context.Context, userID uuid.UUID, amount int64) error {
	exec := common.Conn(ctx, r.db)
	res, err := exec.ExecContext(ctx,
		`UPDATE users SET balance = balance - $2 WHERE id = $1 AND balance >= $2`, userID, amount)
	if err != nil {
		if mapped := balanceError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("ledger repository: decrease balance %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	if err := exec.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
		return fmt.Errorf("ledger repository: check user %w", err)
	}
	if !exists {
		return apperror.ErrUserNotFound
	}
	return apperror.ErrInsufficientFunds
}

func (r *LedgerRepository) AdjustEscrow(ctx context.Context, delta int64) error {
	res, err := common.Conn(ctx, r.db).ExecContext(ctx, `
		UPDATE system_account SET escrow_balance = escrow_balance + $1, updated_at = NOW()
		WHERE id = 1 AND escrow_balance + $1 >= 0
	`, delta)
	if err != nil {
		if mapped := balanceError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("ledger repository: adjust escrow %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNegativeEscrow
	}
	return nil
}

func (r *LedgerRepository) AddProfit(ctx context.Context, delta int64) error {
	if _, err := common.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE system_account SET profit_amount = profit_amount + $1, updated_at = NOW() WHERE id = 1`, delta,
	); err != nil {
		return fmt.Errorf("ledger repository: add profit %w", err)
	}
	return nil
}

func (r *LedgerRepository) SystemAccount(ctx context.Context) (*entity.SystemAccount, error) {
	var acc entity.SystemAccount
	if err := common.Conn(ctx, r.db).GetContext(ctx, &acc,
		`SELECT escrow_balance, profit_amount, updated_at FROM system_account WHERE id = 1`,
	); err != nil {
		return nil, fmt.Errorf("ledger repository: system account %w", err)
	}
	return &acc, nil
}

// LockSystemAccount блокирует строку счёта платформы до конца транзакции.
func (r *LedgerRepository) LockSystemAccount(ctx context.Context) error {
	var id int
	if err := common.Conn(ctx, r.db).GetContext(ctx, &id, `SELECT id FROM system_account WHERE id = 1 FOR UPDATE`); err != nil {
		return fmt.Errorf("ledger repository: lock system account %w", err)
	}
	return nil
}

func (r *LedgerRepository) CreateTransaction(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, amount, fee, kind, status, order_id, description, original_transaction_id,
			beneficiary_account, beneficiary_bank, reason_rejected, created_at, completed_at
		) VALUES (
			:id, :user_id, :amount, :fee, :kind, :status, :order_id, :description, :original_transaction_id,
			:beneficiary_account, :beneficiary_bank, :reason_rejected, :created_at, :completed_at
		)
	`
	if _, err := sqlx.NamedExecContext(ctx, common.Conn(ctx, r.db), query, tx); err != nil {
		if common.IsUniqueViolation(err, "transactions_order_id_key") {
			return apperror.New(apperror.ErrCodeConflict, "orderId уже существует")
		}
		return fmt.Errorf("ledger repository: create transaction %w", err)
	}
	return nil
}

func (r *LedgerRepository) UpdateTransaction(ctx context.Context, tx *entity.Transaction) error {
	res, err := common.Conn(ctx, r.db).ExecContext(ctx, `
		UPDATE transactions SET amount = $2, fee = $3, status = $4, reason_rejected = $5, completed_at = $6
		WHERE id = $1
	`, tx.ID, tx.Amount, tx.Fee, tx.Status, tx.ReasonRejected, tx.CompletedAt)
	if err != nil {
		return fmt.Errorf("ledger repository: update transaction %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrTransactionNotFound
	}
	return nil
}

func (r *LedgerRepository) findTransaction(ctx context.Context, query string, arg interface{}) (*entity.Transaction, error) {
	var tx entity.Transaction
	if err := common.Conn(ctx, r.db).GetContext(ctx, &tx, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("ledger repository: get transaction %w", err)
	}
	return &tx, nil
}

func (r *LedgerRepository) FindTransactionForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.findTransaction(ctx, `SELECT * FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *LedgerRepository) FindTransactionByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.Transaction, error) {
	return r.findTransaction(ctx, `SELECT * FROM transactions WHERE order_id = $1 FOR UPDATE`, orderID)
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Transaction, error) {
	var txs []entity.Transaction
	if err := common.Conn(ctx, r.db).SelectContext(ctx, &txs, `
		SELECT * FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("ledger repository: list transactions %w", err)
	}
	return txs, nil
}

func (r *LedgerRepository) SumByKind(ctx context.Context, kind valueobject.TransactionKind, status valueobject.TransactionStatus) (int64, error) {
	var total int64
	if err := common.Conn(ctx, r.db).GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE kind = $1 AND status = $2`, kind, status,
	); err != nil {
		return 0, fmt.Errorf("ledger repository: sum %w", err)
	}
	return total, nil
}
