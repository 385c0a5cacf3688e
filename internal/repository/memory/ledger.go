package memory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

var errNegativeEscrow = errors.New("escrow balance would become negative")

type LedgerRepo struct{ *Store }

func (r LedgerRepo) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	defer r.lock(ctx)()
	if _, ok := r.users[userID]; !ok {
		return 0, apperror.ErrUserNotFound
	}
	return r.balances[userID], nil
}

func (r LedgerRepo) IncreaseBalance(ctx context.Context, userID uuid.UUID, amount int64) error {
	defer r.lock(ctx)()
	if err := r.fail("IncreaseBalance"); err != nil {
		return err
	}
	if _, ok := r.users[userID]; !ok {
		return apperror.ErrUserNotFound
	}
	r.balances[userID] += amount
	return nil
}

func (r LedgerRepo) DecreaseBalance(ctx context.Context, userID uuid.UUID, amount int64) error {
	defer r.lock(ctx)()
	if err := r.fail("DecreaseBalance"); err != nil {
		return err
	}
	if r.balances[userID] < amount {
		return apperror.ErrInsufficientFunds
	}
	r.balances[userID] -= amount
	return nil
}

func (r LedgerRepo) AdjustEscrow(ctx context.Context, delta int64) error {
	defer r.lock(ctx)()
	if err := r.fail("AdjustEscrow"); err != nil {
		return err
	}
	if r.system.EscrowBalance+delta < 0 {
		return errNegativeEscrow
	}
	r.system.EscrowBalance += delta
	return nil
}

func (r LedgerRepo) AddProfit(ctx context.Context, delta int64) error {
	defer r.lock(ctx)()
	r.system.ProfitAmount += delta
	return nil
}

func (r LedgerRepo) SystemAccount(ctx context.Context) (*entity.SystemAccount, error) {
	defer r.lock(ctx)()
	acc := r.system
	return &acc, nil
}

func (r LedgerRepo) LockSystemAccount(ctx context.Context) error {
	return nil
}

func (r LedgerRepo) CreateTransaction(ctx context.Context, tx *entity.Transaction) error {
	defer r.lock(ctx)()
	if err := r.fail("CreateTransaction"); err != nil {
		return err
	}
	for _, existing := range r.transactions {
		if existing.OrderID == tx.OrderID {
			return apperror.New(apperror.ErrCodeConflict, "orderId уже существует")
		}
	}
	c := *tx
	r.transactions[tx.ID] = &c
	r.txOrder = append(r.txOrder, tx.ID)
	return nil
}

func (r LedgerRepo) UpdateTransaction(ctx context.Context, tx *entity.Transaction) error {
	defer r.lock(ctx)()
	if _, ok := r.transactions[tx.ID]; !ok {
		return apperror.ErrTransactionNotFound
	}
	c := *tx
	r.transactions[tx.ID] = &c
	return nil
}

func (r LedgerRepo) FindTransactionForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	defer r.lock(ctx)()
	tx, ok := r.transactions[id]
	if !ok {
		return nil, apperror.ErrTransactionNotFound
	}
	c := *tx
	return &c, nil
}

func (r LedgerRepo) FindTransactionByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.Transaction, error) {
	defer r.lock(ctx)()
	for _, tx := range r.transactions {
		if tx.OrderID == orderID {
			c := *tx
			return &c, nil
		}
	}
	return nil, apperror.ErrTransactionNotFound
}

func (r LedgerRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Transaction, error) {
	defer r.lock(ctx)()
	var out []entity.Transaction
	for i := len(r.txOrder) - 1; i >= 0; i-- {
		tx := r.transactions[r.txOrder[i]]
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return page(out, limit, offset), nil
}

func (r LedgerRepo) SumByKind(ctx context.Context, kind valueobject.TransactionKind, status valueobject.TransactionStatus) (int64, error) {
	defer r.lock(ctx)()
	var total int64
	for _, tx := range r.transactions {
		if tx.Kind == kind && tx.Status == status {
			total += tx.Amount
		}
	}
	return total, nil
}
