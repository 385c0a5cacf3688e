package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/repository"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/goroutine"
	"github.com/Toan888/SpaceHub-BE/internal/logger"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

// Notifier доставляет уведомление пользователю. Ошибки доставки не влияют на операцию.
type Notifier interface {
	Notify(ctx context.Context, notice entity.Notice) error
}

// AdminDirectory возвращает получателей уведомлений для администраторов.
type AdminDirectory interface {
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

// PaymentEvent - проверенное событие платёжного шлюза.
type PaymentEvent struct {
	OrderID   string
	Succeeded bool
	Amount    int64
}

// LedgerService - единственная точка изменения балансов, эскроу и кошелька платформы.
// Каждая операция выполняется в одной транзакции БД и создаёт ровно одну запись журнала.
type LedgerService struct {
	repo     repository.LedgerRepository
	tx       repository.TxManager
	feePct   int64
	notifier Notifier
	admins   AdminDirectory
	log      *logrus.Entry
}

func NewLedgerService(repo repository.LedgerRepository, tx repository.TxManager, withdrawFeePct int64) *LedgerService {
	return &LedgerService{
		repo:   repo,
		tx:     tx,
		feePct: withdrawFeePct,
		log:    logger.WithComponent("ledger"),
	}
}

// SetNotifier подключает уведомления о выводе средств.
func (s *LedgerService) SetNotifier(n Notifier, admins AdminDirectory) {
	s.notifier = n
	s.admins = admins
}

// Debit списывает средства пользователя в эскроу.
func (s *LedgerService) Debit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.Transaction, error) {
	if _, err := valueobject.NewAmount(amount); err != nil {
		return nil, err
	}

	var record *entity.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DecreaseBalance(ctx, userID, amount); err != nil {
			return err
		}
		if err := s.repo.AdjustEscrow(ctx, amount); err != nil {
			return err
		}
		record = entity.NewTransaction(userID, valueobject.TxDebit, valueobject.TxSuccess, amount)
		return s.repo.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, apperror.Database(err, "не удалось списать средства")
	}
	return record, nil
}

// Credit выплачивает средства из эскроу пользователю.
func (s *LedgerService) Credit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.Transaction, error) {
	if _, err := valueobject.NewAmount(amount); err != nil {
		return nil, err
	}
	return s.releaseEscrow(ctx, userID, amount, valueobject.TxCredit, nil)
}

// Refund возвращает средства из эскроу с обратной ссылкой на исходное списание.
func (s *LedgerService) Refund(ctx context.Context, userID uuid.UUID, amount int64, originalTransactionID uuid.UUID) (*entity.Transaction, error) {
	if amount < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма возврата не может быть отрицательной")
	}
	return s.releaseEscrow(ctx, userID, amount, valueobject.TxRefund, &originalTransactionID)
}

func (s *LedgerService) releaseEscrow(ctx context.Context, userID uuid.UUID, amount int64, kind valueobject.TransactionKind, original *uuid.UUID) (*entity.Transaction, error) {
	var record *entity.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.AdjustEscrow(ctx, kind.EscrowDelta()*amount); err != nil {
			return err
		}
		if err := s.repo.IncreaseBalance(ctx, userID, amount); err != nil {
			return err
		}
		record = entity.NewTransaction(userID, kind, valueobject.TxSuccess, amount)
		record.OriginalTransactionID = original
		return s.repo.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, apperror.Database(err, fmt.Sprintf("не удалось провести операцию %s", kind))
	}
	return record, nil
}

// AdminWalletAdjust записывает движение по кошельку платформы.
func (s *LedgerService) AdminWalletAdjust(ctx context.Context, userID uuid.UUID, amount int64, direction valueobject.WalletDirection) (*entity.Transaction, error) {
	if _, err := valueobject.NewAmount(amount); err != nil {
		return nil, err
	}
	kind, ok := direction.Kind()
	if !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректное направление операции")
	}

	var record *entity.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockSystemAccount(ctx); err != nil {
			return err
		}
		if kind == valueobject.TxAdminWalletDecrease {
			available, err := s.adminWalletAvailable(ctx)
			if err != nil {
				return err
			}
			if amount > available {
				return apperror.ErrInsufficientFunds
			}
		}
		record = entity.NewTransaction(userID, kind, valueobject.TxSuccess, amount)
		return s.repo.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, apperror.Database(err, "не удалось изменить кошелёк платформы")
	}
	return record, nil
}

// AdminWalletAvailable считает доступный остаток платформы по журналу.
func (s *LedgerService) AdminWalletAvailable(ctx context.Context) (int64, error) {
	available, err := s.adminWalletAvailable(ctx)
	if err != nil {
		return 0, apperror.Database(err, "не удалось получить кошелёк платформы")
	}
	return available, nil
}

func (s *LedgerService) adminWalletAvailable(ctx context.Context) (int64, error) {
	in, err := s.repo.SumByKind(ctx, valueobject.TxAdminWalletIncrease, valueobject.TxSuccess)
	if err != nil {
		return 0, err
	}
	out, err := s.repo.SumByKind(ctx, valueobject.TxAdminWalletDecrease, valueobject.TxSuccess)
	if err != nil {
		return 0, err
	}
	return in - out, nil
}

// InitiateDeposit создаёт ожидающее пополнение. orderId передаётся в платёжный шлюз.
func (s *LedgerService) InitiateDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.Transaction, error) {
	if _, err := valueobject.NewAmount(amount); err != nil {
		return nil, err
	}
	record := entity.NewTransaction(userID, valueobject.TxDeposit, valueobject.TxInitiated, amount)
	if err := s.repo.CreateTransaction(ctx, record); err != nil {
		return nil, apperror.Database(err, "не удалось создать пополнение")
	}
	return record, nil
}

// ConfirmPayment завершает пополнение или вывод по событию шлюза.
// Повторное событие для уже завершённой транзакции ничего не меняет.
func (s *LedgerService) ConfirmPayment(ctx context.Context, event PaymentEvent) (*entity.Transaction, error) {
	if event.OrderID == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "orderId обязателен")
	}

	var (
		record  *entity.Transaction
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.repo.FindTransactionByOrderIDForUpdate(ctx, event.OrderID)
		if err != nil {
			return err
		}
		if record.Status.IsFinal() {
			return nil
		}
		changed = true

		switch record.Kind {
		case valueobject.TxDeposit:
			return s.finalizeDeposit(ctx, record, event)
		case valueobject.TxWithdraw:
			if event.Succeeded {
				return s.approveWithdrawal(ctx, record)
			}
			return s.rejectWithdrawal(ctx, record, "платёжный шлюз отклонил перевод")
		default:
			return apperror.New(apperror.ErrCodeValidation, "транзакция не ожидает подтверждения шлюза")
		}
	})
	if err != nil {
		return nil, apperror.Database(err, "не удалось подтвердить платёж")
	}

	if changed {
		s.log.WithFields(logrus.Fields{
			"order_id":  event.OrderID,
			"kind":      record.Kind,
			"status":    record.Status,
			"succeeded": event.Succeeded,
		}).Info("платёж подтверждён шлюзом")
		if record.Kind == valueobject.TxWithdraw {
			s.notifyWithdrawalResult(record)
		}
	}
	return record, nil
}

func (s *LedgerService) finalizeDeposit(ctx context.Context, record *entity.Transaction, event PaymentEvent) error {
	now := time.Now()
	record.CompletedAt = &now
	if !event.Succeeded {
		record.Status = valueobject.TxFailed
		return s.repo.UpdateTransaction(ctx, record)
	}
	if event.Amount > 0 {
		record.Amount = event.Amount
	}
	record.Status = valueobject.TxSuccess
	if err := s.repo.UpdateTransaction(ctx, record); err != nil {
		return err
	}
	return s.repo.IncreaseBalance(ctx, record.UserID, record.Amount)
}

// RequestWithdrawal резервирует средства и создаёт заявку на вывод.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount int64, account, bank string) (*entity.Transaction, error) {
	vnd, err := valueobject.NewAmount(amount)
	if err != nil {
		return nil, err
	}
	if account == "" || bank == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "реквизиты получателя обязательны")
	}

	var record *entity.Transaction
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DecreaseBalance(ctx, userID, amount); err != nil {
			return err
		}
		record = entity.NewTransaction(userID, valueobject.TxWithdraw, valueobject.TxInitiated, amount)
		record.Fee = valueobject.WithdrawFee(vnd, s.feePct).Int64()
		record.BeneficiaryAccount = &account
		record.BeneficiaryBank = &bank
		return s.repo.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, apperror.Database(err, "не удалось создать заявку на вывод")
	}

	s.notifyAdmins(fmt.Sprintf("Новая заявка на вывод %d VND", amount))
	return record, nil
}

// ApproveWithdrawal подтверждает вывод: комиссия уходит в кошелёк платформы.
func (s *LedgerService) ApproveWithdrawal(ctx context.Context, txID uuid.UUID) (*entity.Transaction, error) {
	record, err := s.decideWithdrawal(ctx, txID, func(ctx context.Context, record *entity.Transaction) error {
		return s.approveWithdrawal(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	s.notifyWithdrawalResult(record)
	return record, nil
}

// RejectWithdrawal отклоняет вывод и возвращает средства на баланс.
func (s *LedgerService) RejectWithdrawal(ctx context.Context, txID uuid.UUID, reason string) (*entity.Transaction, error) {
	if reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "причина отказа обязательна")
	}
	record, err := s.decideWithdrawal(ctx, txID, func(ctx context.Context, record *entity.Transaction) error {
		return s.rejectWithdrawal(ctx, record, reason)
	})
	if err != nil {
		return nil, err
	}
	s.notifyWithdrawalResult(record)
	return record, nil
}

func (s *LedgerService) decideWithdrawal(ctx context.Context, txID uuid.UUID, decide func(context.Context, *entity.Transaction) error) (*entity.Transaction, error) {
	var record *entity.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.repo.FindTransactionForUpdate(ctx, txID)
		if err != nil {
			return err
		}
		if record.Kind != valueobject.TxWithdraw {
			return apperror.New(apperror.ErrCodeValidation, "транзакция не является выводом средств")
		}
		if record.Status != valueobject.TxInitiated {
			return apperror.New(apperror.ErrCodeNotAllowed, "заявка на вывод уже обработана")
		}
		return decide(ctx, record)
	})
	if err != nil {
		return nil, apperror.Database(err, "не удалось обработать заявку на вывод")
	}
	return record, nil
}

func (s *LedgerService) approveWithdrawal(ctx context.Context, record *entity.Transaction) error {
	now := time.Now()
	record.Status = valueobject.TxSuccess
	record.CompletedAt = &now
	if err := s.repo.UpdateTransaction(ctx, record); err != nil {
		return err
	}
	if record.Fee <= 0 {
		return nil
	}
	if err := s.repo.AddProfit(ctx, record.Fee); err != nil {
		return err
	}
	fee := entity.NewTransaction(record.UserID, valueobject.TxAdminWalletIncrease, valueobject.TxSuccess, record.Fee)
	fee.OriginalTransactionID = &record.ID
	return s.repo.CreateTransaction(ctx, fee)
}

func (s *LedgerService) rejectWithdrawal(ctx context.Context, record *entity.Transaction, reason string) error {
	now := time.Now()
	record.Status = valueobject.TxFailed
	record.CompletedAt = &now
	record.ReasonRejected = &reason
	if err := s.repo.UpdateTransaction(ctx, record); err != nil {
		return err
	}
	return s.repo.IncreaseBalance(ctx, record.UserID, record.Amount)
}

// Balance возвращает баланс пользователя.
func (s *LedgerService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return 0, apperror.Database(err, "не удалось получить баланс")
	}
	return balance, nil
}

// ListTransactions возвращает историю транзакций.
func (s *LedgerService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	txs, err := s.repo.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить историю транзакций")
	}
	return txs, nil
}

// SystemAccount возвращает счётчики платформы.
func (s *LedgerService) SystemAccount(ctx context.Context) (*entity.SystemAccount, error) {
	acc, err := s.repo.SystemAccount(ctx)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить счёт платформы")
	}
	return acc, nil
}

func (s *LedgerService) notifyWithdrawalResult(record *entity.Transaction) {
	if s.notifier == nil {
		return
	}
	message := fmt.Sprintf("Вывод %d VND выполнен", record.Amount)
	if record.Status == valueobject.TxFailed {
		message = fmt.Sprintf("Вывод %d VND отклонён", record.Amount)
		if record.ReasonRejected != nil {
			message += ": " + *record.ReasonRejected
		}
	}
	notice := entity.NewNotice(record.UserID, message, nil, "/wallet")
	goroutine.SafeGo(func() {
		if err := s.notifier.Notify(context.Background(), notice); err != nil {
			s.log.WithError(err).Warn("не удалось уведомить о выводе средств")
		}
	})
}

func (s *LedgerService) notifyAdmins(message string) {
	if s.notifier == nil || s.admins == nil {
		return
	}
	goroutine.SafeGo(func() {
		ctx := context.Background()
		ids, err := s.admins.ListAdminIDs(ctx)
		if err != nil {
			s.log.WithError(err).Warn("не удалось получить список администраторов")
			return
		}
		for _, id := range ids {
			if err := s.notifier.Notify(ctx, entity.NewNotice(id, message, nil, "/admin/withdrawals")); err != nil {
				s.log.WithError(err).WithField("admin_id", id).Warn("не удалось уведомить администратора")
			}
		}
	})
}
