package valueobject

type TransactionKind string

const (
	TxDebit               TransactionKind = "debit"
	TxCredit              TransactionKind = "credit"
	TxRefund              TransactionKind = "refund"
	TxDeposit             TransactionKind = "deposit"
	TxWithdraw            TransactionKind = "withdraw"
	TxAdminWalletIncrease TransactionKind = "admin_wallet_increase"
	TxAdminWalletDecrease TransactionKind = "admin_wallet_decrease"
)

func (k TransactionKind) IsValid() bool {
	switch k {
	case TxDebit, TxCredit, TxRefund, TxDeposit, TxWithdraw, TxAdminWalletIncrease, TxAdminWalletDecrease:
		return true
	}
	return false
}

// EscrowDelta - знак изменения эскроу для внутренних переводов.
func (k TransactionKind) EscrowDelta() int64 {
	switch k {
	case TxDebit:
		return 1
	case TxCredit, TxRefund:
		return -1
	}
	return 0
}

// Description - подпись транзакции в истории пользователя.
func (k TransactionKind) Description() string {
	switch k {
	case TxDebit:
		return "Оплата бронирования"
	case TxCredit:
		return "Выплата за бронирование"
	case TxRefund:
		return "Возврат за отменённое бронирование"
	case TxDeposit:
		return "Пополнение баланса"
	case TxWithdraw:
		return "Вывод средств"
	case TxAdminWalletIncrease:
		return "Комиссия платформы"
	case TxAdminWalletDecrease:
		return "Вывод средств платформы"
	}
	return ""
}

type TransactionStatus string

const (
	TxInitiated TransactionStatus = "initiated"
	TxSuccess   TransactionStatus = "success"
	TxFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) IsFinal() bool {
	return s == TxSuccess || s == TxFailed
}

// WalletDirection - направление операции с кошельком платформы.
type WalletDirection string

const (
	WalletIncrease WalletDirection = "increase"
	WalletDecrease WalletDirection = "decrease"
)

func (d WalletDirection) Kind() (TransactionKind, bool) {
	switch d {
	case WalletIncrease:
		return TxAdminWalletIncrease, true
	case WalletDecrease:
		return TxAdminWalletDecrease, true
	}
	return "", false
}
