package valueobject

import (
	"fmt"

	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

// VND - сумма в донгах. Дробных единиц нет, поэтому int64.
type VND int64

func NewAmount(amount int64) (VND, error) {
	if amount <= 0 {
		return 0, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}
	return VND(amount), nil
}

// Percent возвращает pct процентов суммы с отбрасыванием дробной части.
func (v VND) Percent(pct int64) VND {
	return VND(int64(v) * pct / 100)
}

// Min возвращает меньшую из сумм.
func (v VND) Min(other VND) VND {
	if other < v {
		return other
	}
	return v
}

func (v VND) Int64() int64 {
	return int64(v)
}

func (v VND) String() string {
	return fmt.Sprintf("%d VND", int64(v))
}

// WithdrawFee - комиссия платформы: amount - floor(amount * (100 - feePct) / 100).
func WithdrawFee(amount VND, feePct int64) VND {
	return amount - amount.Percent(100-feePct)
}
