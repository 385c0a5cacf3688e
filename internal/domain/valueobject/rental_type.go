package valueobject

import (
	"time"

	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

type RentalType string

const (
	RentalHour  RentalType = "hour"
	RentalDay   RentalType = "day"
	RentalWeek  RentalType = "week"
	RentalMonth RentalType = "month"
)

const Day = 24 * time.Hour

// ConflictScope определяет, по какому ключу бронирование сталкивается с другими.
type ConflictScope int

const (
	// ScopeSlot - точное совпадение часового слота либо занятый целиком день.
	ScopeSlot ConflictScope = iota
	// ScopeDate - любое бронирование, занимающее дату.
	ScopeDate
	// ScopeInterval - пересечение интервалов [start, end] недельных и месячных бронирований.
	ScopeInterval
)

// PayoutPlan определяет схему выплаты владельцу.
type PayoutPlan int

const (
	PayoutSingle PayoutPlan = iota
	PayoutStaged
)

// RefundTier - ступень возврата. Применяется, если lead > From (или lead == From при Inclusive).
type RefundTier struct {
	From      time.Duration
	Inclusive bool
	Percent   int64
}

func (t RefundTier) matches(lead time.Duration) bool {
	return lead > t.From || (t.Inclusive && lead == t.From)
}

// PayoutMilestone - этап поэтапной выплаты по числу дней с начала аренды.
type PayoutMilestone struct {
	AfterDays int
	Stage     PayoutStatus
	Percent   int64 // 0 означает остаток
}

// RentalPolicy - набор правил, зависящих от типа аренды.
type RentalPolicy struct {
	Conflict ConflictScope
	// CancelLead - минимальный запас времени до начала, при котором отмена разрешена.
	// Отрицательное значение разрешает отмену после начала.
	CancelLead  time.Duration
	RefundTiers []RefundTier
	Payout      PayoutPlan
	Milestones  []PayoutMilestone
}

var monthMilestones = []PayoutMilestone{
	{AfterDays: 7, Stage: PayoutStage1, Percent: 25},
	{AfterDays: 14, Stage: PayoutStage2, Percent: 25},
	{AfterDays: 21, Stage: PayoutStage3, Percent: 25},
	{AfterDays: 28, Stage: PayoutFullyPaid},
}

var policies = map[RentalType]RentalPolicy{
	RentalHour: {
		Conflict:    ScopeSlot,
		CancelLead:  5 * time.Hour,
		RefundTiers: []RefundTier{{From: 5 * time.Hour, Inclusive: true, Percent: 100}},
		Payout:      PayoutSingle,
	},
	RentalDay: {
		Conflict:    ScopeDate,
		CancelLead:  Day,
		RefundTiers: []RefundTier{{From: Day, Inclusive: true, Percent: 100}},
		Payout:      PayoutSingle,
	},
	RentalWeek: {
		Conflict:   ScopeInterval,
		CancelLead: Day,
		RefundTiers: []RefundTier{
			{From: 3 * Day, Inclusive: true, Percent: 100},
			{From: Day, Inclusive: true, Percent: 50},
		},
		Payout: PayoutSingle,
	},
	RentalMonth: {
		Conflict:   ScopeInterval,
		CancelLead: -14 * Day,
		RefundTiers: []RefundTier{
			{From: 7 * Day, Inclusive: true, Percent: 100},
			{From: 0, Percent: 80},
			{From: -7 * Day, Inclusive: true, Percent: 60},
			{From: -14 * Day, Inclusive: true, Percent: 30},
		},
		Payout:     PayoutStaged,
		Milestones: monthMilestones,
	},
}

func (t RentalType) IsValid() bool {
	_, ok := policies[t]
	return ok
}

// Policy возвращает правила типа аренды. Для неизвестного типа - правила почасовой аренды.
func (t RentalType) Policy() RentalPolicy {
	if p, ok := policies[t]; ok {
		return p
	}
	return policies[RentalHour]
}

// IsPeriod - недельная или месячная аренда, занимающая интервал целиком.
func (t RentalType) IsPeriod() bool {
	return t.Policy().Conflict == ScopeInterval && t.IsValid()
}

// RefundPercent возвращает процент возврата для запаса времени lead или 0, если ни одна ступень не подошла.
func (p RentalPolicy) RefundPercent(lead time.Duration) int64 {
	for _, tier := range p.RefundTiers {
		if tier.matches(lead) {
			return tier.Percent
		}
	}
	return 0
}

func NewRentalType(raw string) (RentalType, error) {
	t := RentalType(raw)
	if !t.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип аренды")
	}
	return t, nil
}

func AllRentalTypes() []RentalType {
	return []RentalType{RentalHour, RentalDay, RentalWeek, RentalMonth}
}
