package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/repository/common"
)

const slotClaimsIndex = "booking_slot_claims_active_uniq"

// paid_out_amount не хранится, а считается по транзакциям выплат.
const bookingColumns = `
	b.id, b.space_id, b.user_id, b.rental_type, b.start_date, b.end_date,
	b.selected_slots, b.selected_dates, b.status, b.total_amount, b.notes, b.cancel_reason,
	b.debit_transaction_id, b.refund_transaction_id, b.refund_amount,
	b.payout_transaction_ids, b.payout_status, b.created_at, b.updated_at,
	COALESCE((SELECT SUM(t.amount) FROM transactions t WHERE t.id = ANY(b.payout_transaction_ids)), 0) AS paid_out_amount`

// BookingRepository хранит бронирования и их ключи занятости.
type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type slotJSON struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type bookingRow struct {
	ID                   uuid.UUID      `db:"id"`
	SpaceID              uuid.UUID      `db:"space_id"`
	UserID               uuid.UUID      `db:"user_id"`
	RentalType           string         `db:"rental_type"`
	StartDate            time.Time      `db:"start_date"`
	EndDate              time.Time      `db:"end_date"`
	SelectedSlots        []byte         `db:"selected_slots"`
	SelectedDates        []byte         `db:"selected_dates"`
	Status               string         `db:"status"`
	TotalAmount          int64          `db:"total_amount"`
	Notes                string         `db:"notes"`
	CancelReason         string         `db:"cancel_reason"`
	DebitTransactionID   uuid.NullUUID  `db:"debit_transaction_id"`
	RefundTransactionID  uuid.NullUUID  `db:"refund_transaction_id"`
	RefundAmount         int64          `db:"refund_amount"`
	PayoutTransactionIDs pq.StringArray `db:"payout_transaction_ids"`
	PayoutStatus         string         `db:"payout_status"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
	PaidOutAmount        int64          `db:"paid_out_amount"`
}

func (r bookingRow) toEntity() (*entity.Booking, error) {
	status, err := valueobject.NewBookingStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("booking repository: row %s: %w", r.ID, err)
	}
	b := &entity.Booking{
		ID:            r.ID,
		SpaceID:       r.SpaceID,
		UserID:        r.UserID,
		RentalType:    valueobject.RentalType(r.RentalType),
		StartDate:     r.StartDate.In(valueobject.Location),
		EndDate:       r.EndDate.In(valueobject.Location),
		Status:        status,
		TotalAmount:   r.TotalAmount,
		Notes:         r.Notes,
		CancelReason:  r.CancelReason,
		RefundAmount:  r.RefundAmount,
		PaidOutAmount: r.PaidOutAmount,
		PayoutStatus:  valueobject.PayoutStatus(r.PayoutStatus),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.DebitTransactionID.Valid {
		b.DebitTransactionID = r.DebitTransactionID.UUID
	}
	if r.RefundTransactionID.Valid {
		id := r.RefundTransactionID.UUID
		b.RefundTransactionID = &id
	}

	var slots []slotJSON
	if err := json.Unmarshal(r.SelectedSlots, &slots); err != nil {
		return nil, fmt.Errorf("booking repository: decode slots %w", err)
	}
	for _, s := range slots {
		date, err := valueobject.ParseDate(s.Date)
		if err != nil {
			return nil, err
		}
		b.SelectedSlots = append(b.SelectedSlots, entity.Slot{Date: date, StartTime: s.StartTime, EndTime: s.EndTime})
	}

	var dates []string
	if err := json.Unmarshal(r.SelectedDates, &dates); err != nil {
		return nil, fmt.Errorf("booking repository: decode dates %w", err)
	}
	for _, raw := range dates {
		date, err := valueobject.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		b.SelectedDates = append(b.SelectedDates, date)
	}

	for _, raw := range r.PayoutTransactionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("booking repository: payout id %w", err)
		}
		b.PayoutTransactionIDs = append(b.PayoutTransactionIDs, id)
	}
	return b, nil
}

func encodeSlots(slots []entity.Slot) ([]byte, error) {
	out := make([]slotJSON, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotJSON{Date: valueobject.DateKey(s.Date), StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return json.Marshal(out)
}

func encodeDates(dates []time.Time) ([]byte, error) {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, valueobject.DateKey(d))
	}
	return json.Marshal(out)
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func nullable(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

// Create вставляет бронирование и его ключи занятости.
func (r *BookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	slots, err := encodeSlots(b.SelectedSlots)
	if err != nil {
		return err
	}
	dates, err := encodeDates(b.SelectedDates)
	if err != nil {
		return err
	}

	exec := common.Conn(ctx, r.db)
	query := `
		INSERT INTO bookings (
			id, space_id, user_id, rental_type, start_date, end_date, selected_slots, selected_dates,
			status, total_amount, notes, cancel_reason, debit_transaction_id, refund_transaction_id,
			refund_amount, payout_transaction_ids, payout_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULL, 0, $14, $15, $16, $17)
	`
	if _, err := exec.ExecContext(ctx, query,
		b.ID, b.SpaceID, b.UserID, b.RentalType, b.StartDate, b.EndDate, slots, dates,
		b.Status, b.TotalAmount, b.Notes, b.CancelReason, nullable(b.DebitTransactionID),
		uuidStrings(b.PayoutTransactionIDs), b.PayoutStatus, b.CreatedAt, b.UpdatedAt,
	); err != nil {
		return fmt.Errorf("booking repository: create %w", err)
	}

	keys := b.ClaimKeys()
	inserter := common.NewBatchInserter(exec, `INSERT INTO booking_slot_claims (booking_id, space_id, slot_key)`, "", 3, 200)
	for _, key := range keys {
		if err := inserter.Add(ctx, b.ID, b.SpaceID, key); err != nil {
			return common.MapUnique(err, slotClaimsIndex, apperror.ErrSlotConflict)
		}
	}
	if err := inserter.Flush(ctx); err != nil {
		return common.MapUnique(err, slotClaimsIndex, apperror.ErrSlotConflict)
	}
	return nil
}

// Update сохраняет изменяемые поля. При отмене освобождает ключи занятости.
func (r *BookingRepository) Update(ctx context.Context, b *entity.Booking) error {
	exec := common.Conn(ctx, r.db)
	var refundID uuid.NullUUID
	if b.RefundTransactionID != nil {
		refundID = nullable(*b.RefundTransactionID)
	}

	res, err := exec.ExecContext(ctx, `
		UPDATE bookings SET
			end_date = $2, status = $3, cancel_reason = $4, debit_transaction_id = $5,
			refund_transaction_id = $6, refund_amount = $7, payout_transaction_ids = $8,
			payout_status = $9, updated_at = $10
		WHERE id = $1
	`, b.ID, b.EndDate, b.Status, b.CancelReason, nullable(b.DebitTransactionID),
		refundID, b.RefundAmount, uuidStrings(b.PayoutTransactionIDs), b.PayoutStatus, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("booking repository: update %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrBookingNotFound
	}

	if b.IsCanceled() {
		if _, err := exec.ExecContext(ctx,
			`UPDATE booking_slot_claims SET released = TRUE WHERE booking_id = $1 AND NOT released`, b.ID,
		); err != nil {
			return fmt.Errorf("booking repository: release claims %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Booking, error) {
	var row bookingRow
	if err := common.Conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking repository: get %w", err)
	}
	return row.toEntity()
}

func (r *BookingRepository) findMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Booking, error) {
	var rows []bookingRow
	if err := common.Conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("booking repository: list %w", err)
	}
	out := make([]*entity.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id)
}

// FindByIDForUpdate блокирует строку бронирования до конца транзакции.
func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1 FOR UPDATE OF b`, id)
}

func (r *BookingRepository) FindActiveBySpace(ctx context.Context, spaceID uuid.UUID) ([]*entity.Booking, error) {
	return r.findMany(ctx, `
		SELECT `+bookingColumns+` FROM bookings b
		WHERE b.space_id = $1 AND b.status <> $2
		ORDER BY b.created_at, b.id
	`, spaceID, valueobject.BookingCanceled)
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	return r.findMany(ctx, `
		SELECT `+bookingColumns+` FROM bookings b
		WHERE b.user_id = $1
		ORDER BY b.created_at, b.id
	`, userID)
}

// FindPendingPayout возвращает id бронирований, по которым владельцу ещё что-то причитается.
func (r *BookingRepository) FindPendingPayout(ctx context.Context, rentalType valueobject.RentalType) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := common.Conn(ctx, r.db).SelectContext(ctx, &ids, `
		SELECT id FROM bookings
		WHERE rental_type = $1 AND payout_status <> $2 AND status IN ($3, $4)
		ORDER BY created_at
	`, rentalType, valueobject.PayoutFullyPaid, valueobject.BookingCompleted, valueobject.BookingCanceled)
	if err != nil {
		return nil, fmt.Errorf("booking repository: pending payout %w", err)
	}
	return ids, nil
}

// LockSpace берёт транзакционную advisory-блокировку по id помещения.
func (r *BookingRepository) LockSpace(ctx context.Context, spaceID uuid.UUID) error {
	if _, err := common.Conn(ctx, r.db).ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, spaceID.String(),
	); err != nil {
		return fmt.Errorf("booking repository: lock space %w", err)
	}
	return nil
}
