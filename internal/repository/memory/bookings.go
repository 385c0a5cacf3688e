package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

type BookingRepo struct{ *Store }

func claimKey(spaceID uuid.UUID, key string) string {
	return spaceID.String() + "|" + key
}

func (r BookingRepo) Create(ctx context.Context, b *entity.Booking) error {
	defer r.lock(ctx)()
	if err := r.fail("CreateBooking"); err != nil {
		return err
	}
	keys := b.ClaimKeys()
	for _, key := range keys {
		if _, taken := r.claims[claimKey(b.SpaceID, key)]; taken {
			return apperror.ErrSlotConflict
		}
	}
	for _, key := range keys {
		r.claims[claimKey(b.SpaceID, key)] = b.ID
	}
	r.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r BookingRepo) Update(ctx context.Context, b *entity.Booking) error {
	defer r.lock(ctx)()
	if err := r.fail("Update"); err != nil {
		return err
	}
	if _, ok := r.bookings[b.ID]; !ok {
		return apperror.ErrBookingNotFound
	}
	r.bookings[b.ID] = cloneBooking(b)
	if b.IsCanceled() {
		for k, owner := range r.claims {
			if owner == b.ID {
				delete(r.claims, k)
			}
		}
	}
	return nil
}

func (r BookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	defer r.lock(ctx)()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperror.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r BookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r BookingRepo) FindActiveBySpace(ctx context.Context, spaceID uuid.UUID) ([]*entity.Booking, error) {
	defer r.lock(ctx)()
	var out []*entity.Booking
	for _, b := range r.sorted() {
		if b.SpaceID == spaceID && !b.IsCanceled() {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r BookingRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	defer r.lock(ctx)()
	var out []*entity.Booking
	for _, b := range r.sorted() {
		if b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r BookingRepo) FindPendingPayout(ctx context.Context, rentalType valueobject.RentalType) ([]uuid.UUID, error) {
	defer r.lock(ctx)()
	if err := r.fail("FindPendingPayout"); err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for _, b := range r.sorted() {
		if b.RentalType != rentalType || b.PayoutStatus == valueobject.PayoutFullyPaid {
			continue
		}
		if b.Status == valueobject.BookingCompleted || b.Status == valueobject.BookingCanceled {
			out = append(out, b.ID)
		}
	}
	return out, nil
}

// LockSpace ничего не делает: транзакции хранилища и так сериализованы.
func (r BookingRepo) LockSpace(ctx context.Context, spaceID uuid.UUID) error {
	return r.fail("LockSpace")
}

func (r BookingRepo) sorted() []*entity.Booking {
	out := make([]*entity.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
