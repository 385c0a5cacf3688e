// Package memory - хранилище в памяти с теми же контрактами, что и репозитории PostgreSQL.
// Используется в тестах сценариев бронирования и выплат.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

type txMarker struct{}

// Store реализует репозитории бронирований, помещений, пользователей, журнала и уведомлений.
// Транзакции сериализуются одним мьютексом и откатываются восстановлением снимка.
type Store struct {
	mu sync.Mutex

	bookings      map[uuid.UUID]*entity.Booking
	claims        map[string]uuid.UUID
	spaces        map[uuid.UUID]*entity.Space
	users         map[uuid.UUID]*entity.User
	balances      map[uuid.UUID]int64
	transactions  map[uuid.UUID]*entity.Transaction
	txOrder       []uuid.UUID
	system        entity.SystemAccount
	notifications []entity.Notification

	// Fail позволяет тесту сломать конкретный метод, например "Update" или "CreateTransaction".
	Fail map[string]error
}

func NewStore() *Store {
	return &Store{
		bookings:     make(map[uuid.UUID]*entity.Booking),
		claims:       make(map[string]uuid.UUID),
		spaces:       make(map[uuid.UUID]*entity.Space),
		users:        make(map[uuid.UUID]*entity.User),
		balances:     make(map[uuid.UUID]int64),
		transactions: make(map[uuid.UUID]*entity.Transaction),
		Fail:         make(map[string]error),
	}
}

// lock берёт мьютекс только вне транзакции: внутри WithinTx он уже захвачен.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txMarker{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) fail(method string) error {
	return s.Fail[method]
}

type snapshot struct {
	bookings      map[uuid.UUID]*entity.Booking
	claims        map[string]uuid.UUID
	balances      map[uuid.UUID]int64
	transactions  map[uuid.UUID]*entity.Transaction
	txOrder       []uuid.UUID
	system        entity.SystemAccount
	notifications []entity.Notification
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		bookings:      make(map[uuid.UUID]*entity.Booking, len(s.bookings)),
		claims:        make(map[string]uuid.UUID, len(s.claims)),
		balances:      make(map[uuid.UUID]int64, len(s.balances)),
		transactions:  make(map[uuid.UUID]*entity.Transaction, len(s.transactions)),
		txOrder:       append([]uuid.UUID(nil), s.txOrder...),
		system:        s.system,
		notifications: append([]entity.Notification(nil), s.notifications...),
	}
	for id, b := range s.bookings {
		snap.bookings[id] = cloneBooking(b)
	}
	for k, v := range s.claims {
		snap.claims[k] = v
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for id, tx := range s.transactions {
		c := *tx
		snap.transactions[id] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.bookings = snap.bookings
	s.claims = snap.claims
	s.balances = snap.balances
	s.transactions = snap.transactions
	s.txOrder = snap.txOrder
	s.system = snap.system
	s.notifications = snap.notifications
}

// WithinTx выполняет fn атомарно. Вложенный вызов присоединяется к внешней транзакции.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	if err = s.fail("Commit"); err != nil {
		s.restore(snap)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	c := *b
	c.SelectedSlots = append([]entity.Slot(nil), b.SelectedSlots...)
	c.SelectedDates = append(c.SelectedDates[:0:0], b.SelectedDates...)
	c.PayoutTransactionIDs = append([]uuid.UUID(nil), b.PayoutTransactionIDs...)
	if b.RefundTransactionID != nil {
		id := *b.RefundTransactionID
		c.RefundTransactionID = &id
	}
	return &c
}

// --- наполнение для тестов ---

func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := u
	s.users[u.ID] = &c
	s.balances[u.ID] = u.Balance
}

func (s *Store) AddSpace(sp entity.Space) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := sp
	s.spaces[sp.ID] = &c
}

// PutBooking кладёт бронирование в обход проверок, вместе с ключами занятости.
func (s *Store) PutBooking(b *entity.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = cloneBooking(b)
	if !b.IsCanceled() {
		for _, key := range b.ClaimKeys() {
			s.claims[claimKey(b.SpaceID, key)] = b.ID
		}
	}
}

func (s *Store) SeedEscrow(amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system.EscrowBalance += amount
}

// Transactions возвращает копию журнала в порядке создания.
func (s *Store) Transactions() []entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Transaction, 0, len(s.txOrder))
	for _, id := range s.txOrder {
		out = append(out, *s.transactions[id])
	}
	return out
}

func (s *Store) Notifications() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Notification(nil), s.notifications...)
}

// TotalUserBalance - сумма балансов всех пользователей.
func (s *Store) TotalUserBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, v := range s.balances {
		total += v
	}
	return total
}

// --- SpaceRepository / UserRepository ---

type SpaceRepo struct{ *Store }
type UserRepo struct{ *Store }

func (r SpaceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Space, error) {
	defer r.lock(ctx)()
	sp, ok := r.spaces[id]
	if !ok {
		return nil, apperror.ErrSpaceNotFound
	}
	c := *sp
	return &c, nil
}

func (r UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	defer r.lock(ctx)()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	c := *u
	c.Balance = r.balances[id]
	return &c, nil
}

func (r UserRepo) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	defer r.lock(ctx)()
	var ids []uuid.UUID
	for id, u := range r.users {
		if u.Role == entity.RoleAdmin {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// --- NotificationRepository ---

type NotificationRepo struct{ *Store }

func (r NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	defer r.lock(ctx)()
	if err := r.fail("CreateNotification"); err != nil {
		return err
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r NotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	defer r.lock(ctx)()
	var out []entity.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID == userID {
			out = append(out, r.notifications[i])
		}
	}
	return page(out, limit, offset), nil
}

func (r NotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	defer r.lock(ctx)()
	for i := range r.notifications {
		if r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r NotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	defer r.lock(ctx)()
	n := 0
	for _, item := range r.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
