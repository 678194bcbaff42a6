package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/events"
	"github.com/Studentcuchd/sweet-treats-manager/internal/storage"
	"github.com/google/uuid"
)

type fakeSweetRepo struct {
	mu           sync.Mutex
	sweets       map[uuid.UUID]*models.Sweet
	deleted      map[uuid.UUID]bool
	listCalls    int
	listErr      error
	lockErr      error
	incrementErr error
}

var _ storage.SweetStorage = (*fakeSweetRepo)(nil)

func newFakeSweetRepo() *fakeSweetRepo {
	return &fakeSweetRepo{
		sweets:  make(map[uuid.UUID]*models.Sweet),
		deleted: make(map[uuid.UUID]bool),
	}
}

func (f *fakeSweetRepo) get(id uuid.UUID) (*models.Sweet, bool) {
	s, ok := f.sweets[id]
	if !ok || f.deleted[id] {
		return nil, false
	}
	return s, true
}

func (f *fakeSweetRepo) CreateSweet(ctx context.Context, sweet *models.Sweet) (*models.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sweet.ID == uuid.Nil {
		sweet.ID = uuid.New()
	}
	sweet.CreatedAt = time.Now().Add(time.Duration(len(f.sweets)) * time.Millisecond)
	sweet.UpdatedAt = sweet.CreatedAt
	stored := *sweet
	f.sweets[sweet.ID] = &stored
	return sweet, nil
}

func (f *fakeSweetRepo) GetSweetByID(ctx context.Context, id uuid.UUID) (*models.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.get(id)
	if !ok {
		return nil, storage.ErrSweetNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSweetRepo) ListSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]models.Sweet, 0)
	for id, s := range f.sweets {
		if f.deleted[id] || !matchFilter(filter, *s) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeSweetRepo) ListCategories(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	set := make(map[string]struct{})
	for id, s := range f.sweets {
		if !f.deleted[id] {
			set[s.Category] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for c := range set {
		result = append(result, c)
	}
	sort.Strings(result)
	return result, nil
}

func (f *fakeSweetRepo) LockSweetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Sweet, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.GetSweetByID(ctx, id)
}

func (f *fakeSweetRepo) UpdateSweetTx(ctx context.Context, tx *sql.Tx, sweet *models.Sweet) (*models.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.get(sweet.ID); !ok {
		return nil, storage.ErrSweetNotFound
	}
	sweet.UpdatedAt = time.Now()
	stored := *sweet
	f.sweets[sweet.ID] = &stored
	return sweet, nil
}

func (f *fakeSweetRepo) SoftDeleteSweet(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.get(id); !ok {
		return storage.ErrSweetNotFound
	}
	f.deleted[id] = true
	return nil
}

func (f *fakeSweetRepo) IncrementStock(ctx context.Context, id uuid.UUID, delta int) (*models.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return nil, f.incrementErr
	}
	s, ok := f.get(id)
	if !ok {
		return nil, storage.ErrSweetNotFound
	}
	s.Quantity += delta
	cp := *s
	return &cp, nil
}

func (f *fakeSweetRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) (*models.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.get(id)
	if !ok {
		return nil, storage.ErrSweetNotFound
	}
	if s.Quantity < quantity {
		return nil, fmt.Errorf("%w: requested %d, available %d", storage.ErrInsufficientStock, quantity, s.Quantity)
	}
	s.Quantity -= quantity
	cp := *s
	return &cp, nil
}

func (f *fakeSweetRepo) GetStats(ctx context.Context, lowStockThreshold int) (*models.InventoryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.InventoryStats{}
	for id, s := range f.sweets {
		if f.deleted[id] {
			continue
		}
		stats.TotalSweets++
		stats.TotalUnits += s.Quantity
		if s.Quantity < lowStockThreshold {
			stats.LowStockItems++
		}
	}
	return stats, nil
}

// matchFilter повторяет предикаты SQL-запроса ListSweets для фейкового репозитория.
func matchFilter(f models.SweetFilter, s models.Sweet) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Category != "" && s.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && s.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && s.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

type fakePurchaseRepo struct {
	mu        sync.Mutex
	purchases []models.Purchase
	createErr error
}

var _ storage.PurchaseStorage = (*fakePurchaseRepo)(nil)

func (f *fakePurchaseRepo) CreatePurchaseTx(ctx context.Context, tx *sql.Tx, purchase *models.Purchase) (*models.Purchase, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	purchase.CreatedAt = time.Now()
	f.purchases = append(f.purchases, *purchase)
	return purchase, nil
}

func (f *fakePurchaseRepo) GetPurchasesByUserID(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]models.Purchase, 0)
	for i := len(f.purchases) - 1; i >= 0; i-- {
		if f.purchases[i].UserID == userID {
			result = append(result, f.purchases[i])
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[string]*models.User // ключ — email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) CreateUserTx(ctx context.Context, tx *sql.Tx, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(user.Email)
	f.users[user.Email] = user
	return user, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*models.Profile
	err      error
}

var _ storage.ProfileStorage = (*fakeProfileRepo)(nil)

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*models.Profile)}
}

func (f *fakeProfileRepo) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, storage.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) CreateProfileTx(ctx context.Context, tx *sql.Tx, profile *models.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) UpsertFullName(ctx context.Context, id uuid.UUID, email, fullName string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		p = &models.Profile{ID: id, Email: email}
		f.profiles[id] = p
	}
	p.FullName = &fullName
	return p, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

var _ events.Publisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		result = append(result, e.Type)
	}
	return result
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// failingStore — кэш, у которого ломается каждое обращение.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingStore) Generation(context.Context) (int64, error) {
	return 0, errors.New("cache down")
}

func (failingStore) Set(context.Context, int64, string, []byte) error {
	return errors.New("cache down")
}

func (failingStore) InvalidateAll(context.Context) error {
	return errors.New("cache down")
}
