package usecase

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

type fakeProducts struct {
	repository.ProductRepository
	mu   sync.Mutex
	rows map[string]*entity.Product
}

func newFakeProducts(list ...*entity.Product) *fakeProducts {
	f := &fakeProducts{rows: map[string]*entity.Product{}}
	for _, p := range list {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProducts) Update(_ context.Context, p *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProducts) SetImage(_ context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ImageURL = &url
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeProducts) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Product
	for _, p := range f.rows {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProducts) ListLowStock(_ context.Context, threshold *int) ([]*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Product
	for _, p := range f.rows {
		limit := p.MinStock
		if threshold != nil {
			limit = *threshold
		}
		if p.Quantity < limit {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProducts) CountByCategory(_ context.Context, categoryID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.rows {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

type fakeCategories struct {
	repository.CategoryRepository
	mu   sync.Mutex
	rows map[string]*entity.Category
}

func newFakeCategories(list ...*entity.Category) *fakeCategories {
	f := &fakeCategories{rows: map[string]*entity.Category{}}
	for _, c := range list {
		f.rows[c.ID] = c
	}
	return f
}

func (f *fakeCategories) Create(_ context.Context, c *entity.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) GetByName(_ context.Context, name string) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Update(_ context.Context, c *entity.Category) error {
	return f.Create(context.Background(), c)
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

// fakeTx ejecuta fn directamente sobre los repositorios en memoria.
type fakeTx struct {
	products *fakeProducts
}

func (t fakeTx) Run(_ context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	return fn(t.products, nil)
}

type fakeUsers struct {
	repository.UserRepository
	mu   sync.Mutex
	rows map[string]*entity.User
}

func newFakeUsers(list ...*entity.User) *fakeUsers {
	f := &fakeUsers{rows: map[string]*entity.User{}}
	for _, u := range list {
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) find(match func(*entity.User) bool) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Email == email }), nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (f *fakeUsers) Update(ctx context.Context, u *entity.User) error {
	return f.Create(ctx, u)
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].PasswordHash = hash
	return nil
}

func (f *fakeUsers) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].IsActive = false
	return nil
}

type prefixHasher struct{}

func (prefixHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

type memImages struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (m *memImages) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	if m.objs == nil {
		m.objs = map[string][]byte{}
	}
	m.objs[key] = buf.Bytes()
	return "/uploads/" + key, nil
}

type fakeAnalytics struct {
	inv     repository.InventoryTotals
	mov     repository.MovementTotals
	buckets []repository.MovementBucket
	perf    []repository.ProductPerformanceResult
	values  []repository.CategoryValueResult
	period  string
}

func (f *fakeAnalytics) GetInventoryTotals(context.Context) (repository.InventoryTotals, error) {
	return f.inv, nil
}

func (f *fakeAnalytics) GetMovementTotals(context.Context, *time.Time, *time.Time) (repository.MovementTotals, error) {
	return f.mov, nil
}

func (f *fakeAnalytics) GetStockValueByCategory(context.Context) ([]repository.CategoryValueResult, error) {
	return f.values, nil
}

func (f *fakeAnalytics) GetMovementBuckets(_ context.Context, period string, _, _ *time.Time) ([]repository.MovementBucket, error) {
	f.period = period
	return f.buckets, nil
}

func (f *fakeAnalytics) GetProductPerformance(context.Context, time.Time) ([]repository.ProductPerformanceResult, error) {
	return f.perf, nil
}

type fakeMovements struct {
	repository.StockMovementRepository
	list   []*entity.StockMovement
	filter repository.MovementFilter
}

func (f *fakeMovements) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	f.filter = filter
	return f.list, nil
}
