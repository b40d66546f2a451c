package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

// memStore base en memoria con un mutex por fila de producto que emula SELECT ... FOR UPDATE.
type memStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	rowLocks  map[string]*sync.Mutex

	failMovementInsert bool
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{products: map[string]*entity.Product{}, rowLocks: map[string]*sync.Mutex{}}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *memStore) rowLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}

func (s *memStore) product(id string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// memTxRunner aplica los cambios pendientes solo si fn termina sin error.
type memTxRunner struct {
	store *memStore
	calls atomic.Int32
}

func (r *memTxRunner) Run(ctx context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	r.calls.Add(1)
	tx := &memTx{store: r.store, qty: map[string]int{}}
	defer tx.release()

	if err := fn(&txProductRepo{tx: tx}, &txMovementRepo{tx: tx}); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, q := range tx.qty {
		r.store.products[id].Quantity = q
	}
	r.store.movements = append(r.store.movements, tx.movs...)
	return nil
}

type memTx struct {
	store  *memStore
	locked []*sync.Mutex
	qty    map[string]int
	movs   []*entity.StockMovement
}

func (tx *memTx) release() {
	for _, l := range tx.locked {
		l.Unlock()
	}
}

type txProductRepo struct {
	repository.ProductRepository
	tx *memTx
}

func (r *txProductRepo) GetForUpdate(_ context.Context, id string) (*entity.Product, error) {
	l := r.tx.store.rowLock(id)
	l.Lock()
	r.tx.locked = append(r.tx.locked, l)
	return r.tx.store.product(id), nil
}

func (r *txProductRepo) UpdateQuantity(_ context.Context, id string, quantity int, _ time.Time) error {
	r.tx.qty[id] = quantity
	return nil
}

type txMovementRepo struct {
	repository.StockMovementRepository
	tx *memTx
}

func (r *txMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if r.tx.store.failMovementInsert {
		return errors.New("insert stock_movements: conexión perdida")
	}
	r.tx.movs = append(r.tx.movs, m)
	return nil
}

// Repos de solo lectura sobre memStore (fuera de transacción).
type memProductRepo struct {
	repository.ProductRepository
	store *memStore
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.store.product(id), nil
}

func (r *memProductRepo) ListLowStock(_ context.Context, threshold *int) ([]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.store.products {
		limit := p.MinStock
		if threshold != nil {
			limit = *threshold
		}
		if p.Quantity < limit {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memMovementRepo struct {
	repository.StockMovementRepository
	store *memStore
}

func (r *memMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		out = append(out, m)
	}
	if !f.Ascending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *memMovementRepo) SumByProduct(_ context.Context, productID string) (int, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	in, out := 0, 0
	for _, m := range r.store.movements {
		if m.ProductID != productID {
			continue
		}
		if m.Type == entity.MovementTypeIN {
			in += m.Quantity
		} else {
			out += m.Quantity
		}
	}
	return in, out, nil
}

func (r *memMovementRepo) LedgerTotals(_ context.Context, productID string) (*repository.LedgerTotals, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok {
		return nil, nil
	}
	t := &repository.LedgerTotals{ProductID: productID, Quantity: p.Quantity, InitialQuantity: p.InitialQuantity}
	for _, m := range r.store.movements {
		if m.ProductID != productID {
			continue
		}
		if m.Type == entity.MovementTypeIN {
			t.TotalIn += m.Quantity
		} else {
			t.TotalOut += m.Quantity
		}
	}
	return t, nil
}

type memNotificationRepo struct {
	repository.NotificationRepository
	mu    sync.Mutex
	items []*entity.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

type memUserRepo struct {
	repository.UserRepository
	users []*entity.User
}

func (r *memUserRepo) ListActiveByRole(_ context.Context, role entity.Role) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.IsActive && u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type countingMetrics struct {
	mu       sync.Mutex
	recorded map[entity.MovementType]int
	rejected map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{recorded: map[entity.MovementType]int{}, rejected: map[string]int{}}
}

func (m *countingMetrics) MovementRecorded(t entity.MovementType, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded[t]++
}

func (m *countingMetrics) MovementRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

type capturedAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *capturedAudit) Record(_ context.Context, e entity.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, e.Action+":"+e.ResourceType)
}

func (a *capturedAudit) joined() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.actions, ",")
}

func repositoryFilterAsc() repository.MovementFilter {
	return repository.MovementFilter{Ascending: true}
}
