package http_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

// memUsers repositorio de usuarios en memoria (solo lo que usa la capa HTTP).
type memUsers struct {
	repository.UserRepository
	mu   sync.Mutex
	byID map[string]*entity.User
}

func newMemUsers(users ...*entity.User) *memUsers {
	m := &memUsers{byID: map[string]*entity.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].LastLogin = &at
	return nil
}

// memInventory productos y movimientos compartidos; un único lock hace de FOR UPDATE.
type memInventory struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
}

func newMemInventory(products ...*entity.Product) *memInventory {
	inv := &memInventory{products: map[string]*entity.Product{}}
	for _, p := range products {
		inv.products[p.ID] = p
	}
	return inv
}

func (inv *memInventory) quantity(id string) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.products[id].Quantity
}

// Run serializa las transacciones; los cambios se aplican directamente porque fn solo
// escribe después de validar.
func (inv *memInventory) Run(ctx context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	inv.txMu.Lock()
	defer inv.txMu.Unlock()
	return fn(&memProducts{inv: inv}, &memMovements{inv: inv})
}

type memProducts struct {
	repository.ProductRepository
	inv *memInventory
}

func (r *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	p, ok := r.inv.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProducts) UpdateQuantity(_ context.Context, id string, quantity int, at time.Time) error {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	r.inv.products[id].Quantity = quantity
	r.inv.products[id].UpdatedAt = at
	return nil
}

func (r *memProducts) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	out := []*entity.Product{}
	for _, p := range r.inv.products {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProducts) ListLowStock(_ context.Context, threshold *int) ([]*entity.Product, error) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	out := []*entity.Product{}
	for _, p := range r.inv.products {
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

type memMovements struct {
	repository.StockMovementRepository
	inv *memInventory
}

func (r *memMovements) Create(_ context.Context, m *entity.StockMovement) error {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	r.inv.movements = append(r.inv.movements, m)
	return nil
}

func (r *memMovements) LedgerTotals(_ context.Context, productID string) (*repository.LedgerTotals, error) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	p, ok := r.inv.products[productID]
	if !ok {
		return nil, nil
	}
	t := &repository.LedgerTotals{ProductID: productID, Quantity: p.Quantity, InitialQuantity: p.InitialQuantity}
	for _, m := range r.inv.movements {
		switch {
		case m.ProductID != productID:
		case m.Type == entity.MovementTypeIN:
			t.TotalIn += m.Quantity
		default:
			t.TotalOut += m.Quantity
		}
	}
	return t, nil
}

func (r *memMovements) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	out := []*entity.StockMovement{}
	for i := len(r.inv.movements) - 1; i >= 0; i-- {
		m := r.inv.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
