package inventory

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/inventory"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
)

const productID = "6f1c1d2e-0000-4000-8000-000000000001"

func newProduct(qty, minStock int) *entity.Product {
	return &entity.Product{
		ID:              productID,
		Name:            "Collier perles",
		Price:           decimal.RequireFromString("45.00"),
		Quantity:        qty,
		InitialQuantity: qty,
		MinStock:        minStock,
	}
}

type fixture struct {
	store   *memStore
	runner  *memTxRunner
	notifs  *memNotificationRepo
	metrics *countingMetrics
	audit   *capturedAudit
	uc      *RegisterMovementUseCase
}

func newFixture(p *entity.Product) *fixture {
	store := newMemStore(p)
	f := &fixture{
		store:   store,
		runner:  &memTxRunner{store: store},
		notifs:  &memNotificationRepo{},
		metrics: newCountingMetrics(),
		audit:   &capturedAudit{},
	}
	f.uc = NewRegisterMovementUseCase(f.runner, f.notifs, f.audit, logger.Nop(), WithMetrics(f.metrics))
	return f
}

// ────────────────────────────────────────────────────────────────────────────
// Round-trip y conciliación
// ────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_EntradaYSalidaActualizanCantidad(t *testing.T) {
	f := newFixture(newProduct(10, 2))
	ctx := context.Background()

	_, err := f.uc.RecordMovement(ctx, MovementInput{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 5, ActorID: "u1"})
	require.NoError(t, err)
	_, err = f.uc.RecordMovement(ctx, MovementInput{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 3, ActorID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 12, f.store.product(productID).Quantity)

	movRepo := &memMovementRepo{store: f.store}
	asc, err := movRepo.List(ctx, repositoryFilterAsc())
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, entity.MovementTypeIN, asc[0].Type, "orden de inserción")
	assert.Equal(t, entity.MovementTypeOUT, asc[1].Type)
	require.NotNil(t, asc[0].UserID)
	assert.Equal(t, "u1", *asc[0].UserID)

	q := NewMovementQueryUseCase(movRepo, nil)
	rec, err := q.Reconcile(ctx, productID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 10, rec.InitialQuantity)
	assert.Equal(t, 5, rec.TotalIn)
	assert.Equal(t, 3, rec.TotalOut)

	assert.Equal(t, 1, f.metrics.recorded[entity.MovementTypeIN])
	assert.Equal(t, 1, f.metrics.recorded[entity.MovementTypeOUT])
	assert.Equal(t, "record_movement:movement,record_movement:movement", f.audit.joined())
}

// ────────────────────────────────────────────────────────────────────────────
// Rechazos sin cambios de estado
// ────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_SalidaMayorQueStockNoCambiaNada(t *testing.T) {
	f := newFixture(newProduct(4, 1))

	_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 5})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, productID, insufficient.ProductID)

	assert.Equal(t, 4, f.store.product(productID).Quantity, "la cantidad no cambia")
	assert.Zero(t, f.store.movementCount(), "no se inserta movimiento")
	assert.Equal(t, 1, f.metrics.rejected["insufficient_stock"])
}

func TestRecordMovement_CantidadNoPositiva(t *testing.T) {
	f := newFixture(newProduct(10, 1))
	for _, q := range []int{0, -3} {
		_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeIN, Quantity: q})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	assert.Zero(t, f.runner.calls.Load(), "se valida antes de abrir la transacción")
}

func TestRecordMovement_CantidadFueraDeRango(t *testing.T) {
	f := newFixture(newProduct(10, 1))
	for _, q := range []int{inventory.MaxQuantity + 1, math.MaxInt64} {
		_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeIN, Quantity: q})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %d", q)
	}
	assert.Zero(t, f.runner.calls.Load())
	assert.Equal(t, 10, f.store.product(productID).Quantity)
	assert.Zero(t, f.store.movementCount())
}

func TestRecordMovement_EntradaQueDesbordaNoCambiaNada(t *testing.T) {
	f := newFixture(newProduct(inventory.MaxQuantity-3, 1))

	_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 4})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, inventory.MaxQuantity-3, f.store.product(productID).Quantity)
	assert.Zero(t, f.store.movementCount())
	assert.Equal(t, 1, f.metrics.rejected["invalid_quantity"])

	_, err = f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, inventory.MaxQuantity, f.store.product(productID).Quantity)
}

func TestRecordMovement_ProductoInexistente(t *testing.T) {
	f := newFixture(newProduct(10, 1))
	_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: "no-existe", Type: entity.MovementTypeIN, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordMovement_FalloAlInsertarMovimientoRevierteCantidad(t *testing.T) {
	f := newFixture(newProduct(10, 1))
	f.store.failMovementInsert = true

	_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 5})
	require.Error(t, err)
	assert.Equal(t, 10, f.store.product(productID).Quantity, "no hay aplicación parcial")
	assert.Zero(t, f.store.movementCount())
}

func TestRegisterMovementFromRequest_TipoEnMinusculas(t *testing.T) {
	f := newFixture(newProduct(10, 1))
	out, err := f.uc.RegisterMovementFromRequest(context.Background(), "u1", dto.RegisterMovementRequest{
		ProductID: productID, Type: "in", Quantity: 2, Reason: "réassort",
	})
	require.NoError(t, err)
	assert.Equal(t, "IN", out.Type)
	assert.Equal(t, "réassort", out.Reason)

	_, err = f.uc.RegisterMovementFromRequest(context.Background(), "u1", dto.RegisterMovementRequest{
		ProductID: productID, Type: "TRANSFER", Quantity: 2,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ────────────────────────────────────────────────────────────────────────────
// Concurrencia: dos salidas de 6 contra stock 10
// ────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_SalidasConcurrentesSoloUnaGana(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(newProduct(10, 0))

		var wg sync.WaitGroup
		start := make(chan struct{})
		errs := make([]error, 2)
		for g := 0; g < 2; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				<-start
				_, errs[g] = f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 6})
			}(g)
		}
		close(start)
		wg.Wait()

		ok, insufficient := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			}
		}
		require.Equal(t, 1, ok, "exactamente una salida confirmada")
		require.Equal(t, 1, insufficient)
		require.Equal(t, 4, f.store.product(productID).Quantity)
		require.Equal(t, 1, f.store.movementCount())
	}
}

func TestReconcile_ConsistenteConMovimientosConcurrentes(t *testing.T) {
	f := newFixture(newProduct(10, 0))
	q := NewMovementQueryUseCase(&memMovementRepo{store: f.store}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			typ := entity.MovementTypeIN
			if g%2 == 1 {
				typ = entity.MovementTypeOUT
			}
			for i := 0; i < 50; i++ {
				_, _ = f.uc.RecordMovement(ctx, MovementInput{ProductID: productID, Type: typ, Quantity: 1})
			}
		}(g)
	}

	for i := 0; i < 200; i++ {
		rec, err := q.Reconcile(ctx, productID)
		require.NoError(t, err)
		require.True(t, rec.Consistent, "current=%d expected=%d", rec.Current, rec.Expected)
	}
	wg.Wait()
}

func TestReconcile_ProductoInexistente(t *testing.T) {
	f := newFixture(newProduct(10, 0))
	q := NewMovementQueryUseCase(&memMovementRepo{store: f.store}, nil)
	_, err := q.Reconcile(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ────────────────────────────────────────────────────────────────────────────
// Avisos de stock bajo
// ────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_SalidaBajoMinimoNotificaAlActor(t *testing.T) {
	f := newFixture(newProduct(6, 5))

	_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeOUT, Quantity: 2, ActorID: "u1"})
	require.NoError(t, err)

	require.Len(t, f.notifs.items, 1)
	n := f.notifs.items[0]
	assert.Equal(t, "u1", n.UserID)
	assert.Equal(t, entity.NotificationWarning, n.Type)
	assert.Contains(t, n.Title, "Collier perles")
}

func TestRecordMovement_EntradaNoNotifica(t *testing.T) {
	f := newFixture(newProduct(1, 5))
	_, err := f.uc.RecordMovement(context.Background(), MovementInput{ProductID: productID, Type: entity.MovementTypeIN, Quantity: 1, ActorID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, f.notifs.items)
}

func TestLowStockSweep_NotificaAdminsActivos(t *testing.T) {
	low := newProduct(1, 5)
	store := newMemStore(low)
	users := &memUserRepo{users: []*entity.User{
		{ID: "a1", Role: entity.RoleAdmin, IsActive: true},
		{ID: "a2", Role: entity.RoleAdmin, IsActive: false},
		{ID: "m1", Role: entity.RoleManager, IsActive: true},
	}}
	notifs := &memNotificationRepo{}
	uc := NewLowStockUseCase(&memProductRepo{store: store}, users, notifs, logger.Nop())

	n, err := uc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, notifs.items, 1)
	assert.Equal(t, "a1", notifs.items[0].UserID)

	threshold := 1
	names, err := uc.Names(context.Background(), &threshold)
	require.NoError(t, err)
	assert.Empty(t, names, "quantity 1 no es < 1")
}
