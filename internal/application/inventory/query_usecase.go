package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/inventory"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

// MovementQueryUseCase lecturas sobre el log de movimientos (sin bloqueos).
type MovementQueryUseCase struct {
	movRepo   repository.StockMovementRepository
	analytics repository.AnalyticsRepository
}

// NewMovementQueryUseCase construye el caso de uso de consulta.
func NewMovementQueryUseCase(
	movRepo repository.StockMovementRepository,
	analytics repository.AnalyticsRepository,
) *MovementQueryUseCase {
	return &MovementQueryUseCase{movRepo: movRepo, analytics: analytics}
}

// List filtra por producto, tipo y rango de fechas; orden timestamp DESC.
func (uc *MovementQueryUseCase) List(ctx context.Context, q dto.MovementListQuery) ([]dto.MovementResponse, error) {
	filter, err := toMovementFilter(q)
	if err != nil {
		return nil, err
	}
	q.DefaultPage()
	filter.Limit, filter.Offset = q.Limit, q.Offset

	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.ToMovementList(list), nil
}

// History rango de fechas completo, sin paginación; orden timestamp DESC.
func (uc *MovementQueryUseCase) History(ctx context.Context, q dto.MovementListQuery) ([]dto.MovementResponse, error) {
	filter, err := toMovementFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.ToMovementList(list), nil
}

// Stats totales de productos, stock y cantidades entradas/salidas.
func (uc *MovementQueryUseCase) Stats(ctx context.Context) (*dto.MovementStatsResponse, error) {
	inv, err := uc.analytics.GetInventoryTotals(ctx)
	if err != nil {
		return nil, err
	}
	mov, err := uc.analytics.GetMovementTotals(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return &dto.MovementStatsResponse{
		TotalProducts: inv.TotalProducts,
		TotalStock:    inv.TotalStock,
		TotalEntries:  mov.EntriesQty,
		TotalExits:    mov.ExitsQty,
	}, nil
}

// Reconcile compara la cantidad actual del producto con base + IN - OUT.
// Cantidad y sumas salen de la misma lectura.
func (uc *MovementQueryUseCase) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	t, err := uc.movRepo.LedgerTotals(ctx, productID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	p := &entity.Product{ID: t.ProductID, Quantity: t.Quantity, InitialQuantity: t.InitialQuantity}
	r := inventory.Reconcile(p, t.TotalIn, t.TotalOut)
	return &dto.ReconciliationResponse{
		ProductID:       r.ProductID,
		InitialQuantity: r.InitialQuantity,
		TotalIn:         r.TotalIn,
		TotalOut:        r.TotalOut,
		Expected:        r.Expected,
		Current:         r.Current,
		Consistent:      r.Consistent(),
	}, nil
}

func toMovementFilter(q dto.MovementListQuery) (repository.MovementFilter, error) {
	f := repository.MovementFilter{ProductID: q.ProductID}
	if q.Type != "" {
		t, ok := entity.ParseMovementType(q.Type)
		if !ok {
			return f, fmt.Errorf("tipo %q: %w", q.Type, domain.ErrInvalidInput)
		}
		f.Type = t
	}
	from, err := dto.ParseDateParam(q.StartDate, false)
	if err != nil {
		return f, fmt.Errorf("start_date: %w", domain.ErrInvalidInput)
	}
	to, err := dto.ParseDateParam(q.EndDate, true)
	if err != nil {
		return f, fmt.Errorf("end_date: %w", domain.ErrInvalidInput)
	}
	f.From, f.To = from, to
	return f, nil
}
