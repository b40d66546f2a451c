package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// MovementFilter filtros de lectura sobre el log de movimientos (solo lectura, append-only).
type MovementFilter struct {
	ProductID string
	Type      entity.MovementType
	From      *time.Time
	To        *time.Time
	Limit     int  // 0 = sin límite
	Offset    int
	Ascending bool // por defecto timestamp DESC
}

// LedgerTotals cantidad actual, línea base y sumas de movimientos de un producto,
// leídas en una misma instantánea.
type LedgerTotals struct {
	ProductID       string
	Quantity        int
	InitialQuantity int
	TotalIn         int
	TotalOut        int
}

// StockMovementRepository define el puerto de persistencia para movimientos de stock.
// No hay Update ni Delete: los movimientos son inmutables.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// SumByProduct devuelve la suma de cantidades IN y OUT de un producto.
	SumByProduct(ctx context.Context, productID string) (totalIn, totalOut int, err error)
	// LedgerTotals lee producto y sumas en una sola sentencia. Devuelve nil si el producto no existe.
	LedgerTotals(ctx context.Context, productID string) (*LedgerTotals, error)
}
