package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryTotals totales globales del inventario.
type InventoryTotals struct {
	TotalProducts   int
	TotalStock      int
	TotalStockValue decimal.Decimal // SUM(price * quantity)
	LowStockCount   int             // quantity < min_stock
}

// MovementTotals totales de movimientos en un rango (cantidades y número de registros).
type MovementTotals struct {
	EntriesQty   int
	ExitsQty     int
	EntriesCount int
	ExitsCount   int
}

// CategoryValueResult valor del stock agrupado por categoría.
type CategoryValueResult struct {
	CategoryID   string
	CategoryName string
	Value        decimal.Decimal
}

// MovementBucket entradas/salidas agregadas por periodo (día, semana ISO o mes).
type MovementBucket struct {
	Period  string
	Entries int
	Exits   int
}

// ProductPerformanceResult rotación de un producto en una ventana de tiempo.
type ProductPerformanceResult struct {
	ProductID    string
	ProductName  string
	CurrentStock int
	Entries      int
	Exits        int
}

// AnalyticsRepository consultas de solo lectura para dashboard y reportes.
// Lee el libro de stock pero nunca lo modifica.
type AnalyticsRepository interface {
	GetInventoryTotals(ctx context.Context) (InventoryTotals, error)
	GetMovementTotals(ctx context.Context, from, to *time.Time) (MovementTotals, error)
	GetStockValueByCategory(ctx context.Context) ([]CategoryValueResult, error)
	// GetMovementBuckets agrupa por period: "day" | "week" | "month".
	GetMovementBuckets(ctx context.Context, period string, from, to *time.Time) ([]MovementBucket, error)
	GetProductPerformance(ctx context.Context, since time.Time) ([]ProductPerformanceResult, error)
}
