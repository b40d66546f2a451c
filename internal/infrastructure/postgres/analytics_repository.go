package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para dashboard y reportes.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// periodFormats formato to_char por periodo (semana ISO para "week").
var periodFormats = map[string]string{
	"day":   `YYYY-MM-DD`,
	"week":  `IYYY-"W"IW`,
	"month": `YYYY-MM`,
}

// GetInventoryTotals productos, unidades, valor (price × quantity) y productos bajo mínimo.
func (r *AnalyticsRepo) GetInventoryTotals(ctx context.Context) (repository.InventoryTotals, error) {
	var t repository.InventoryTotals
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(price * quantity), 0),
		       COUNT(*) FILTER (WHERE quantity < min_stock)
		FROM products`,
	).Scan(&t.TotalProducts, &t.TotalStock, &t.TotalStockValue, &t.LowStockCount)
	if err != nil {
		return t, wrapErr("analytics.GetInventoryTotals", err)
	}
	return t, nil
}

// GetMovementTotals cantidades y número de registros IN/OUT en el rango (extremos opcionales).
func (r *AnalyticsRepo) GetMovementTotals(ctx context.Context, from, to *time.Time) (repository.MovementTotals, error) {
	var t repository.MovementTotals
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0),
		       COUNT(*) FILTER (WHERE type = 'IN'),
		       COUNT(*) FILTER (WHERE type = 'OUT')
		FROM stock_movements
		WHERE ($1::timestamptz IS NULL OR timestamp >= $1)
		  AND ($2::timestamptz IS NULL OR timestamp <= $2)`, from, to,
	).Scan(&t.EntriesQty, &t.ExitsQty, &t.EntriesCount, &t.ExitsCount)
	if err != nil {
		return t, wrapErr("analytics.GetMovementTotals", err)
	}
	return t, nil
}

// GetStockValueByCategory valor del stock agrupado por categoría (solo productos categorizados).
func (r *AnalyticsRepo) GetStockValueByCategory(ctx context.Context) ([]repository.CategoryValueResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.name, COALESCE(SUM(p.price * p.quantity), 0) AS value
		FROM product_categories c
		JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY value DESC, c.name`)
	if err != nil {
		return nil, wrapErr("analytics.GetStockValueByCategory", err)
	}
	defer rows.Close()
	results := make([]repository.CategoryValueResult, 0)
	for rows.Next() {
		var row repository.CategoryValueResult
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.Value); err != nil {
			return nil, wrapErr("analytics.GetStockValueByCategory scan", err)
		}
		results = append(results, row)
	}
	return results, wrapErr("analytics.GetStockValueByCategory", rows.Err())
}

// GetMovementBuckets entradas y salidas (cantidades) agrupadas por día, semana ISO o mes, en UTC.
func (r *AnalyticsRepo) GetMovementBuckets(ctx context.Context, period string, from, to *time.Time) ([]repository.MovementBucket, error) {
	format, ok := periodFormats[period]
	if !ok {
		return nil, fmt.Errorf("periodo %q: %w", period, domain.ErrInvalidInput)
	}
	rows, err := r.q.Query(ctx, `
		SELECT to_char(timestamp AT TIME ZONE 'UTC', $1) AS bucket,
		       COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)
		FROM stock_movements
		WHERE ($2::timestamptz IS NULL OR timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR timestamp <= $3)
		GROUP BY bucket
		ORDER BY bucket`, format, from, to)
	if err != nil {
		return nil, wrapErr("analytics.GetMovementBuckets", err)
	}
	defer rows.Close()
	results := make([]repository.MovementBucket, 0)
	for rows.Next() {
		var b repository.MovementBucket
		if err := rows.Scan(&b.Period, &b.Entries, &b.Exits); err != nil {
			return nil, wrapErr("analytics.GetMovementBuckets scan", err)
		}
		results = append(results, b)
	}
	return results, wrapErr("analytics.GetMovementBuckets", rows.Err())
}

// GetProductPerformance entradas y salidas por producto desde since (productos sin movimientos incluidos).
func (r *AnalyticsRepo) GetProductPerformance(ctx context.Context, since time.Time) ([]repository.ProductPerformanceResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.quantity,
		       COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'IN'), 0),
		       COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'OUT'), 0)
		FROM products p
		LEFT JOIN stock_movements m ON m.product_id = p.id AND m.timestamp >= $1
		GROUP BY p.id, p.name, p.quantity
		ORDER BY p.name`, since)
	if err != nil {
		return nil, wrapErr("analytics.GetProductPerformance", err)
	}
	defer rows.Close()
	results := make([]repository.ProductPerformanceResult, 0)
	for rows.Next() {
		var p repository.ProductPerformanceResult
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.CurrentStock, &p.Entries, &p.Exits); err != nil {
			return nil, wrapErr("analytics.GetProductPerformance scan", err)
		}
		results = append(results, p)
	}
	return results, wrapErr("analytics.GetProductPerformance", rows.Err())
}
