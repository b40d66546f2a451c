package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, COALESCE(product_id::text, ''), type, quantity, reason, user_id, timestamp`

// StockMovementRepo log append-only de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row rowScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var t string
	if err := row.Scan(&m.ID, &m.ProductID, &t, &m.Quantity, &m.Reason, &m.UserID, &m.Timestamp); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(t)
	return &m, nil
}

// Create inserta un movimiento. No existe Update ni Delete.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, type, quantity, reason, user_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.ProductID, string(m.Type), m.Quantity, m.Reason, m.UserID, m.Timestamp,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidReference
		}
		return wrapErr("insert stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get stock movement", err)
	}
	return m, nil
}

// List filtra por producto, tipo y fechas. Orden por timestamp (y secuencia de inserción).
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		if _, err := uuid.Parse(f.ProductID); err != nil {
			return []*entity.StockMovement{}, nil
		}
		add(`product_id = $%d`, f.ProductID)
	}
	if f.Type != "" {
		add(`type = $%d`, string(f.Type))
	}
	if f.From != nil {
		add(`timestamp >= $%d`, *f.From)
	}
	if f.To != nil {
		add(`timestamp <= $%d`, *f.To)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Ascending {
		query += ` ORDER BY timestamp ASC, seq ASC`
	} else {
		query += ` ORDER BY timestamp DESC, seq DESC`
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, wrapErr("scan stock movement", err)
		}
		list = append(list, m)
	}
	return list, wrapErr("list stock movements", rows.Err())
}

// SumByProduct suma de cantidades IN y OUT de un producto.
func (r *StockMovementRepo) SumByProduct(ctx context.Context, productID string) (int, int, error) {
	var in, out int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)
		FROM stock_movements WHERE product_id = $1`, productID,
	).Scan(&in, &out)
	if err != nil {
		return 0, 0, wrapErr("sum stock movements", err)
	}
	return in, out, nil
}

// LedgerTotals une producto y movimientos en una única consulta para que la conciliación
// vea un estado coherente aunque haya movimientos concurrentes.
func (r *StockMovementRepo) LedgerTotals(ctx context.Context, productID string) (*repository.LedgerTotals, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, nil
	}
	t := repository.LedgerTotals{ProductID: productID}
	err := r.q.QueryRow(ctx, `
		SELECT p.quantity, p.initial_quantity,
		       COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'IN'), 0),
		       COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'OUT'), 0)
		FROM products p
		LEFT JOIN stock_movements m ON m.product_id = p.id
		WHERE p.id = $1
		GROUP BY p.id, p.quantity, p.initial_quantity`, productID,
	).Scan(&t.Quantity, &t.InitialQuantity, &t.TotalIn, &t.TotalOut)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("ledger totals", err)
	}
	return &t, nil
}
