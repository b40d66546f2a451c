package inventory

import (
	"context"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Es la garantía de atomicidad del motor.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// MovementMetrics contadores del motor de movimientos.
type MovementMetrics interface {
	MovementRecorded(t entity.MovementType, quantity int)
	MovementRejected(reason string)
}

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(entity.MovementType, int) {}
func (noopMetrics) MovementRejected(string)                   {}
