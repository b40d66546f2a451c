// Package inventory contiene las reglas puras del libro de stock (sin persistencia).
package inventory

import (
	"math"

	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// MaxQuantity tope de cantidad de un producto o movimiento (columnas INTEGER).
const MaxQuantity = math.MaxInt32

// ApplyMovement calcula la nueva cantidad de un producto tras un movimiento.
// Devuelve ErrInvalidQuantity si quantity <= 0 o si el resultado superaría MaxQuantity,
// e InsufficientStockError si una salida dejaría stock negativo.
func ApplyMovement(current int, t entity.MovementType, quantity int) (int, error) {
	if quantity <= 0 || quantity > MaxQuantity {
		return current, domain.ErrInvalidQuantity
	}
	switch t {
	case entity.MovementTypeIN:
		if current > MaxQuantity-quantity {
			return current, domain.ErrInvalidQuantity
		}
		return current + quantity, nil
	case entity.MovementTypeOUT:
		if current-quantity < 0 {
			return current, &domain.InsufficientStockError{Requested: quantity, Available: current}
		}
		return current - quantity, nil
	}
	return current, domain.ErrInvalidInput
}

// Reconciliation compara la cantidad actual con la línea base más el historial de movimientos.
type Reconciliation struct {
	ProductID       string
	InitialQuantity int
	TotalIn         int
	TotalOut        int
	Expected        int
	Current         int
}

// Consistent indica si quantity == initial + IN - OUT.
func (r Reconciliation) Consistent() bool {
	return r.Expected == r.Current && r.Current >= 0
}

// Reconcile construye la conciliación de un producto.
func Reconcile(p *entity.Product, totalIn, totalOut int) Reconciliation {
	return Reconciliation{
		ProductID:       p.ID,
		InitialQuantity: p.InitialQuantity,
		TotalIn:         totalIn,
		TotalOut:        totalOut,
		Expected:        p.InitialQuantity + totalIn - totalOut,
		Current:         p.Quantity,
	}
}
