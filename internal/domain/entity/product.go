package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// Quantity es la fuente de verdad del stock actual y solo la modifica el motor de movimientos
// (salvo en la creación y en la actualización administrativa completa).
// InitialQuantity es la línea base contra la que se concilia el historial de movimientos.
type Product struct {
	ID              string
	Name            string
	Description     string
	Price           decimal.Decimal
	Quantity        int
	InitialQuantity int
	MinStock        int
	CategoryID      *string
	ImageURL        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si la cantidad está por debajo del umbral mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.Quantity < p.MinStock
}
