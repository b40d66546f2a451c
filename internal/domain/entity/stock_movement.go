package entity

import (
	"strings"
	"time"
)

// MovementType dirección de un movimiento de stock.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  MovementType = "IN"  // entrada
	MovementTypeOUT MovementType = "OUT" // salida
)

// ParseMovementType convierte "in"/"IN"/"out"/"OUT" al enum.
func ParseMovementType(s string) (MovementType, bool) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case MovementTypeIN, MovementTypeOUT:
		return t, true
	}
	return "", false
}

// Sign devuelve +1 para entradas y -1 para salidas.
func (t MovementType) Sign() int {
	if t == MovementTypeOUT {
		return -1
	}
	return 1
}

// StockMovement registro inmutable de un cambio de stock. Solo se inserta; nunca se edita ni borra.
// Quantity siempre es positiva; la dirección la da Type.
type StockMovement struct {
	ID        string
	ProductID string
	Type      MovementType
	Quantity  int
	Reason    string
	UserID    *string
	Timestamp time.Time
}
