package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidReference  = errors.New("referencia inexistente")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser mayor que cero")

	ErrUnauthorized    = errors.New("no autorizado")
	ErrInvalidToken    = errors.New("token inválido")
	ErrTokenExpired    = errors.New("token expirado")
	ErrTokenMalformed  = errors.New("token mal formado")
	ErrAccountDisabled = errors.New("cuenta desactivada")
	ErrForbidden       = errors.New("acceso denegado")

	ErrTimeout     = errors.New("tiempo de espera agotado")
	ErrUnavailable = errors.New("servicio no disponible")
)

// InsufficientStockError describe una salida rechazada: cantidad pedida vs disponible.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// CategoryInUseError se devuelve al intentar borrar una categoría con productos asociados.
type CategoryInUseError struct {
	CategoryID string
	Products   int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("no se puede eliminar la categoría: tiene %d productos asociados", e.Products)
}

// Is permite errors.Is(err, ErrConflict).
func (e *CategoryInUseError) Is(target error) bool { return target == ErrConflict }
