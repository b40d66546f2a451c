package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// ProductFilter filtros y paginación del listado de productos.
type ProductFilter struct {
	Search     string // subcadena del nombre, sin distinguir mayúsculas
	CategoryID string
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// Create devuelve domain.ErrInvalidReference si la categoría no existe.
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando su fila (SELECT ... FOR UPDATE). Solo dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update reemplaza el registro completo, incluida la cantidad (override administrativo).
	Update(ctx context.Context, product *entity.Product) error
	// UpdateQuantity es de uso exclusivo del motor de movimientos.
	UpdateQuantity(ctx context.Context, id string, quantity int, at time.Time) error
	SetImage(ctx context.Context, id, imageURL string) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// ListLowStock devuelve quantity < threshold, o quantity < min_stock si threshold es nil.
	ListLowStock(ctx context.Context, threshold *int) ([]*entity.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	Delete(ctx context.Context, id string) error
}
