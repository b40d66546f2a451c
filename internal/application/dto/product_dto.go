package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Quantity es el stock inicial.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"gte=0,lte=2147483647"`
	MinStock    *int            `json:"min_stock" validate:"omitempty,gte=0,lte=2147483647"`
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,max=255"`
}

// UpdateProductRequest reemplazo administrativo completo (incluye la cantidad).
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"gte=0,lte=2147483647"`
	MinStock    *int            `json:"min_stock" validate:"omitempty,gte=0,lte=2147483647"`
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,max=255"`
}

// ProductListQuery filtros de GET /products/.
type ProductListQuery struct {
	Search     string `query:"search" validate:"max=100"`
	CategoryID string `query:"category_id" validate:"omitempty,uuid"`
	PageRequest
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	InitialQuantity int             `json:"initial_quantity"`
	MinStock        int             `json:"min_stock"`
	CategoryID      *string         `json:"category_id"`
	ImageURL        *string         `json:"image_url"`
	IsLowStock      bool            `json:"is_low_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ImageUploadResponse salida de POST /products/upload-image/{id}.
type ImageUploadResponse struct {
	OriginalFilename string `json:"original_filename"`
	ImageURL         string `json:"image_url"`
}

// ReconciliationResponse conciliación de la cantidad contra el historial.
type ReconciliationResponse struct {
	ProductID       string `json:"product_id"`
	InitialQuantity int    `json:"initial_quantity"`
	TotalIn         int    `json:"total_in"`
	TotalOut        int    `json:"total_out"`
	Expected        int    `json:"expected"`
	Current         int    `json:"current"`
	Consistent      bool   `json:"consistent"`
}

// CategoryRequest alta o modificación de categoría.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
