package dto

import "time"

// RegisterMovementRequest body para POST /movements/. La cantidad la valida el motor (<= 0 es 400).
type RegisterMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason" validate:"max=255"`
}

// MovementListQuery filtros de GET /movements/ y /movements/history.
type MovementListQuery struct {
	ProductID string `query:"product_id" validate:"omitempty,uuid"`
	Type      string `query:"type" validate:"omitempty,oneof=IN OUT in out"`
	StartDate string `query:"start_date"` // RFC3339 o YYYY-MM-DD
	EndDate   string `query:"end_date"`
	PageRequest
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	UserID    *string   `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MovementStatsResponse totales de GET /movements/stats (cantidades, no registros).
type MovementStatsResponse struct {
	TotalProducts int `json:"total_products"`
	TotalStock    int `json:"total_stock"`
	TotalEntries  int `json:"total_entries"`
	TotalExits    int `json:"total_exits"`
}
