package entity

import "time"

// AuditLog registro de una operación de escritura (quién, qué, desde dónde).
type AuditLog struct {
	ID           string
	UserID       *string
	Action       string // create_product, record_movement, deactivate_user, ...
	ResourceType string // product, movement, user, category, setting
	ResourceID   string
	Details      string
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
}
