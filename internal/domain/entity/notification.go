package entity

import "time"

// Tipos y prioridades de notificación.
const (
	NotificationInfo    = "INFO"
	NotificationWarning = "WARNING"
	NotificationAlert   = "ALERT"
	NotificationSuccess = "SUCCESS"

	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
)

// Notification aviso dirigido a un usuario (ej. stock bajo).
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      string
	Priority  string
	IsRead    bool
	CreatedAt time.Time
}
