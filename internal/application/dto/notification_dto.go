package dto

import "time"

// NotificationResponse salida de una notificación.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationListQuery GET /notifications/.
type NotificationListQuery struct {
	UnreadOnly bool `query:"unread_only"`
	PageRequest
}

// SettingResponse par clave/valor.
type SettingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateSettingRequest body de PUT /settings/{key}.
type UpdateSettingRequest struct {
	Value       string  `json:"value" validate:"max=500"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}
