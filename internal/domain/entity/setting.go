package entity

import "time"

// SystemSetting par clave/valor de configuración funcional editable por un admin.
type SystemSetting struct {
	Key         string
	Value       string
	Description string
	UpdatedAt   time.Time
}
