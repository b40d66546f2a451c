package entity

import (
	"strings"
	"time"
)

// Role es el rol de un usuario. Conjunto cerrado: ADMIN, MANAGER, VIEWER.
type Role string

// Roles válidos para User.
const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleViewer  Role = "VIEWER"
)

// Rank devuelve el nivel de privilegio del rol (mayor = más privilegios). 0 si el rol no es válido.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Valid indica si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool { return r.Rank() > 0 }

// AtLeast indica si el rol tiene al menos los privilegios de min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// ParseRole convierte la representación externa (se aceptan minúsculas) al enum.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// User representa un usuario del sistema. Nunca se borra: solo se desactiva.
type User struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	PasswordHash string // bcrypt (o SHA-256 heredado), nunca la contraseña en claro
	Role         Role
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
