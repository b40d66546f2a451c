package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-manager-api/pkg/jwt"
	"github.com/jhoicas/stock-manager-api/pkg/security"
)

// TokenService emisión y validación de tokens firmados.
type TokenService interface {
	IssuePair(userID, username string) (jwt.Pair, error)
	Parse(token string, expected jwt.TokenType) (*jwt.Claims, error)
	AccessTTL() time.Duration
}

// PasswordHasher hash y verificación de contraseñas.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (security.HashMode, error)
	NeedsRehash(mode security.HashMode) bool
}

// ErrRefreshRevoked el jti presentado no es el vigente (rotado, revocado o reutilizado).
var ErrRefreshRevoked = errors.New("refresh token revocado")

// RefreshStore guarda el jti de refresh vigente por usuario.
type RefreshStore interface {
	Save(ctx context.Context, userID, jti string, ttl time.Duration) error
	// Rotate sustituye oldJTI por newJTI de forma atómica; ErrRefreshRevoked si oldJTI no es el vigente.
	Rotate(ctx context.Context, userID, oldJTI, newJTI string, ttl time.Duration) error
	Revoke(ctx context.Context, userID, jti string) error
}
