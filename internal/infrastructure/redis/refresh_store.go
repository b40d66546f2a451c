package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-manager-api/internal/application/auth"
)

// RefreshStore guarda en refresh_token:<userID> el jti vigente del usuario.
type RefreshStore struct {
	client *redis.Client
}

var _ auth.RefreshStore = (*RefreshStore)(nil)

// NewRefreshStore construye el almacén.
func NewRefreshStore(client *redis.Client) *RefreshStore {
	return &RefreshStore{client: client}
}

// rotateScript compara y sustituye en una sola operación: 1 = rotado, 0 = jti no vigente.
var rotateScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// revokeScript borra la clave solo si el jti coincide.
var revokeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func key(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}

// Save registra jti como vigente (sustituye cualquier sesión previa del usuario).
func (s *RefreshStore) Save(ctx context.Context, userID, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(userID), jti, ttl).Err(); err != nil {
		return fmt.Errorf("redis: guardar refresh: %w", err)
	}
	return nil
}

// Rotate sustituye oldJTI por newJTI; auth.ErrRefreshRevoked si oldJTI no es el vigente.
func (s *RefreshStore) Rotate(ctx context.Context, userID, oldJTI, newJTI string, ttl time.Duration) error {
	n, err := rotateScript.Run(ctx, s.client, []string{key(userID)}, oldJTI, newJTI, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis: rotar refresh: %w", err)
	}
	if n == 0 {
		return auth.ErrRefreshRevoked
	}
	return nil
}

// Revoke invalida jti si sigue vigente. Revocar un jti ya rotado no es un error.
func (s *RefreshStore) Revoke(ctx context.Context, userID, jti string) error {
	err := revokeScript.Run(ctx, s.client, []string{key(userID)}, jti).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: revocar refresh: %w", err)
	}
	return nil
}
