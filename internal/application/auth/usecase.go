package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
	"github.com/jhoicas/stock-manager-api/pkg/jwt"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
	"github.com/jhoicas/stock-manager-api/pkg/security"
)

// AuthUseCase login, rotación de tokens y resolución de identidad desde un bearer token.
type AuthUseCase struct {
	userRepo repository.UserRepository
	tokens   TokenService
	hasher   PasswordHasher
	refresh  RefreshStore // nil = sin revocación (tokens sin estado)
	audit    audit.Sink
	log      *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase construye el caso de uso de auth. refresh puede ser nil.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	tokens TokenService,
	hasher PasswordHasher,
	refresh RefreshStore,
	auditSink audit.Sink,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		refresh:  refresh,
		audit:    auditSink,
		log:      log.Component("auth"),
	}
}

// Login verifica usuario/contraseña y emite un par access+refresh.
// Usuario inexistente y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.verifyDummy(in.Password)
		return nil, domain.ErrUnauthorized
	}

	mode, err := uc.hasher.Verify(user.PasswordHash, in.Password)
	if err != nil {
		if errors.Is(err, security.ErrUnsupportedHash) {
			uc.log.Warn().Str("user_id", user.ID).Str("hash_mode", string(mode)).Msg("hash de contraseña no soportado")
		}
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	if uc.hasher.NeedsRehash(mode) {
		uc.log.Warn().Str("user_id", user.ID).Str("hash_mode", string(mode)).Msg("login con hash heredado, migrando a bcrypt")
		uc.upgradeHash(ctx, user.ID, in.Password)
	}

	if err := uc.userRepo.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo actualizar last_login")
	}

	resp, err := uc.issue(ctx, user, "")
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(user.ID, "login", "user", user.ID, ""))
	return resp, nil
}

// verifyDummy hace el mismo trabajo de bcrypt que un login real cuando el usuario no existe.
func (uc *AuthUseCase) verifyDummy(password string) {
	uc.dummyOnce.Do(func() {
		hash, err := uc.hasher.Hash("usuario-inexistente")
		if err != nil {
			uc.log.Error().Err(err).Msg("no se pudo generar el hash de referencia")
			return
		}
		uc.dummyHash = hash
	})
	_, _ = uc.hasher.Verify(uc.dummyHash, password)
}

func (uc *AuthUseCase) upgradeHash(ctx context.Context, userID, password string) {
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("no se pudo generar el hash bcrypt")
		return
	}
	if err := uc.userRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("no se pudo guardar el hash migrado")
	}
}

// Refresh valida el refresh token (firma, expiración y type=refresh) y emite un par nuevo.
// Con RefreshStore el token anterior queda invalidado (rotación).
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := uc.tokens.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return uc.issue(ctx, user, claims.ID)
}

// issue emite el par y registra el jti. previousJTI vacío = login.
func (uc *AuthUseCase) issue(ctx context.Context, user *entity.User, previousJTI string) (*dto.TokenResponse, error) {
	pair, err := uc.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("emitir tokens: %w", err)
	}
	if uc.refresh != nil {
		ttl := time.Until(pair.RefreshExpiresAt)
		if previousJTI == "" {
			err = uc.refresh.Save(ctx, user.ID, pair.RefreshID, ttl)
		} else {
			err = uc.refresh.Rotate(ctx, user.ID, previousJTI, pair.RefreshID, ttl)
		}
		if err != nil {
			if errors.Is(err, ErrRefreshRevoked) {
				uc.log.Warn().Str("user_id", user.ID).Msg("refresh token reutilizado o revocado")
				return nil, domain.ErrInvalidToken
			}
			return nil, fmt.Errorf("%w: refresh store: %w", domain.ErrUnavailable, err)
		}
	}
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(uc.tokens.AccessTTL().Seconds()),
	}, nil
}

// Logout revoca el refresh token del usuario. Sin RefreshStore no hay estado que revocar.
func (uc *AuthUseCase) Logout(ctx context.Context, userID, refreshToken string) error {
	claims, err := uc.tokens.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if claims.UserID != userID {
		return domain.ErrForbidden
	}
	if uc.refresh != nil {
		if err := uc.refresh.Revoke(ctx, userID, claims.ID); err != nil {
			return fmt.Errorf("%w: refresh store: %w", domain.ErrUnavailable, err)
		}
	}
	uc.audit.Record(ctx, audit.Entry(userID, "logout", "user", userID, ""))
	return nil
}

// Authenticate resuelve el usuario vivo detrás de un access token.
//   - sin token: ErrUnauthorized
//   - firma inválida: ErrUnauthorized; expirado: ErrTokenExpired
//   - sin sub/user_id: ErrTokenMalformed; token de refresh: ErrInvalidToken
//   - usuario desactivado: ErrAccountDisabled
func (uc *AuthUseCase) Authenticate(ctx context.Context, rawToken string) (*entity.User, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := uc.tokens.Parse(rawToken, jwt.TypeAccess)
	if err != nil {
		return nil, mapTokenError(err)
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	// sub debe seguir siendo el username de ese usuario; un cambio de username invalida sus tokens.
	if user == nil || user.Username != claims.Subject {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}

// Me perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.ToUserResponse(user)
	return &out, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrMalformed):
		return domain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrWrongType):
		return domain.ErrInvalidToken
	default:
		return domain.ErrUnauthorized
	}
}
