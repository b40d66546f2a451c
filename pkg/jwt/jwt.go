package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distingue tokens de acceso y de refresco; uno no sirve como el otro.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

var (
	// ErrSignature token ilegible, firma incorrecta o algoritmo distinto de HS256.
	ErrSignature = errors.New("jwt: firma inválida")
	// ErrExpired token con exp vencido.
	ErrExpired = errors.New("jwt: token expirado")
	// ErrMalformed faltan los claims sub o user_id.
	ErrMalformed = errors.New("jwt: claims incompletos")
	// ErrWrongType el claim type no coincide con el esperado.
	ErrWrongType = errors.New("jwt: tipo de token incorrecto")
)

// Claims claims estándar más los propios: sub = username, jti = identificador único del token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"user_id"`
	Type   TokenType `json:"type"`
}

// Pair par emitido en login y refresh.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	RefreshID        string
	RefreshExpiresAt time.Time
}

// Manager firma y valida tokens HS256 con un secreto compartido.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager crea el gestor de tokens. El secreto es obligatorio.
func NewManager(secret, issuer string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock reemplaza el reloj (tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

// AccessTTL duración del token de acceso.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// IssuePair genera un token de acceso y uno de refresco para el usuario.
func (m *Manager) IssuePair(userID, username string) (Pair, error) {
	access, _, _, err := m.Generate(TypeAccess, userID, username)
	if err != nil {
		return Pair{}, err
	}
	refresh, jti, exp, err := m.Generate(TypeRefresh, userID, username)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh, RefreshID: jti, RefreshExpiresAt: exp}, nil
}

// Generate firma un token del tipo indicado y devuelve también su jti y su expiración.
func (m *Manager) Generate(typ TokenType, userID, username string) (token, jti string, expiresAt time.Time, err error) {
	ttl := m.accessTTL
	if typ == TypeRefresh {
		ttl = m.refreshTTL
	}
	now := m.now()
	expiresAt = now.Add(ttl)
	jti = uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Type:   typ,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("jwt: firmar token: %w", err)
	}
	return token, jti, expiresAt, nil
}

// Parse valida firma, expiración y tipo. Los errores devueltos son siempre uno de los Err* del paquete.
func (m *Manager) Parse(tokenString string, expected TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrSignature
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, ErrMalformed
	}
	if claims.Type != expected {
		return nil, ErrWrongType
	}
	return claims, nil
}
