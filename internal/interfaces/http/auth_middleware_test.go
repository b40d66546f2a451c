package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/auth"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	apphttp "github.com/jhoicas/stock-manager-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-manager-api/pkg/jwt"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
	"github.com/jhoicas/stock-manager-api/pkg/security"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "stock-manager-test"
	testPassword  = "secret123"

	adminID    = "00000000-0000-0000-0000-000000000001"
	managerID  = "00000000-0000-0000-0000-000000000002"
	viewerID   = "00000000-0000-0000-0000-000000000003"
	inactiveID = "00000000-0000-0000-0000-000000000004"
)

type authEnv struct {
	tokens *pkgjwt.Manager
	users  *memUsers
	authUC *auth.AuthUseCase
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	mgr, err := pkgjwt.NewManager(testJWTSecret, testIssuer, 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	hasher, err := security.NewPasswordHasher(4, false)
	require.NoError(t, err)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	user := func(id, username string, role entity.Role, active bool) *entity.User {
		return &entity.User{
			ID: id, Username: username, Email: username + "@example.com",
			PasswordHash: hash, Role: role, IsActive: active,
		}
	}
	users := newMemUsers(
		user(adminID, "admin", entity.RoleAdmin, true),
		user(managerID, "manager", entity.RoleManager, true),
		user(viewerID, "viewer", entity.RoleViewer, true),
		user(inactiveID, "former", entity.RoleManager, false),
	)
	return &authEnv{
		tokens: mgr,
		users:  users,
		authUC: auth.NewAuthUseCase(users, mgr, hasher, nil, audit.Discard{}, logger.Nop()),
	}
}

// bearer genera el header Authorization para el usuario indicado.
func (e *authEnv) bearer(t *testing.T, userID string) string {
	t.Helper()
	u, err := e.users.GetByID(t.Context(), userID)
	require.NoError(t, err)
	require.NotNil(t, u)
	pair, err := e.tokens.IssuePair(u.ID, u.Username)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + pair.AccessToken
}

// buildTestApp aplicación Fiber mínima con AuthMiddleware + RequireRole y un handler dummy.
func buildTestApp(e *authEnv, min entity.Role) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Get("/protected",
		apphttp.AuthMiddleware(e.authUC),
		apphttp.RequireRole(min),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Jerarquia(t *testing.T) {
	e := newAuthEnv(t)
	tests := []struct {
		name   string
		min    entity.Role
		userID string
		want   int
	}{
		{"admin en ruta de admin", entity.RoleAdmin, adminID, http.StatusOK},
		{"admin en ruta de manager", entity.RoleManager, adminID, http.StatusOK},
		{"manager en ruta de manager", entity.RoleManager, managerID, http.StatusOK},
		{"manager en ruta de admin", entity.RoleAdmin, managerID, http.StatusForbidden},
		{"viewer en ruta de manager", entity.RoleManager, viewerID, http.StatusForbidden},
		{"viewer en ruta de viewer", entity.RoleViewer, viewerID, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, buildTestApp(e, tt.min), e.bearer(t, tt.userID))
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
			}
		})
	}
}

func TestRequireRole_SinAuthMiddleware_Retorna401(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", apphttp.RequireRole(entity.RoleViewer), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_Rechazos(t *testing.T) {
	e := newAuthEnv(t)

	expired, _, _, err := e.tokens.
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Generate(pkgjwt.TypeAccess, adminID, "admin")
	require.NoError(t, err)
	malformed, _, _, err := e.tokens.Generate(pkgjwt.TypeAccess, "", "admin")
	require.NoError(t, err)
	pair, err := e.tokens.IssuePair(adminID, "admin")
	require.NoError(t, err)
	foreign, err := pkgjwt.NewManager("otro-secret-completamente-distinto", testIssuer, time.Hour, time.Hour)
	require.NoError(t, err)
	forged, _, _, err := foreign.Generate(pkgjwt.TypeAccess, adminID, "admin")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"sin esquema Bearer", "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firma de otro secreto", "Bearer " + forged, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"basura", "Bearer token.invalido.aqui", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expirado", "Bearer " + expired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"sin user_id", "Bearer " + malformed, http.StatusBadRequest, "INVALID_TOKEN"},
		{"refresh como access", "Bearer " + pair.RefreshToken, http.StatusBadRequest, "INVALID_TOKEN"},
		{"usuario desactivado", e.bearer(t, inactiveID), http.StatusBadRequest, "ACCOUNT_DISABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, buildTestApp(e, entity.RoleViewer), tt.header)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantBody, errorCode(t, resp))
		})
	}
}

func TestAuthMiddleware_UsuarioBorradoTrasEmitirToken(t *testing.T) {
	e := newAuthEnv(t)
	header := e.bearer(t, viewerID)
	delete(e.users.byID, viewerID)

	resp := doRequest(t, buildTestApp(e, entity.RoleViewer), header)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeUsuario(t *testing.T) {
	e := newAuthEnv(t)
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(e.authUC), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  apphttp.GetUserID(c),
			"username": apphttp.GetUsername(c),
			"role":     apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", e.bearer(t, managerID))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, managerID, body["user_id"])
	assert.Equal(t, "manager", body["username"])
	assert.Equal(t, "MANAGER", body["role"], "el rol sale del usuario persistido")
}

func TestAuthMiddleware_RolActualizadoSinReemitirToken(t *testing.T) {
	e := newAuthEnv(t)
	header := e.bearer(t, managerID)
	e.users.byID[managerID].Role = entity.RoleViewer

	resp := doRequest(t, buildTestApp(e, entity.RoleManager), header)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
