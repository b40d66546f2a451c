package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/application/inventory"
	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	apphttp "github.com/jhoicas/stock-manager-api/internal/interfaces/http"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
)

const (
	cafeID = "10000000-0000-0000-0000-000000000001"
	teID   = "10000000-0000-0000-0000-000000000002"
)

type routerEnv struct {
	*authEnv
	app *fiber.App
	inv *memInventory
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	e := newAuthEnv(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	inv := newMemInventory(
		&entity.Product{ID: cafeID, Name: "Café molido", Price: decimal.RequireFromString("12.50"),
			Quantity: 10, InitialQuantity: 10, MinStock: 5, CreatedAt: now, UpdatedAt: now},
		&entity.Product{ID: teID, Name: "Té verde", Price: decimal.RequireFromString("4"),
			Quantity: 2, InitialQuantity: 2, MinStock: 5, CreatedAt: now, UpdatedAt: now},
	)
	products := &memProducts{inv: inv}
	movements := &memMovements{inv: inv}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:           e.authUC,
		ProductUC:        usecase.NewProductUseCase(products, nil, inv, nil, audit.Discard{}),
		RegisterMovement: inventory.NewRegisterMovementUseCase(inv, nil, audit.Discard{}, logger.Nop()),
		MovementQuery:    inventory.NewMovementQueryUseCase(movements, nil),
		LowStock:         inventory.NewLowStockUseCase(products, e.users, nil, logger.Nop()),
		ReportUC:         usecase.NewReportUseCase(nil, products, movements),
	})
	return &routerEnv{authEnv: e, app: app, inv: inv}
}

func (e *routerEnv) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRouter_LecturaDeProductosEsPublica(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodGet, "/products/?search="+url.QueryEscape("CAFÉ"), "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []dto.ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "Café molido", out[0].Name)
	assert.True(t, out[0].Price.Equal(decimal.RequireFromString("12.5")))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_ProductoInexistente404(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodGet, "/products/"+"20000000-0000-0000-0000-000000000000", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestRouter_Autorizacion(t *testing.T) {
	e := newRouterEnv(t)
	movement := dto.RegisterMovementRequest{ProductID: cafeID, Type: "IN", Quantity: 1}
	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		want   int
	}{
		{"movimiento sin token", http.MethodPost, "/movements/", "", movement, http.StatusUnauthorized},
		{"movimiento como viewer", http.MethodPost, "/movements/", viewerID, movement, http.StatusForbidden},
		{"usuarios como manager", http.MethodGet, "/users/", managerID, nil, http.StatusForbidden},
		{"borrar producto como manager", http.MethodDelete, "/products/" + cafeID, managerID, nil, http.StatusForbidden},
		{"crear producto como viewer", http.MethodPost, "/products/", viewerID, dto.CreateProductRequest{Name: "x"}, http.StatusForbidden},
		{"categorías sin token", http.MethodGet, "/categories/", "", nil, http.StatusUnauthorized},
		{"reportes sin token", http.MethodGet, "/reports/dashboard", "", nil, http.StatusUnauthorized},
		{"ajuste como manager", http.MethodPut, "/settings/company_name", managerID, dto.UpdateSettingRequest{Value: "x"}, http.StatusForbidden},
		{"historial público", http.MethodGet, "/movements/history", "", nil, http.StatusOK},
		{"stock bajo público", http.MethodGet, "/dashboard/low-stock", "", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := ""
			if tt.user != "" {
				header = e.bearer(t, tt.user)
			}
			resp := e.do(t, tt.method, tt.path, header, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRouter_RegistrarMovimiento(t *testing.T) {
	e := newRouterEnv(t)
	manager := e.bearer(t, managerID)

	resp := e.do(t, http.MethodPost, "/movements/", manager,
		dto.RegisterMovementRequest{ProductID: cafeID, Type: "out", Quantity: 4, Reason: "venta"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var mov dto.MovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mov))
	assert.Equal(t, "OUT", mov.Type)
	assert.Equal(t, 4, mov.Quantity)
	require.NotNil(t, mov.UserID)
	assert.Equal(t, managerID, *mov.UserID)
	assert.Equal(t, 6, e.inv.quantity(cafeID))
}

func TestRouter_SalidaMayorAlStockNoCambiaNada(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodPost, "/movements/", e.bearer(t, managerID),
		dto.RegisterMovementRequest{ProductID: teID, Type: "OUT", Quantity: 3})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Contains(t, body.Message, "solicitado 3, disponible 2")
	assert.Equal(t, 2, e.inv.quantity(teID))
	assert.Empty(t, e.inv.movements)
}

func TestRouter_MovimientoErroresDeEntrada(t *testing.T) {
	e := newRouterEnv(t)
	manager := e.bearer(t, managerID)
	tests := []struct {
		name string
		body any
		want int
		code string
	}{
		{"producto inexistente", dto.RegisterMovementRequest{ProductID: "20000000-0000-0000-0000-000000000000", Type: "IN", Quantity: 1}, http.StatusNotFound, "NOT_FOUND"},
		{"cantidad cero", dto.RegisterMovementRequest{ProductID: cafeID, Type: "IN", Quantity: 0}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"cantidad fuera de rango", dto.RegisterMovementRequest{ProductID: cafeID, Type: "IN", Quantity: 1 << 31}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"tipo desconocido", dto.RegisterMovementRequest{ProductID: cafeID, Type: "MOVE", Quantity: 1}, http.StatusBadRequest, "INVALID_INPUT"},
		{"sin producto", dto.RegisterMovementRequest{Type: "IN", Quantity: 1}, http.StatusUnprocessableEntity, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.do(t, http.MethodPost, "/movements/", manager, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, resp))
		})
	}
	assert.Equal(t, 10, e.inv.quantity(cafeID))
}

func TestRouter_ValidacionDevuelveCampos(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodPost, "/products/", e.bearer(t, managerID),
		map[string]any{"name": "", "price": "-1", "quantity": 3})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "required", body.Fields["name"])
	assert.Equal(t, "gte", body.Fields["price"])
}

func TestRouter_CantidadDeProductoFueraDeRango(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodPost, "/products/", e.bearer(t, managerID),
		map[string]any{"name": "Azúcar", "price": "2", "quantity": int64(1) << 31})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "lte", body.Fields["quantity"])
}

func TestRouter_ConciliacionTrasMovimientos(t *testing.T) {
	e := newRouterEnv(t)
	manager := e.bearer(t, managerID)
	for _, m := range []dto.RegisterMovementRequest{
		{ProductID: cafeID, Type: "IN", Quantity: 5},
		{ProductID: cafeID, Type: "OUT", Quantity: 7},
	} {
		resp := e.do(t, http.MethodPost, "/movements/", manager, m)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := e.do(t, http.MethodGet, "/products/"+cafeID+"/reconcile", manager, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec dto.ReconciliationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.True(t, rec.Consistent)
	assert.Equal(t, 8, rec.Current)
	assert.Equal(t, 10, rec.InitialQuantity)
	assert.Equal(t, 5, rec.TotalIn)
	assert.Equal(t, 7, rec.TotalOut)
}

func TestRouter_LoginFormularioYPerfil(t *testing.T) {
	e := newRouterEnv(t)
	form := url.Values{"username": {"manager"}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens dto.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, 1800, tokens.ExpiresIn)
	require.NotEmpty(t, tokens.RefreshToken)

	me := e.do(t, http.MethodGet, "/auth/me", "Bearer "+tokens.AccessToken, nil)
	defer me.Body.Close()
	require.Equal(t, http.StatusOK, me.StatusCode)
	var profile dto.UserResponse
	require.NoError(t, json.NewDecoder(me.Body).Decode(&profile))
	assert.Equal(t, "manager", profile.Username)
	assert.Equal(t, "MANAGER", profile.Role)
}

func TestRouter_LoginNoDistingueUsuarioDeContrasena(t *testing.T) {
	e := newRouterEnv(t)
	unknown := e.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "nadie", Password: testPassword})
	defer unknown.Body.Close()
	wrong := e.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "admin", Password: "incorrecta"})
	defer wrong.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
	a, _ := io.ReadAll(unknown.Body)
	b, _ := io.ReadAll(wrong.Body)
	assert.JSONEq(t, string(a), string(b))
}

func TestRouter_RefreshConAccessToken400(t *testing.T) {
	e := newRouterEnv(t)
	pair, err := e.tokens.IssuePair(adminID, "admin")
	require.NoError(t, err)

	resp := e.do(t, http.MethodPost, "/auth/refresh", "", dto.RefreshRequest{RefreshToken: pair.AccessToken})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

func TestRouter_ExportarCSVEnWindows1252(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodGet, "/dashboard/export/products?charset=windows-1252", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=windows-1252", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "products.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("ID,Name,Description,Price")))
	assert.True(t, bytes.Contains(raw, []byte("Caf\xe9 molido")), "é se codifica como 0xE9")
	assert.True(t, bytes.Contains(raw, []byte(",12.50,10,5,")))
}

func TestRouter_ExportarCSVCharsetDesconocido(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodGet, "/dashboard/export/products?charset=latin9", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CHARSET", errorCode(t, resp))
}

func TestRouter_NotificarStockBajo(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodGet, "/dashboard/notify/low-stock", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LowStockNotifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"Té verde"}, out.LowStockProducts)

	bad := e.do(t, http.MethodGet, "/dashboard/notify/low-stock?threshold=muchos", "", nil)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestRouter_RutaInexistente(t *testing.T) {
	e := newRouterEnv(t)
	resp := e.do(t, http.MethodGet, "/no-existe", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}
