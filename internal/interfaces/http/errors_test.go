package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
)

func respond(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, err) })
	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, testErr)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWriteError_Taxonomia(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, 404, "NOT_FOUND"},
		{fmt.Errorf("get product: %w", domain.ErrNotFound), 404, "NOT_FOUND"},
		{domain.ErrUserNotFound, 404, "NOT_FOUND"},
		{domain.ErrDuplicate, 409, "DUPLICATE"},
		{domain.ErrConflict, 409, "CONFLICT"},
		{domain.ErrInvalidReference, 400, "INVALID_REFERENCE"},
		{domain.ErrInsufficientStock, 400, "INSUFFICIENT_STOCK"},
		{domain.ErrInvalidQuantity, 400, "INVALID_QUANTITY"},
		{domain.ErrInvalidInput, 400, "INVALID_INPUT"},
		{domain.ErrUnauthorized, 401, "UNAUTHORIZED"},
		{domain.ErrTokenExpired, 401, "TOKEN_EXPIRED"},
		{domain.ErrTokenMalformed, 400, "INVALID_TOKEN"},
		{domain.ErrInvalidToken, 400, "INVALID_TOKEN"},
		{domain.ErrAccountDisabled, 400, "ACCOUNT_DISABLED"},
		{domain.ErrForbidden, 403, "FORBIDDEN"},
		{domain.ErrTimeout, 503, "TIMEOUT"},
		{domain.ErrUnavailable, 503, "UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, body := respond(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestWriteError_TiposConContexto(t *testing.T) {
	status, body := respond(t, &domain.InsufficientStockError{ProductID: "p1", Requested: 7, Available: 3})
	assert.Equal(t, 400, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, "stock insuficiente: solicitado 7, disponible 3", body.Message)

	status, body = respond(t, &domain.CategoryInUseError{CategoryID: "c1", Products: 4})
	assert.Equal(t, 409, status)
	assert.Equal(t, "CATEGORY_IN_USE", body.Code)
	assert.Contains(t, body.Message, "4 productos")
}

func TestWriteError_InternoNoFiltraDetalle(t *testing.T) {
	status, body := respond(t, errors.New(`pq: relation "products" does not exist`))
	assert.Equal(t, 500, status)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, body.Message, "products")
}

func TestWriteError_EntradaInvalidaConservaMensaje(t *testing.T) {
	_, body := respond(t, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput))
	assert.Contains(t, body.Message, "end_date anterior a start_date")
}
