package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain"
)

// respondWith monta una app mínima cuyo único handler devuelve err, y ejecuta
// una petición para observar el estado y el cuerpo que produce respondError.
func respondWith(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		return respondError(c, err)
	})

	resp, reqErr := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, reqErr)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

// TestRespondError_MapeoDeSentinelas recorre la traducción error de dominio →
// código HTTP. Los errores de entrada del usuario nunca deben salir como 500.
func TestRespondError_MapeoDeSentinelas(t *testing.T) {
	casos := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{domain.ErrTaxConfiguration, http.StatusUnprocessableEntity, "TAX_CONFIGURATION"},
		{domain.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{domain.ErrImmutableInvoice, http.StatusConflict, "IMMUTABLE"},
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{fmt.Errorf("algo reventó"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, c := range casos {
		status, body := respondWith(t, c.err)
		assert.Equal(t, c.status, status, "error %v", c.err)
		assert.Equal(t, c.code, body.Code, "error %v", c.err)
	}
}

// TestRespondError_TaxConfiguration: una configuración degenerada de impuestos
// (IRPF >= 1+IVA con precios brutos) es un error del usuario y debe volver como
// 422 con la causa, nunca como 500 genérico.
func TestRespondError_TaxConfiguration(t *testing.T) {
	status, body := respondWith(t, fmt.Errorf("calcular totales: %w", domain.ErrTaxConfiguration))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "TAX_CONFIGURATION", body.Code)
	assert.Contains(t, body.Message, "impuestos")
}

// TestRespondError_Validacion: los issues acumulados viajan en el cuerpo,
// etiquetados por campo.
func TestRespondError_Validacion(t *testing.T) {
	verr := &domain.ValidationError{Issues: []domain.FieldIssue{
		{Field: "dueDate", Message: "el plazo de pago supera el máximo legal de 60 días"},
	}}
	status, body := respondWith(t, verr)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION", body.Code)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "dueDate", body.Issues[0].Field)
}

// TestRespondError_Transicion: la transición prohibida devuelve 409 con el
// detalle origen → destino.
func TestRespondError_Transicion(t *testing.T) {
	status, body := respondWith(t, &domain.StatusTransitionError{From: "DRAFT", To: "PAID"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", body.Code)
	assert.Contains(t, body.Message, "DRAFT")
	assert.Contains(t, body.Message, "PAID")
}
