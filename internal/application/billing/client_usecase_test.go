package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain"
)

func newTestClients() *ClientUseCase {
	return NewClientUseCase(newFakeClientRepo(), fixedClock{now: testNow})
}

func TestClientSave_AltaYActualizacion(t *testing.T) {
	uc := newTestClients()

	created, err := uc.Save(dto.SaveClientRequest{Name: "Beta SL", NIF: "B87654321", Email: "beta@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := uc.Save(dto.SaveClientRequest{ID: created.ID, Name: "Beta Consulting SL", NIF: "B87654321"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Beta Consulting SL", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "la fecha de alta no cambia al editar")
}

func TestClientSave_Validaciones(t *testing.T) {
	uc := newTestClients()

	_, err := uc.Save(dto.SaveClientRequest{Name: "", NIF: "B1", Email: "no-es-email"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 3)
	assert.Equal(t, "name", verr.Issues[0].Field)
	assert.Equal(t, "nif", verr.Issues[1].Field)
	assert.Equal(t, "email", verr.Issues[2].Field)
}

func TestClientGet_NoEncontrado(t *testing.T) {
	uc := newTestClients()
	_, err := uc.Get("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientDelete(t *testing.T) {
	uc := newTestClients()
	created, err := uc.Save(dto.SaveClientRequest{Name: "Beta SL", NIF: "B87654321"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(created.ID))
	assert.ErrorIs(t, uc.Delete(created.ID), domain.ErrNotFound)
}
