package billing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
)

func TestExportCSV_FormatoDeIntercambio(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := saveRequest(env)
	req.IssueDate = "2025-06-01"
	req.DueDate = "2025-07-01"
	created, err := env.lifecycle.Create(ctx, req)
	require.NoError(t, err)
	_, err = env.lifecycle.SetStatus(ctx, created.ID, entity.StatusPending)
	require.NoError(t, err)

	data, err := NewExportUseCase(env.invoiceRepo).ExportCSV()
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\uFEFF"), "el CSV debe llevar BOM UTF-8")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(content, "\uFEFF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Número,Fecha Emisión,Fecha Vencimiento,Cliente,Estado,Base Imponible,IVA,IRPF,Total", lines[0])
	assert.Equal(t, "FS-2025-0001,01/06/2025,01/07/2025,Acme Consulting SL,PENDING,500.00,105.00,0.00,605.00", lines[1])
}

func TestExportCSV_LibroVacio(t *testing.T) {
	env := newTestEnv()

	data, err := NewExportUseCase(env.invoiceRepo).ExportCSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\uFEFF")), "\n")
	assert.Len(t, lines, 1, "solo la cabecera")
}

func TestExportYReimport_RoundTrip(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := saveRequest(env)
	req.IssueDate = "2025-06-01"
	req.DueDate = "2025-07-01"
	created, err := env.lifecycle.Create(ctx, req)
	require.NoError(t, err)
	_, err = env.lifecycle.SetStatus(ctx, created.ID, entity.StatusPending)
	require.NoError(t, err)

	data, err := NewExportUseCase(env.invoiceRepo).ExportCSV()
	require.NoError(t, err)

	// Todo lo exportado ya está en el libro: la reimportación lo omite entero.
	result, err := newTestImport(env).Import(ctx, string(data), false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}
