package billing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importHeader = "Número,Fecha Emisión,Fecha Vencimiento,Cliente,Estado,Base Imponible,IVA,IRPF,Total\n"

func newTestImport(env *testEnv) *ImportUseCase {
	return NewImportUseCase(env.invoiceRepo, env.clientRepo, env.lifecycle, testFiscalConfig())
}

func TestImport_StagingNoEscribe(t *testing.T) {
	env := newTestEnv()
	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,121.00\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, "FS-2025-0001", result.Invoices[0].InvoiceNumber)
	assert.Equal(t, env.client.ID, result.Invoices[0].ClientID)

	// Staging puro: el libro sigue vacío.
	list, err := env.invoiceRepo.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImport_CommitPersiste(t *testing.T) {
	env := newTestEnv()
	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,121.00\n" +
		"FS-2025-0002,20/05/2025,20/06/2025," + env.client.ID + ",PENDING,200.00,42.00,0.00,242.00\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, true)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Imported)
	list, err := env.invoiceRepo.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestImport_AceptaBOM(t *testing.T) {
	env := newTestEnv()
	csvData := "\uFEFF" + importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,DRAFT,100.00,21.00,0.00,121.00\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Imported)
}

func TestImport_DuplicadoEnLoteExcluyeTodasLasFilas(t *testing.T) {
	env := newTestEnv()
	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,121.00\n" +
		"FS-2025-0001,16/05/2025,16/06/2025,Acme Consulting SL,PAID,50.00,10.50,0.00,60.50\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Imported)
	// Un único error por número duplicado, no uno por fila.
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "FS-2025-0001")
}

func TestImport_NumeroExistenteSeOmite(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := saveRequest(env)
	req.InvoiceNumber = "FS-2025-0001"
	_, err := env.lifecycle.Create(ctx, req)
	require.NoError(t, err)

	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,121.00\n" +
		"FS-2025-0002,20/05/2025,20/06/2025,Acme Consulting SL,PAID,200.00,42.00,0.00,242.00\n"

	result, err := newTestImport(env).Import(ctx, csvData, false)
	require.NoError(t, err)

	assert.True(t, result.Success, "omitir no es un error")
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, "FS-2025-0002", result.Invoices[0].InvoiceNumber)
}

func TestImport_ErroresDeFilaConNumeroDeLinea(t *testing.T) {
	env := newTestEnv()
	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,121.00\n" +
		"FS-2025-0002,32/13/2025,16/06/2025,Acme Consulting SL,PAID,50.00,10.50,0.00,60.50\n" +
		"FS-2025-0003,17/05/2025,17/06/2025,Cliente Fantasma,PAID,50.00,10.50,0.00,60.50\n" +
		"FS-2025-0004,18/05/2025,18/06/2025,Acme Consulting SL,ARCHIVED,50.00,10.50,0.00,60.50\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 3)
	// La cabecera es la línea 1: la primera fila errónea es la línea 3.
	assert.Contains(t, result.Errors[0], "línea 3")
	assert.Contains(t, result.Errors[0], "fecha de emisión")
	assert.Contains(t, result.Errors[1], "línea 4")
	assert.Contains(t, result.Errors[1], "cliente desconocido")
	assert.Contains(t, result.Errors[2], "línea 5")
	assert.Contains(t, result.Errors[2], "estado desconocido")
}

func TestImport_DescuadreDeTotalesEsSoloAviso(t *testing.T) {
	env := newTestEnv()
	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,999.00\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no cuadran")
}

func TestImport_HuecoDeSecuenciaEsAviso(t *testing.T) {
	env := newTestEnv()
	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,121.00\n" +
		"FS-2025-0004,20/05/2025,20/06/2025,Acme Consulting SL,PAID,200.00,42.00,0.00,242.00\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Imported)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "[2 3]")
}

// TestImport_NormalizaConElPaddingConfigurado: los números de las filas se
// reescriben a la forma canónica con el padding de la configuración, no con
// el de por defecto.
func TestImport_NormalizaConElPaddingConfigurado(t *testing.T) {
	env := newTestEnv()
	cfg := testFiscalConfig()
	cfg.SequencePadding = 6
	uc := NewImportUseCase(env.invoiceRepo, env.clientRepo, env.lifecycle, cfg)

	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00,21.00,0.00,121.00\n"

	result, err := uc.Import(context.Background(), csvData, false)
	require.NoError(t, err)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, "FS-2025-000001", result.Invoices[0].InvoiceNumber)
}

func TestImport_ColumnasDeMenos(t *testing.T) {
	env := newTestEnv()
	csvData := importHeader +
		"FS-2025-0001,15/05/2025,15/06/2025,Acme Consulting SL,PAID,100.00\n"

	result, err := newTestImport(env).Import(context.Background(), csvData, false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "columnas")
}
