package fiscal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/factura-simple/internal/domain/fiscal"
)

// TestNextNumber_GrupoVacio: sin números previos la secuencia empieza en 1.
func TestNextNumber_GrupoVacio(t *testing.T) {
	num := fiscal.NextNumber(nil, "FS", 2025, 4)
	assert.Equal(t, 1, num.Sequence)
	assert.Equal(t, "FS-2025-0001", num.String())
}

// TestNextNumber_Monotono: siempre max(grupo)+1, ignorando otras series y años.
func TestNextNumber_Monotono(t *testing.T) {
	existentes := []string{
		"FS-2025-0001",
		"FS-2025-0007", // hueco intencionado: el asignador no rellena huecos
		"FS-2024-0042", // otro año fiscal
		"B-2025-0099",  // otra serie
		"no-es-numero", // ruido: se ignora
	}
	num := fiscal.NextNumber(existentes, "FS", 2025, 4)
	assert.Equal(t, 8, num.Sequence, "debe continuar tras el máximo, sin reutilizar huecos")
	assert.Equal(t, "FS-2025-0008", num.String())
}

// TestNextNumber_FormaLegada: los números legados AAAA-NNNN cuentan para la
// serie por defecto.
func TestNextNumber_FormaLegada(t *testing.T) {
	num := fiscal.NextNumber([]string{"2025-0003"}, "FS", 2025, 4)
	assert.Equal(t, 4, num.Sequence)
}

// TestAuditNumbers_Huecos: los huecos se reportan como aviso listando los
// enteros que faltan, nunca como error.
func TestAuditNumbers_Huecos(t *testing.T) {
	report := fiscal.AuditNumbers([]string{
		"FS-2025-0001", "FS-2025-0002", "FS-2025-0005",
	}, "FS", fiscal.DefaultPadding)

	assert.True(t, report.Clean(), "los huecos no rompen la auditoría")
	require.Len(t, report.Gaps, 1)
	assert.Contains(t, report.Gaps[0], "[3 4]")
}

// TestAuditNumbers_Duplicados: cada aparición más allá de la primera es un
// error de duplicado.
func TestAuditNumbers_Duplicados(t *testing.T) {
	report := fiscal.AuditNumbers([]string{
		"FS-2025-0001", "FS-2025-0001", "FS-2025-0002",
	}, "FS", fiscal.DefaultPadding)

	assert.False(t, report.Clean())
	require.Len(t, report.Duplicates, 1)
	assert.Contains(t, report.Duplicates[0], "FS-2025-0001")
}

// TestAuditNumbers_PaddingConfigurado: los mensajes formatean la secuencia con
// el padding recibido, no con el de por defecto.
func TestAuditNumbers_PaddingConfigurado(t *testing.T) {
	report := fiscal.AuditNumbers([]string{
		"FS-2025-001", "FS-2025-0001",
	}, "FS", 3)

	require.Len(t, report.Duplicates, 1)
	assert.Contains(t, report.Duplicates[0], "FS-2025-001")
}

func TestAuditNumbers_GruposIndependientes(t *testing.T) {
	report := fiscal.AuditNumbers([]string{
		"FS-2025-0001", "FS-2026-0001", "B-2025-0001",
	}, "FS", fiscal.DefaultPadding)
	assert.True(t, report.Clean())
	assert.Empty(t, report.Gaps, "grupos de un solo número no tienen huecos")
}
