package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_CampoAppYNivel: en producción sale JSON con el campo fijo app, y el
// nivel configurado filtra los eventos por debajo.
func TestNew_CampoAppYNivel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", App: "factura-simple", Level: "warn", Writer: &buf})

	log.Info().Msg("no debería salir")
	log.Warn().Msg("aviso")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.NotContains(t, out, "no debería salir")
	assert.Contains(t, out, `"app":"factura-simple"`)
	assert.Contains(t, out, "aviso")
}

// TestNew_NivelPorDefectoSegunEntorno: sin nivel explícito, development baja
// a debug y cualquier otro entorno se queda en info.
func TestNew_NivelPorDefectoSegunEntorno(t *testing.T) {
	var dev bytes.Buffer
	New(Config{Env: "development", Writer: &dev}).Debug().Msg("traza de desarrollo")
	assert.Contains(t, dev.String(), "traza de desarrollo")

	var prod bytes.Buffer
	New(Config{Env: "production", Writer: &prod}).Debug().Msg("traza silenciada")
	assert.Equal(t, "", strings.TrimSpace(prod.String()))
}
