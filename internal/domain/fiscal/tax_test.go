package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/internal/domain/fiscal"
)

func linea(qty, price float64) fiscal.TaxLine {
	return fiscal.TaxLine{Quantity: decimal.NewFromFloat(qty), PriceUnit: decimal.NewFromFloat(price)}
}

// TestComputeTotals_PreciosNetos: 2 × 100 al 21% de IVA sin IRPF
// → base 200.00, IVA 42.00, total 242.00.
func TestComputeTotals_PreciosNetos(t *testing.T) {
	res, err := fiscal.ComputeTotals(fiscal.TaxParams{
		Lines:   []fiscal.TaxLine{linea(2, 100)},
		VATRate: decimal.NewFromFloat(0.21),
	})
	require.NoError(t, err)
	assert.Equal(t, "200.00", res.BaseTotal.StringFixed(2))
	assert.Equal(t, "42.00", res.VATAmount.StringFixed(2))
	assert.Equal(t, "0.00", res.IRPFAmount.StringFixed(2))
	assert.Equal(t, "242.00", res.TotalAmount.StringFixed(2))
	require.Len(t, res.NetPrices, 1)
	assert.Equal(t, "200.00", res.NetPrices[0].StringFixed(2))
}

// TestComputeTotals_PreciosBrutos: 1 × 242 con impuestos incluidos al 21%
// → multiplicador 1.21, base 200.00, IVA 42.00, y el total queda en lo que
// tecleó el usuario (242.00).
func TestComputeTotals_PreciosBrutos(t *testing.T) {
	res, err := fiscal.ComputeTotals(fiscal.TaxParams{
		Lines:         []fiscal.TaxLine{linea(1, 242)},
		VATRate:       decimal.NewFromFloat(0.21),
		TaxesIncluded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "200.00", res.BaseTotal.StringFixed(2))
	assert.Equal(t, "42.00", res.VATAmount.StringFixed(2))
	assert.Equal(t, "242.00", res.TotalAmount.StringFixed(2))
	assert.Equal(t, "200.00", res.NetPrices[0].StringFixed(2))
}

// TestComputeTotals_ConIRPF: factura de autónomo típica, 1000 al 21% con
// retención del 15% → total = 1000 + 210 - 150 = 1060.
func TestComputeTotals_ConIRPF(t *testing.T) {
	res, err := fiscal.ComputeTotals(fiscal.TaxParams{
		Lines:    []fiscal.TaxLine{linea(1, 1000)},
		VATRate:  decimal.NewFromFloat(0.21),
		IRPFRate: decimal.NewFromFloat(0.15),
	})
	require.NoError(t, err)
	assert.Equal(t, "210.00", res.VATAmount.StringFixed(2))
	assert.Equal(t, "150.00", res.IRPFAmount.StringFixed(2))
	assert.Equal(t, "1060.00", res.TotalAmount.StringFixed(2))
}

// TestComputeTotals_MultiplicadorDegenerado: IRPF >= 1+IVA haría la base
// negativa o infinita; debe fallar antes de dividir.
func TestComputeTotals_MultiplicadorDegenerado(t *testing.T) {
	_, err := fiscal.ComputeTotals(fiscal.TaxParams{
		Lines:         []fiscal.TaxLine{linea(1, 100)},
		VATRate:       decimal.NewFromFloat(0.21),
		IRPFRate:      decimal.NewFromFloat(1.21),
		TaxesIncluded: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTaxConfiguration)
}

// TestComputeTotals_VariasLineas verifica subtotales y netos por línea.
func TestComputeTotals_VariasLineas(t *testing.T) {
	res, err := fiscal.ComputeTotals(fiscal.TaxParams{
		Lines:   []fiscal.TaxLine{linea(2, 50), linea(3, 10)},
		VATRate: decimal.NewFromFloat(0.10),
	})
	require.NoError(t, err)
	require.Len(t, res.ItemSubtotals, 2)
	assert.Equal(t, "100.00", res.ItemSubtotals[0].StringFixed(2))
	assert.Equal(t, "30.00", res.ItemSubtotals[1].StringFixed(2))
	assert.Equal(t, "130.00", res.BaseTotal.StringFixed(2))
	assert.Equal(t, "143.00", res.TotalAmount.StringFixed(2))
}

func TestComputeTotals_SinLineas(t *testing.T) {
	res, err := fiscal.ComputeTotals(fiscal.TaxParams{VATRate: decimal.NewFromFloat(0.21)})
	require.NoError(t, err)
	assert.True(t, res.TotalAmount.IsZero())
	assert.Empty(t, res.ItemSubtotals)
}
