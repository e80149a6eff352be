package fiscal

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/factura-simple/internal/domain"
)

// TaxLine cantidad y precio unitario de una línea, tal como los introduce el usuario.
type TaxLine struct {
	Quantity  decimal.Decimal
	PriceUnit decimal.Decimal
}

// TaxParams parámetros del cálculo de totales.
// Si TaxesIncluded es true los precios son BRUTOS (impuestos incluidos) y se
// desglosa hacia atrás: Base = Bruto / (1 + IVA - IRPF).
type TaxParams struct {
	Lines         []TaxLine
	VATRate       decimal.Decimal // [0,1]
	IRPFRate      decimal.Decimal // [0,1]
	TaxesIncluded bool
}

// TaxResult totales calculados. Los importes se mantienen sin redondear;
// el redondeo a 2 decimales se aplica solo en fronteras de presentación
// o comparación para no acumular error.
type TaxResult struct {
	BaseTotal     decimal.Decimal
	VATAmount     decimal.Decimal
	IRPFAmount    decimal.Decimal
	TotalAmount   decimal.Decimal
	ItemSubtotals []decimal.Decimal // Cantidad × precio por línea (brutos si TaxesIncluded)
	NetPrices     []decimal.Decimal // Importe neto (sin impuestos) por línea
}

// ComputeTotals calcula base, IVA, IRPF y total de la factura.
//
// Precios netos (TaxesIncluded=false): Total = Base + IVA - IRPF.
// Precios brutos (TaxesIncluded=true): el total es lo que el usuario tecleó y
// la base se obtiene dividiendo por el multiplicador 1 + IVA - IRPF.
// Un multiplicador <= 0 (IRPF >= 1+IVA) es una configuración degenerada y
// falla con domain.ErrTaxConfiguration antes de dividir.
func ComputeTotals(p TaxParams) (*TaxResult, error) {
	subtotals := make([]decimal.Decimal, len(p.Lines))
	grossTotal := decimal.Zero
	for i, line := range p.Lines {
		subtotals[i] = line.Quantity.Mul(line.PriceUnit)
		grossTotal = grossTotal.Add(subtotals[i])
	}

	res := &TaxResult{ItemSubtotals: subtotals}

	if p.TaxesIncluded {
		multiplier := decimal.NewFromInt(1).Add(p.VATRate).Sub(p.IRPFRate)
		if !multiplier.IsPositive() {
			return nil, domain.ErrTaxConfiguration
		}
		res.BaseTotal = grossTotal.Div(multiplier)
		res.VATAmount = res.BaseTotal.Mul(p.VATRate)
		res.IRPFAmount = res.BaseTotal.Mul(p.IRPFRate)
		res.TotalAmount = grossTotal
		res.NetPrices = make([]decimal.Decimal, len(subtotals))
		for i, gross := range subtotals {
			res.NetPrices[i] = gross.Div(multiplier)
		}
		return res, nil
	}

	res.BaseTotal = grossTotal
	res.VATAmount = grossTotal.Mul(p.VATRate)
	res.IRPFAmount = grossTotal.Mul(p.IRPFRate)
	res.TotalAmount = res.BaseTotal.Add(res.VATAmount).Sub(res.IRPFAmount)
	res.NetPrices = subtotals
	return res, nil
}
