package fiscal

import (
	"fmt"
	"time"

	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
)

// DefaultMaxPaymentTermDays plazo máximo de pago permitido por la Ley 15/2010
// de lucha contra la morosidad: 60 días naturales desde la emisión.
const DefaultMaxPaymentTermDays = 60

// ValidatorConfig parámetros del validador fiscal.
type ValidatorConfig struct {
	DefaultSeries      string
	MaxPaymentTermDays int
}

// Validate comprueba los invariantes fiscales de una factura candidata y
// acumula TODOS los problemas detectados (no fail-fast), cada uno etiquetado
// con el campo que lo origina. El caller construye el error con
// domain.NewValidationError si la lista no está vacía.
//
// Reglas:
//   - issueDate no puede ser futura respecto a now.
//   - dueDate en [issueDate, issueDate + MaxPaymentTermDays].
//   - el año fiscal del número (si hay número) debe coincidir con el año de emisión.
//   - al menos una línea, y cada línea con descripción, cantidad > 0 y precio >= 0.
func Validate(inv *entity.Invoice, now time.Time, cfg ValidatorConfig) []domain.FieldIssue {
	maxDays := cfg.MaxPaymentTermDays
	if maxDays <= 0 {
		maxDays = DefaultMaxPaymentTermDays
	}

	var issues []domain.FieldIssue

	if inv.IssueDate.After(now) {
		issues = append(issues, domain.FieldIssue{
			Field:   "issueDate",
			Message: "la fecha de emisión no puede ser futura",
		})
	}

	if inv.DueDate.Before(inv.IssueDate) {
		issues = append(issues, domain.FieldIssue{
			Field:   "dueDate",
			Message: "la fecha de vencimiento es anterior a la de emisión",
		})
	} else if inv.DueDate.After(inv.IssueDate.Add(time.Duration(maxDays) * 24 * time.Hour)) {
		issues = append(issues, domain.FieldIssue{
			Field:   "dueDate",
			Message: fmt.Sprintf("el plazo de pago supera el máximo legal de %d días", maxDays),
		})
	}

	if inv.Number != "" {
		if num, ok := ParseNumber(inv.Number, cfg.DefaultSeries); !ok {
			issues = append(issues, domain.FieldIssue{
				Field:   "invoiceNumber",
				Message: "número de factura no reconocido (esperado SERIE-AAAA-NNNN)",
			})
		} else if num.FiscalYear != inv.IssueDate.Year() {
			issues = append(issues, domain.FieldIssue{
				Field: "invoiceNumber",
				Message: fmt.Sprintf("el año fiscal del número (%d) no coincide con el año de emisión (%d)",
					num.FiscalYear, inv.IssueDate.Year()),
			})
		}
	}

	if len(inv.Items) == 0 {
		issues = append(issues, domain.FieldIssue{
			Field:   "items",
			Message: "la factura debe tener al menos un concepto",
		})
	}
	for i, item := range inv.Items {
		if item.Description == "" {
			issues = append(issues, domain.FieldIssue{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "descripción requerida",
			})
		}
		if !item.Quantity.IsPositive() {
			issues = append(issues, domain.FieldIssue{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "la cantidad debe ser mayor que cero",
			})
		}
		if item.PriceUnit.IsNegative() {
			issues = append(issues, domain.FieldIssue{
				Field:   fmt.Sprintf("items[%d].priceUnit", i),
				Message: "el precio unitario no puede ser negativo",
			})
		}
	}

	return issues
}
