package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de la factura (normativa española de facturación).
const (
	StatusDraft     = "DRAFT"     // Borrador: editable y borrable
	StatusPending   = "PENDING"   // Emitida, pendiente de cobro
	StatusPaid      = "PAID"      // Cobrada
	StatusOverdue   = "OVERDUE"   // Vencida (marcado administrativo, no automático)
	StatusCancelled = "CANCELLED" // Anulada: nunca se borra, solo se marca
)

// statusTransitions define el grafo de transiciones permitido.
// PAID admite CANCELLED porque la anulación es una anotación legal, no un borrado.
var statusTransitions = map[string][]string{
	StatusDraft:     {StatusPending, StatusCancelled},
	StatusPending:   {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusCancelled},
	StatusCancelled: {},
}

// ValidStatus indica si s es uno de los estados conocidos.
func ValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition indica si el cambio de estado from -> to está permitido.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvoiceItem representa una línea (concepto) de la factura.
// Subtotal es derivado: Quantity × PriceUnit.
type InvoiceItem struct {
	ID          string
	Description string
	Quantity    decimal.Decimal
	PriceUnit   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Invoice representa una factura con numeración fiscal serie-año-secuencia.
// Una vez que Status sale de DRAFT, Number/Series/FiscalYear/Sequence quedan
// congelados y el resto de campos solo cambia vía transiciones de estado.
type Invoice struct {
	ID            string
	Number        string // Forma canónica "SERIE-AAAA-NNNN"
	Series        string
	FiscalYear    int
	Sequence      int
	ClientID      string
	ClientName    string // Desnormalizado: sobrevive al borrado del cliente (retención legal)
	IssueDate     time.Time
	DueDate       time.Time
	Status        string
	Items         []InvoiceItem
	TaxesIncluded bool // true: los precios introducidos ya llevan IVA/IRPF
	BaseTotal     decimal.Decimal
	VATRate       decimal.Decimal
	VATAmount     decimal.Decimal
	IRPFRate      decimal.Decimal
	IRPFAmount    decimal.Decimal
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StatusChangedAt *time.Time
}

// IsDraft indica si la factura sigue siendo editable/borrable.
func (i *Invoice) IsDraft() bool { return i.Status == StatusDraft }
