package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

// Clock abstrae el reloj para que el validador y el sellado de auditoría
// sean testeables con tiempo fijo.
type Clock interface {
	Now() time.Time
}

// SystemClock implementación de producción.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// NumberingTxRunner serializa la asignación de número por (serie, año fiscal).
// La secuencia leer-calcular-escribir del secuenciador no es atómica: sin este
// punto de exclusión mutua dos creaciones concurrentes podrían asignar la
// misma secuencia. La implementación postgres usa un advisory lock
// transaccional; la de tests, un mutex.
type NumberingTxRunner interface {
	RunSerialized(ctx context.Context, series string, fiscalYear int, fn func(repo repository.InvoiceRepository) error) error
}

// IssuerInfo datos del emisor (empresa propia), desde configuración.
type IssuerInfo struct {
	Name    string
	NIF     string
	Address string
	Email   string
}

// FiscalConfig parámetros fiscales de la aplicación.
type FiscalConfig struct {
	DefaultSeries      string
	MaxPaymentTermDays int
	SequencePadding    int
	DefaultVATRate     decimal.Decimal
	DefaultIRPFRate    decimal.Decimal
}

// InvoicePDFGenerator genera la representación gráfica (PDF) de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, issuer IssuerInfo, client *entity.Client) ([]byte, error)
}

// FacturaeBuilder genera el XML Facturae 3.2.2 (sin firmar) de una factura.
type FacturaeBuilder interface {
	Build(invoice *entity.Invoice, issuer IssuerInfo, client *entity.Client) ([]byte, error)
}
