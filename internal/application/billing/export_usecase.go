package billing

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

// csvHeader cabecera del CSV de intercambio. El importador asume exactamente
// estas columnas en este orden.
var csvHeader = []string{
	"Número", "Fecha Emisión", "Fecha Vencimiento", "Cliente", "Estado",
	"Base Imponible", "IVA", "IRPF", "Total",
}

// ExportUseCase vuelca el libro de facturas al CSV de intercambio.
type ExportUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(invoiceRepo repository.InvoiceRepository) *ExportUseCase {
	return &ExportUseCase{invoiceRepo: invoiceRepo}
}

// ExportCSV genera el CSV completo: BOM UTF-8 (para que Excel detecte la
// codificación), cabecera en castellano, fechas dd/mm/aaaa e importes con dos
// decimales. Una fila por factura, borradores incluidos.
func (uc *ExportUseCase) ExportCSV() ([]byte, error) {
	invoices, err := uc.invoiceRepo.List()
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("escribir cabecera: %w", err)
	}
	for _, inv := range invoices {
		row := []string{
			inv.Number,
			inv.IssueDate.Format(csvDateLayout),
			inv.DueDate.Format(csvDateLayout),
			inv.ClientName,
			inv.Status,
			inv.BaseTotal.StringFixed(2),
			inv.VATAmount.StringFixed(2),
			inv.IRPFAmount.StringFixed(2),
			inv.TotalAmount.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("escribir factura %s: %w", inv.Number, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("volcar CSV: %w", err)
	}
	return buf.Bytes(), nil
}
