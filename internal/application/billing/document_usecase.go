package billing

import (
	"context"
	"fmt"

	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

// DocumentUseCase genera los documentos derivados de una factura: el PDF de
// representación y el XML Facturae. La generación nunca muta la factura.
type DocumentUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	pdf         InvoicePDFGenerator
	facturae    FacturaeBuilder
	issuer      IssuerInfo
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	pdf InvoicePDFGenerator,
	facturae FacturaeBuilder,
	issuer IssuerInfo,
) *DocumentUseCase {
	return &DocumentUseCase{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		pdf:         pdf,
		facturae:    facturae,
		issuer:      issuer,
	}
}

// GeneratePDF genera el PDF de la factura. Los borradores también se imprimen,
// marcados como tales por el generador.
func (uc *DocumentUseCase) GeneratePDF(ctx context.Context, id string) ([]byte, string, error) {
	inv, client, err := uc.load(id)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.pdf.GenerateInvoicePDF(ctx, inv, uc.issuer, client)
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF: %w", err)
	}
	return data, fmt.Sprintf("factura-%s.pdf", inv.Number), nil
}

// GenerateFacturae genera el XML Facturae 3.2.2 sin firmar. Un borrador no es
// una factura emitida y no tiene representación Facturae.
func (uc *DocumentUseCase) GenerateFacturae(ctx context.Context, id string) ([]byte, string, error) {
	inv, client, err := uc.load(id)
	if err != nil {
		return nil, "", err
	}
	if inv.IsDraft() {
		return nil, "", fmt.Errorf("%w: un borrador no puede exportarse a Facturae", domain.ErrConflict)
	}
	data, err := uc.facturae.Build(inv, uc.issuer, client)
	if err != nil {
		return nil, "", fmt.Errorf("generar Facturae: %w", err)
	}
	return data, fmt.Sprintf("factura-%s.xsig.xml", inv.Number), nil
}

// load carga la factura y, si sigue existiendo, su cliente. El cliente puede
// haberse borrado después de emitir la factura: en ese caso se genera con el
// nombre desnormalizado que la factura conserva.
func (uc *DocumentUseCase) load(id string) (*entity.Invoice, *entity.Client, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar factura: %w", err)
	}
	if inv == nil {
		return nil, nil, domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(inv.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar cliente: %w", err)
	}
	return inv, client, nil
}
