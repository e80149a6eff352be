package dto

import "github.com/shopspring/decimal"

// SaveClientRequest body para POST /api/clients (upsert).
type SaveClientRequest struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	NIF     string `json:"nif"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NIF       string `json:"nif"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// InvoiceItemRequest línea de factura tal como la teclea el usuario.
type InvoiceItemRequest struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	PriceUnit   decimal.Decimal `json:"price_unit"`
}

// SaveInvoiceRequest body para POST /api/invoices y PUT /api/invoices/:id.
// Las fechas van en formato AAAA-MM-DD. Los totales nunca se aceptan del
// cliente: el servidor los recalcula siempre.
// VATRate/IRPFRate en [0,1]; si van a nil se aplican los de configuración.
type SaveInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number,omitempty"` // opcional; en create puede reasignarse
	Series        string               `json:"series,omitempty"`         // vacío = serie por defecto
	ClientID      string               `json:"client_id"`
	IssueDate     string               `json:"issue_date"`
	DueDate       string               `json:"due_date"`
	Status        string               `json:"status,omitempty"` // vacío = DRAFT
	TaxesIncluded bool                 `json:"taxes_included,omitempty"`
	VATRate       *decimal.Decimal     `json:"vat_rate,omitempty"`
	IRPFRate      *decimal.Decimal     `json:"irpf_rate,omitempty"`
	Items         []InvoiceItemRequest `json:"items"`
}

// SetStatusRequest body para POST /api/invoices/:id/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// InvoiceItemResponse línea en respuestas.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	PriceUnit   decimal.Decimal `json:"price_unit"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse factura completa en respuestas.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	Series          string                `json:"series"`
	FiscalYear      int                   `json:"fiscal_year"`
	Sequence        int                   `json:"sequence"`
	ClientID        string                `json:"client_id"`
	ClientName      string                `json:"client_name,omitempty"`
	IssueDate       string                `json:"issue_date"`
	DueDate         string                `json:"due_date"`
	Status          string                `json:"status"`
	TaxesIncluded   bool                  `json:"taxes_included"`
	BaseTotal       decimal.Decimal       `json:"base_total"`
	VATRate         decimal.Decimal       `json:"vat_rate"`
	VATAmount       decimal.Decimal       `json:"vat_amount"`
	IRPFRate        decimal.Decimal       `json:"irpf_rate"`
	IRPFAmount      decimal.Decimal       `json:"irpf_amount"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	Items           []InvoiceItemResponse `json:"items"`
	CreatedAt       string                `json:"created_at"`
	UpdatedAt       string                `json:"updated_at"`
	StatusChangedAt string                `json:"status_changed_at,omitempty"`
}

// ImportResultResponse resultado de la importación CSV (staging o commit).
type ImportResultResponse struct {
	Success  bool              `json:"success"`
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings,omitempty"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// NumberingAuditResponse auditoría de numeración del libro de facturas.
// Los duplicados son errores; los huecos solo avisos.
type NumberingAuditResponse struct {
	Clean      bool     `json:"clean"`
	Duplicates []string `json:"duplicates"`
	Gaps       []string `json:"gaps"`
}

// OverdueSweepResponse resultado del barrido de vencidas.
type OverdueSweepResponse struct {
	Marked int `json:"marked"`
}
