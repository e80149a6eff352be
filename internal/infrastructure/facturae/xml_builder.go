// Package facturae genera el XML Facturae 3.2.2 (formato oficial español de
// factura electrónica) sin firma XAdES: el documento sale listo para firmar
// con una herramienta externa.
package facturae

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/factura-simple/internal/application/billing"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
)

// Namespaces oficiales Facturae 3.2.2.
const (
	NsFacturae = "http://www.facturae.gob.es/formato/Versiones/Facturaev3_2_2.xml"
	NsDs       = "http://www.w3.org/2000/09/xmldsig#"

	schemaVersion = "3.2.2"
	currencyEUR   = "EUR"

	// Códigos de impuesto de la tabla oficial: 01 = IVA, 04 = IRPF.
	taxCodeIVA  = "01"
	taxCodeIRPF = "04"
)

var _ billing.FacturaeBuilder = (*Builder)(nil)

// Builder construye el documento Facturae con etree.
type Builder struct{}

// NewBuilder crea el constructor.
func NewBuilder() *Builder { return &Builder{} }

// Build genera el []byte del documento fe:Facturae de una única factura.
// El cliente puede ser nil si fue borrado: se emite con el nombre
// desnormalizado y sin NIF, y queda en manos del usuario completarlo.
func (b *Builder) Build(invoice *entity.Invoice, issuer billing.IssuerInfo, client *entity.Client) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("facturae: factura vacía")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("fe:Facturae")
	root.CreateAttr("xmlns:fe", NsFacturae)
	root.CreateAttr("xmlns:ds", NsDs)

	b.writeFileHeader(root, invoice, issuer)
	b.writeParties(root, invoice, issuer, client)
	b.writeInvoice(root, invoice)

	doc.Indent(2)
	return doc.WriteToBytes()
}

// writeFileHeader: FileHeader con el lote de una sola factura.
func (b *Builder) writeFileHeader(root *etree.Element, invoice *entity.Invoice, issuer billing.IssuerInfo) {
	header := root.CreateElement("FileHeader")
	header.CreateElement("SchemaVersion").SetText(schemaVersion)
	header.CreateElement("Modality").SetText("I") // individual
	header.CreateElement("InvoiceIssuerType").SetText("EM")

	batch := header.CreateElement("Batch")
	batch.CreateElement("BatchIdentifier").SetText(issuer.NIF + invoice.Number)
	batch.CreateElement("InvoicesCount").SetText("1")
	for _, name := range []string{"TotalInvoicesAmount", "TotalOutstandingAmount", "TotalExecutableAmount"} {
		batch.CreateElement(name).CreateElement("TotalAmount").SetText(amount(invoice.TotalAmount))
	}
	batch.CreateElement("InvoiceCurrencyCode").SetText(currencyEUR)
}

// writeParties: emisor y cliente. Facturae exige la descomposición del
// domicilio; al no almacenarse por campos, la dirección completa va en
// Address y el resto con valores neutros.
func (b *Builder) writeParties(root *etree.Element, invoice *entity.Invoice, issuer billing.IssuerInfo, client *entity.Client) {
	parties := root.CreateElement("Parties")

	seller := parties.CreateElement("SellerParty")
	writeTaxIdentification(seller, issuer.NIF)
	writeLegalEntity(seller, issuer.Name, issuer.Address)

	buyer := parties.CreateElement("BuyerParty")
	if client != nil {
		writeTaxIdentification(buyer, client.NIF)
		writeLegalEntity(buyer, client.Name, client.Address)
	} else {
		writeTaxIdentification(buyer, "")
		writeLegalEntity(buyer, invoice.ClientName, "")
	}
}

// writeInvoice: cabecera, impuestos, totales, líneas y vencimiento.
func (b *Builder) writeInvoice(root *etree.Element, invoice *entity.Invoice) {
	inv := root.CreateElement("Invoices").CreateElement("Invoice")

	header := inv.CreateElement("InvoiceHeader")
	header.CreateElement("InvoiceNumber").SetText(strconv.Itoa(invoice.Sequence))
	header.CreateElement("InvoiceSeriesCode").SetText(fmt.Sprintf("%s-%d", invoice.Series, invoice.FiscalYear))
	header.CreateElement("InvoiceDocumentType").SetText("FC") // factura completa
	header.CreateElement("InvoiceClass").SetText("OO")        // original

	issueData := inv.CreateElement("InvoiceIssueData")
	issueData.CreateElement("IssueDate").SetText(invoice.IssueDate.Format("2006-01-02"))
	issueData.CreateElement("InvoiceCurrencyCode").SetText(currencyEUR)
	issueData.CreateElement("TaxCurrencyCode").SetText(currencyEUR)
	issueData.CreateElement("LanguageName").SetText("es")

	outputs := inv.CreateElement("TaxesOutputs")
	writeTax(outputs, taxCodeIVA, invoice.VATRate, invoice.BaseTotal, invoice.VATAmount)
	if invoice.IRPFRate.IsPositive() {
		withheld := inv.CreateElement("TaxesWithheld")
		writeTax(withheld, taxCodeIRPF, invoice.IRPFRate, invoice.BaseTotal, invoice.IRPFAmount)
	}

	totals := inv.CreateElement("InvoiceTotals")
	totals.CreateElement("TotalGrossAmount").SetText(amount(invoice.BaseTotal))
	totals.CreateElement("TotalGrossAmountBeforeTaxes").SetText(amount(invoice.BaseTotal))
	totals.CreateElement("TotalTaxOutputs").SetText(amount(invoice.VATAmount))
	totals.CreateElement("TotalTaxesWithheld").SetText(amount(invoice.IRPFAmount))
	totals.CreateElement("InvoiceTotal").SetText(amount(invoice.TotalAmount))
	totals.CreateElement("TotalOutstandingAmount").SetText(amount(invoice.TotalAmount))
	totals.CreateElement("TotalExecutableAmount").SetText(amount(invoice.TotalAmount))

	items := inv.CreateElement("Items")
	for _, it := range invoice.Items {
		line := items.CreateElement("InvoiceLine")
		line.CreateElement("ItemDescription").SetText(it.Description)
		line.CreateElement("Quantity").SetText(it.Quantity.String())
		line.CreateElement("UnitOfMeasure").SetText("01") // unidades
		line.CreateElement("UnitPriceWithoutTax").SetText(amount(it.PriceUnit))
		line.CreateElement("TotalCost").SetText(amount(it.Subtotal))
		line.CreateElement("GrossAmount").SetText(amount(it.Subtotal))
	}

	installment := inv.CreateElement("PaymentDetails").CreateElement("Installment")
	installment.CreateElement("InstallmentDueDate").SetText(invoice.DueDate.Format("2006-01-02"))
	installment.CreateElement("InstallmentAmount").SetText(amount(invoice.TotalAmount))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTaxIdentification(party *etree.Element, nif string) {
	taxID := party.CreateElement("TaxIdentification")
	taxID.CreateElement("PersonTypeCode").SetText("J")
	taxID.CreateElement("ResidenceTypeCode").SetText("R")
	taxID.CreateElement("TaxIdentificationNumber").SetText(nif)
}

func writeLegalEntity(party *etree.Element, name, address string) {
	legal := party.CreateElement("LegalEntity")
	legal.CreateElement("CorporateName").SetText(name)
	addr := legal.CreateElement("AddressInSpain")
	addr.CreateElement("Address").SetText(address)
	addr.CreateElement("PostCode").SetText("00000")
	addr.CreateElement("Town").SetText("")
	addr.CreateElement("Province").SetText("")
	addr.CreateElement("CountryCode").SetText("ESP")
}

func writeTax(parent *etree.Element, code string, rate, base, quota decimal.Decimal) {
	tax := parent.CreateElement("Tax")
	tax.CreateElement("TaxTypeCode").SetText(code)
	tax.CreateElement("TaxRate").SetText(rate.Mul(decimal.NewFromInt(100)).StringFixed(2))
	tax.CreateElement("TaxableBase").CreateElement("TotalAmount").SetText(amount(base))
	tax.CreateElement("TaxAmount").CreateElement("TotalAmount").SetText(amount(quota))
}

// amount formatea un importe Facturae: punto decimal, dos decimales.
func amount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
