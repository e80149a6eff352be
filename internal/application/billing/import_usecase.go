package billing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
	"github.com/tu-usuario/factura-simple/internal/domain/fiscal"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

// Formato CSV de intercambio (idéntico al de exportación):
// Número, Fecha Emisión, Fecha Vencimiento, Cliente, Estado,
// Base Imponible, IVA, IRPF, Total. Fechas dd/mm/aaaa, decimales con punto.
const (
	csvColumns    = 9
	csvDateLayout = "02/01/2006"
)

// ImportUseCase reconcilia un CSV contra el libro de facturas existente.
// El parseo es una fase de staging pura: NUNCA escribe en el repositorio.
// El commit es explícito y canaliza cada fila por la ruta de alta del
// LifecycleUseCase, que es quien manda sobre numeración y validación.
type ImportUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	lifecycle   *LifecycleUseCase
	cfg         FiscalConfig
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	lifecycle *LifecycleUseCase,
	cfg FiscalConfig,
) *ImportUseCase {
	return &ImportUseCase{invoiceRepo: invoiceRepo, clientRepo: clientRepo, lifecycle: lifecycle, cfg: cfg}
}

// fila candidata ya parseada, pendiente de los chequeos entre filas.
type stagedRow struct {
	line      int // línea del fichero original (la cabecera es la 1)
	number    fiscal.InvoiceNumber
	canonical string // forma canónica con el padding configurado
	request   dto.SaveInvoiceRequest
	preview   *entity.Invoice
}

// Import parsea el CSV y devuelve el resultado particionado en importables,
// omitidas (número ya existente en el libro) y erróneas. Con commit=true las
// importables se dan de alta vía LifecycleUseCase; con commit=false no se
// escribe nada.
func (uc *ImportUseCase) Import(ctx context.Context, raw string, commit bool) (*dto.ImportResultResponse, error) {
	result := &dto.ImportResultResponse{Errors: []string{}, Invoices: []dto.InvoiceResponse{}}

	existing, err := uc.invoiceRepo.ListNumbers()
	if err != nil {
		return nil, fmt.Errorf("leer números existentes: %w", err)
	}
	clientsByKey, err := uc.clientLookup()
	if err != nil {
		return nil, err
	}

	rows, parseErrs := readCSVRows(raw)
	result.Errors = append(result.Errors, parseErrs...)

	var staged []stagedRow
	for _, row := range rows {
		st, rowErrs, rowWarns := uc.parseRow(row, clientsByKey)
		result.Warnings = append(result.Warnings, rowWarns...)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		staged = append(staged, *st)
	}

	// Chequeos entre filas: duplicados dentro del lote (error duro, se
	// excluyen todas las apariciones) y huecos de secuencia (solo aviso).
	staged, dupErrs := excludeBatchDuplicates(staged)
	result.Errors = append(result.Errors, dupErrs...)

	batchNumbers := make([]string, 0, len(staged))
	for _, st := range staged {
		batchNumbers = append(batchNumbers, st.canonical)
	}
	result.Warnings = append(result.Warnings,
		fiscal.AuditNumbers(batchNumbers, uc.cfg.DefaultSeries, uc.cfg.SequencePadding).Gaps...)

	// Las filas cuyo número ya está en el libro se omiten en silencio.
	taken := map[fiscal.InvoiceNumber]bool{}
	for _, rawNum := range existing {
		if num, ok := fiscal.ParseNumber(rawNum, uc.cfg.DefaultSeries); ok {
			taken[num] = true
		}
	}

	for _, st := range staged {
		if taken[st.number] {
			result.Skipped++
			continue
		}
		if commit {
			resp, err := uc.lifecycle.Create(ctx, st.request)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("línea %d: alta fallida: %v", st.line, err))
				continue
			}
			result.Invoices = append(result.Invoices, *resp)
		} else {
			result.Invoices = append(result.Invoices, *toInvoiceResponse(st.preview))
		}
		result.Imported++
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

// parseRow valida una fila y construye la candidata. Los errores duros
// excluyen la fila; un descuadre de totales solo la marca con aviso.
func (uc *ImportUseCase) parseRow(row csvRow, clients map[string]*entity.Client) (*stagedRow, []string, []string) {
	var errs, warns []string
	fail := func(msg string, args ...any) {
		errs = append(errs, fmt.Sprintf("línea %d: %s", row.line, fmt.Sprintf(msg, args...)))
	}

	if len(row.fields) != csvColumns {
		fail("se esperaban %d columnas y hay %d", csvColumns, len(row.fields))
		return nil, errs, warns
	}

	rawNumber := strings.TrimSpace(row.fields[0])
	number, ok := fiscal.ParseNumber(rawNumber, uc.cfg.DefaultSeries)
	if !ok {
		fail("número de factura no reconocido: %q", rawNumber)
	}

	issueDate, errIssue := time.Parse(csvDateLayout, strings.TrimSpace(row.fields[1]))
	if errIssue != nil {
		fail("fecha de emisión inválida: %q (formato dd/mm/aaaa)", row.fields[1])
	}
	dueDate, errDue := time.Parse(csvDateLayout, strings.TrimSpace(row.fields[2]))
	if errDue != nil {
		fail("fecha de vencimiento inválida: %q (formato dd/mm/aaaa)", row.fields[2])
	}

	clientKey := strings.TrimSpace(row.fields[3])
	client := clients[clientKey]
	if client == nil {
		fail("cliente desconocido: %q", clientKey)
	}

	status := strings.TrimSpace(row.fields[4])
	if !entity.ValidStatus(status) {
		fail("estado desconocido: %q", status)
	}

	amounts := make([]decimal.Decimal, 4)
	names := []string{"base imponible", "IVA", "IRPF", "total"}
	for i := 0; i < 4; i++ {
		v, err := decimal.NewFromString(strings.TrimSpace(row.fields[5+i]))
		if err != nil {
			fail("%s inválido: %q", names[i], row.fields[5+i])
			continue
		}
		amounts[i] = v
	}
	if len(errs) > 0 {
		return nil, errs, warns
	}
	base, vat, irpf, total := amounts[0], amounts[1], amounts[2], amounts[3]

	// Descuadre aritmético: aviso, la fila sigue siendo importable.
	if !base.Add(vat).Sub(irpf).Round(2).Equal(total.Round(2)) {
		warns = append(warns, fmt.Sprintf(
			"línea %d: los totales no cuadran (base %s + IVA %s - IRPF %s != total %s)",
			row.line, base.StringFixed(2), vat.StringFixed(2), irpf.StringFixed(2), total.StringFixed(2)))
	}

	vatRate, irpfRate := decimal.Zero, decimal.Zero
	if base.IsPositive() {
		vatRate = vat.Div(base)
		irpfRate = irpf.Div(base)
	}

	// El número se normaliza a canónica con el padding configurado.
	canonical := fiscal.BuildNumber(number.Series, number.FiscalYear, number.Sequence, uc.cfg.SequencePadding)

	// El CSV no transporta líneas de detalle: se sintetiza un único concepto
	// con la base imponible como precio, del que los totales se derivan.
	item := dto.InvoiceItemRequest{
		Description: "Concepto importado",
		Quantity:    decimal.NewFromInt(1),
		PriceUnit:   base,
	}
	request := dto.SaveInvoiceRequest{
		InvoiceNumber: canonical,
		Series:        number.Series,
		ClientID:      client.ID,
		IssueDate:     issueDate.Format(dateLayout),
		DueDate:       dueDate.Format(dateLayout),
		Status:        status,
		VATRate:       &vatRate,
		IRPFRate:      &irpfRate,
		Items:         []dto.InvoiceItemRequest{item},
	}

	preview := &entity.Invoice{
		Number:     canonical,
		Series:     number.Series,
		FiscalYear: number.FiscalYear,
		Sequence:   number.Sequence,
		ClientID:   client.ID,
		ClientName: client.Name,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Status:     status,
		Items: []entity.InvoiceItem{{
			Description: item.Description,
			Quantity:    item.Quantity,
			PriceUnit:   item.PriceUnit,
			Subtotal:    base,
		}},
		BaseTotal:   base,
		VATRate:     vatRate,
		VATAmount:   vat,
		IRPFRate:    irpfRate,
		IRPFAmount:  irpf,
		TotalAmount: total,
	}

	// La fila pasa por el mismo validador fiscal que el alta manual.
	issues := fiscal.Validate(preview, uc.lifecycle.clock.Now(), uc.lifecycle.validatorConfig())
	for _, is := range issues {
		fail("%s: %s", is.Field, is.Message)
	}
	if len(errs) > 0 {
		return nil, errs, warns
	}

	return &stagedRow{line: row.line, number: number, canonical: canonical, request: request, preview: preview}, nil, warns
}

// clientLookup indexa los clientes por ID y por nombre exacto.
func (uc *ImportUseCase) clientLookup() (map[string]*entity.Client, error) {
	clients, err := uc.clientRepo.List()
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	byKey := make(map[string]*entity.Client, len(clients)*2)
	for _, c := range clients {
		byKey[c.ID] = c
		byKey[c.Name] = c
	}
	return byKey, nil
}

type csvRow struct {
	line   int
	fields []string
}

// readCSVRows trocea el CSV (UTF-8, BOM opcional, cabecera obligatoria) en
// filas de datos con su número de línea original. Los errores de formato CSV
// se devuelven como mensajes, nunca como error de la función: el informe debe
// completarse aunque todas las filas fallen.
func readCSVRows(raw string) ([]csvRow, []string) {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1 // la cuenta de columnas se valida por fila
	reader.TrimLeadingSpace = true

	var rows []csvRow
	var errs []string
	line := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			errs = append(errs, fmt.Sprintf("línea %d: CSV malformado: %v", line+1, err))
			break
		}
		line++
		if line == 1 {
			continue // cabecera
		}
		// Filas completamente vacías se ignoran.
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, csvRow{line: line, fields: record})
	}
	return rows, errs
}

// excludeBatchDuplicates excluye TODAS las filas de un número repetido dentro
// del lote y emite un único error por número duplicado.
func excludeBatchDuplicates(staged []stagedRow) ([]stagedRow, []string) {
	count := map[fiscal.InvoiceNumber]int{}
	for _, st := range staged {
		count[st.number]++
	}
	var kept []stagedRow
	var errs []string
	reported := map[fiscal.InvoiceNumber]bool{}
	for _, st := range staged {
		if count[st.number] > 1 {
			if !reported[st.number] {
				errs = append(errs, fmt.Sprintf("número duplicado en el lote: %s", st.canonical))
				reported[st.number] = true
			}
			continue
		}
		kept = append(kept, st)
	}
	return kept, errs
}
