package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
	"github.com/tu-usuario/factura-simple/internal/domain/fiscal"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// LifecycleUseCase gobierna el ciclo de vida de la factura: creación con
// asignación de número, edición (solo DRAFT), transiciones de estado,
// anulación y borrado de borradores. Es el único componente que muta el
// libro de facturas.
type LifecycleUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	txRunner    NumberingTxRunner
	clock       Clock
	cfg         FiscalConfig
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	txRunner NumberingTxRunner,
	clock Clock,
	cfg FiscalConfig,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		txRunner:    txRunner,
		clock:       clock,
		cfg:         cfg,
	}
}

// Create valida la candidata y la persiste asignándole número dentro de la
// sección serializada por (serie, año fiscal). Si la candidata trae un número
// cuya (serie, año) no coincide con el objetivo, o que colisiona con uno
// existente, se asigna uno nuevo; nunca se rechaza por eso en el alta.
func (uc *LifecycleUseCase) Create(ctx context.Context, in dto.SaveInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.buildCandidate(&in)
	if err != nil {
		return nil, err
	}
	// El número definitivo se decide dentro de la sección crítica; aquí solo
	// validamos el resto de invariantes.
	provisional := inv.Number
	inv.Number = ""
	if err := domain.NewValidationError(fiscal.Validate(inv, uc.clock.Now(), uc.validatorConfig())); err != nil {
		return nil, err
	}
	inv.Number = provisional

	series := in.Series
	if series == "" {
		if num, ok := fiscal.ParseNumber(inv.Number, uc.cfg.DefaultSeries); ok {
			series = num.Series
		} else {
			series = uc.cfg.DefaultSeries
		}
	}
	fiscalYear := inv.IssueDate.Year()

	err = uc.txRunner.RunSerialized(ctx, series, fiscalYear, func(repo repository.InvoiceRepository) error {
		numbers, err := repo.ListNumbers()
		if err != nil {
			return fmt.Errorf("leer números existentes: %w", err)
		}

		num, keep := fiscal.ParseNumber(inv.Number, series)
		keep = keep && num.Series == series && num.FiscalYear == fiscalYear && !numberTaken(numbers, series, num)
		if !keep {
			num = fiscal.NextNumber(numbers, series, fiscalYear, uc.cfg.SequencePadding)
		}
		inv.Number = fiscal.BuildNumber(num.Series, num.FiscalYear, num.Sequence, uc.cfg.SequencePadding)
		inv.Series = num.Series
		inv.FiscalYear = num.FiscalYear
		inv.Sequence = num.Sequence

		now := uc.clock.Now()
		inv.CreatedAt = now
		inv.UpdatedAt = now
		if inv.Status != entity.StatusDraft {
			inv.StatusChangedAt = &now
		}
		return repo.Save(inv)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// Save es la ruta de edición. Si la factura existe y ya no está en DRAFT se
// rechaza con ErrImmutableInvoice, sin aplicación parcial. Si está en DRAFT
// (o no existe) se revalida, se conserva el número ya asignado — nunca se
// reasigna al editar — y se actualizan los sellos de auditoría.
func (uc *LifecycleUseCase) Save(ctx context.Context, id string, in dto.SaveInvoiceRequest) (*dto.InvoiceResponse, error) {
	existing, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("cargar factura: %w", err)
	}
	if existing != nil && !existing.IsDraft() {
		return nil, domain.ErrImmutableInvoice
	}

	inv, err := uc.buildCandidate(&in)
	if err != nil {
		return nil, err
	}
	inv.ID = id

	if existing != nil {
		// El número queda congelado desde la primera asignación.
		inv.Number = existing.Number
		inv.Series = existing.Series
		inv.FiscalYear = existing.FiscalYear
		inv.Sequence = existing.Sequence
		inv.CreatedAt = existing.CreatedAt
		inv.StatusChangedAt = existing.StatusChangedAt
	} else if num, ok := fiscal.ParseNumber(inv.Number, uc.cfg.DefaultSeries); ok {
		inv.Series = num.Series
		inv.FiscalYear = num.FiscalYear
		inv.Sequence = num.Sequence
	}

	// Un número inconsistente con el año de emisión se rechaza siempre:
	// nunca se "repara" en silencio.
	if err := domain.NewValidationError(fiscal.Validate(inv, uc.clock.Now(), uc.validatorConfig())); err != nil {
		return nil, err
	}
	if inv.Number != "" {
		others, err := uc.invoiceRepo.List()
		if err != nil {
			return nil, fmt.Errorf("leer libro de facturas: %w", err)
		}
		for _, other := range others {
			if other.ID != inv.ID && sameNumber(other.Number, inv.Number, uc.cfg.DefaultSeries) {
				return nil, fmt.Errorf("%w: el número %s ya existe", domain.ErrDuplicate, inv.Number)
			}
		}
	}

	now := uc.clock.Now()
	inv.UpdatedAt = now
	if existing != nil {
		if existing.Status != inv.Status {
			inv.StatusChangedAt = &now
		}
	} else {
		inv.CreatedAt = now
		if inv.Status != entity.StatusDraft {
			inv.StatusChangedAt = &now
		}
	}
	if err := uc.invoiceRepo.Save(inv); err != nil {
		return nil, fmt.Errorf("guardar factura: %w", err)
	}
	return toInvoiceResponse(inv), nil
}

// SetStatus aplica una transición del ciclo de vida y sella StatusChangedAt.
func (uc *LifecycleUseCase) SetStatus(ctx context.Context, id, newStatus string) (*dto.InvoiceResponse, error) {
	if !entity.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, newStatus)
	}
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("cargar factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if !entity.CanTransition(inv.Status, newStatus) {
		return nil, &domain.StatusTransitionError{From: inv.Status, To: newStatus}
	}
	now := uc.clock.Now()
	inv.Status = newStatus
	inv.StatusChangedAt = &now
	inv.UpdatedAt = now
	if err := uc.invoiceRepo.Save(inv); err != nil {
		return nil, fmt.Errorf("guardar factura: %w", err)
	}
	return toInvoiceResponse(inv), nil
}

// Cancel anula la factura. La anulación nunca borra el registro: es una
// anotación exigida por la retención legal.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return uc.SetStatus(ctx, id, entity.StatusCancelled)
}

// DeleteDraft borra físicamente un borrador. Que la factura no exista o ya no
// sea borrador es una condición rutinaria del caller, no un error: se devuelve
// false sin mutar nada.
func (uc *LifecycleUseCase) DeleteDraft(ctx context.Context, id string) (bool, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return false, fmt.Errorf("cargar factura: %w", err)
	}
	if inv == nil || !inv.IsDraft() {
		return false, nil
	}
	if err := uc.invoiceRepo.Delete(id); err != nil {
		return false, fmt.Errorf("borrar borrador: %w", err)
	}
	return true, nil
}

// MarkOverdue marca como OVERDUE las facturas PENDING cuyo vencimiento ya
// pasó. Se expone como barrido explícito: el núcleo nunca recalcula el
// estado por sí solo.
func (uc *LifecycleUseCase) MarkOverdue(ctx context.Context) (int, error) {
	list, err := uc.invoiceRepo.List()
	if err != nil {
		return 0, fmt.Errorf("listar facturas: %w", err)
	}
	now := uc.clock.Now()
	marked := 0
	for _, inv := range list {
		if inv.Status != entity.StatusPending || !inv.DueDate.Before(now) {
			continue
		}
		inv.Status = entity.StatusOverdue
		inv.StatusChangedAt = &now
		inv.UpdatedAt = now
		if err := uc.invoiceRepo.Save(inv); err != nil {
			return marked, fmt.Errorf("guardar factura %s: %w", inv.ID, err)
		}
		marked++
	}
	return marked, nil
}

// AuditNumbering audita la numeración del libro completo: duplicados (error)
// y huecos de secuencia (aviso).
func (uc *LifecycleUseCase) AuditNumbering(ctx context.Context) (*dto.NumberingAuditResponse, error) {
	numbers, err := uc.invoiceRepo.ListNumbers()
	if err != nil {
		return nil, fmt.Errorf("leer números: %w", err)
	}
	report := fiscal.AuditNumbers(numbers, uc.cfg.DefaultSeries, uc.cfg.SequencePadding)
	return &dto.NumberingAuditResponse{
		Clean:      report.Clean(),
		Duplicates: append([]string{}, report.Duplicates...),
		Gaps:       append([]string{}, report.Gaps...),
	}, nil
}

// List devuelve el libro de facturas completo.
func (uc *LifecycleUseCase) List(ctx context.Context) ([]dto.InvoiceResponse, error) {
	list, err := uc.invoiceRepo.List()
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *toInvoiceResponse(inv))
	}
	return out, nil
}

// Get devuelve una factura por ID.
func (uc *LifecycleUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("cargar factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return toInvoiceResponse(inv), nil
}

// ── Construcción de la candidata ─────────────────────────────────────────────

// buildCandidate convierte la petición en entidad, aplicando el defaulting
// centralizado (serie, tipos impositivos, estado) y recalculando SIEMPRE los
// totales en servidor: los importes del cliente no se aceptan jamás.
func (uc *LifecycleUseCase) buildCandidate(in *dto.SaveInvoiceRequest) (*entity.Invoice, error) {
	var issues []domain.FieldIssue

	issueDate, err := time.Parse(dateLayout, in.IssueDate)
	if err != nil {
		issues = append(issues, domain.FieldIssue{Field: "issueDate", Message: "fecha inválida (formato AAAA-MM-DD)"})
	}
	dueDate, err := time.Parse(dateLayout, in.DueDate)
	if err != nil {
		issues = append(issues, domain.FieldIssue{Field: "dueDate", Message: "fecha inválida (formato AAAA-MM-DD)"})
	}

	status := in.Status
	if status == "" {
		status = entity.StatusDraft
	}
	if !entity.ValidStatus(status) {
		issues = append(issues, domain.FieldIssue{Field: "status", Message: "estado desconocido " + status})
	}

	if in.ClientID == "" {
		issues = append(issues, domain.FieldIssue{Field: "clientId", Message: "cliente requerido"})
	}
	clientName := ""
	if in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(in.ClientID)
		if err != nil {
			return nil, fmt.Errorf("cargar cliente: %w", err)
		}
		if client == nil {
			issues = append(issues, domain.FieldIssue{Field: "clientId", Message: "el cliente no existe"})
		} else {
			clientName = client.Name
		}
	}

	vatRate := uc.cfg.DefaultVATRate
	if in.VATRate != nil {
		vatRate = *in.VATRate
	}
	irpfRate := uc.cfg.DefaultIRPFRate
	if in.IRPFRate != nil {
		irpfRate = *in.IRPFRate
	}

	items := make([]entity.InvoiceItem, 0, len(in.Items))
	lines := make([]fiscal.TaxLine, 0, len(in.Items))
	for _, it := range in.Items {
		id := it.ID
		if id == "" {
			id = uuid.New().String()
		}
		items = append(items, entity.InvoiceItem{
			ID:          id,
			Description: it.Description,
			Quantity:    it.Quantity,
			PriceUnit:   it.PriceUnit,
			Subtotal:    it.Quantity.Mul(it.PriceUnit),
		})
		lines = append(lines, fiscal.TaxLine{Quantity: it.Quantity, PriceUnit: it.PriceUnit})
	}

	totals, err := fiscal.ComputeTotals(fiscal.TaxParams{
		Lines:         lines,
		VATRate:       vatRate,
		IRPFRate:      irpfRate,
		TaxesIncluded: in.TaxesIncluded,
	})
	if err != nil {
		return nil, err
	}

	if err := domain.NewValidationError(issues); err != nil {
		return nil, err
	}

	return &entity.Invoice{
		ID:            uuid.New().String(),
		Number:        in.InvoiceNumber,
		ClientID:      in.ClientID,
		ClientName:    clientName,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        status,
		Items:         items,
		TaxesIncluded: in.TaxesIncluded,
		BaseTotal:     totals.BaseTotal,
		VATRate:       vatRate,
		VATAmount:     totals.VATAmount,
		IRPFRate:      irpfRate,
		IRPFAmount:    totals.IRPFAmount,
		TotalAmount:   totals.TotalAmount,
	}, nil
}

func (uc *LifecycleUseCase) validatorConfig() fiscal.ValidatorConfig {
	return fiscal.ValidatorConfig{
		DefaultSeries:      uc.cfg.DefaultSeries,
		MaxPaymentTermDays: uc.cfg.MaxPaymentTermDays,
	}
}

// numberTaken indica si la secuencia ya está ocupada en el snapshot,
// comparando números descompuestos para ser insensible al padding.
func numberTaken(existing []string, fallbackSeries string, target fiscal.InvoiceNumber) bool {
	for _, raw := range existing {
		num, ok := fiscal.ParseNumber(raw, fallbackSeries)
		if ok && num == target {
			return true
		}
	}
	return false
}

// sameNumber compara dos números descompuestos (insensible al padding).
func sameNumber(a, b, fallbackSeries string) bool {
	na, okA := fiscal.ParseNumber(a, fallbackSeries)
	nb, okB := fiscal.ParseNumber(b, fallbackSeries)
	return okA && okB && na == nb
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			PriceUnit:   it.PriceUnit,
			Subtotal:    it.Subtotal,
		})
	}
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.Number,
		Series:        inv.Series,
		FiscalYear:    inv.FiscalYear,
		Sequence:      inv.Sequence,
		ClientID:      inv.ClientID,
		ClientName:    inv.ClientName,
		IssueDate:     inv.IssueDate.Format(dateLayout),
		DueDate:       inv.DueDate.Format(dateLayout),
		Status:        inv.Status,
		TaxesIncluded: inv.TaxesIncluded,
		BaseTotal:     inv.BaseTotal.Round(2),
		VATRate:       inv.VATRate,
		VATAmount:     inv.VATAmount.Round(2),
		IRPFRate:      inv.IRPFRate,
		IRPFAmount:    inv.IRPFAmount.Round(2),
		TotalAmount:   inv.TotalAmount.Round(2),
		Items:         items,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
	}
	if inv.StatusChangedAt != nil {
		resp.StatusChangedAt = inv.StatusChangedAt.Format(time.RFC3339)
	}
	return resp
}
