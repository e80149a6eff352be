package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `
	id, number, series, fiscal_year, sequence, client_id, client_name,
	issue_date, due_date, status, taxes_included,
	base_total, vat_rate, vat_amount, irpf_rate, irpf_amount, total_amount,
	created_at, updated_at, status_changed_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// List devuelve el libro completo con sus líneas, ordenado por número.
func (r *InvoiceRepo) List() ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices ORDER BY series, fiscal_year, sequence`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	byID := map[string]*entity.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, inv)
		byID[inv.ID] = inv
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.listItems("")
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if inv, ok := byID[it.invoiceID]; ok {
			inv.Items = append(inv.Items, it.item)
		}
	}
	return list, nil
}

// GetByID obtiene una factura completa por ID. Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	items, err := r.listItems(id)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		inv.Items = append(inv.Items, it.item)
	}
	return inv, nil
}

// Save hace upsert de la cabecera y reemplaza las líneas en bloque. La
// factura se guarda siempre entera: las líneas no se editan sueltas.
func (r *InvoiceRepo) Save(inv *entity.Invoice) error {
	ctx := context.Background()
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			number = EXCLUDED.number,
			series = EXCLUDED.series,
			fiscal_year = EXCLUDED.fiscal_year,
			sequence = EXCLUDED.sequence,
			client_id = EXCLUDED.client_id,
			client_name = EXCLUDED.client_name,
			issue_date = EXCLUDED.issue_date,
			due_date = EXCLUDED.due_date,
			status = EXCLUDED.status,
			taxes_included = EXCLUDED.taxes_included,
			base_total = EXCLUDED.base_total,
			vat_rate = EXCLUDED.vat_rate,
			vat_amount = EXCLUDED.vat_amount,
			irpf_rate = EXCLUDED.irpf_rate,
			irpf_amount = EXCLUDED.irpf_amount,
			total_amount = EXCLUDED.total_amount,
			updated_at = EXCLUDED.updated_at,
			status_changed_at = EXCLUDED.status_changed_at`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, inv.Series, inv.FiscalYear, inv.Sequence,
		inv.ClientID, inv.ClientName, inv.IssueDate, inv.DueDate, inv.Status, inv.TaxesIncluded,
		inv.BaseTotal, inv.VATRate, inv.VATAmount, inv.IRPFRate, inv.IRPFAmount, inv.TotalAmount,
		inv.CreatedAt, inv.UpdatedAt, inv.StatusChangedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el número %s ya existe", domain.ErrDuplicate, inv.Number)
		}
		return fmt.Errorf("upsert invoice: %w", err)
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	for pos, it := range inv.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, position, description, quantity, price_unit, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, inv.ID, pos, it.Description, it.Quantity, it.PriceUnit, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

// Delete borra la factura; las líneas caen por ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// ListNumbers devuelve solo los números (consulta ligera para el secuenciador
// y la auditoría).
func (r *InvoiceRepo) ListNumbers() ([]string, error) {
	rows, err := r.q.Query(context.Background(), `SELECT number FROM invoices`)
	if err != nil {
		return nil, fmt.Errorf("list invoice numbers: %w", err)
	}
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

type invoiceItemRow struct {
	invoiceID string
	item      entity.InvoiceItem
}

// listItems carga líneas; con invoiceID vacío carga las de todo el libro.
func (r *InvoiceRepo) listItems(invoiceID string) ([]invoiceItemRow, error) {
	query := `
		SELECT invoice_id, id, description, quantity, price_unit, subtotal
		FROM invoice_items`
	args := []any{}
	if invoiceID != "" {
		query += ` WHERE invoice_id = $1`
		args = append(args, invoiceID)
	}
	query += ` ORDER BY invoice_id, position`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []invoiceItemRow
	for rows.Next() {
		var row invoiceItemRow
		if err := rows.Scan(&row.invoiceID, &row.item.ID, &row.item.Description,
			&row.item.Quantity, &row.item.PriceUnit, &row.item.Subtotal); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Series, &inv.FiscalYear, &inv.Sequence,
		&inv.ClientID, &inv.ClientName, &inv.IssueDate, &inv.DueDate,
		&inv.Status, &inv.TaxesIncluded,
		&inv.BaseTotal, &inv.VATRate, &inv.VATAmount, &inv.IRPFRate, &inv.IRPFAmount, &inv.TotalAmount,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.StatusChangedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
