package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/factura-simple/internal/application/billing"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

var _ billing.NumberingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta la asignación de número dentro de una transacción
// PostgreSQL serializada por (serie, año fiscal) mediante un advisory lock
// transaccional: dos altas concurrentes del mismo grupo se encolan y la
// secuencia leer-calcular-escribir nunca se intercala. El lock se libera solo
// al terminar la transacción.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSerialized inicia una transacción, toma el advisory lock del grupo y
// ejecuta fn con un repositorio atado a la tx. Commit o Rollback según fn.
func (r *TxRunner) RunSerialized(ctx context.Context, series string, fiscalYear int, fn func(repo repository.InvoiceRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockKey := fmt.Sprintf("invoice-numbering:%s-%d", series, fiscalYear)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}

	if err := fn(NewInvoiceRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
