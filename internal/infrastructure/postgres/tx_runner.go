package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

// Ensure TxRunner implements transfer.TxRunner.
var _ transfer.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunTransfer inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Cada ítem de un traslado usa su propia transacción: línea y movimiento de stock quedan juntos o no quedan.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	invoiceRepo repository.TransferInvoiceRepository,
	stockStore repository.InventoryRecordStore,
	movRepo repository.InventoryMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invoiceRepo := NewTransferInvoiceRepository(tx)
	stockStore := NewInventoryRecordRepository(tx)
	movRepo := NewInventoryMovementRepository(tx)

	if err := fn(invoiceRepo, stockStore, movRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
