package inventory

import (
	"context"

	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

// TxRunner el mismo runner transaccional de los traslados; los ajustes solo usan stock y movimientos.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		invoiceRepo repository.TransferInvoiceRepository,
		stockStore repository.InventoryRecordStore,
		movRepo repository.InventoryMovementRepository,
	) error) error
}
