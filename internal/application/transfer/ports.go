package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// El motor de traslados abre una transacción por ítem: línea + movimiento de stock son atómicos.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		invoiceRepo repository.TransferInvoiceRepository,
		stockStore repository.InventoryRecordStore,
		movRepo repository.InventoryMovementRepository,
	) error) error
}

// InvoiceSequence entrega el consecutivo del día para numerar facturas de traslado.
type InvoiceSequence interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}

// Locker lock distribuido de un solo intento. Si acquired es false el recurso está ocupado.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, acquired bool, err error)
}

// SlipGenerator genera la representación imprimible (PDF) de un traslado.
type SlipGenerator interface {
	GenerateTransferSlip(ctx context.Context, detail *TransferDetail) ([]byte, error)
}

// NoopLocker siempre adquiere el lock; se usa cuando no hay Redis configurado.
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}

// EventPublisher publica el resultado de un traslado para otros servicios (reportes, reposición).
type EventPublisher interface {
	PublishTransfer(ctx context.Context, ev TransferEvent) error
}
