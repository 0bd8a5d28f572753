package repository

import (
	"context"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

// InventoryRecordStore puerto del almacén de cantidades por (producto, ubicación).
type InventoryRecordStore interface {
	// Get devuelve (nil, nil) si no hay registro.
	Get(ctx context.Context, productID string, loc entity.Location) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción. Si no existe la crea con
	// cantidad cero, así dos transacciones sobre un registro nuevo también se serializan.
	GetForUpdate(ctx context.Context, productID string, loc entity.Location) (*entity.InventoryRecord, error)
	Upsert(ctx context.Context, record *entity.InventoryRecord) error
	// AtomicBranchTransfer resta qty en src y suma qty en dst de forma indivisible.
	// Falla con domain.ErrInsufficientStock si qty supera el stock del origen.
	AtomicBranchTransfer(ctx context.Context, productID string, src, dst entity.Branch, qty int64, actor string) error
	ListByLocation(ctx context.Context, loc entity.Location) ([]*entity.InventoryRecord, error)
}
