package repository

import (
	"context"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

// LedgerRepository puerto de persistencia del libro de traslados (fila única por clave).
type LedgerRepository interface {
	// FindByKey devuelve (nil, nil) si no existe.
	FindByKey(ctx context.Context, key string) (*entity.TransferLedger, error)
	// Create inserta el libro. Si la clave ya existe debe devolver domain.ErrDuplicate
	// (o colapsar la inserción) en lugar de crear un segundo libro.
	Create(ctx context.Context, ledger *entity.TransferLedger) error
}
