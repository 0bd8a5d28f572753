package repository

import (
	"context"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

// InventoryMovementRepository puerto de persistencia para el rastro de movimientos.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error)
}
