package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, transaction_id, product_id, location_kind, location_id, type,
		                                 quantity, quantity_before, quantity_after, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.ProductID, string(m.Location.Kind()), m.Location.Ref(), m.Type,
		m.Quantity, m.Before, m.After, m.CreatedAt, nullIfEmpty(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByTransaction lista los movimientos de un traslado en orden de creación.
func (r *InventoryMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, transaction_id, product_id, location_kind, location_id, type,
		       quantity, quantity_before, quantity_after, created_at, created_by
		FROM inventory_movements WHERE transaction_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list movements by transaction: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var (
			m         entity.InventoryMovement
			kind, id  string
			createdBy *string
		)
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.ProductID, &kind, &id, &m.Type,
			&m.Quantity, &m.Before, &m.After, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if m.Location, err = entity.ParseLocation(kind, id); err != nil {
			return nil, fmt.Errorf("movement %s location: %w", m.ID, err)
		}
		m.CreatedBy = stringOrEmpty(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
