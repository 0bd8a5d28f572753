package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

var _ repository.InventoryRecordStore = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo cantidades por (producto, ubicación) en inventory_records (usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

// Get obtiene el registro; (nil, nil) si no existe.
func (r *InventoryRecordRepo) Get(ctx context.Context, productID string, loc entity.Location) (*entity.InventoryRecord, error) {
	query := `
		SELECT quantity, updated_at FROM inventory_records
		WHERE product_id = $1 AND location_kind = $2 AND location_id = $3`
	return r.get(ctx, query, productID, loc)
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si no existe, primero la inserta en cero:
// un FOR UPDATE sobre una fila ausente no bloquea nada y dos transacciones concurrentes
// escribirían ambas sobre el mismo valor inicial.
func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, productID string, loc entity.Location) (*entity.InventoryRecord, error) {
	ensure := `
		INSERT INTO inventory_records (product_id, location_kind, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (product_id, location_kind, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, productID, string(loc.Kind()), loc.Ref()); err != nil {
		return nil, fmt.Errorf("ensure inventory record: %w", err)
	}
	query := `
		SELECT quantity, updated_at FROM inventory_records
		WHERE product_id = $1 AND location_kind = $2 AND location_id = $3
		FOR UPDATE`
	return r.get(ctx, query, productID, loc)
}

func (r *InventoryRecordRepo) get(ctx context.Context, query, productID string, loc entity.Location) (*entity.InventoryRecord, error) {
	rec := entity.InventoryRecord{ProductID: productID, Location: loc}
	err := r.q.QueryRow(ctx, query, productID, string(loc.Kind()), loc.Ref()).Scan(&rec.Quantity, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return &rec, nil
}

// Upsert inserta o actualiza la cantidad.
func (r *InventoryRecordRepo) Upsert(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (product_id, location_kind, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, location_kind, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, rec.ProductID, string(rec.Location.Kind()), rec.Location.Ref(), rec.Quantity)
	if err != nil {
		return fmt.Errorf("upsert inventory record: %w", err)
	}
	return nil
}

// AtomicBranchTransfer descuenta del origen y acredita al destino en una sola sentencia.
// Si el origen no tiene qty unidades la sentencia no afecta filas y se devuelve ErrInsufficientStock.
func (r *InventoryRecordRepo) AtomicBranchTransfer(ctx context.Context, productID string, src, dst entity.Branch, qty int64, _ string) error {
	query := `
		WITH src AS (
			UPDATE inventory_records SET quantity = quantity - $4, updated_at = now()
			WHERE product_id = $1 AND location_kind = 'branch' AND location_id = $2 AND quantity >= $4
			RETURNING product_id
		)
		INSERT INTO inventory_records (product_id, location_kind, location_id, quantity, updated_at)
		SELECT product_id, 'branch', $3, $4, now() FROM src
		ON CONFLICT (product_id, location_kind, location_id)
		DO UPDATE SET quantity = inventory_records.quantity + EXCLUDED.quantity, updated_at = now()`
	cmd, err := r.q.Exec(ctx, query, productID, src.ID, dst.ID, qty)
	if err != nil {
		return fmt.Errorf("atomic branch transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// ListByLocation lista los registros de una ubicación ordenados por producto.
func (r *InventoryRecordRepo) ListByLocation(ctx context.Context, loc entity.Location) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT product_id, quantity, updated_at FROM inventory_records
		WHERE location_kind = $1 AND location_id = $2 ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, string(loc.Kind()), loc.Ref())
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec := entity.InventoryRecord{Location: loc}
		if err := rows.Scan(&rec.ProductID, &rec.Quantity, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
