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

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de traslados sobre la tabla transfer_ledgers (key UNIQUE).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// FindByKey devuelve (nil, nil) si no existe.
func (r *LedgerRepo) FindByKey(ctx context.Context, key string) (*entity.TransferLedger, error) {
	query := `SELECT id, key, name, is_primary, created_at FROM transfer_ledgers WHERE key = $1`
	var l entity.TransferLedger
	err := r.q.QueryRow(ctx, query, key).Scan(&l.ID, &l.Key, &l.Name, &l.Primary, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer ledger: %w", err)
	}
	return &l, nil
}

// Create inserta el libro; dos creaciones concurrentes colapsan en una sola fila (ErrDuplicate para la perdedora).
func (r *LedgerRepo) Create(ctx context.Context, l *entity.TransferLedger) error {
	query := `
		INSERT INTO transfer_ledgers (id, key, name, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO NOTHING`
	cmd, err := r.q.Exec(ctx, query, l.ID, l.Key, l.Name, l.Primary, l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer ledger: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}
