package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo lectura de sucursales (branches) y bodegas (warehouses).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetDetail obtiene nombre y dirección; (nil, nil) si no existe.
func (r *LocationRepo) GetDetail(ctx context.Context, loc entity.Location) (*entity.LocationDetail, error) {
	var query string
	switch loc.(type) {
	case entity.Branch:
		query = `SELECT name, address FROM branches WHERE id = $1`
	case entity.Warehouse:
		query = `SELECT name, address FROM warehouses WHERE id = $1`
	default:
		return nil, fmt.Errorf("tipo de ubicación %T no soportado", loc)
	}
	d := entity.LocationDetail{Location: loc}
	err := r.q.QueryRow(ctx, query, loc.Ref()).Scan(&d.Name, &d.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &d, nil
}
