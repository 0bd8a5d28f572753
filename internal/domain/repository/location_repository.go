package repository

import (
	"context"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

// LocationRepository consulta de sucursales y bodegas (solo lectura; el CRUD vive fuera de este servicio).
type LocationRepository interface {
	// GetDetail devuelve (nil, nil) si la ubicación no existe.
	GetDetail(ctx context.Context, loc entity.Location) (*entity.LocationDetail, error)
}
