package entity

import (
	"fmt"
	"strings"
)

// LocationKind tipo de ubicación que participa en un traslado.
type LocationKind string

const (
	LocationKindBranch    LocationKind = "branch"    // sucursal con inventario vendible
	LocationKindWarehouse LocationKind = "warehouse" // bodega de almacenamiento masivo
)

// Location unión etiquetada de ubicaciones: solo Branch y Warehouse la implementan.
// Quien consuma una Location debe hacer un type switch exhaustivo sobre ambas variantes.
type Location interface {
	Kind() LocationKind
	Ref() string
	isLocation()
}

// Branch sucursal. Su inventario se controla por producto.
type Branch struct {
	ID string
}

func (Branch) Kind() LocationKind { return LocationKindBranch }
func (b Branch) Ref() string      { return b.ID }
func (Branch) isLocation()        {}

// Warehouse bodega. En el camino manual su contador no se actualiza.
type Warehouse struct {
	ID string
}

func (Warehouse) Kind() LocationKind { return LocationKindWarehouse }
func (w Warehouse) Ref() string      { return w.ID }
func (Warehouse) isLocation()        {}

// ParseLocation construye la variante a partir del par (kind, id) recibido del exterior.
func ParseLocation(kind, id string) (Location, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("ubicación sin id")
	}
	switch LocationKind(strings.ToLower(strings.TrimSpace(kind))) {
	case LocationKindBranch:
		return Branch{ID: id}, nil
	case LocationKindWarehouse:
		return Warehouse{ID: id}, nil
	default:
		return nil, fmt.Errorf("tipo de ubicación desconocido %q", kind)
	}
}

// SameLocation compara dos ubicaciones por variante e id.
func SameLocation(a, b Location) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.Ref() == b.Ref()
}

// LocationKey representación estable "kind:id", útil como clave de mapas y de locks.
func LocationKey(l Location) string {
	return string(l.Kind()) + ":" + l.Ref()
}

// LocationDetail datos legibles de una ubicación (nombre y dirección) para notas y reportes.
type LocationDetail struct {
	Location Location
	Name     string
	Address  string
}
