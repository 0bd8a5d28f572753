package entity

import "time"

// InventoryRecord cantidad de un producto en una ubicación.
// Se crea con la primera llegada de stock y no se elimina aunque quede en cero.
type InventoryRecord struct {
	ProductID string
	Location  Location
	Quantity  int64
	UpdatedAt time.Time
}
