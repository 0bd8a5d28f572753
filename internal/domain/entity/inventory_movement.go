package entity

import "time"

// Tipos de movimiento.
const (
	MovementTypeTransferOut = "TRANSFER_OUT" // salida de la ubicación origen
	MovementTypeTransferIn  = "TRANSFER_IN"  // entrada a la ubicación destino
	MovementTypeAdjustment  = "ADJUSTMENT"   // conteo físico o corrección manual
)

// InventoryMovement registro de auditoría de cada cambio de contador.
// TransactionID es el ID de la factura de traslado (o del ajuste).
type InventoryMovement struct {
	ID            string
	TransactionID string
	ProductID     string
	Location      Location
	Type          string
	Quantity      int64 // positivo entrada, negativo salida
	Before        int64
	After         int64
	CreatedAt     time.Time
	CreatedBy     string
}
