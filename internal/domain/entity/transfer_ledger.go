package entity

import "time"

// Clave y nombre fijos del libro de traslados. La clave tiene restricción UNIQUE en la persistencia.
const (
	LedgerKey         = "transfer-ledger"
	LedgerDisplayName = "Traslados de Inventario"
)

// TransferLedger registro canónico (único) bajo el cual se archivan todas las facturas de traslado.
// Se crea de forma perezosa en el primer uso; nunca se borra ni se modifica.
type TransferLedger struct {
	ID        string
	Key       string
	Name      string
	Primary   bool // no eliminable
	CreatedAt time.Time
}
