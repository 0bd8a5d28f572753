package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransferMarker token literal al inicio de las notas que distingue un traslado de una factura comercial.
const TransferMarker = "[TRANSFER]"

// TransferInvoice cabecera de un traslado. Los montos siempre son cero; inmutable una vez creada.
type TransferInvoice struct {
	ID          string
	Number      string
	LedgerID    string
	Source      Location
	Destination Location
	NetTotal    decimal.Decimal
	TaxTotal    decimal.Decimal
	GrandTotal  decimal.Decimal
	Notes       string
	ItemCount   int // productos del carrito original; las líneas guardadas nunca lo superan
	CreatedBy   string
	CreatedAt   time.Time
}

// Completed indica si ya se aplicaron todas las líneas del carrito.
func (inv *TransferInvoice) Completed(appliedLines int) bool {
	return inv.ItemCount > 0 && appliedLines >= inv.ItemCount
}

// TransferLineItem línea de un traslado (un producto con su cantidad).
type TransferLineItem struct {
	ID        string
	InvoiceID string
	ProductID string
	Quantity  int64
	Position  int // orden dentro del carrito, base 0
	Notes     string
	CreatedAt time.Time
}

// TransferNotes arma las notas de la cabecera: marcador + "<origen> → <destino>".
func TransferNotes(sourceName, destinationName string) string {
	return TransferMarker + " " + sourceName + " → " + destinationName
}

// IsTransferNotes indica si unas notas pertenecen a una factura de traslado.
func IsTransferNotes(notes string) bool {
	return strings.HasPrefix(notes, TransferMarker)
}
