package transfer

import "github.com/jhoicas/pos-backoffice/internal/domain"

// State estado de una operación de traslado.
// Initiated → LedgerEnsured → InvoiceCreated → Processing → Completed | Aborted.
// Completed y Aborted son terminales.
type State string

const (
	StateInitiated      State = "INITIATED"
	StateLedgerEnsured  State = "LEDGER_ENSURED"
	StateInvoiceCreated State = "INVOICE_CREATED"
	StateProcessing     State = "PROCESSING"
	StateCompleted      State = "COMPLETED"
	StateAborted        State = "ABORTED"
)

// ItemInput producto y cantidad tal como llegan del carrito.
type ItemInput struct {
	ProductID string
	Quantity  int64
}

// ItemResult resultado de un ítem. Stage solo se llena en el ítem que falló.
type ItemResult struct {
	ProductID  string
	Quantity   int64
	Applied    bool
	Stage      domain.Stage
	LineItemID string
}

// TransferResult salida agregada de un traslado.
// AbortedAt es el índice (base 0) del ítem que falló, o -1.
type TransferResult struct {
	InvoiceID     string
	InvoiceNumber string
	LedgerID      string
	State         State
	AbortedAt     int
	Items         []ItemResult
	Message       string
}

// AppliedCount cantidad de ítems aplicados.
func (r *TransferResult) AppliedCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Applied {
			n++
		}
	}
	return n
}
