package transfer

import (
	"time"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

// Tipos de evento de traslado.
const (
	EventTransferCompleted = "transfer.completed"
	EventTransferAborted   = "transfer.aborted"
)

// TransferEvent resultado de un traslado ya persistido (completo o abortado con prefijo aplicado).
type TransferEvent struct {
	Type          string
	InvoiceID     string
	InvoiceNumber string
	LedgerID      string
	Source        entity.Location
	Destination   entity.Location
	State         State
	AbortedAt     int
	Items         []ItemResult
	Actor         string
	OccurredAt    time.Time
}

func newTransferEvent(res *TransferResult, inv *entity.TransferInvoice, actor string, at time.Time) TransferEvent {
	typ := EventTransferCompleted
	if res.State == StateAborted {
		typ = EventTransferAborted
	}
	return TransferEvent{
		Type:          typ,
		InvoiceID:     res.InvoiceID,
		InvoiceNumber: res.InvoiceNumber,
		LedgerID:      res.LedgerID,
		Source:        inv.Source,
		Destination:   inv.Destination,
		State:         res.State,
		AbortedAt:     res.AbortedAt,
		Items:         append([]ItemResult(nil), res.Items...),
		Actor:         actor,
		OccurredAt:    at,
	}
}
