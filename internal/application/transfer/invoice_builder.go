package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

// CreateInput entrada de un traslado.
// RequestedLedgerID se acepta por compatibilidad pero se ignora: siempre se usa el libro canónico.
type CreateInput struct {
	Items             []ItemInput
	Source            entity.Location
	Destination       entity.Location
	RequestedLedgerID string
	Actor             string
}

// TransferDraft cabecera y líneas ya construidas (con IDs) pero aún no persistidas.
type TransferDraft struct {
	Invoice *entity.TransferInvoice
	Lines   []*entity.TransferLineItem
}

// InvoiceBuilder crea la cabecera de valor cero y las líneas de un traslado.
type InvoiceBuilder struct {
	locations repository.LocationRepository
	numbers   *NumberGenerator
	now       func() time.Time
}

// NewInvoiceBuilder construye el builder.
func NewInvoiceBuilder(locations repository.LocationRepository, numbers *NumberGenerator) *InvoiceBuilder {
	return &InvoiceBuilder{
		locations: locations,
		numbers:   numbers,
		now:       time.Now,
	}
}

// Validate aplica las reglas de entrada; no hace escrituras.
func (b *InvoiceBuilder) Validate(in CreateInput) error {
	if in.Source == nil {
		return domain.NewValidationError("source", "requerido")
	}
	if in.Destination == nil {
		return domain.NewValidationError("destination", "requerido")
	}
	if entity.SameLocation(in.Source, in.Destination) {
		return domain.NewValidationError("destination", "origen y destino no pueden ser la misma ubicación")
	}
	return validateItems(in.Items)
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "el traslado debe tener al menos un producto")
	}
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.NewValidationError(field+".product_id", "requerido")
		}
		if it.Quantity <= 0 {
			return domain.NewValidationError(field+".quantity", "debe ser un entero positivo")
		}
		if _, dup := seen[it.ProductID]; dup {
			return domain.NewValidationError(field+".product_id", "producto repetido en el traslado")
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// Prepare valida, resuelve los nombres de las ubicaciones, genera el número y arma
// cabecera y líneas. La persistencia ocurre ítem por ítem en el coordinador.
func (b *InvoiceBuilder) Prepare(ctx context.Context, ledger *entity.TransferLedger, in CreateInput) (*TransferDraft, error) {
	if err := b.Validate(in); err != nil {
		return nil, err
	}
	if ledger == nil || ledger.ID == "" {
		return nil, &domain.NotFoundError{Resource: "libro de traslados"}
	}

	sourceName, err := b.locationName(ctx, in.Source, "source")
	if err != nil {
		return nil, err
	}
	destinationName, err := b.locationName(ctx, in.Destination, "destination")
	if err != nil {
		return nil, err
	}

	number, err := b.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}

	now := b.now()
	inv := &entity.TransferInvoice{
		ID:          uuid.New().String(),
		Number:      number,
		LedgerID:    ledger.ID,
		Source:      in.Source,
		Destination: in.Destination,
		NetTotal:    decimal.Zero,
		TaxTotal:    decimal.Zero,
		GrandTotal:  decimal.Zero,
		Notes:       entity.TransferNotes(sourceName, destinationName),
		ItemCount:   len(in.Items),
		CreatedBy:   in.Actor,
		CreatedAt:   now,
	}
	return &TransferDraft{Invoice: inv, Lines: b.buildLines(inv, in.Items, now)}, nil
}

func (b *InvoiceBuilder) buildLines(inv *entity.TransferInvoice, items []ItemInput, now time.Time) []*entity.TransferLineItem {
	lines := make([]*entity.TransferLineItem, 0, len(items))
	for i, it := range items {
		lines = append(lines, &entity.TransferLineItem{
			ID:        uuid.New().String(),
			InvoiceID: inv.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Position:  i,
			Notes:     entity.TransferMarker,
			CreatedAt: now,
		})
	}
	return lines
}

func (b *InvoiceBuilder) locationName(ctx context.Context, loc entity.Location, field string) (string, error) {
	detail, err := b.locations.GetDetail(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("consultar ubicación %s: %w", entity.LocationKey(loc), err)
	}
	if detail == nil {
		return "", domain.NewValidationError(field, "ubicación inexistente: "+entity.LocationKey(loc))
	}
	name := strings.TrimSpace(norm.NFC.String(detail.Name))
	if name == "" {
		name = entity.LocationKey(loc)
	}
	return name, nil
}
