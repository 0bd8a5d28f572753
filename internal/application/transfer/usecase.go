package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
	"github.com/jhoicas/pos-backoffice/pkg/logger"
	"github.com/jhoicas/pos-backoffice/pkg/metrics"
)

// TransferDetail cabecera, líneas y nombres de las ubicaciones de un traslado persistido.
type TransferDetail struct {
	Invoice     *entity.TransferInvoice
	Lines       []*entity.TransferLineItem
	Source      *entity.LocationDetail
	Destination *entity.LocationDetail
}

// TransferUseCase orquesta un traslado: libro → cabecera → movimiento por ítem → resultado.
// Los ítems se procesan en orden y de a uno; el primero que falla detiene el lote
// y los anteriores quedan aplicados (sin compensación). Resume continúa desde el ítem fallido.
type TransferUseCase struct {
	txRunner    TxRunner
	ledger      *LedgerManager
	builder     *InvoiceBuilder
	coordinator *MovementCoordinator
	invoiceRepo repository.TransferInvoiceRepository
	locations   repository.LocationRepository
	slips       SlipGenerator
	events      EventPublisher
	log         *logger.Logger
	metrics     *metrics.TransferMetrics
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner TxRunner,
	ledger *LedgerManager,
	builder *InvoiceBuilder,
	coordinator *MovementCoordinator,
	invoiceRepo repository.TransferInvoiceRepository,
	locations repository.LocationRepository,
	slips SlipGenerator,
	log *logger.Logger,
	m *metrics.TransferMetrics,
) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		builder:     builder,
		coordinator: coordinator,
		invoiceRepo: invoiceRepo,
		locations:   locations,
		slips:       slips,
		log:         log,
		metrics:     m,
	}
}

// SetEventPublisher activa la publicación de eventos de traslado. nil la desactiva.
func (uc *TransferUseCase) SetEventPublisher(p EventPublisher) {
	uc.events = p
}

// Execute ejecuta un traslado completo.
// Si un ítem falla devuelve el resultado parcial (State=Aborted) junto con el *domain.OperationFailure.
func (uc *TransferUseCase) Execute(ctx context.Context, in CreateInput) (*TransferResult, error) {
	started := time.Now()
	res := &TransferResult{State: StateInitiated, AbortedAt: -1}

	// 1. Validación previa a cualquier escritura
	if err := uc.builder.Validate(in); err != nil {
		return nil, err
	}

	// 2. Libro canónico; el libro solicitado por el llamador se ignora
	ledger, err := uc.ledger.EnsureExists(ctx)
	if err != nil {
		return nil, err
	}
	res.LedgerID = ledger.ID
	res.State = StateLedgerEnsured
	if in.RequestedLedgerID != "" && in.RequestedLedgerID != ledger.ID {
		uc.log.Warn().
			Str("requested_ledger_id", in.RequestedLedgerID).
			Str("ledger_id", ledger.ID).
			Msg("libro solicitado ignorado; se usa el libro de traslados")
	}

	// 3. Cabecera y líneas
	draft, err := uc.builder.Prepare(ctx, ledger, in)
	if err != nil {
		return nil, err
	}
	res.InvoiceID = draft.Invoice.ID
	res.InvoiceNumber = draft.Invoice.Number
	res.State = StateInvoiceCreated
	res.Items = pendingResults(draft.Lines)

	// 4. Movimientos
	err = uc.process(ctx, draft, 0, in.Actor, res, true)
	uc.finish(res, started, err)
	uc.publish(ctx, res, draft.Invoice, in.Actor)
	return res, err
}

// Resume continúa un traslado abortado. items debe ser el mismo carrito original:
// las líneas ya persistidas tienen que coincidir con su prefijo y se reanuda desde la primera faltante.
// Un traslado completo no se reabre (domain.ErrConflict).
func (uc *TransferUseCase) Resume(ctx context.Context, invoiceID string, items []ItemInput, actor string) (*TransferResult, error) {
	started := time.Now()
	if err := validateItems(items); err != nil {
		return nil, err
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener traslado: %w", err)
	}
	if inv == nil || !entity.IsTransferNotes(inv.Notes) {
		return nil, &domain.NotFoundError{Resource: "traslado " + invoiceID}
	}
	applied, err := uc.invoiceRepo.GetLinesByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener líneas del traslado: %w", err)
	}
	if inv.Completed(len(applied)) {
		return nil, fmt.Errorf("traslado %s ya completado: %w", inv.Number, domain.ErrConflict)
	}
	if len(items) != inv.ItemCount {
		return nil, domain.NewValidationError("items", fmt.Sprintf("el traslado tiene %d productos y el carrito %d", inv.ItemCount, len(items)))
	}
	for i, line := range applied {
		if line.ProductID != items[i].ProductID || line.Quantity != items[i].Quantity {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d]", i), "no coincide con la línea ya aplicada")
		}
	}

	ledgerID := inv.LedgerID
	if ledgerID == "" {
		ledger, err := uc.ledger.EnsureExists(ctx)
		if err != nil {
			return nil, err
		}
		ledgerID = ledger.ID
	}

	draft := &TransferDraft{Invoice: inv, Lines: uc.builder.buildLines(inv, items, time.Now())}
	for i, line := range applied {
		draft.Lines[i] = line
	}
	res := &TransferResult{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		LedgerID:      ledgerID,
		State:         StateInvoiceCreated,
		AbortedAt:     -1,
		Items:         pendingResults(draft.Lines),
	}
	for i := range applied {
		res.Items[i].Applied = true
	}

	err = uc.process(ctx, draft, len(applied), actor, res, false)
	uc.finish(res, started, err)
	uc.publish(ctx, res, draft.Invoice, actor)
	return res, err
}

// process mueve los ítems desde start, uno por transacción.
// fresh indica que la cabecera todavía no existe y debe escribirse junto con el primer ítem.
func (uc *TransferUseCase) process(ctx context.Context, draft *TransferDraft, start int, actor string, res *TransferResult, fresh bool) error {
	for i := start; i < len(draft.Lines); i++ {
		res.State = StateProcessing
		line := draft.Lines[i]
		req := MoveRequest{
			Invoice:     draft.Invoice,
			Line:        line,
			WriteHeader: fresh && i == start,
			Actor:       actor,
		}
		err := uc.txRunner.RunTransfer(ctx, func(
			invoiceRepo repository.TransferInvoiceRepository,
			stockStore repository.InventoryRecordStore,
			movRepo repository.InventoryMovementRepository,
		) error {
			return uc.coordinator.Move(ctx, invoiceRepo, stockStore, movRepo, req)
		})
		if err != nil {
			of, ok := domain.AsOperationFailure(err)
			if !ok {
				// begin/commit de la transacción del ítem
				of = &domain.OperationFailure{ProductID: line.ProductID, Stage: domain.StageItemCreate, Index: i, Err: err}
			}
			res.State = StateAborted
			res.AbortedAt = i
			res.Items[i].Stage = of.Stage
			if fresh && i == start {
				// la cabecera iba en la misma transacción: no quedó nada persistido
				res.InvoiceID = ""
				res.InvoiceNumber = ""
			}
			return of
		}
		res.Items[i].Applied = true
	}
	res.State = StateCompleted
	return nil
}

func (uc *TransferUseCase) finish(res *TransferResult, started time.Time, err error) {
	elapsed := time.Since(started)
	if err == nil {
		res.Message = fmt.Sprintf("traslado %s completado: %d producto(s) trasladados", res.InvoiceNumber, len(res.Items))
		uc.metrics.ObserveTransfer("completed", elapsed)
		uc.log.Info().
			Str("invoice_id", res.InvoiceID).
			Str("invoice_number", res.InvoiceNumber).
			Int("items", len(res.Items)).
			Dur("elapsed", elapsed).
			Msg("traslado completado")
		return
	}

	var of *domain.OperationFailure
	if errors.As(err, &of) {
		res.Message = fmt.Sprintf("%s; %d de %d producto(s) quedaron aplicados y deben conciliarse", of.Error(), res.AppliedCount(), len(res.Items))
		uc.metrics.ObserveTransfer("aborted", elapsed)
		uc.log.Error().
			Err(of.Err).
			Str("invoice_id", res.InvoiceID).
			Str("product_id", of.ProductID).
			Str("stage", string(of.Stage)).
			Int("aborted_at", of.Index).
			Int("applied", res.AppliedCount()).
			Msg("traslado abortado")
	}
}

// publish notifica el resultado. Un error al publicar no revierte el traslado: solo se registra.
func (uc *TransferUseCase) publish(ctx context.Context, res *TransferResult, inv *entity.TransferInvoice, actor string) {
	if uc.events == nil || res.InvoiceID == "" {
		return
	}
	if err := uc.events.PublishTransfer(ctx, newTransferEvent(res, inv, actor, time.Now())); err != nil {
		uc.log.Warn().
			Err(err).
			Str("invoice_id", res.InvoiceID).
			Str("state", string(res.State)).
			Msg("publicar evento de traslado")
	}
}

// Get devuelve un traslado con sus líneas y los datos legibles de origen y destino.
func (uc *TransferUseCase) Get(ctx context.Context, invoiceID string) (*TransferDetail, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener traslado: %w", err)
	}
	if inv == nil || !entity.IsTransferNotes(inv.Notes) {
		return nil, &domain.NotFoundError{Resource: "traslado " + invoiceID}
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener líneas del traslado: %w", err)
	}
	detail := &TransferDetail{Invoice: inv, Lines: lines}
	if detail.Source, err = uc.detailOrKey(ctx, inv.Source); err != nil {
		return nil, err
	}
	if detail.Destination, err = uc.detailOrKey(ctx, inv.Destination); err != nil {
		return nil, err
	}
	return detail, nil
}

// Slip genera el PDF del traslado y el nombre de archivo sugerido.
func (uc *TransferUseCase) Slip(ctx context.Context, invoiceID string) ([]byte, string, error) {
	if uc.slips == nil {
		return nil, "", fmt.Errorf("generador de comprobantes no configurado")
	}
	detail, err := uc.Get(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.slips.GenerateTransferSlip(ctx, detail)
	if err != nil {
		return nil, "", fmt.Errorf("generar comprobante: %w", err)
	}
	return pdf, detail.Invoice.Number + ".pdf", nil
}

// LinkOrphans delega en el gestor del libro y actualiza métricas.
func (uc *TransferUseCase) LinkOrphans(ctx context.Context) (int64, error) {
	n, err := uc.ledger.LinkOrphans(ctx)
	if err != nil {
		return 0, err
	}
	uc.metrics.AddOrphansLinked(n)
	return n, nil
}

func (uc *TransferUseCase) detailOrKey(ctx context.Context, loc entity.Location) (*entity.LocationDetail, error) {
	d, err := uc.locations.GetDetail(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("consultar ubicación: %w", err)
	}
	if d == nil {
		// la ubicación pudo ser eliminada después del traslado
		return &entity.LocationDetail{Location: loc, Name: entity.LocationKey(loc)}, nil
	}
	return d, nil
}

func pendingResults(lines []*entity.TransferLineItem) []ItemResult {
	out := make([]ItemResult, len(lines))
	for i, l := range lines {
		out[i] = ItemResult{ProductID: l.ProductID, Quantity: l.Quantity, LineItemID: l.ID}
	}
	return out
}
