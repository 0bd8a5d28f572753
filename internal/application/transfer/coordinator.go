package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
	"github.com/jhoicas/pos-backoffice/pkg/metrics"
)

// Caminos de movimiento.
const (
	PathAtomic = "atomic" // sucursal → sucursal, primitiva atómica del almacén
	PathManual = "manual" // cualquier par con bodega: decremento/incremento con bloqueo de fila
)

// MoveRequest un ítem a mover. WriteHeader se activa solo en el primer ítem de un traslado nuevo,
// para que la cabecera nunca quede persistida sin al menos una línea.
type MoveRequest struct {
	Invoice     *entity.TransferInvoice
	Line        *entity.TransferLineItem
	WriteHeader bool
	Actor       string
}

// MovementCoordinator mueve el stock de un ítem según el par (origen, destino).
// Se ejecuta dentro de la transacción del ítem: si algo falla, nada del ítem queda aplicado.
type MovementCoordinator struct {
	metrics *metrics.TransferMetrics
	now     func() time.Time
}

// NewMovementCoordinator construye el coordinador. metrics puede ser nil.
func NewMovementCoordinator(m *metrics.TransferMetrics) *MovementCoordinator {
	return &MovementCoordinator{metrics: m, now: time.Now}
}

// Move escribe (opcionalmente) la cabecera, la línea y aplica el movimiento.
// Cualquier falla se devuelve como *domain.OperationFailure con la etapa correspondiente.
func (c *MovementCoordinator) Move(
	ctx context.Context,
	invoiceRepo repository.TransferInvoiceRepository,
	stockStore repository.InventoryRecordStore,
	movRepo repository.InventoryMovementRepository,
	req MoveRequest,
) error {
	line := req.Line
	fail := func(stage domain.Stage, err error) error {
		return &domain.OperationFailure{ProductID: line.ProductID, Stage: stage, Index: line.Position, Err: err}
	}

	if req.WriteHeader {
		if err := invoiceRepo.Create(ctx, req.Invoice); err != nil {
			return fail(domain.StageHeaderCreate, err)
		}
	}
	if err := invoiceRepo.CreateLine(ctx, line); err != nil {
		return fail(domain.StageItemCreate, err)
	}

	m := &mover{store: stockStore, movRepo: movRepo, invoice: req.Invoice, line: line, actor: req.Actor, now: c.now()}

	var (
		path string
		err  error
	)
	switch src := req.Invoice.Source.(type) {
	case entity.Branch:
		switch dst := req.Invoice.Destination.(type) {
		case entity.Branch:
			path, err = PathAtomic, m.atomic(ctx, src, dst)
		case entity.Warehouse:
			path, err = PathManual, m.manual(ctx)
		default:
			return fail(domain.StageItemCreate, fmt.Errorf("destino de tipo %T no soportado", dst))
		}
	case entity.Warehouse:
		switch dst := req.Invoice.Destination.(type) {
		case entity.Branch, entity.Warehouse:
			path, err = PathManual, m.manual(ctx)
		default:
			return fail(domain.StageItemCreate, fmt.Errorf("destino de tipo %T no soportado", dst))
		}
	default:
		return fail(domain.StageItemCreate, fmt.Errorf("origen de tipo %T no soportado", src))
	}

	if err != nil {
		c.metrics.IncItem(path, "failed")
		return err
	}
	c.metrics.IncItem(path, "applied")
	return nil
}

// mover estado de un único ítem en curso.
type mover struct {
	store   repository.InventoryRecordStore
	movRepo repository.InventoryMovementRepository
	invoice *entity.TransferInvoice
	line    *entity.TransferLineItem
	actor   string
	now     time.Time
}

func (m *mover) fail(stage domain.Stage, err error) error {
	return &domain.OperationFailure{ProductID: m.line.ProductID, Stage: stage, Index: m.line.Position, Err: err}
}

// atomic usa la primitiva indivisible del almacén y luego deja el rastro con los saldos resultantes.
func (m *mover) atomic(ctx context.Context, src, dst entity.Branch) error {
	qty := m.line.Quantity
	if err := m.store.AtomicBranchTransfer(ctx, m.line.ProductID, src, dst, qty, m.actor); err != nil {
		return m.fail(domain.StageAtomicTransfer, err)
	}

	srcAfter, err := m.quantity(ctx, src)
	if err != nil {
		return m.fail(domain.StageAtomicTransfer, err)
	}
	if err := m.record(ctx, src, entity.MovementTypeTransferOut, srcAfter+qty, srcAfter); err != nil {
		return m.fail(domain.StageAtomicTransfer, err)
	}
	dstAfter, err := m.quantity(ctx, dst)
	if err != nil {
		return m.fail(domain.StageAtomicTransfer, err)
	}
	if err := m.record(ctx, dst, entity.MovementTypeTransferIn, dstAfter-qty, dstAfter); err != nil {
		return m.fail(domain.StageAtomicTransfer, err)
	}
	return nil
}

// manual decrementa el origen (piso en cero) e incrementa el destino, solo en los lados que son sucursal.
// El contador de una bodega no se lleva por producto.
func (m *mover) manual(ctx context.Context) error {
	if src, ok := m.invoice.Source.(entity.Branch); ok {
		if err := m.decrement(ctx, src); err != nil {
			return m.fail(domain.StageDecrement, err)
		}
	}
	if dst, ok := m.invoice.Destination.(entity.Branch); ok {
		if err := m.increment(ctx, dst); err != nil {
			return m.fail(domain.StageIncrement, err)
		}
	}
	return nil
}

func (m *mover) decrement(ctx context.Context, loc entity.Branch) error {
	rec, err := m.store.GetForUpdate(ctx, m.line.ProductID, loc)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &entity.InventoryRecord{ProductID: m.line.ProductID, Location: loc}
	}
	before := rec.Quantity
	after := before - m.line.Quantity
	if after < 0 {
		after = 0
	}
	rec.Quantity = after
	rec.UpdatedAt = m.now
	if err := m.store.Upsert(ctx, rec); err != nil {
		return err
	}
	return m.record(ctx, loc, entity.MovementTypeTransferOut, before, after)
}

func (m *mover) increment(ctx context.Context, loc entity.Branch) error {
	rec, err := m.store.GetForUpdate(ctx, m.line.ProductID, loc)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &entity.InventoryRecord{ProductID: m.line.ProductID, Location: loc}
	}
	before := rec.Quantity
	rec.Quantity = before + m.line.Quantity
	rec.UpdatedAt = m.now
	if err := m.store.Upsert(ctx, rec); err != nil {
		return err
	}
	return m.record(ctx, loc, entity.MovementTypeTransferIn, before, rec.Quantity)
}

func (m *mover) quantity(ctx context.Context, loc entity.Location) (int64, error) {
	rec, err := m.store.Get(ctx, m.line.ProductID, loc)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}
	return rec.Quantity, nil
}

func (m *mover) record(ctx context.Context, loc entity.Location, movType string, before, after int64) error {
	return m.movRepo.Create(ctx, &entity.InventoryMovement{
		ID:            uuid.New().String(),
		TransactionID: m.invoice.ID,
		ProductID:     m.line.ProductID,
		Location:      loc,
		Type:          movType,
		Quantity:      after - before,
		Before:        before,
		After:         after,
		CreatedAt:     m.now,
		CreatedBy:     m.actor,
	})
}
