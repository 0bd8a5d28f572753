package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
	"github.com/jhoicas/pos-backoffice/pkg/logger"
)

// LocationStock existencias de una ubicación.
type LocationStock struct {
	Location *entity.LocationDetail
	Records  []*entity.InventoryRecord
}

// AdjustInput fija la cantidad de un producto en una sucursal (conteo físico).
type AdjustInput struct {
	Kind       string
	LocationID string
	ProductID  string
	Quantity   int64
	Actor      string
}

// StockUseCase consultas de existencias y ajustes manuales.
type StockUseCase struct {
	txRunner  TxRunner
	records   repository.InventoryRecordStore
	movements repository.InventoryMovementRepository
	locations repository.LocationRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	records repository.InventoryRecordStore,
	movements repository.InventoryMovementRepository,
	locations repository.LocationRepository,
	log *logger.Logger,
) *StockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockUseCase{
		txRunner:  txRunner,
		records:   records,
		movements: movements,
		locations: locations,
		log:       log,
		now:       time.Now,
	}
}

// ListByLocation devuelve los registros de la ubicación (kind, id).
func (uc *StockUseCase) ListByLocation(ctx context.Context, kind, id string) (*LocationStock, error) {
	detail, err := uc.resolve(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	records, err := uc.records.ListByLocation(ctx, detail.Location)
	if err != nil {
		return nil, fmt.Errorf("listar inventario: %w", err)
	}
	return &LocationStock{Location: detail, Records: records}, nil
}

// Movements rastro de auditoría de un traslado o ajuste.
func (uc *StockUseCase) Movements(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, domain.NewValidationError("id", "requerido")
	}
	list, err := uc.movements.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	return list, nil
}

// Adjust fija la cantidad de un producto en una sucursal y deja un movimiento ADJUSTMENT.
// Las bodegas no llevan contador por producto.
func (uc *StockUseCase) Adjust(ctx context.Context, in AdjustInput) (*entity.InventoryRecord, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if in.Quantity < 0 {
		return nil, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	detail, err := uc.resolve(ctx, in.Kind, in.LocationID)
	if err != nil {
		return nil, err
	}
	branch, ok := detail.Location.(entity.Branch)
	if !ok {
		return nil, domain.NewValidationError("kind", "solo las sucursales llevan existencias por producto")
	}

	now := uc.now()
	rec := &entity.InventoryRecord{ProductID: in.ProductID, Location: branch, Quantity: in.Quantity, UpdatedAt: now}
	adjustmentID := uuid.New().String()
	err = uc.txRunner.RunTransfer(ctx, func(
		_ repository.TransferInvoiceRepository,
		stockStore repository.InventoryRecordStore,
		movRepo repository.InventoryMovementRepository,
	) error {
		current, err := stockStore.GetForUpdate(ctx, in.ProductID, branch)
		if err != nil {
			return err
		}
		var before int64
		if current != nil {
			before = current.Quantity
		}
		if err := stockStore.Upsert(ctx, rec); err != nil {
			return err
		}
		return movRepo.Create(ctx, &entity.InventoryMovement{
			ID:            uuid.New().String(),
			TransactionID: adjustmentID,
			ProductID:     in.ProductID,
			Location:      branch,
			Type:          entity.MovementTypeAdjustment,
			Quantity:      in.Quantity - before,
			Before:        before,
			After:         in.Quantity,
			CreatedAt:     now,
			CreatedBy:     in.Actor,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ajustar inventario: %w", err)
	}
	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("location", entity.LocationKey(branch)).
		Int64("quantity", in.Quantity).
		Str("actor", in.Actor).
		Msg("inventario ajustado")
	return rec, nil
}

func (uc *StockUseCase) resolve(ctx context.Context, kind, id string) (*entity.LocationDetail, error) {
	loc, err := entity.ParseLocation(kind, id)
	if err != nil {
		return nil, domain.NewValidationError("location", err.Error())
	}
	detail, err := uc.locations.GetDetail(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("consultar ubicación: %w", err)
	}
	if detail == nil {
		return nil, &domain.NotFoundError{Resource: "ubicación " + entity.LocationKey(loc)}
	}
	return detail, nil
}
