package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

// LedgerManager garantiza que exista exactamente un libro de traslados.
// No agrega locks propios: la unicidad la impone la restricción UNIQUE sobre la clave.
type LedgerManager struct {
	ledgerRepo  repository.LedgerRepository
	invoiceRepo repository.TransferInvoiceRepository
	now         func() time.Time

	mu sync.RWMutex
	id string
}

// NewLedgerManager construye el gestor del libro.
func NewLedgerManager(ledgerRepo repository.LedgerRepository, invoiceRepo repository.TransferInvoiceRepository) *LedgerManager {
	return &LedgerManager{
		ledgerRepo:  ledgerRepo,
		invoiceRepo: invoiceRepo,
		now:         time.Now,
	}
}

// EnsureExists busca el libro por su clave fija y lo crea (no eliminable) si no existe.
// Si otro proceso lo insertó primero, la inserción duplicada se colapsa y se relee.
func (m *LedgerManager) EnsureExists(ctx context.Context) (*entity.TransferLedger, error) {
	ledger, err := m.ledgerRepo.FindByKey(ctx, entity.LedgerKey)
	if err != nil {
		return nil, fmt.Errorf("buscar libro de traslados: %w", err)
	}
	if ledger == nil {
		candidate := &entity.TransferLedger{
			ID:        uuid.New().String(),
			Key:       entity.LedgerKey,
			Name:      entity.LedgerDisplayName,
			Primary:   true,
			CreatedAt: m.now(),
		}
		err := m.ledgerRepo.Create(ctx, candidate)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrDuplicate):
			// otro llamador ganó la carrera
		default:
			return nil, fmt.Errorf("crear libro de traslados: %w", err)
		}
		ledger, err = m.ledgerRepo.FindByKey(ctx, entity.LedgerKey)
		if err != nil {
			return nil, fmt.Errorf("releer libro de traslados: %w", err)
		}
		if ledger == nil {
			return nil, &domain.NotFoundError{Resource: "libro de traslados"}
		}
	}

	m.mu.Lock()
	m.id = ledger.ID
	m.mu.Unlock()
	return ledger, nil
}

// GetID devuelve el ID del libro resuelto por EnsureExists.
// Llamarlo antes de un EnsureExists exitoso es un error de programación (NotFoundError).
func (m *LedgerManager) GetID() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.id == "" {
		return "", &domain.NotFoundError{Resource: "libro de traslados"}
	}
	return m.id, nil
}

// LinkOrphans enlaza al libro las facturas de traslado que quedaron sin libro
// (por ejemplo, creadas antes de que existiera). Idempotente.
func (m *LedgerManager) LinkOrphans(ctx context.Context) (int64, error) {
	ledger, err := m.EnsureExists(ctx)
	if err != nil {
		return 0, err
	}
	n, err := m.invoiceRepo.LinkOrphans(ctx, entity.TransferMarker, ledger.ID)
	if err != nil {
		return 0, fmt.Errorf("enlazar traslados huérfanos: %w", err)
	}
	return n, nil
}
