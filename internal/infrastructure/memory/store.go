// Package memory implementa los puertos de persistencia en memoria.
// Se usa en los tests y con STORE_DRIVER=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

// querier acceso al estado: el Store toma el mutex, una transacción abierta usa su copia directamente.
type querier interface {
	run(fn func(st *state) error) error
}

// Store guarda todo en mapas protegidos por un mutex.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) run(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// txQuerier estado de una transacción en curso (el mutex del Store ya está tomado).
type txQuerier struct {
	st *state
}

func (q txQuerier) run(fn func(st *state) error) error {
	return fn(q.st)
}

type state struct {
	ledgers   map[string]*entity.TransferLedger // por clave
	invoices  map[string]*entity.TransferInvoice
	order     []string // IDs de factura en orden de inserción
	numbers   map[string]string
	lines     map[string][]*entity.TransferLineItem
	records   map[string]*entity.InventoryRecord
	movements []*entity.InventoryMovement
	locations map[string]*entity.LocationDetail
}

func newState() *state {
	return &state{
		ledgers:   map[string]*entity.TransferLedger{},
		invoices:  map[string]*entity.TransferInvoice{},
		numbers:   map[string]string{},
		lines:     map[string][]*entity.TransferLineItem{},
		records:   map[string]*entity.InventoryRecord{},
		locations: map[string]*entity.LocationDetail{},
	}
}

// clone copia mapas y slices. Las entidades guardadas se reemplazan, nunca se mutan en sitio.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.ledgers {
		c.ledgers[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	c.order = append([]string(nil), s.order...)
	for k, v := range s.numbers {
		c.numbers[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]*entity.TransferLineItem(nil), v...)
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	c.movements = append([]*entity.InventoryMovement(nil), s.movements...)
	for k, v := range s.locations {
		c.locations[k] = v
	}
	return c
}

// RunTransfer ejecuta fn con repositorios atados a una copia del estado y la publica si fn no falla.
// El mutex se mantiene durante toda la transacción, equivalente a un aislamiento serializable.
func (s *Store) RunTransfer(ctx context.Context, fn func(
	invoiceRepo repository.TransferInvoiceRepository,
	stockStore repository.InventoryRecordStore,
	movRepo repository.InventoryMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	q := txQuerier{st: s.data.clone()}
	if err := fn(NewTransferInvoiceRepository(q), NewInventoryRecordStore(q), NewInventoryMovementRepository(q)); err != nil {
		return err
	}
	s.data = q.st
	return nil
}

// SeedLocation registra una sucursal o bodega con su nombre legible.
func (s *Store) SeedLocation(detail entity.LocationDetail) {
	_ = s.run(func(st *state) error {
		d := detail
		st.locations[entity.LocationKey(detail.Location)] = &d
		return nil
	})
}

// Counts totales de facturas, líneas, registros de inventario y movimientos.
func (s *Store) Counts() (invoices, lines, records, movements int) {
	_ = s.run(func(st *state) error {
		for _, ls := range st.lines {
			lines += len(ls)
		}
		invoices, records, movements = len(st.invoices), len(st.records), len(st.movements)
		return nil
	})
	return
}

// Repositories agrupa los repositorios del store para el cableado en main.
type Repositories struct {
	Ledgers   *LedgerRepository
	Invoices  *TransferInvoiceRepository
	Records   *InventoryRecordStore
	Movements *InventoryMovementRepository
	Locations *LocationRepository
}

// Repositories construye los repositorios fuera de transacción.
func (s *Store) Repositories() Repositories {
	return Repositories{
		Ledgers:   NewLedgerRepository(s),
		Invoices:  NewTransferInvoiceRepository(s),
		Records:   NewInventoryRecordStore(s),
		Movements: NewInventoryMovementRepository(s),
		Locations: NewLocationRepository(s),
	}
}
