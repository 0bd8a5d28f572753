package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

var (
	_ repository.LedgerRepository            = (*LedgerRepository)(nil)
	_ repository.TransferInvoiceRepository   = (*TransferInvoiceRepository)(nil)
	_ repository.InventoryRecordStore        = (*InventoryRecordStore)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepository)(nil)
	_ repository.LocationRepository          = (*LocationRepository)(nil)
)

// LedgerRepository libro de traslados en memoria.
type LedgerRepository struct{ q querier }

func NewLedgerRepository(q querier) *LedgerRepository { return &LedgerRepository{q: q} }

func (r *LedgerRepository) FindByKey(_ context.Context, key string) (out *entity.TransferLedger, err error) {
	err = r.q.run(func(st *state) error {
		if l, ok := st.ledgers[key]; ok {
			cp := *l
			out = &cp
		}
		return nil
	})
	return
}

func (r *LedgerRepository) Create(_ context.Context, l *entity.TransferLedger) error {
	return r.q.run(func(st *state) error {
		if _, ok := st.ledgers[l.Key]; ok {
			return domain.ErrDuplicate
		}
		cp := *l
		st.ledgers[l.Key] = &cp
		return nil
	})
}

// TransferInvoiceRepository cabeceras y líneas de traslado en memoria.
type TransferInvoiceRepository struct{ q querier }

func NewTransferInvoiceRepository(q querier) *TransferInvoiceRepository {
	return &TransferInvoiceRepository{q: q}
}

func (r *TransferInvoiceRepository) Create(_ context.Context, inv *entity.TransferInvoice) error {
	return r.q.run(func(st *state) error {
		if _, ok := st.invoices[inv.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.numbers[inv.Number]; ok {
			return domain.ErrDuplicate
		}
		cp := *inv
		st.invoices[inv.ID] = &cp
		st.numbers[inv.Number] = inv.ID
		st.order = append(st.order, inv.ID)
		return nil
	})
}

func (r *TransferInvoiceRepository) CreateLine(_ context.Context, line *entity.TransferLineItem) error {
	return r.q.run(func(st *state) error {
		if _, ok := st.invoices[line.InvoiceID]; !ok {
			return domain.ErrNotFound
		}
		cp := *line
		st.lines[line.InvoiceID] = append(st.lines[line.InvoiceID], &cp)
		return nil
	})
}

func (r *TransferInvoiceRepository) GetByID(_ context.Context, id string) (out *entity.TransferInvoice, err error) {
	err = r.q.run(func(st *state) error {
		if inv, ok := st.invoices[id]; ok {
			cp := *inv
			out = &cp
		}
		return nil
	})
	return
}

func (r *TransferInvoiceRepository) GetLinesByInvoiceID(_ context.Context, invoiceID string) (out []*entity.TransferLineItem, err error) {
	err = r.q.run(func(st *state) error {
		out = make([]*entity.TransferLineItem, 0, len(st.lines[invoiceID]))
		for _, l := range st.lines[invoiceID] {
			cp := *l
			out = append(out, &cp)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return
}

func (r *TransferInvoiceRepository) LinkOrphans(_ context.Context, marker, ledgerID string) (n int64, err error) {
	err = r.q.run(func(st *state) error {
		for _, id := range st.order {
			inv := st.invoices[id]
			if inv.LedgerID != "" || !strings.HasPrefix(inv.Notes, marker) {
				continue
			}
			cp := *inv
			cp.LedgerID = ledgerID
			st.invoices[id] = &cp
			n++
		}
		return nil
	})
	return
}

// InventoryRecordStore cantidades por (producto, ubicación) en memoria.
type InventoryRecordStore struct{ q querier }

func NewInventoryRecordStore(q querier) *InventoryRecordStore { return &InventoryRecordStore{q: q} }

func recordKey(productID string, loc entity.Location) string {
	return productID + "|" + entity.LocationKey(loc)
}

func (r *InventoryRecordStore) Get(_ context.Context, productID string, loc entity.Location) (out *entity.InventoryRecord, err error) {
	err = r.q.run(func(st *state) error {
		if rec, ok := st.records[recordKey(productID, loc)]; ok {
			cp := *rec
			out = &cp
		}
		return nil
	})
	return
}

// GetForUpdate crea el registro en cero si falta. El mutex del store ya serializa las transacciones.
func (r *InventoryRecordStore) GetForUpdate(_ context.Context, productID string, loc entity.Location) (out *entity.InventoryRecord, err error) {
	err = r.q.run(func(st *state) error {
		key := recordKey(productID, loc)
		rec, ok := st.records[key]
		if !ok {
			rec = &entity.InventoryRecord{ProductID: productID, Location: loc}
			st.records[key] = rec
		}
		cp := *rec
		out = &cp
		return nil
	})
	return
}

func (r *InventoryRecordStore) Upsert(_ context.Context, rec *entity.InventoryRecord) error {
	if rec.Quantity < 0 {
		return domain.NewValidationError("quantity", "no puede ser negativa")
	}
	return r.q.run(func(st *state) error {
		cp := *rec
		st.records[recordKey(rec.ProductID, rec.Location)] = &cp
		return nil
	})
}

func (r *InventoryRecordStore) AtomicBranchTransfer(_ context.Context, productID string, src, dst entity.Branch, qty int64, _ string) error {
	if qty <= 0 {
		return domain.NewValidationError("quantity", "debe ser positiva")
	}
	return r.q.run(func(st *state) error {
		origin, ok := st.records[recordKey(productID, src)]
		if !ok || origin.Quantity < qty {
			return domain.ErrInsufficientStock
		}
		o := *origin
		o.Quantity -= qty
		d := entity.InventoryRecord{ProductID: productID, Location: dst}
		if dest, ok := st.records[recordKey(productID, dst)]; ok {
			d = *dest
		}
		d.Quantity += qty
		st.records[recordKey(productID, src)] = &o
		st.records[recordKey(productID, dst)] = &d
		return nil
	})
}

func (r *InventoryRecordStore) ListByLocation(_ context.Context, loc entity.Location) (out []*entity.InventoryRecord, err error) {
	err = r.q.run(func(st *state) error {
		for _, rec := range st.records {
			if entity.SameLocation(rec.Location, loc) {
				cp := *rec
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return
}

// InventoryMovementRepository rastro de movimientos en memoria.
type InventoryMovementRepository struct{ q querier }

func NewInventoryMovementRepository(q querier) *InventoryMovementRepository {
	return &InventoryMovementRepository{q: q}
}

func (r *InventoryMovementRepository) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.q.run(func(st *state) error {
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *InventoryMovementRepository) ListByTransaction(_ context.Context, transactionID string) (out []*entity.InventoryMovement, err error) {
	err = r.q.run(func(st *state) error {
		for _, m := range st.movements {
			if m.TransactionID == transactionID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return
}

// LocationRepository sucursales y bodegas registradas con SeedLocation.
type LocationRepository struct{ q querier }

func NewLocationRepository(q querier) *LocationRepository { return &LocationRepository{q: q} }

func (r *LocationRepository) GetDetail(_ context.Context, loc entity.Location) (out *entity.LocationDetail, err error) {
	err = r.q.run(func(st *state) error {
		if d, ok := st.locations[entity.LocationKey(loc)]; ok {
			cp := *d
			out = &cp
		}
		return nil
	})
	return
}
