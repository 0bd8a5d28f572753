package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/domain/repository"
)

var _ repository.TransferInvoiceRepository = (*TransferInvoiceRepo)(nil)

// TransferInvoiceRepo cabeceras (invoices) y líneas (invoice_lines) de traslado (usable con pool o tx).
type TransferInvoiceRepo struct {
	q Querier
}

// NewTransferInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferInvoiceRepository(q Querier) *TransferInvoiceRepo {
	return &TransferInvoiceRepo{q: q}
}

// Create persiste la cabecera. El número es único.
func (r *TransferInvoiceRepo) Create(ctx context.Context, inv *entity.TransferInvoice) error {
	query := `
		INSERT INTO invoices (id, number, ledger_id, source_kind, source_id, destination_kind, destination_id,
		                      net_total, tax_total, grand_total, notes, item_count, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, nullIfEmpty(inv.LedgerID),
		string(inv.Source.Kind()), inv.Source.Ref(),
		string(inv.Destination.Kind()), inv.Destination.Ref(),
		inv.NetTotal, inv.TaxTotal, inv.GrandTotal,
		inv.Notes, inv.ItemCount, nullIfEmpty(inv.CreatedBy), inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea.
func (r *TransferInvoiceRepo) CreateLine(ctx context.Context, line *entity.TransferLineItem) error {
	query := `
		INSERT INTO invoice_lines (id, invoice_id, product_id, quantity, position, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.ProductID, line.Quantity, line.Position, line.Notes, line.CreatedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return fmt.Errorf("invoice %s: %w", line.InvoiceID, domain.ErrNotFound)
		case isUniqueViolation(err):
			return fmt.Errorf("invoice line %d already exists: %w", line.Position, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID.
func (r *TransferInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.TransferInvoice, error) {
	query := `
		SELECT id, number, ledger_id, source_kind, source_id, destination_kind, destination_id,
		       net_total, tax_total, grand_total, notes, item_count, created_by, created_at
		FROM invoices WHERE id = $1`
	var (
		inv                 entity.TransferInvoice
		ledgerID, createdBy *string
		srcKind, srcID      string
		dstKind, dstID      string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Number, &ledgerID, &srcKind, &srcID, &dstKind, &dstID,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal, &inv.Notes, &inv.ItemCount, &createdBy, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.Source, err = entity.ParseLocation(srcKind, srcID); err != nil {
		return nil, fmt.Errorf("invoice %s source: %w", inv.ID, err)
	}
	if inv.Destination, err = entity.ParseLocation(dstKind, dstID); err != nil {
		return nil, fmt.Errorf("invoice %s destination: %w", inv.ID, err)
	}
	inv.LedgerID = stringOrEmpty(ledgerID)
	inv.CreatedBy = stringOrEmpty(createdBy)
	return &inv, nil
}

// GetLinesByInvoiceID obtiene las líneas en orden de carrito.
func (r *TransferInvoiceRepo) GetLinesByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.TransferLineItem, error) {
	query := `
		SELECT id, invoice_id, product_id, quantity, position, notes, created_at
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	list := []*entity.TransferLineItem{}
	for rows.Next() {
		var l entity.TransferLineItem
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.Quantity, &l.Position, &l.Notes, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// LinkOrphans asigna el libro a las facturas de traslado que quedaron sin él.
func (r *TransferInvoiceRepo) LinkOrphans(ctx context.Context, marker, ledgerID string) (int64, error) {
	query := `
		UPDATE invoices SET ledger_id = $1
		WHERE ledger_id IS NULL AND starts_with(notes, $2)`
	cmd, err := r.q.Exec(ctx, query, ledgerID, marker)
	if err != nil {
		return 0, fmt.Errorf("link orphan invoices: %w", err)
	}
	return cmd.RowsAffected(), nil
}
