package repository

import (
	"context"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

// TransferInvoiceRepository puerto de persistencia para cabeceras y líneas de traslado.
type TransferInvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.TransferInvoice) error
	CreateLine(ctx context.Context, line *entity.TransferLineItem) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.TransferInvoice, error)
	GetLinesByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.TransferLineItem, error)
	// LinkOrphans asigna ledgerID a las facturas cuyas notas empiezan por marker y no tienen libro.
	LinkOrphans(ctx context.Context, marker, ledgerID string) (int64, error)
}
