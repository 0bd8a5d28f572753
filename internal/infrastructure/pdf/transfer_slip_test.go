package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

func TestGenerateTransferSlip(t *testing.T) {
	src := entity.Branch{ID: "b-centro"}
	dst := entity.Warehouse{ID: "w-norte"}
	detail := &transfer.TransferDetail{
		Invoice: &entity.TransferInvoice{
			ID:          "inv-1",
			Number:      "TRF-20260315-101500-000001",
			Source:      src,
			Destination: dst,
			GrandTotal:  decimal.Zero,
			Notes:       entity.TransferNotes("Centro", "Bodega Norte"),
			CreatedAt:   time.Date(2026, 3, 15, 10, 15, 0, 0, time.UTC),
		},
		Lines: []*entity.TransferLineItem{
			{ID: "l-1", ProductID: "SKU-1", Quantity: 3, Position: 0},
			{ID: "l-2", ProductID: "SKU-2", Quantity: 12000, Position: 1},
		},
		Source:      &entity.LocationDetail{Location: src, Name: "Centro", Address: "Calle 1"},
		Destination: &entity.LocationDetail{Location: dst, Name: "Bodega Norte"},
	}

	out, err := NewTransferSlipGenerator().GenerateTransferSlip(context.Background(), detail)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateTransferSlip_Nil(t *testing.T) {
	_, err := NewTransferSlipGenerator().GenerateTransferSlip(context.Background(), nil)
	assert.Error(t, err)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "999", formatUnits(999))
	assert.Equal(t, "25.000", formatUnits(25000))
	assert.Equal(t, "1.000.000", formatUnits(1000000))
}
