package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-backoffice/internal/application/inventory"
	"github.com/jhoicas/pos-backoffice/internal/domain"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/infrastructure/memory"
)

func newStockUC(t *testing.T) (*inventory.StockUseCase, memory.Repositories) {
	t.Helper()
	store := memory.NewStore()
	store.SeedLocation(entity.LocationDetail{Location: entity.Branch{ID: "b1"}, Name: "Centro"})
	store.SeedLocation(entity.LocationDetail{Location: entity.Warehouse{ID: "w1"}, Name: "Bodega"})
	repos := store.Repositories()
	return inventory.NewStockUseCase(store, repos.Records, repos.Movements, repos.Locations, nil), repos
}

func TestAdjust_FijaCantidad(t *testing.T) {
	uc, repos := newStockUC(t)
	ctx := context.Background()

	rec, err := uc.Adjust(ctx, inventory.AdjustInput{Kind: "branch", LocationID: "b1", ProductID: "p1", Quantity: 8, Actor: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), rec.Quantity)

	_, err = uc.Adjust(ctx, inventory.AdjustInput{Kind: "branch", LocationID: "b1", ProductID: "p1", Quantity: 5, Actor: "u-1"})
	require.NoError(t, err)

	stock, err := uc.ListByLocation(ctx, "branch", "b1")
	require.NoError(t, err)
	assert.Equal(t, "Centro", stock.Location.Name)
	require.Len(t, stock.Records, 1)
	assert.Equal(t, int64(5), stock.Records[0].Quantity)

	got, err := repos.Records.Get(ctx, "p1", entity.Branch{ID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
}

func TestAdjust_Rechazos(t *testing.T) {
	uc, _ := newStockUC(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   inventory.AdjustInput
		nf   bool
	}{
		{"bodega", inventory.AdjustInput{Kind: "warehouse", LocationID: "w1", ProductID: "p1", Quantity: 1}, false},
		{"negativa", inventory.AdjustInput{Kind: "branch", LocationID: "b1", ProductID: "p1", Quantity: -1}, false},
		{"sin producto", inventory.AdjustInput{Kind: "branch", LocationID: "b1", Quantity: 1}, false},
		{"kind inválido", inventory.AdjustInput{Kind: "x", LocationID: "b1", ProductID: "p1", Quantity: 1}, false},
		{"inexistente", inventory.AdjustInput{Kind: "branch", LocationID: "b9", ProductID: "p1", Quantity: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Adjust(ctx, tt.in)
			require.Error(t, err)
			if tt.nf {
				assert.ErrorIs(t, err, domain.ErrNotFound)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestMovements(t *testing.T) {
	uc, _ := newStockUC(t)
	ctx := context.Background()

	_, err := uc.Movements(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.Movements(ctx, "sin-movimientos")
	require.NoError(t, err)
	assert.Empty(t, list)
}
