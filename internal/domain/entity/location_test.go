package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		kind, id string
		want     Location
		wantErr  bool
	}{
		{"branch", "b1", Branch{ID: "b1"}, false},
		{" Warehouse ", " w1 ", Warehouse{ID: "w1"}, false},
		{"tienda", "x", nil, true},
		{"branch", "  ", nil, true},
		{"", "b1", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseLocation(tt.kind, tt.id)
		if tt.wantErr {
			assert.Error(t, err, "%q/%q", tt.kind, tt.id)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSameLocation(t *testing.T) {
	assert.True(t, SameLocation(Branch{ID: "1"}, Branch{ID: "1"}))
	assert.False(t, SameLocation(Branch{ID: "1"}, Warehouse{ID: "1"}), "mismo id, distinto tipo")
	assert.False(t, SameLocation(Branch{ID: "1"}, Branch{ID: "2"}))
	assert.False(t, SameLocation(nil, Branch{ID: "1"}))
	assert.Equal(t, "warehouse:w1", LocationKey(Warehouse{ID: "w1"}))
}

func TestTransferNotes(t *testing.T) {
	notes := TransferNotes("Centro", "Bodega Sur")
	assert.Equal(t, "[TRANSFER] Centro → Bodega Sur", notes)
	assert.True(t, IsTransferNotes(notes))
	assert.False(t, IsTransferNotes("venta [TRANSFER]"))
}
