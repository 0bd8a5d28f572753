package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_HaveGooseAnnotations(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		body, err := fs.ReadFile(embedded, Dir+"/"+name)
		require.NoError(t, err)
		s := string(body)
		assert.True(t, strings.Contains(s, "-- +goose Up"), name)
		assert.True(t, strings.Contains(s, "-- +goose Down"), name)
	}
}

func TestSchema_LedgerKeyIsUnique(t *testing.T) {
	body, err := fs.ReadFile(embedded, Dir+"/20260101000001_transfer_schema.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "key        TEXT NOT NULL UNIQUE")
	assert.Contains(t, string(body), "CHECK (quantity >= 0)")
}

func TestMigrateToVersion_InvalidVersion(t *testing.T) {
	err := MigrateToVersion(t.Context(), nil, "v1")
	assert.Error(t, err)
}

func TestSchema_InvoiceItemCount(t *testing.T) {
	body, err := fs.ReadFile(embedded, Dir+"/20260101000002_invoice_item_count.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "ADD COLUMN IF NOT EXISTS item_count INT NOT NULL DEFAULT 0")
	assert.Contains(t, string(body), "DROP COLUMN IF EXISTS item_count")
}
