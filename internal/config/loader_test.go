package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"market_assistant/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCatalogSourceLoad(t *testing.T) {
	path := writeFile(t, `
catalog:
  - product: Tomato
    price: 45.5
    category: vegetable
    predicted_demand: 120
    stock: 300
  - product: Apple
    price: 140
    category: fruit
    predicted_demand: 90
    stock: 150
`)

	products, err := NewFileCatalogSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []pkg.Product{
		{Name: "Tomato", Price: 45.5, Category: pkg.CategoryVegetable, PredictedDemand: 120, Stock: 300},
		{Name: "Apple", Price: 140, Category: pkg.CategoryFruit, PredictedDemand: 90, Stock: 150},
	}, products)
}

func TestFileCatalogSourceRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown category",
			content: "catalog:\n  - product: Rice\n    price: 60\n    category: grain\n",
			wantErr: "unknown category",
		},
		{
			name:    "negative price",
			content: "catalog:\n  - product: Rice\n    price: -1\n    category: vegetable\n",
			wantErr: "invalid price",
		},
		{
			name:    "duplicate name",
			content: "catalog:\n  - product: Onion\n    price: 38\n    category: vegetable\n  - product: onion\n    price: 40\n    category: vegetable\n",
			wantErr: "duplicate product",
		},
		{
			name:    "malformed yaml",
			content: "catalog: [",
			wantErr: "error parsing YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileCatalogSource(writeFile(t, tt.content)).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileCatalogSourceName(t *testing.T) {
	assert.Equal(t, "file:seed.yaml", NewFileCatalogSource("seed.yaml").Name())
}
