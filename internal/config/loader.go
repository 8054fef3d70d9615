package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"market_assistant/pkg"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of config.yaml
type YAMLConfig struct {
	Catalog []pkg.Product `yaml:"catalog"`
}

// LoadConfig loads configuration from config.yaml
func LoadConfig(filepath string) (*YAMLConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config YAMLConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	return &config, nil
}

// ValidateCatalog checks every product and rejects duplicate names.
// Names are compared case-insensitively since the matcher normalizes case.
func ValidateCatalog(products []pkg.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i, product := range products {
		if err := product.Validate(); err != nil {
			return fmt.Errorf("catalog entry %d: %w", i, err)
		}
		key := strings.ToLower(strings.TrimSpace(product.Name))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("catalog entry %d: duplicate product %q", i, product.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// FileCatalogSource reads the catalog seed from a YAML file
type FileCatalogSource struct {
	Path string
}

// NewFileCatalogSource creates a seed file source
func NewFileCatalogSource(path string) *FileCatalogSource {
	return &FileCatalogSource{Path: path}
}

// Name identifies the source in logs
func (s *FileCatalogSource) Name() string {
	return "file:" + s.Path
}

// Load reads and validates the seed catalog
func (s *FileCatalogSource) Load(_ context.Context) ([]pkg.Product, error) {
	config, err := LoadConfig(s.Path)
	if err != nil {
		return nil, err
	}
	if err := ValidateCatalog(config.Catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog in %s: %w", s.Path, err)
	}
	return config.Catalog, nil
}
