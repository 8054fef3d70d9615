package pkg

import (
	"fmt"
	"math"
	"strings"
)

// Category is the produce family a catalog entry belongs to
type Category string

const (
	CategoryFruit     Category = "fruit"
	CategoryVegetable Category = "vegetable"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	return c == CategoryFruit || c == CategoryVegetable
}

// Product is one entry of the live market catalog. The name is the unique key.
type Product struct {
	Name            string   `json:"product" yaml:"product"`
	Price           float64  `json:"price" yaml:"price"`
	Category        Category `json:"category" yaml:"category"`
	PredictedDemand float64  `json:"predicted_demand" yaml:"predicted_demand"`
	Stock           int      `json:"stock" yaml:"stock"`
}

// Validate checks the invariants of a catalog entry
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if p.Price < 0 || math.IsNaN(p.Price) {
		return fmt.Errorf("product %q has invalid price: %v", p.Name, p.Price)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("product %q has unknown category: %q", p.Name, p.Category)
	}
	if p.PredictedDemand < 0 || math.IsNaN(p.PredictedDemand) {
		return fmt.Errorf("product %q has invalid predicted demand: %v", p.Name, p.PredictedDemand)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %q has negative stock: %d", p.Name, p.Stock)
	}
	return nil
}

// ConversationMessage is the {role, content} shape handed to chat-completion APIs
type ConversationMessage struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}
