package ingredient

import (
	"time"

	"github.com/google/uuid"
)

// Categories lists the accepted ingredient categories.
var Categories = []string{"Vegetables", "Fruits", "Dairy", "Meat", "Seafood", "Grains", "Spices", "Other"}

const (
	DefaultCategory = "Other"
	DefaultUnit     = "grams"
	DefaultStock    = 100

	maxDescriptionLen = 200
)

// Ingredient is a purchasable grocery item with a unit price.
type Ingredient struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	PricePerUnit float64   `json:"pricePerUnit"`
	Stock        int       `json:"stock"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
