package ingredient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrValidation wraps every create-input failure so the handler can map
// the whole family to one status.
var ErrValidation = errors.New("validation failed")

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context, filter Filter) ([]*Ingredient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Ingredient, error)
	Create(ctx context.Context, ingredient *Ingredient) (*Ingredient, error)
}

// CreateInput carries the fields of a new ingredient.
type CreateInput struct {
	Name         string  `json:"name"`
	ImageURL     string  `json:"imageUrl"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Stock        *int    `json:"stock"`
	Description  string  `json:"description"`
}

// Service implements the ingredient catalog operations.
type Service struct {
	ingredients Store
}

func NewService(ingredients Store) *Service {
	return &Service{ingredients: ingredients}
}

// List returns ingredients matching the filter, name-ascending.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Ingredient, error) {
	return s.ingredients.List(ctx, filter)
}

// Get returns a single ingredient.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Ingredient, error) {
	return s.ingredients.GetByID(ctx, id)
}

// Create validates and inserts a new catalog entry.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Ingredient, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.PricePerUnit < 0 {
		return nil, fmt.Errorf("%w: pricePerUnit must not be negative", ErrValidation)
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	} else if !validCategory(category) {
		return nil, fmt.Errorf("%w: invalid category %q", ErrValidation, category)
	}

	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = DefaultUnit
	}

	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: description cannot exceed %d characters", ErrValidation, maxDescriptionLen)
	}

	stock := DefaultStock
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
		}
		stock = *input.Stock
	}

	return s.ingredients.Create(ctx, &Ingredient{
		Name:         input.Name,
		ImageURL:     strings.TrimSpace(input.ImageURL),
		Category:     category,
		Unit:         unit,
		PricePerUnit: input.PricePerUnit,
		Stock:        stock,
		Description:  description,
	})
}
