package ingredient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/savora-app/savora-api/internal/database"
)

var (
	ErrNotFound      = errors.New("ingredient not found")
	ErrDuplicateName = errors.New("ingredient already exists")
)

// Filter narrows the ingredient listing.
type Filter struct {
	Category string
	Search   string
}

// Repository provides ingredient persistence backed by Postgres.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns ingredients matching the filter, sorted by name.
func (r *Repository) List(ctx context.Context, filter Filter) ([]*Ingredient, error) {
	var dbIngredients []database.Ingredient

	q := r.db.NewSelect().Model(&dbIngredients)
	if filter.Category != "" {
		q = q.Where("i.category = ?", filter.Category)
	}
	if filter.Search != "" {
		q = q.Where("i.name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := q.Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	ingredients := make([]*Ingredient, 0, len(dbIngredients))
	for i := range dbIngredients {
		ingredients = append(ingredients, mapDBIngredientToModel(&dbIngredients[i]))
	}
	return ingredients, nil
}

// GetByID returns a single ingredient.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Ingredient, error) {
	dbIngredient := new(database.Ingredient)
	err := r.db.NewSelect().Model(dbIngredient).Where("i.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return mapDBIngredientToModel(dbIngredient), nil
}

// Create inserts an ingredient. Names are unique case-insensitively.
func (r *Repository) Create(ctx context.Context, ingredient *Ingredient) (*Ingredient, error) {
	exists, err := r.nameExists(ctx, ingredient.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	dbIngredient := &database.Ingredient{
		Name:         ingredient.Name,
		ImageURL:     ingredient.ImageURL,
		Category:     ingredient.Category,
		Unit:         ingredient.Unit,
		PricePerUnit: ingredient.PricePerUnit,
		Stock:        ingredient.Stock,
		Description:  ingredient.Description,
	}

	_, err = r.db.NewInsert().Model(dbIngredient).Returning("*").Exec(ctx)
	if err != nil {
		// The unique index still backstops concurrent inserts.
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}

	return mapDBIngredientToModel(dbIngredient), nil
}

func (r *Repository) nameExists(ctx context.Context, name string) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.Ingredient)(nil)).
		Where("lower(i.name) = lower(?)", name).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check ingredient name: %w", err)
	}
	return count > 0, nil
}

func mapDBIngredientToModel(dbIngredient *database.Ingredient) *Ingredient {
	return &Ingredient{
		ID:           dbIngredient.ID,
		Name:         dbIngredient.Name,
		ImageURL:     dbIngredient.ImageURL,
		Category:     dbIngredient.Category,
		Unit:         dbIngredient.Unit,
		PricePerUnit: dbIngredient.PricePerUnit,
		Stock:        dbIngredient.Stock,
		Description:  dbIngredient.Description,
		CreatedAt:    dbIngredient.CreatedAt,
		UpdatedAt:    dbIngredient.UpdatedAt,
	}
}
