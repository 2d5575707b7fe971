package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/savora-app/savora-api/internal/database"
)

var ErrNotFound = errors.New("recipe not found")

// Filter narrows the recipe listing.
type Filter struct {
	Category string
	DietType string
	Search   string
	Page     int
	Limit    int
}

// Repository handles recipe persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns recipes newest-first with optional filters and pagination,
// plus the total match count for the pagination envelope.
func (r *Repository) List(ctx context.Context, filter Filter) ([]*Recipe, int, error) {
	var dbRecipes []database.Recipe

	q := r.db.NewSelect().
		Model(&dbRecipes).
		ColumnExpr("r.*").
		ColumnExpr("u.name AS author_name").
		Join("LEFT JOIN users AS u ON u.id = r.author_id")

	q = applyFilter(q, filter)

	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	err = q.Order("r.created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]*Recipe, len(dbRecipes))
	for i := range dbRecipes {
		recipes[i] = mapDBRecipeToModel(&dbRecipes[i])
	}

	return recipes, total, nil
}

// GetByID retrieves a recipe by ID with the author name resolved.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	dbRecipe := new(database.Recipe)
	err := r.db.NewSelect().
		Model(dbRecipe).
		ColumnExpr("r.*").
		ColumnExpr("u.name AS author_name").
		Join("LEFT JOIN users AS u ON u.id = r.author_id").
		Where("r.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	return mapDBRecipeToModel(dbRecipe), nil
}

// Create inserts a new recipe
func (r *Repository) Create(ctx context.Context, dbRecipe *database.Recipe) (*Recipe, error) {
	_, err := r.db.NewInsert().
		Model(dbRecipe).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	return mapDBRecipeToModel(dbRecipe), nil
}

// ToggleLike flips userID's membership in the recipe's likes as a single
// conditional jsonb update, so two concurrent toggles cannot lose each
// other's write. Returns the resulting likes list.
func (r *Repository) ToggleLike(ctx context.Context, id, userID uuid.UUID) ([]uuid.UUID, error) {
	member := fmt.Sprintf("%q", userID)
	appended := fmt.Sprintf("[%q]", userID)

	dbRecipe := new(database.Recipe)
	result, err := r.db.NewUpdate().
		Model(dbRecipe).
		Set("likes = CASE WHEN COALESCE(likes, '[]'::jsonb) @> ?::jsonb"+
			" THEN COALESCE(likes, '[]'::jsonb) - ?"+
			" ELSE COALESCE(likes, '[]'::jsonb) || ?::jsonb END",
			member, userID.String(), appended).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Returning("likes").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	if err := requireRow(result); err != nil {
		return nil, err
	}

	likes := dbRecipe.Likes
	if likes == nil {
		likes = []uuid.UUID{}
	}
	return likes, nil
}

// UpdateComments writes the full comments array back.
func (r *Repository) UpdateComments(ctx context.Context, id uuid.UUID, comments []database.RecipeComment) error {
	dbRecipe := &database.Recipe{ID: id, Comments: comments, UpdatedAt: time.Now()}
	result, err := r.db.NewUpdate().
		Model(dbRecipe).
		Column("comments", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update comments: %w", err)
	}

	return requireRow(result)
}

// Delete removes a recipe row
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Recipe)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	return requireRow(result)
}

func applyFilter(q *bun.SelectQuery, filter Filter) *bun.SelectQuery {
	if filter.Category != "" {
		q = q.Where("r.category = ?", filter.Category)
	}
	if filter.DietType != "" {
		q = q.Where("r.diet_type = ?", filter.DietType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereOr("r.title ILIKE ?", pattern).
				WhereOr("r.description ILIKE ?", pattern)
		})
	}
	return q
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBRecipeToModel converts database model to domain model, filling the
// derived fields.
func mapDBRecipeToModel(dbr *database.Recipe) *Recipe {
	likes := dbr.Likes
	if likes == nil {
		likes = []uuid.UUID{}
	}
	comments := dbr.Comments
	if comments == nil {
		comments = []database.RecipeComment{}
	}
	ingredients := dbr.Ingredients
	if ingredients == nil {
		ingredients = []database.RecipeIngredient{}
	}
	steps := dbr.Steps
	if steps == nil {
		steps = []database.RecipeStep{}
	}

	return &Recipe{
		ID:          dbr.ID,
		Title:       dbr.Title,
		Description: dbr.Description,
		Image: Image{
			URL:      dbr.ImageURL,
			PublicID: dbr.ImagePublicID,
		},
		Ingredients:  ingredients,
		Steps:        steps,
		PrepTime:     dbr.PrepTime,
		CookTime:     dbr.CookTime,
		TotalTime:    dbr.PrepTime + dbr.CookTime,
		Servings:     dbr.Servings,
		Difficulty:   dbr.Difficulty,
		Category:     dbr.Category,
		DietType:     dbr.DietType,
		Likes:        likes,
		LikeCount:    len(likes),
		Comments:     comments,
		CommentCount: len(comments),
		AuthorID:     dbr.AuthorID,
		AuthorName:   dbr.AuthorName,
		CreatedAt:    dbr.CreatedAt,
		UpdatedAt:    dbr.UpdatedAt,
	}
}
