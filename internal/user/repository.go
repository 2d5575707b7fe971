package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/savora-app/savora-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	dbUser := &database.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Favorites:    []uuid.UUID{},
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by exact email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// EmailExists reports whether a user with this email exists, compared
// case-insensitively. Used as the registration conflict pre-check.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("lower(email) = lower(?)", email).
		Count(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return count > 0, nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// SetRefreshToken stores the user's single active refresh token,
// overwriting whatever token was there before.
func (r *Repository) SetRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("refresh_token = ?", token).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearRefreshTokenByValue clears the refresh token on whichever user row
// currently holds this exact value. Matching zero rows is not an error:
// a stale or foreign cookie must silently no-op.
func (r *Repository) ClearRefreshTokenByValue(ctx context.Context, token string) error {
	_, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("refresh_token = NULL").
		Set("updated_at = NOW()").
		Where("refresh_token = ?", token).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

// ToggleFavorite flips membership of recipeID in the user's favorites as
// a single conditional jsonb update, so two concurrent toggles cannot
// lose each other's write. Returns the new membership state and the
// resulting list.
func (r *Repository) ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, []uuid.UUID, error) {
	member := fmt.Sprintf("%q", recipeID)
	appended := fmt.Sprintf("[%q]", recipeID)

	dbUser := new(database.User)
	result, err := r.db.NewUpdate().
		Model(dbUser).
		Set("favorites = CASE WHEN COALESCE(favorites, '[]'::jsonb) @> ?::jsonb"+
			" THEN COALESCE(favorites, '[]'::jsonb) - ?"+
			" ELSE COALESCE(favorites, '[]'::jsonb) || ?::jsonb END",
			member, recipeID.String(), appended).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Returning("favorites").
		Exec(ctx)

	if err != nil {
		return false, nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil, ErrNotFound
	}

	favorites := dbUser.Favorites
	if favorites == nil {
		favorites = []uuid.UUID{}
	}

	added := false
	for _, id := range favorites {
		if id == recipeID {
			added = true
			break
		}
	}

	return added, favorites, nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	favorites := dbu.Favorites
	if favorites == nil {
		favorites = []uuid.UUID{}
	}
	return &User{
		ID:           dbu.ID,
		Name:         dbu.Name,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		RefreshToken: dbu.RefreshToken,
		Favorites:    favorites,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
