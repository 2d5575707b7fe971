package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/savora-app/savora-api/internal/database"
	"github.com/savora-app/savora-api/internal/logging"
	"github.com/savora-app/savora-api/internal/media"
	"github.com/savora-app/savora-api/internal/user"
)

var (
	ErrForbidden      = errors.New("not authorized to modify this recipe")
	ErrImageRequired  = errors.New("recipe image is required")
	ErrCommentEmpty   = errors.New("comment text is required")
	ErrCommentTooLong = errors.New("comment cannot exceed 500 characters")

	// ErrValidation wraps every create-input failure so the handler can
	// map the whole family to one status.
	ErrValidation = errors.New("invalid recipe input")
)

// Store is the slice of the recipe repository the service needs.
type Store interface {
	List(ctx context.Context, filter Filter) ([]*Recipe, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
	Create(ctx context.Context, dbRecipe *database.Recipe) (*Recipe, error)
	ToggleLike(ctx context.Context, id, userID uuid.UUID) ([]uuid.UUID, error)
	UpdateComments(ctx context.Context, id uuid.UUID, comments []database.RecipeComment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserResolver resolves comment authors to display names.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// CreateInput is the typed creation payload, already decoded and ready to
// validate. The image travels separately as a stream.
type CreateInput struct {
	Title       string
	Description string
	Ingredients []database.RecipeIngredient
	Steps       []database.RecipeStep
	PrepTime    int
	CookTime    int
	Servings    int
	Difficulty  string
	Category    string
	DietType    string
}

// ImageUpload carries the uploaded image stream and its metadata.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Service handles recipe business logic
type Service struct {
	recipes Store
	users   UserResolver
	storage media.Storage
	logger  *logging.Logger
}

func NewService(recipes Store, users UserResolver, storage media.Storage, logger *logging.Logger) *Service {
	return &Service{
		recipes: recipes,
		users:   users,
		storage: storage,
		logger:  logger,
	}
}

// List returns recipes matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Recipe, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 10
	}
	return s.recipes.List(ctx, filter)
}

// Get returns a single recipe.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

// Create validates the input, uploads the mandatory image and inserts the
// recipe. If the insert fails the just-uploaded image is released again,
// best effort.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, input CreateInput, image *ImageUpload) (*Recipe, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}
	if image == nil || image.Body == nil {
		return nil, ErrImageRequired
	}

	imageURL, imageKey, err := s.storage.Upload(ctx, image.Filename, image.Body, image.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload recipe image: %w", err)
	}

	created, err := s.recipes.Create(ctx, &database.Recipe{
		Title:         input.Title,
		Description:   input.Description,
		ImageURL:      imageURL,
		ImagePublicID: imageKey,
		Ingredients:   input.Ingredients,
		Steps:         input.Steps,
		PrepTime:      input.PrepTime,
		CookTime:      input.CookTime,
		Servings:      input.Servings,
		Difficulty:    input.Difficulty,
		Category:      input.Category,
		DietType:      input.DietType,
		Likes:         []uuid.UUID{},
		Comments:      []database.RecipeComment{},
		AuthorID:      authorID,
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, imageKey); delErr != nil {
			s.logger.Warn("failed to release image after create failure", "key", imageKey, "error", delErr)
		}
		return nil, err
	}

	return created, nil
}

// ToggleLike flips the caller's membership in the recipe's likes and
// returns the new state plus the resulting count. The flip happens in one
// storage operation, not a read followed by a write.
func (s *Service) ToggleLike(ctx context.Context, recipeID, userID uuid.UUID) (bool, int, error) {
	likes, err := s.recipes.ToggleLike(ctx, recipeID, userID)
	if err != nil {
		return false, 0, err
	}

	liked := false
	for _, id := range likes {
		if id == userID {
			liked = true
			break
		}
	}

	return liked, len(likes), nil
}

// AddComment appends a comment to the recipe. Comments keep strict
// insertion order and are never edited or removed.
func (s *Service) AddComment(ctx context.Context, recipeID, userID uuid.UUID, text string) ([]database.RecipeComment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrCommentEmpty
	}
	if utf8.RuneCountInString(trimmed) > maxCommentLen {
		return nil, ErrCommentTooLong
	}

	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve comment author: %w", err)
	}

	comments := append(rec.Comments, database.RecipeComment{
		ID:        uuid.New(),
		UserID:    userID,
		UserName:  author.Name,
		Text:      trimmed,
		CreatedAt: time.Now(),
	})

	if err := s.recipes.UpdateComments(ctx, recipeID, comments); err != nil {
		return nil, err
	}

	return comments, nil
}

// Delete removes a recipe. Only the author may delete; the hosted image
// is released first, best effort. A failed image delete is logged and the
// row is removed anyway.
func (s *Service) Delete(ctx context.Context, recipeID, userID uuid.UUID) error {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}

	if rec.AuthorID != userID {
		return ErrForbidden
	}

	if rec.Image.PublicID != "" {
		if err := s.storage.Delete(ctx, rec.Image.PublicID); err != nil {
			s.logger.Warn("failed to delete recipe image", "key", rec.Image.PublicID, "error", err)
		}
	}

	return s.recipes.Delete(ctx, recipeID)
}

func validateCreateInput(input *CreateInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if input.Title == "" {
		return fmt.Errorf("%w: recipe title is required", ErrValidation)
	}
	if utf8.RuneCountInString(input.Title) > maxTitleLen {
		return fmt.Errorf("%w: title cannot exceed %d characters", ErrValidation, maxTitleLen)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: recipe description is required", ErrValidation)
	}
	if utf8.RuneCountInString(input.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description cannot exceed %d characters", ErrValidation, maxDescriptionLen)
	}
	if len(input.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrValidation)
	}
	for _, ing := range input.Ingredients {
		if strings.TrimSpace(ing.Name) == "" || strings.TrimSpace(ing.Quantity) == "" {
			return fmt.Errorf("%w: each ingredient needs a name and a quantity", ErrValidation)
		}
	}
	if len(input.Steps) == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrValidation)
	}
	for _, step := range input.Steps {
		if strings.TrimSpace(step.Instruction) == "" {
			return fmt.Errorf("%w: each step needs an instruction", ErrValidation)
		}
	}
	if input.PrepTime < 0 || input.CookTime < 0 {
		return fmt.Errorf("%w: prep and cook times cannot be negative", ErrValidation)
	}
	if input.Servings < 1 {
		input.Servings = 1
	}
	if input.Difficulty == "" {
		input.Difficulty = DefaultDifficulty
	} else if !validEnum(input.Difficulty, Difficulties) {
		return fmt.Errorf("%w: invalid difficulty %q", ErrValidation, input.Difficulty)
	}
	if input.Category == "" {
		input.Category = DefaultCategory
	} else if !validEnum(input.Category, Categories) {
		return fmt.Errorf("%w: invalid category %q", ErrValidation, input.Category)
	}
	if input.DietType == "" {
		input.DietType = DefaultDietType
	} else if !validEnum(input.DietType, DietTypes) {
		return fmt.Errorf("%w: invalid diet type %q", ErrValidation, input.DietType)
	}

	return nil
}
