package recipe

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savora-app/savora-api/internal/database"
	"github.com/savora-app/savora-api/internal/logging"
	"github.com/savora-app/savora-api/internal/user"
)

// -------- test fakes --------

type fakeStore struct {
	recipes   map[uuid.UUID]*Recipe
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{recipes: make(map[uuid.UUID]*Recipe)}
}

func (f *fakeStore) List(ctx context.Context, filter Filter) ([]*Recipe, int, error) {
	out := make([]*Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) Create(ctx context.Context, dbRecipe *database.Recipe) (*Recipe, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := &Recipe{
		ID:          uuid.New(),
		Title:       dbRecipe.Title,
		Description: dbRecipe.Description,
		Image:       Image{URL: dbRecipe.ImageURL, PublicID: dbRecipe.ImagePublicID},
		Ingredients: dbRecipe.Ingredients,
		Steps:       dbRecipe.Steps,
		PrepTime:    dbRecipe.PrepTime,
		CookTime:    dbRecipe.CookTime,
		Servings:    dbRecipe.Servings,
		Difficulty:  dbRecipe.Difficulty,
		Category:    dbRecipe.Category,
		DietType:    dbRecipe.DietType,
		Likes:       dbRecipe.Likes,
		Comments:    dbRecipe.Comments,
		AuthorID:    dbRecipe.AuthorID,
	}
	f.recipes[r.ID] = r
	return r, nil
}

func (f *fakeStore) ToggleLike(ctx context.Context, id, userID uuid.UUID) ([]uuid.UUID, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	likes := make([]uuid.UUID, 0, len(r.Likes)+1)
	present := false
	for _, likeID := range r.Likes {
		if likeID == userID {
			present = true
			continue
		}
		likes = append(likes, likeID)
	}
	if !present {
		likes = append(likes, userID)
	}
	r.Likes = likes
	return likes, nil
}

func (f *fakeStore) UpdateComments(ctx context.Context, id uuid.UUID, comments []database.RecipeComment) error {
	r, ok := f.recipes[id]
	if !ok {
		return ErrNotFound
	}
	r.Comments = comments
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(f.recipes, id)
	return nil
}

type fakeUserResolver struct {
	names map[uuid.UUID]string
}

func (f *fakeUserResolver) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	name, ok := f.names[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &user.User{ID: id, Name: name}, nil
}

type fakeStorage struct {
	uploads   int
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStorage) Upload(ctx context.Context, filename string, body io.Reader, contentType string) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	f.uploads++
	key := "recipes/test-key"
	return "https://cdn.example.com/" + key, key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func newTestRecipeService() (*Service, *fakeStore, *fakeUserResolver, *fakeStorage) {
	store := newFakeStore()
	users := &fakeUserResolver{names: make(map[uuid.UUID]string)}
	storage := &fakeStorage{}
	svc := NewService(store, users, storage, logging.NewLogger(true))
	return svc, store, users, storage
}

func validInput() CreateInput {
	return CreateInput{
		Title:       "Masala Omelette",
		Description: "A quick spiced omelette.",
		Ingredients: []database.RecipeIngredient{{Name: "Eggs", Quantity: "3"}},
		Steps:       []database.RecipeStep{{StepNumber: 1, Instruction: "Whisk and fry."}},
		PrepTime:    5,
		CookTime:    10,
		Servings:    2,
		Difficulty:  "Easy",
		Category:    "Breakfast",
		DietType:    "Balanced",
	}
}

func validImage() *ImageUpload {
	return &ImageUpload{
		Filename:    "omelette.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("fake image bytes"),
	}
}

// -------- tests --------

func TestCreate_Success(t *testing.T) {
	svc, _, _, storage := newTestRecipeService()
	authorID := uuid.New()

	rec, err := svc.Create(context.Background(), authorID, validInput(), validImage())
	require.NoError(t, err)

	assert.Equal(t, "Masala Omelette", rec.Title)
	assert.Equal(t, authorID, rec.AuthorID)
	assert.NotEmpty(t, rec.Image.URL)
	assert.Empty(t, rec.Likes)
	assert.Empty(t, rec.Comments)
	assert.Equal(t, 1, storage.uploads)
}

func TestCreate_RequiresImage(t *testing.T) {
	svc, _, _, _ := newTestRecipeService()

	_, err := svc.Create(context.Background(), uuid.New(), validInput(), nil)
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _, storage := newTestRecipeService()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty title", func(in *CreateInput) { in.Title = "  " }},
		{"title too long", func(in *CreateInput) { in.Title = strings.Repeat("x", 101) }},
		{"empty description", func(in *CreateInput) { in.Description = "" }},
		{"description too long", func(in *CreateInput) { in.Description = strings.Repeat("x", 501) }},
		{"no ingredients", func(in *CreateInput) { in.Ingredients = nil }},
		{"blank ingredient", func(in *CreateInput) { in.Ingredients[0].Name = " " }},
		{"no steps", func(in *CreateInput) { in.Steps = nil }},
		{"blank step", func(in *CreateInput) { in.Steps[0].Instruction = "" }},
		{"bad difficulty", func(in *CreateInput) { in.Difficulty = "Impossible" }},
		{"bad category", func(in *CreateInput) { in.Category = "Midnight" }},
		{"bad diet type", func(in *CreateInput) { in.DietType = "Carnivore" }},
		{"negative prep time", func(in *CreateInput) { in.PrepTime = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := svc.Create(context.Background(), uuid.New(), input, validImage())
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Nothing was uploaded for rejected input
	assert.Equal(t, 0, storage.uploads)
}

func TestCreate_LengthLimitsCountRunes(t *testing.T) {
	svc, _, _, _ := newTestRecipeService()

	// At the cap in characters even though well past it in bytes
	input := validInput()
	input.Title = strings.Repeat("é", 100)
	input.Description = strings.Repeat("é", 500)
	_, err := svc.Create(context.Background(), uuid.New(), input, validImage())
	require.NoError(t, err)

	input = validInput()
	input.Title = strings.Repeat("é", 101)
	_, err = svc.Create(context.Background(), uuid.New(), input, validImage())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_ReleasesImageWhenInsertFails(t *testing.T) {
	svc, store, _, storage := newTestRecipeService()
	store.createErr = errors.New("insert failed")

	_, err := svc.Create(context.Background(), uuid.New(), validInput(), validImage())
	require.Error(t, err)

	require.Len(t, storage.deleted, 1)
	assert.Equal(t, "recipes/test-key", storage.deleted[0])
}

func TestToggleLike_Involution(t *testing.T) {
	svc, _, _, _ := newTestRecipeService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, uuid.New(), validInput(), validImage())
	require.NoError(t, err)

	userID := uuid.New()

	liked, count, err := svc.ToggleLike(ctx, rec.ID, userID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = svc.ToggleLike(ctx, rec.ID, userID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
}

func TestToggleLike_CountsDistinctUsers(t *testing.T) {
	svc, _, _, _ := newTestRecipeService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, uuid.New(), validInput(), validImage())
	require.NoError(t, err)

	_, count, err := svc.ToggleLike(ctx, rec.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, count, err = svc.ToggleLike(ctx, rec.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestToggleLike_UnknownRecipe(t *testing.T) {
	svc, _, _, _ := newTestRecipeService()

	_, _, err := svc.ToggleLike(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddComment_AppendsInOrder(t *testing.T) {
	svc, _, users, _ := newTestRecipeService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, uuid.New(), validInput(), validImage())
	require.NoError(t, err)

	alice := uuid.New()
	bob := uuid.New()
	users.names[alice] = "Alice"
	users.names[bob] = "Bob"

	_, err = svc.AddComment(ctx, rec.ID, alice, "Looks great!")
	require.NoError(t, err)

	comments, err := svc.AddComment(ctx, rec.ID, bob, "  Tried it, loved it.  ")
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, "Alice", comments[0].UserName)
	assert.Equal(t, "Bob", comments[1].UserName)
	assert.Equal(t, "Tried it, loved it.", comments[1].Text)
}

func TestAddComment_Validation(t *testing.T) {
	svc, _, users, _ := newTestRecipeService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, uuid.New(), validInput(), validImage())
	require.NoError(t, err)

	userID := uuid.New()
	users.names[userID] = "Alice"

	_, err = svc.AddComment(ctx, rec.ID, userID, "   ")
	assert.ErrorIs(t, err, ErrCommentEmpty)

	_, err = svc.AddComment(ctx, rec.ID, userID, strings.Repeat("x", 501))
	assert.ErrorIs(t, err, ErrCommentTooLong)

	// A comment of exactly the cap is fine
	_, err = svc.AddComment(ctx, rec.ID, userID, strings.Repeat("x", 500))
	assert.NoError(t, err)

	// The cap counts characters, not bytes
	_, err = svc.AddComment(ctx, rec.ID, userID, strings.Repeat("é", 500))
	assert.NoError(t, err)

	_, err = svc.AddComment(ctx, rec.ID, userID, strings.Repeat("é", 501))
	assert.ErrorIs(t, err, ErrCommentTooLong)
}

func TestDelete_AuthorOnly(t *testing.T) {
	svc, store, _, storage := newTestRecipeService()
	ctx := context.Background()
	authorID := uuid.New()

	rec, err := svc.Create(ctx, authorID, validInput(), validImage())
	require.NoError(t, err)

	err = svc.Delete(ctx, rec.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, store.recipes, rec.ID)

	err = svc.Delete(ctx, rec.ID, authorID)
	require.NoError(t, err)
	assert.NotContains(t, store.recipes, rec.ID)
	assert.Contains(t, storage.deleted, rec.Image.PublicID)
}

func TestDelete_RowGoesEvenWhenImageDeleteFails(t *testing.T) {
	svc, store, _, storage := newTestRecipeService()
	ctx := context.Background()
	authorID := uuid.New()

	rec, err := svc.Create(ctx, authorID, validInput(), validImage())
	require.NoError(t, err)

	storage.deleteErr = errors.New("storage unavailable")

	err = svc.Delete(ctx, rec.ID, authorID)
	require.NoError(t, err)
	assert.NotContains(t, store.recipes, rec.ID)
}

func TestList_ClampsPaging(t *testing.T) {
	svc, _, _, _ := newTestRecipeService()

	_, _, err := svc.List(context.Background(), Filter{Page: -3, Limit: 10000})
	assert.NoError(t, err)
}

func TestValidateCreateInput_AppliesDefaults(t *testing.T) {
	input := validInput()
	input.Difficulty = ""
	input.Category = ""
	input.DietType = ""
	input.Servings = 0

	require.NoError(t, validateCreateInput(&input))
	assert.Equal(t, DefaultDifficulty, input.Difficulty)
	assert.Equal(t, DefaultCategory, input.Category)
	assert.Equal(t, DefaultDietType, input.DietType)
	assert.Equal(t, 1, input.Servings)
}
