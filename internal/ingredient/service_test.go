package ingredient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	ingredients map[uuid.UUID]*Ingredient
}

func newFakeStore() *fakeStore {
	return &fakeStore{ingredients: make(map[uuid.UUID]*Ingredient)}
}

func (f *fakeStore) List(ctx context.Context, filter Filter) ([]*Ingredient, error) {
	out := make([]*Ingredient, 0, len(f.ingredients))
	for _, ing := range f.ingredients {
		if filter.Category != "" && ing.Category != filter.Category {
			continue
		}
		out = append(out, ing)
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Ingredient, error) {
	ing, ok := f.ingredients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ing, nil
}

func (f *fakeStore) Create(ctx context.Context, ingredient *Ingredient) (*Ingredient, error) {
	for _, existing := range f.ingredients {
		if strings.EqualFold(existing.Name, ingredient.Name) {
			return nil, ErrDuplicateName
		}
	}
	ingredient.ID = uuid.New()
	f.ingredients[ingredient.ID] = ingredient
	return ingredient, nil
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc := NewService(newFakeStore())

	ing, err := svc.Create(context.Background(), CreateInput{
		Name:         "  Tomato  ",
		PricePerUnit: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, "Tomato", ing.Name)
	assert.Equal(t, DefaultCategory, ing.Category)
	assert.Equal(t, DefaultUnit, ing.Unit)
	assert.Equal(t, DefaultStock, ing.Stock)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "  ", PricePerUnit: 10})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Name: "Tomato", PricePerUnit: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Name: "Tomato", PricePerUnit: 10, Category: "Unobtainium"})
	assert.ErrorIs(t, err, ErrValidation)

	negative := -5
	_, err = svc.Create(ctx, CreateInput{Name: "Tomato", PricePerUnit: 10, Stock: &negative})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Name: "Tomato", PricePerUnit: 10, Description: strings.Repeat("x", 201)})
	assert.ErrorIs(t, err, ErrValidation)

	// The description cap counts characters, not bytes
	_, err = svc.Create(ctx, CreateInput{Name: "Tomato", PricePerUnit: 10, Description: strings.Repeat("é", 200)})
	assert.NoError(t, err)
}

func TestCreate_DuplicateNameIsCaseInsensitive(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Paneer", PricePerUnit: 80})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "paneer", PricePerUnit: 90})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestGet_UnknownID(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FiltersByCategory(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Tomato", PricePerUnit: 20, Category: "Vegetables"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Paneer", PricePerUnit: 80, Category: "Dairy"})
	require.NoError(t, err)

	vegetables, err := svc.List(ctx, Filter{Category: "Vegetables"})
	require.NoError(t, err)
	require.Len(t, vegetables, 1)
	assert.Equal(t, "Tomato", vegetables[0].Name)
}
