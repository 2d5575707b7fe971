package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// The list-shaped fields (favorites, likes, comments, ingredients, steps)
// are jsonb columns. Comment appends read the row, extend the slice and
// write the column back; the membership toggles (favorites, likes) run as
// single conditional jsonb updates so concurrent toggles cannot lose each
// other's write.

// User is the users table model.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string      `bun:"name,notnull"`
	Email        string      `bun:"email,notnull,unique"`
	PasswordHash string      `bun:"password_hash,notnull"`
	RefreshToken *string     `bun:"refresh_token"`
	Favorites    []uuid.UUID `bun:"favorites,type:jsonb,nullzero"`
	CreatedAt    time.Time   `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time   `bun:"updated_at,notnull,default:current_timestamp"`
}

// RecipeIngredient is one {name, quantity-as-text} pair inside a recipe.
type RecipeIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// RecipeStep is one numbered instruction inside a recipe.
type RecipeStep struct {
	StepNumber  int    `json:"stepNumber"`
	Instruction string `json:"instruction"`
}

// RecipeComment is an append-only comment entry. Entries are never edited
// or removed once written.
type RecipeComment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recipe is the recipes table model.
type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:r"`

	ID            uuid.UUID          `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title         string             `bun:"title,notnull"`
	Description   string             `bun:"description,notnull"`
	ImageURL      string             `bun:"image_url,notnull"`
	ImagePublicID string             `bun:"image_public_id,notnull"`
	Ingredients   []RecipeIngredient `bun:"ingredients,type:jsonb,nullzero"`
	Steps         []RecipeStep       `bun:"steps,type:jsonb,nullzero"`
	PrepTime      int                `bun:"prep_time,notnull,default:0"`
	CookTime      int                `bun:"cook_time,notnull,default:0"`
	Servings      int                `bun:"servings,notnull,default:1"`
	Difficulty    string             `bun:"difficulty,notnull,default:'Medium'"`
	Category      string             `bun:"category,notnull,default:'Lunch'"`
	DietType      string             `bun:"diet_type,notnull,default:'Balanced'"`
	Likes         []uuid.UUID        `bun:"likes,type:jsonb,nullzero"`
	Comments      []RecipeComment    `bun:"comments,type:jsonb,nullzero"`
	AuthorID      uuid.UUID          `bun:"author_id,notnull,type:uuid"`
	AuthorName    string             `bun:"author_name,scanonly"`
	CreatedAt     time.Time          `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time          `bun:"updated_at,notnull,default:current_timestamp"`
}

// Ingredient is the ingredients catalog table model.
type Ingredient struct {
	bun.BaseModel `bun:"table:ingredients,alias:i"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull,unique"`
	ImageURL     string    `bun:"image_url"`
	Category     string    `bun:"category,notnull,default:'Other'"`
	Unit         string    `bun:"unit,notnull,default:'grams'"`
	PricePerUnit float64   `bun:"price_per_unit,notnull"`
	Stock        int       `bun:"stock,notnull,default:100"`
	Description  string    `bun:"description"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
