package recipe

import (
	"time"

	"github.com/google/uuid"

	"github.com/savora-app/savora-api/internal/database"
)

// Enum values mirror what the catalog UI offers.
var (
	Difficulties = []string{"Easy", "Medium", "Hard"}
	Categories   = []string{"Breakfast", "Lunch", "Dinner", "Snack", "Dessert", "Beverage"}
	DietTypes    = []string{"Balanced", "Keto", "Vegan", "Intermittent", "Fasting"}
)

const (
	DefaultDifficulty = "Medium"
	DefaultCategory   = "Lunch"
	DefaultDietType   = "Balanced"

	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxCommentLen     = 500
)

// Image is the recipe image reference: a public URL plus the opaque
// storage key used to release the object on delete.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Recipe struct {
	ID           uuid.UUID                   `json:"id"`
	Title        string                      `json:"title"`
	Description  string                      `json:"description"`
	Image        Image                       `json:"image"`
	Ingredients  []database.RecipeIngredient `json:"ingredients"`
	Steps        []database.RecipeStep       `json:"steps"`
	PrepTime     int                         `json:"prepTime"`
	CookTime     int                         `json:"cookTime"`
	TotalTime    int                         `json:"totalTime"`
	Servings     int                         `json:"servings"`
	Difficulty   string                      `json:"difficulty"`
	Category     string                      `json:"category"`
	DietType     string                      `json:"dietType"`
	Likes        []uuid.UUID                 `json:"likes"`
	LikeCount    int                         `json:"likeCount"`
	Comments     []database.RecipeComment    `json:"comments"`
	CommentCount int                         `json:"commentCount"`
	AuthorID     uuid.UUID                   `json:"authorId"`
	AuthorName   string                      `json:"authorName,omitempty"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// IsLikedBy reports whether userID is in the recipe's likes.
func (r *Recipe) IsLikedBy(userID uuid.UUID) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func validEnum(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}
