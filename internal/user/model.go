package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never expose password hash in JSON
	RefreshToken *string     `json:"-"`
	Favorites    []uuid.UUID `json:"favorites"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// HasFavorite reports whether recipeID is in the user's favorites.
func (u *User) HasFavorite(recipeID uuid.UUID) bool {
	for _, id := range u.Favorites {
		if id == recipeID {
			return true
		}
	}
	return false
}
