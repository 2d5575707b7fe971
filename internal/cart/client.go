package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/savora-app/savora-api/internal/ingredient"
)

// Client fetches ingredient snapshots from the catalog API. The cart
// stores the snapshot, so a single fetch at add time is all it needs.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type ingredientEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Ingredient *ingredient.Ingredient `json:"ingredient"`
	} `json:"data"`
}

// FetchIngredient returns the current catalog entry for the ingredient.
func (c *Client) FetchIngredient(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	endpoint := c.baseURL + "/ingredients/" + url.PathEscape(id.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach catalog API: %w", err)
	}
	defer resp.Body.Close()

	var envelope ingredientEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("ingredient %s not found", id)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Success || envelope.Data.Ingredient == nil {
		if envelope.Message != "" {
			return nil, fmt.Errorf("catalog API error: %s", envelope.Message)
		}
		return nil, fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}

	return envelope.Data.Ingredient, nil
}

// Snapshot converts a catalog entry into the line item the cart stores.
func Snapshot(ing *ingredient.Ingredient) LineItem {
	return LineItem{
		IngredientID: ing.ID,
		Name:         ing.Name,
		Unit:         ing.Unit,
		PricePerUnit: ing.PricePerUnit,
	}
}
