package recipe

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savora-app/savora-api/internal/auth"
	"github.com/savora-app/savora-api/internal/httputil"
	"github.com/savora-app/savora-api/internal/logging"
)

// Recipe images are modest; cap the multipart memory buffer.
const maxUploadMemory = 10 << 20 // 10 MB

// Handler contains HTTP handlers for recipe endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Pagination is the list paging envelope.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListResponse is the payload of the recipe listing.
type ListResponse struct {
	Recipes    []*Recipe  `json:"recipes"`
	Pagination Pagination `json:"pagination"`
}

// LikeResponse is the payload of the like toggle.
type LikeResponse struct {
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

// CommentRequest is the comment-append request body.
type CommentRequest struct {
	Text string `json:"text"`
}

// List returns recipes with optional filters
// @Summary      List recipes
// @Description  List recipes newest-first with category/dietType filters, text search and pagination
// @Tags         recipes
// @Produce      json
// @Param        category query string false "Category filter"
// @Param        dietType query string false "Diet type filter"
// @Param        search   query string false "Title/description search"
// @Param        page     query int    false "Page (1-based)"
// @Param        limit    query int    false "Page size"
// @Success      200 {object} httputil.Envelope{data=ListResponse}
// @Router       /recipes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	filter := Filter{
		Category: r.URL.Query().Get("category"),
		DietType: r.URL.Query().Get("dietType"),
		Search:   r.URL.Query().Get("search"),
		Page:     intQuery(r, "page", 1),
		Limit:    intQuery(r, "limit", 10),
	}
	if filter.Limit > 100 {
		filter.Limit = 10
	}

	recipes, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list recipes", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list recipes", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	pages := 0
	if filter.Limit > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}

	httputil.RespondJSON(w, ListResponse{
		Recipes: recipes,
		Pagination: Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: pages,
		},
	}, http.StatusOK)
}

// Get returns a single recipe
// @Summary      Get recipe
// @Tags         recipes
// @Produce      json
// @Param        id path string true "Recipe ID"
// @Success      200 {object} httputil.Envelope{data=Recipe}
// @Failure      404 {object} httputil.Envelope "Recipe not found"
// @Router       /recipes/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get recipe", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get recipe", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"recipe": rec}, http.StatusOK)
}

// Create creates a recipe from a multipart form
// @Summary      Create recipe
// @Description  Create a recipe with a mandatory image. Ingredients and steps are JSON-encoded form fields.
// @Tags         recipes
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData file true "Recipe image"
// @Success      201 {object} httputil.Envelope{data=Recipe}
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Router       /recipes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.RespondErrorWithCode(w, "invalid multipart form", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	input, err := decodeCreateForm(r)
	if err != nil {
		logger.Warn("invalid recipe form", "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.RespondErrorWithCode(w, "please upload a recipe image", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	defer file.Close()

	rec, err := h.service.Create(r.Context(), userID, input, &ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrImageRequired) {
			logger.Warn("recipe creation failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
		logger.Error("recipe creation failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create recipe", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("recipe created", "recipe_id", rec.ID, "author_id", userID)
	httputil.RespondMessageJSON(w, "recipe created successfully", map[string]any{"recipe": rec}, http.StatusCreated)
}

// ToggleLike flips the caller's like on a recipe
// @Summary      Toggle like
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recipe ID"
// @Success      200 {object} httputil.Envelope{data=LikeResponse}
// @Failure      404 {object} httputil.Envelope "Recipe not found"
// @Router       /recipes/{id}/like [post]
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	liked, likeCount, err := h.service.ToggleLike(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to toggle like", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to toggle like", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	message := "recipe unliked"
	if liked {
		message = "recipe liked"
	}

	httputil.RespondMessageJSON(w, message, LikeResponse{
		IsLiked:   liked,
		LikeCount: likeCount,
	}, http.StatusOK)
}

// AddComment appends a comment to a recipe
// @Summary      Add comment
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recipe ID"
// @Param        request body CommentRequest true "Comment text"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Empty or oversized comment"
// @Failure      404 {object} httputil.Envelope "Recipe not found"
// @Router       /recipes/{id}/comment [post]
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	comments, err := h.service.AddComment(r.Context(), id, userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, ErrCommentEmpty), errors.Is(err, ErrCommentTooLong):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to add comment", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to add comment", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondMessageJSON(w, "comment added", map[string]any{"comments": comments}, http.StatusCreated)
}

// Delete removes a recipe, author-only
// @Summary      Delete recipe
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recipe ID"
// @Success      200 {object} httputil.Envelope
// @Failure      403 {object} httputil.Envelope "Not the author"
// @Failure      404 {object} httputil.Envelope "Recipe not found"
// @Router       /recipes/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			httputil.RespondErrorWithCode(w, "not authorized to delete this recipe", httputil.CodeForbidden, http.StatusForbidden)
		default:
			logger.Error("failed to delete recipe", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to delete recipe", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("recipe deleted", "recipe_id", id, "user_id", userID)
	httputil.RespondMessage(w, "recipe deleted successfully", http.StatusOK)
}

// decodeCreateForm reads the typed creation payload out of the multipart
// form. Ingredients and steps arrive as JSON-encoded fields and are
// decoded into typed structs here, before any component sees them.
func decodeCreateForm(r *http.Request) (CreateInput, error) {
	var input CreateInput

	input.Title = r.FormValue("title")
	input.Description = r.FormValue("description")
	input.Difficulty = r.FormValue("difficulty")
	input.Category = r.FormValue("category")
	input.DietType = r.FormValue("dietType")

	if raw := r.FormValue("ingredients"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Ingredients); err != nil {
			return input, errors.New("ingredients must be a JSON array of {name, quantity}")
		}
	}
	if raw := r.FormValue("steps"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Steps); err != nil {
			return input, errors.New("steps must be a JSON array of {stepNumber, instruction}")
		}
	}

	var err error
	if input.PrepTime, err = intForm(r, "prepTime", 0); err != nil {
		return input, err
	}
	if input.CookTime, err = intForm(r, "cookTime", 0); err != nil {
		return input, err
	}
	if input.Servings, err = intForm(r, "servings", 1); err != nil {
		return input, err
	}

	return input, nil
}

func intForm(r *http.Request, field string, defaultValue int) (int, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(field + " must be an integer")
	}
	return value, nil
}

func intQuery(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}

// recipeID parses the {id} path param, responding 400 itself on failure.
func recipeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid recipe id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
