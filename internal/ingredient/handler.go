package ingredient

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savora-app/savora-api/internal/httputil"
	"github.com/savora-app/savora-api/internal/logging"
)

// Handler contains HTTP handlers for the ingredient catalog
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List returns the ingredient catalog
// @Summary      List ingredients
// @Description  List ingredients sorted by name with category filter and name search
// @Tags         ingredients
// @Produce      json
// @Param        category query string false "Category filter"
// @Param        search   query string false "Name search"
// @Success      200 {object} httputil.Envelope
// @Router       /ingredients [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	filter := Filter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}

	ingredients, err := h.service.List(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list ingredients", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list ingredients", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"ingredients": ingredients}, http.StatusOK)
}

// Get returns a single ingredient
// @Summary      Get ingredient
// @Tags         ingredients
// @Produce      json
// @Param        id path string true "Ingredient ID"
// @Success      200 {object} httputil.Envelope{data=Ingredient}
// @Failure      404 {object} httputil.Envelope "Ingredient not found"
// @Router       /ingredients/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid ingredient id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	ing, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "ingredient not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get ingredient", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get ingredient", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"ingredient": ing}, http.StatusOK)
}

// Create adds an ingredient to the catalog
// @Summary      Create ingredient
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateInput true "Ingredient"
// @Success      201 {object} httputil.Envelope{data=Ingredient}
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      409 {object} httputil.Envelope "Name already taken"
// @Router       /ingredients [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	ing, err := h.service.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateName):
			httputil.RespondErrorWithCode(w, "ingredient already exists", httputil.CodeConflict, http.StatusConflict)
		default:
			logger.Error("failed to create ingredient", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to create ingredient", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("ingredient created", "ingredient_id", ing.ID, "name", ing.Name)
	httputil.RespondMessageJSON(w, "ingredient created successfully", map[string]any{"ingredient": ing}, http.StatusCreated)
}
