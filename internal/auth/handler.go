package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savora-app/savora-api/internal/httputil"
	"github.com/savora-app/savora-api/internal/logging"
	"github.com/savora-app/savora-api/internal/ratelimit"
	"github.com/savora-app/savora-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service         *Service
	rateLimiter     *ratelimit.Limiter
	logger          *logging.Logger
	isProduction    bool
	refreshDuration time.Duration
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger, isProduction bool, refreshDuration time.Duration) *Handler {
	return &Handler{
		service:         service,
		rateLimiter:     rateLimiter,
		logger:          logger,
		isProduction:    isProduction,
		refreshDuration: refreshDuration,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the payload returned by register and login. The
// refresh token travels only in the cookie, never in the body.
type SessionResponse struct {
	User        *user.User `json:"user"`
	AccessToken string     `json:"accessToken"`
}

// AccessTokenResponse is the payload returned by refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// FavoritesResponse is the payload returned by the favorite toggle.
type FavoritesResponse struct {
	Added     bool        `json:"added"`
	Favorites []uuid.UUID `json:"favorites"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a user account and start a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration payload"
// @Success      201 {object} httputil.Envelope{data=SessionResponse}
// @Failure      400 {object} httputil.Envelope "Invalid request or validation error"
// @Failure      409 {object} httputil.Envelope "Email already exists"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	session, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "user with this email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		if isValidationError(err) {
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", session.User.ID)

	SetRefreshCookie(w, session.RefreshToken, h.isProduction, h.refreshDuration)
	httputil.RespondMessageJSON(w, "user registered successfully", SessionResponse{
		User:        session.User,
		AccessToken: session.AccessToken,
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and start a session, replacing any previous one
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.Envelope{data=SessionResponse}
// @Failure      400 {object} httputil.Envelope "Invalid request body"
// @Failure      401 {object} httputil.Envelope "Invalid credentials"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "login"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, ErrInvalidCredentials.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", session.User.ID)

	SetRefreshCookie(w, session.RefreshToken, h.isProduction, h.refreshDuration)
	httputil.RespondMessageJSON(w, "login successful", SessionResponse{
		User:        session.User,
		AccessToken: session.AccessToken,
	}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Invalidate the refresh token and clear the cookie
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	h.service.Logout(r.Context(), RefreshTokenFromCookie(r))
	ClearRefreshCookie(w, h.isProduction)

	logger.Info("user logged out successfully")
	httputil.RespondMessage(w, "logged out successfully", http.StatusOK)
}

// Refresh handles access token refresh
// @Summary      Refresh access token
// @Description  Mint a new access token from the refresh token cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} httputil.Envelope{data=AccessTokenResponse}
// @Failure      401 {object} httputil.Envelope "Missing, invalid or superseded refresh token"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	refreshToken := strings.TrimSpace(RefreshTokenFromCookie(r))
	if refreshToken == "" {
		logger.Warn("refresh failed: no refresh token cookie")
		httputil.RespondErrorWithCode(w, "no refresh token provided", httputil.CodeInvalidRefreshToken, http.StatusUnauthorized)
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) {
			logger.Warn("refresh failed: invalid or expired token")
			httputil.RespondErrorWithCode(w, "invalid or expired refresh token", httputil.CodeInvalidRefreshToken, http.StatusUnauthorized)
			return
		}
		logger.Error("refresh failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to refresh token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("access token refreshed successfully")
	httputil.RespondJSON(w, AccessTokenResponse{AccessToken: accessToken}, http.StatusOK)
}

// Me returns the current user profile
// @Summary      Current user
// @Description  Return the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope{data=user.User}
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	currentUser, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to load current user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{"user": currentUser}, http.StatusOK)
}

// ToggleFavorite flips a recipe in the user's favorites
// @Summary      Toggle favorite
// @Description  Add the recipe to favorites if absent, remove it if present
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        recipeId path string true "Recipe ID"
// @Success      200 {object} httputil.Envelope{data=FavoritesResponse}
// @Failure      400 {object} httputil.Envelope "Malformed recipe id"
// @Failure      401 {object} httputil.Envelope "Unauthorized"
// @Router       /auth/favorites/{recipeId} [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	recipeID, err := uuid.Parse(chi.URLParam(r, "recipeId"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid recipe id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	added, favorites, err := h.service.ToggleFavorite(r.Context(), userID, recipeID)
	if err != nil {
		logger.Error("failed to toggle favorite", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to toggle favorite", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	message := "removed from favorites"
	if added {
		message = "added to favorites"
	}

	httputil.RespondMessageJSON(w, message, FavoritesResponse{
		Added:     added,
		Favorites: favorites,
	}, http.StatusOK)
}

// isValidationError reports whether err is one of the register input errors.
func isValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrInvalidEmailFormat)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
