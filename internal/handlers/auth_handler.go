package handlers

import (
	"net/http"
	"time"

	"proteinbuddy/internal/models"
	"proteinbuddy/internal/security"
	"proteinbuddy/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	today       func() models.Day
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		today:       models.Today,
	}
}

// Register handles POST /api/register. A new account is logged in at once.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Register(r.Context(), req.Email, req.Password, h.today())
	if err != nil {
		respondWithServiceError(w, "Error registering account", err)
		return
	}

	h.startSession(w, r, http.StatusCreated, session)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password, h.today())
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}

	h.startSession(w, r, http.StatusOK, session)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := security.SessionIDFromRequest(r); sessionID != "" {
		if err := h.authService.Logout(r.Context(), sessionID); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error logging out", err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, session *models.Session) {
	http.SetCookie(w, security.CreateSessionCookie(r, session.ID, session.ExpiresAt))
	writeJSON(w, status, sessionResponse{
		SessionID: session.ID,
		Email:     session.Email,
		ExpiresAt: session.ExpiresAt,
	})
}
