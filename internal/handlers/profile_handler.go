package handlers

import (
	"context"
	"net/http"

	"proteinbuddy/internal/models"
	"proteinbuddy/internal/service"
)

// SupportNotifier forwards help requests to the support inbox
type SupportNotifier interface {
	SendSupportMessage(ctx context.Context, userEmail, message string) error
}

type goalRequest struct {
	ProteinGoal *float64 `json:"protein_goal"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type helpRequest struct {
	Message string `json:"message"`
}

// ProfileHandler serves the profile, goal, password and help endpoints
type ProfileHandler struct {
	profileService *service.ProfileService
	authService    *service.AuthService
	notifier       SupportNotifier
	today          func() models.Day
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, authService *service.AuthService, notifier SupportNotifier) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
		notifier:       notifier,
		today:          models.Today,
	}
}

// Profile handles GET /api/profile
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	profile, err := h.profileService.Profile(r.Context(), session.Email, h.today())
	if err != nil {
		respondWithServiceError(w, "Error loading profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// SetGoal handles PUT /api/profile/goal
func (h *ProfileHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProteinGoal == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "protein_goal is required", Field: "protein_goal"})
		return
	}

	if err := h.profileService.SetGoal(r.Context(), session.Email, *req.ProteinGoal); err != nil {
		respondWithServiceError(w, "Error setting goal", err)
		return
	}

	profile, err := h.profileService.Profile(r.Context(), session.Email, h.today())
	if err != nil {
		respondWithServiceError(w, "Error loading profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ChangePassword handles POST /api/profile/password
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ChangePassword(r.Context(), session.Email, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithServiceError(w, "Error changing password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Help handles POST /api/help
func (h *ProfileHandler) Help(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req helpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.notifier.SendSupportMessage(r.Context(), session.Email, req.Message); err != nil {
		respondWithServiceError(w, "Error sending support message", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
