package handlers

import "net/http"

// NewRouter registers every API route and wraps the mux with request logging
func NewRouter(m *Middleware, auth *AuthHandler, intake *IntakeHandler, profile *ProfileHandler) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", Health)
	mux.HandleFunc("POST /api/register", m.RateLimit(auth.Register))
	mux.HandleFunc("POST /api/login", m.RateLimit(auth.Login))
	mux.HandleFunc("POST /api/logout", auth.Logout)

	// Intake routes
	mux.HandleFunc("GET /api/foods/search", m.RequireAuth(intake.SearchFood))
	mux.HandleFunc("GET /api/intake/today", m.RequireAuth(intake.Today))
	mux.HandleFunc("POST /api/intake", m.RequireAuth(intake.Record))
	mux.HandleFunc("POST /api/intake/delete", m.RequireAuth(intake.Delete))
	mux.HandleFunc("GET /api/stats", m.RequireAuth(intake.Stats))

	// Profile routes
	mux.HandleFunc("GET /api/profile", m.RequireAuth(profile.Profile))
	mux.HandleFunc("PUT /api/profile/goal", m.RequireAuth(profile.SetGoal))
	mux.HandleFunc("POST /api/profile/password", m.RequireAuth(profile.ChangePassword))
	mux.HandleFunc("POST /api/help", m.RequireAuth(profile.Help))

	return Logging(mux)
}
