package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"proteinbuddy/internal/chart"
	"proteinbuddy/internal/ledger"
	"proteinbuddy/internal/models"
	"proteinbuddy/internal/service"
)

// servingsInput accepts servings as a JSON string or number. The text is
// kept so the ledger applies the same rules to both.
type servingsInput string

func (s *servingsInput) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = servingsInput(text)
		return nil
	}
	*s = servingsInput(data)
	return nil
}

type recordRequest struct {
	Food     string        `json:"food"`
	Servings servingsInput `json:"servings"`
	// ProteinPerServing skips the food lookup when set
	ProteinPerServing *float64 `json:"protein_per_serving"`
}

type deleteRequest struct {
	Foods []string `json:"foods"`
}

type entryResponse struct {
	Name   string  `json:"name"`
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
}

type snapshotResponse struct {
	Day         models.Day      `json:"day"`
	Entries     []entryResponse `json:"entries"`
	TotalIntake float64         `json:"total_intake"`
}

type recordResponse struct {
	snapshotResponse
	Amount      float64 `json:"amount"`
	ProteinGoal float64 `json:"protein_goal"`
	GoalReached bool    `json:"goal_reached"`
}

type statsResponse struct {
	Streak int          `json:"streak"`
	Week   []float64    `json:"week"`
	From   models.Day   `json:"from"`
	To     models.Day   `json:"to"`
	Chart  chart.Layout `json:"chart"`
}

// IntakeHandler serves food search, intake logging and stats
type IntakeHandler struct {
	ledger      *ledger.Ledger
	foods       service.FoodLookup
	authService *service.AuthService
	today       func() models.Day
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(l *ledger.Ledger, foods service.FoodLookup, authService *service.AuthService) *IntakeHandler {
	return &IntakeHandler{
		ledger:      l,
		foods:       foods,
		authService: authService,
		today:       models.Today,
	}
}

// SearchFood handles GET /api/foods/search?query=
func (h *IntakeHandler) SearchFood(w http.ResponseWriter, r *http.Request) {
	food, err := h.foods.Lookup(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondWithServiceError(w, "Error looking up food", err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

// Today handles GET /api/intake/today
func (h *IntakeHandler) Today(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	snapshot, err := h.ledger.TodaySnapshot(r.Context(), session.Email, h.today())
	if err != nil {
		respondWithServiceError(w, "Error loading today's intake", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(snapshot))
}

// Record handles POST /api/intake. Without protein_per_serving the food is
// looked up first.
func (h *IntakeHandler) Record(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var proteinPerServing float64
	if req.ProteinPerServing != nil {
		proteinPerServing = *req.ProteinPerServing
	} else {
		food, err := h.foods.Lookup(r.Context(), req.Food)
		if err != nil {
			respondWithServiceError(w, "Error looking up food", err)
			return
		}
		proteinPerServing = food.ProteinPerServing
	}

	result, err := h.ledger.RecordConsumption(r.Context(), session, h.today(), req.Food, string(req.Servings), proteinPerServing)
	if err != nil {
		respondWithServiceError(w, "Error recording consumption", err)
		return
	}

	if result.GoalReached {
		if err := h.authService.SaveSession(r.Context(), session); err != nil {
			log.Printf("Warning: failed to save celebration for %s: %v", session.Email, err)
		}
	}

	writeJSON(w, http.StatusOK, recordResponse{
		snapshotResponse: toSnapshotResponse(&result.Snapshot),
		Amount:           result.Amount,
		ProteinGoal:      result.ProteinGoal,
		GoalReached:      result.GoalReached,
	})
}

// Delete handles POST /api/intake/delete
func (h *IntakeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req deleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snapshot, err := h.ledger.DeleteEntries(r.Context(), session.Email, h.today(), req.Foods)
	if err != nil {
		respondWithServiceError(w, "Error deleting entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(snapshot))
}

// Stats handles GET /api/stats
func (h *IntakeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	today := h.today()

	streak, err := h.ledger.Streak(r.Context(), session.Email, today)
	if err != nil {
		respondWithServiceError(w, "Error computing streak", err)
		return
	}
	week, err := h.ledger.WeekSeries(r.Context(), session.Email, today)
	if err != nil {
		respondWithServiceError(w, "Error loading week series", err)
		return
	}

	from := today.AddDays(-(ledger.WeekLength + 1))
	writeJSON(w, http.StatusOK, statsResponse{
		Streak: streak,
		Week:   week,
		From:   from,
		To:     today.AddDays(-2),
		Chart:  chart.WeekLayout(from, week),
	})
}

func toSnapshotResponse(snapshot *ledger.Snapshot) snapshotResponse {
	entries := make([]entryResponse, 0, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		entries = append(entries, entryResponse{
			Name:   entry.Name(),
			Key:    entry.Key,
			Amount: entry.Amount,
		})
	}
	return snapshotResponse{
		Day:         snapshot.Day,
		Entries:     entries,
		TotalIntake: snapshot.TotalIntake,
	}
}
