package ledger

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"proteinbuddy/internal/models"
)

const (
	testEmail = "sam@example.com"
	today     = models.Day("2024-03-10")
)

func newTestLedger(goal float64) (*Ledger, *fakeStore) {
	store := newFakeStore()
	store.addAccount(testEmail, goal)
	return New(store), store
}

func newSession() *models.Session {
	return &models.Session{Email: testEmail}
}

func TestRecordConsumptionCumulative(t *testing.T) {
	l, _ := newTestLedger(100)
	ctx := context.Background()
	session := newSession()

	first, err := l.RecordConsumption(ctx, session, today, "chicken breast", "1", 25)
	if err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}
	if first.TotalIntake != 25 {
		t.Fatalf("expected total 25, got %v", first.TotalIntake)
	}

	second, err := l.RecordConsumption(ctx, session, today, "chicken breast", "1", 25)
	if err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}
	if second.TotalIntake != 50 {
		t.Fatalf("expected total 50, got %v", second.TotalIntake)
	}
	if len(second.Entries) != 1 {
		t.Fatalf("expected a single entry, got %d", len(second.Entries))
	}
	entry := second.Entries[0]
	if entry.Key != "chicken_breast" || entry.Name() != "chicken breast" || entry.Amount != 50 {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestRecordConsumptionRoundsAmount(t *testing.T) {
	l, _ := newTestLedger(100)

	result, err := l.RecordConsumption(context.Background(), newSession(), today, "egg", "1.5", 6.333)
	if err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}
	if result.Amount != 9.5 {
		t.Errorf("expected amount 9.5, got %v", result.Amount)
	}
	if result.TotalIntake != 9.5 {
		t.Errorf("expected total 9.5, got %v", result.TotalIntake)
	}
}

func TestRecordConsumptionValidation(t *testing.T) {
	tests := []struct {
		name     string
		food     string
		servings string
		pps      float64
		field    string
	}{
		{"empty food", "   ", "1", 10, "food"},
		{"empty servings", "egg", "", 10, "servings"},
		{"negative servings", "egg", "-1", 10, "servings"},
		{"letters", "egg", "two", 10, "servings"},
		{"exponent", "egg", "1e3", 10, "servings"},
		{"two points", "egg", "1.2.3", 10, "servings"},
		{"negative protein", "egg", "1", -3, "protein_per_serving"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(100)
			_, err := l.RecordConsumption(context.Background(), newSession(), today, tt.food, tt.servings, tt.pps)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, validationErr.Field)
			}
			if len(store.days[testEmail]) != 0 {
				t.Errorf("validation failure must not touch the store")
			}
		})
	}
}

func TestRecordConsumptionUnknownAccount(t *testing.T) {
	l, _ := newTestLedger(100)
	session := &models.Session{Email: "nobody@example.com"}

	_, err := l.RecordConsumption(context.Background(), session, today, "egg", "1", 6)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRecordConsumptionAtomicOnFailedTotal(t *testing.T) {
	l, store := newTestLedger(100)
	ctx := context.Background()

	if _, err := l.RecordConsumption(ctx, newSession(), today, "egg", "1", 6); err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}

	store.failSetTotal = true
	_, err := l.RecordConsumption(ctx, newSession(), today, "tuna", "2", 20)

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !errors.Is(err, errInjected) {
		t.Errorf("expected the cause to be wrapped, got %v", err)
	}

	store.failSetTotal = false
	snapshot, err := l.TodaySnapshot(ctx, testEmail, today)
	if err != nil {
		t.Fatalf("TodaySnapshot failed: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].Key != "egg" {
		t.Errorf("expected only the egg entry to survive, got %+v", snapshot.Entries)
	}
	if snapshot.TotalIntake != 6 {
		t.Errorf("expected total 6, got %v", snapshot.TotalIntake)
	}
}

func TestRecordConsumptionFailedUpsertLeavesNoDay(t *testing.T) {
	l, store := newTestLedger(100)
	store.failUpsert = true

	_, err := l.RecordConsumption(context.Background(), newSession(), today, "egg", "1", 6)

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if _, ok := store.days[testEmail][today]; ok {
		t.Errorf("expected the touched day to be rolled back")
	}
}

func TestGoalCelebratedOncePerSession(t *testing.T) {
	l, _ := newTestLedger(60)
	ctx := context.Background()
	session := newSession()

	tests := []struct {
		servings string
		want     bool
	}{
		{"1", false}, // 25
		{"1", false}, // 50
		{"1", true},  // 75 crosses 60
		{"1", false}, // 100 already celebrated
	}

	for i, tt := range tests {
		result, err := l.RecordConsumption(ctx, session, today, "chicken breast", tt.servings, 25)
		if err != nil {
			t.Fatalf("step %d: RecordConsumption failed: %v", i, err)
		}
		if result.GoalReached != tt.want {
			t.Errorf("step %d: expected GoalReached=%v, got %v (total %v)", i, tt.want, result.GoalReached, result.TotalIntake)
		}
	}
	if !session.GoalCelebrated {
		t.Errorf("expected the session to remember the celebration")
	}
}

func TestGoalNotCelebratedWhenSessionStartedOverGoal(t *testing.T) {
	l, _ := newTestLedger(20)
	ctx := context.Background()

	if _, err := l.RecordConsumption(ctx, newSession(), today, "steak", "1", 30); err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}

	session, err := l.BeginSession(ctx, testEmail, today)
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	if session.StartingIntake != 30 {
		t.Fatalf("expected starting intake 30, got %v", session.StartingIntake)
	}

	result, err := l.RecordConsumption(ctx, session, today, "egg", "1", 6)
	if err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}
	if result.GoalReached {
		t.Errorf("goal met before the session must not be celebrated")
	}
}

func TestGoalAtExactlyGoalNotCelebrated(t *testing.T) {
	l, _ := newTestLedger(25)

	result, err := l.RecordConsumption(context.Background(), newSession(), today, "tuna", "1", 25)
	if err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}
	if result.GoalReached {
		t.Errorf("reaching the goal exactly is not exceeding it")
	}
}

func TestDeleteEntries(t *testing.T) {
	l, _ := newTestLedger(100)
	ctx := context.Background()
	session := newSession()

	for _, food := range []struct {
		name string
		pps  float64
	}{{"chicken breast", 25}, {"egg", 6}, {"greek yogurt", 10}} {
		if _, err := l.RecordConsumption(ctx, session, today, food.name, "1", food.pps); err != nil {
			t.Fatalf("RecordConsumption failed: %v", err)
		}
	}

	snapshot, err := l.DeleteEntries(ctx, testEmail, today, []string{"chicken breast", "greek_yogurt", "not logged"})
	if err != nil {
		t.Fatalf("DeleteEntries failed: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].Key != "egg" {
		t.Errorf("expected only egg to remain, got %+v", snapshot.Entries)
	}
	if snapshot.TotalIntake != 6 {
		t.Errorf("expected total 6, got %v", snapshot.TotalIntake)
	}

	snapshot, err = l.DeleteEntries(ctx, testEmail, today, []string{"egg"})
	if err != nil {
		t.Fatalf("DeleteEntries failed: %v", err)
	}
	if len(snapshot.Entries) != 0 || snapshot.TotalIntake != 0 {
		t.Errorf("expected an empty day, got %+v", snapshot)
	}
}

func TestDeleteAbsentNamesIsNoOp(t *testing.T) {
	l, store := newTestLedger(100)
	ctx := context.Background()

	if _, err := l.RecordConsumption(ctx, newSession(), today, "egg", "2", 6); err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}

	snapshot, err := l.DeleteEntries(ctx, testEmail, today, []string{"tofu", "lentils"})
	if err != nil {
		t.Fatalf("DeleteEntries failed: %v", err)
	}
	if snapshot.TotalIntake != 12 || len(snapshot.Entries) != 1 {
		t.Errorf("expected the day to be unchanged, got %+v", snapshot)
	}
	if got := *store.days[testEmail][today].total; got != 12 {
		t.Errorf("expected persisted total 12, got %v", got)
	}
}

func TestDeleteEmptySetChangesNothing(t *testing.T) {
	l, store := newTestLedger(100)
	ctx := context.Background()
	store.setDay(testEmail, today, 7)
	calls := store.setTotalCalls

	snapshot, err := l.DeleteEntries(ctx, testEmail, today, nil)
	if err != nil {
		t.Fatalf("DeleteEntries failed: %v", err)
	}
	if snapshot.TotalIntake != 7 {
		t.Errorf("expected the persisted total to be returned, got %v", snapshot.TotalIntake)
	}
	if store.setTotalCalls != calls {
		t.Errorf("an empty delete must not write")
	}

	snapshot, err = l.DeleteEntries(ctx, testEmail, today.AddDays(-1), []string{})
	if err != nil {
		t.Fatalf("DeleteEntries on a missing day failed: %v", err)
	}
	if len(snapshot.Entries) != 0 || snapshot.TotalIntake != 0 {
		t.Errorf("expected an empty snapshot, got %+v", snapshot)
	}
}

func TestDeleteEntriesAtomicOnFailedTotal(t *testing.T) {
	l, store := newTestLedger(100)
	ctx := context.Background()

	if _, err := l.RecordConsumption(ctx, newSession(), today, "egg", "1", 6); err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}

	store.failSetTotal = true
	_, err := l.DeleteEntries(ctx, testEmail, today, []string{"egg"})
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if _, ok := store.days[testEmail][today].entries["egg"]; !ok {
		t.Errorf("expected the delete to be rolled back")
	}
}

func TestTotalMatchesEntriesUnderRandomMutations(t *testing.T) {
	l, store := newTestLedger(100)
	ctx := context.Background()
	session := newSession()
	rng := rand.New(rand.NewSource(42))
	foods := []string{"egg", "chicken breast", "tofu", "lentils", "whey shake"}
	servings := []string{"0", "0.5", "1", "1.25", "2", "3"}

	if _, err := l.TodaySnapshot(ctx, testEmail, today); err != nil {
		t.Fatalf("TodaySnapshot failed: %v", err)
	}

	for i := 0; i < 300; i++ {
		var snapshot *Snapshot
		if rng.Intn(3) == 0 {
			var names []string
			for _, food := range foods {
				if rng.Intn(3) == 0 {
					names = append(names, food)
				}
			}
			var err error
			snapshot, err = l.DeleteEntries(ctx, testEmail, today, names)
			if err != nil {
				t.Fatalf("step %d: DeleteEntries failed: %v", i, err)
			}
		} else {
			food := foods[rng.Intn(len(foods))]
			pps := float64(rng.Intn(4000)) / 100
			result, err := l.RecordConsumption(ctx, session, today, food, servings[rng.Intn(len(servings))], pps)
			if err != nil {
				t.Fatalf("step %d: RecordConsumption failed: %v", i, err)
			}
			snapshot = &result.Snapshot
		}

		amounts := make([]float64, 0, len(snapshot.Entries))
		for _, entry := range snapshot.Entries {
			amounts = append(amounts, entry.Amount)
		}
		if want := models.SumGrams(amounts...); snapshot.TotalIntake != want {
			t.Fatalf("step %d: total %v does not match entries sum %v", i, snapshot.TotalIntake, want)
		}
		if persisted := store.days[testEmail][today].total; persisted == nil || *persisted != snapshot.TotalIntake {
			t.Fatalf("step %d: persisted total out of sync", i)
		}
	}
}

func TestTodaySnapshotCreatesDay(t *testing.T) {
	l, store := newTestLedger(100)

	snapshot, err := l.TodaySnapshot(context.Background(), testEmail, today)
	if err != nil {
		t.Fatalf("TodaySnapshot failed: %v", err)
	}
	if snapshot.TotalIntake != 0 || len(snapshot.Entries) != 0 {
		t.Errorf("expected an empty snapshot, got %+v", snapshot)
	}
	if _, ok := store.days[testEmail][today]; !ok {
		t.Errorf("expected the day to be created")
	}
}

func TestTodaySnapshotUnknownAccount(t *testing.T) {
	l, _ := newTestLedger(100)

	_, err := l.TodaySnapshot(context.Background(), "nobody@example.com", today)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTodaySnapshotReturnsPersistedTotal(t *testing.T) {
	l, store := newTestLedger(100)
	total := 40.0
	store.days[testEmail][today] = &fakeDay{entries: map[string]float64{"egg": 12}, total: &total}

	snapshot, err := l.TodaySnapshot(context.Background(), testEmail, today)
	if err != nil {
		t.Fatalf("TodaySnapshot failed: %v", err)
	}
	if snapshot.TotalIntake != 40 {
		t.Errorf("expected the persisted total 40, got %v", snapshot.TotalIntake)
	}
}

func TestTodaySnapshotRepairsMissingTotal(t *testing.T) {
	tests := []struct {
		name      string
		failWrite bool
		want      float64
	}{
		{"repaired", false, 18},
		{"repair write fails", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(100)
			store.days[testEmail][today] = &fakeDay{entries: map[string]float64{"egg": 12, "tofu": 6}}
			store.failSetTotal = tt.failWrite

			snapshot, err := l.TodaySnapshot(context.Background(), testEmail, today)
			if err != nil {
				t.Fatalf("TodaySnapshot failed: %v", err)
			}
			if snapshot.TotalIntake != tt.want {
				t.Errorf("expected total %v, got %v", tt.want, snapshot.TotalIntake)
			}
			if !tt.failWrite && *store.days[testEmail][today].total != 18 {
				t.Errorf("expected the repaired total to be persisted")
			}
		})
	}
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name   string
		totals map[int]float64 // days before today -> total
		want   int
	}{
		{"no history", nil, 0},
		{"two days", map[int]float64{1: 5, 2: 3}, 2},
		{"zero day breaks", map[int]float64{1: 5, 2: 0, 3: 8}, 1},
		{"gap breaks", map[int]float64{1: 5, 3: 8}, 1},
		{"yesterday missing", map[int]float64{2: 5, 3: 8}, 0},
		{"today ignored", map[int]float64{0: 50}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(100)
			for back, total := range tt.totals {
				store.setDay(testEmail, today.AddDays(-back), total)
			}

			got, err := l.Streak(context.Background(), testEmail, today)
			if err != nil {
				t.Fatalf("Streak failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected streak %d, got %d", tt.want, got)
			}
		})
	}
}

func TestStreakSpansQueryWindows(t *testing.T) {
	l, store := newTestLedger(100)
	for back := 1; back <= 70; back++ {
		store.setDay(testEmail, today.AddDays(-back), 1)
	}

	got, err := l.Streak(context.Background(), testEmail, today)
	if err != nil {
		t.Fatalf("Streak failed: %v", err)
	}
	if got != 70 {
		t.Errorf("expected streak 70, got %d", got)
	}
	if store.dayTotalsCalls != 3 {
		t.Errorf("expected 3 window queries, got %d", store.dayTotalsCalls)
	}
}

func TestStreakStorageFailure(t *testing.T) {
	l, store := newTestLedger(100)
	store.failDayTotals = true

	_, err := l.Streak(context.Background(), testEmail, today)
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestWeekSeries(t *testing.T) {
	l, store := newTestLedger(100)
	store.setDay(testEmail, today.AddDays(-8), 10)
	store.setDay(testEmail, today.AddDays(-5), 22.456)
	store.setDay(testEmail, today.AddDays(-2), 30)
	store.setDay(testEmail, today.AddDays(-1), 99)
	store.setDay(testEmail, today.AddDays(-9), 99)

	series, err := l.WeekSeries(context.Background(), testEmail, today)
	if err != nil {
		t.Fatalf("WeekSeries failed: %v", err)
	}

	want := []float64{10, 0, 0, 22.46, 0, 0, 30}
	if len(series) != WeekLength {
		t.Fatalf("expected %d values, got %d", WeekLength, len(series))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("day %d: expected %v, got %v", i, want[i], series[i])
		}
	}
}

func TestWeekSeriesNewAccount(t *testing.T) {
	l, _ := newTestLedger(100)

	series, err := l.WeekSeries(context.Background(), testEmail, today)
	if err != nil {
		t.Fatalf("WeekSeries failed: %v", err)
	}
	if len(series) != WeekLength {
		t.Fatalf("expected %d values, got %d", WeekLength, len(series))
	}
	for i, v := range series {
		if v != 0 {
			t.Errorf("day %d: expected 0, got %v", i, v)
		}
	}
}

func TestWeekSeriesUnknownAccount(t *testing.T) {
	l, _ := newTestLedger(100)

	_, err := l.WeekSeries(context.Background(), "nobody@example.com", today)
	if !IsNotFound(err) {
		t.Fatalf("expected a not found error, got %v", err)
	}
}

func TestBeginSessionTouchesDay(t *testing.T) {
	l, store := newTestLedger(100)

	session, err := l.BeginSession(context.Background(), testEmail, today)
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	if session.Email != testEmail || session.StartingIntake != 0 || session.GoalCelebrated {
		t.Errorf("unexpected session %+v", session)
	}
	if _, ok := store.days[testEmail][today]; !ok {
		t.Errorf("expected today to be created")
	}
}
