// Package ledger keeps each account's daily protein intake: it logs and
// deletes food entries, keeps every day's total equal to the sum of its
// entries, and derives the login streak and the weekly intake series.
package ledger

import (
	"context"
	"errors"
	"log"

	"proteinbuddy/internal/models"
)

// WeekLength is the number of days in a week series
const WeekLength = 7

// streakWindow is how many days a single streak query covers
const streakWindow = 31

// Store is the account store the ledger reads and writes.
// InTx must run fn atomically; store calls made with the ctx passed to fn
// are part of that unit.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetAccount(ctx context.Context, email string) (*models.Account, error)
	GetDay(ctx context.Context, email string, day models.Day) (*models.DayLog, error)
	DayTotals(ctx context.Context, email string, from, to models.Day) (map[models.Day]float64, error)
	TouchDay(ctx context.Context, email string, day models.Day) error
	UpsertEntry(ctx context.Context, email string, day models.Day, foodKey string, delta float64) error
	DeleteEntry(ctx context.Context, email string, day models.Day, foodKey string) error
	SetDayTotal(ctx context.Context, email string, day models.Day, total float64) error
}

// Snapshot is one day's entries and total, ready for display
type Snapshot struct {
	Day         models.Day
	Entries     []models.Entry
	TotalIntake float64
}

// Consumption is the result of logging a food
type Consumption struct {
	Snapshot
	Amount      float64
	ProteinGoal float64
	// GoalReached is true only the first time in a session that the day's
	// total went over the goal, and only when the session began under it.
	GoalReached bool
}

// Ledger implements the intake operations on top of a Store
type Ledger struct {
	store Store
}

// New creates a ledger backed by store
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// BeginSession starts a session for email on day. It makes sure the day has a
// log and remembers the intake already logged, so a goal met before this
// session is not celebrated again.
func (l *Ledger) BeginSession(ctx context.Context, email string, day models.Day) (*models.Session, error) {
	snapshot, err := l.TodaySnapshot(ctx, email, day)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		Email:          email,
		StartingIntake: snapshot.TotalIntake,
	}, nil
}

// RecordConsumption logs servings of a food for the session's account on day.
// Repeated foods add to the existing amount. The entry write and the day's
// total are committed together.
func (l *Ledger) RecordConsumption(ctx context.Context, session *models.Session, day models.Day, foodName, servings string, proteinPerServing float64) (*Consumption, error) {
	if session == nil || session.Email == "" {
		return nil, &ValidationError{Field: "email", Message: "a logged in account is required"}
	}
	key := models.NormalizeFoodName(foodName)
	if key == "" {
		return nil, &ValidationError{Field: "food", Message: "please input a food"}
	}
	count, err := ParseServings(servings)
	if err != nil {
		return nil, err
	}
	amount, err := ProteinAmount(count, proteinPerServing)
	if err != nil {
		return nil, err
	}

	email := session.Email
	account, err := l.store.GetAccount(ctx, email)
	if err != nil {
		return nil, storageError("get account", err)
	}

	var dayLog *models.DayLog
	err = l.store.InTx(ctx, func(ctx context.Context) error {
		if err := l.store.TouchDay(ctx, email, day); err != nil {
			return err
		}
		if err := l.store.UpsertEntry(ctx, email, day, key, amount); err != nil {
			return err
		}
		var err error
		dayLog, err = l.recomputeTotal(ctx, email, day)
		return err
	})
	if err != nil {
		return nil, storageError("record consumption", err)
	}

	result := &Consumption{
		Snapshot:    snapshotOf(day, dayLog),
		Amount:      amount,
		ProteinGoal: account.ProteinGoal,
	}
	if result.TotalIntake > account.ProteinGoal &&
		!session.GoalCelebrated &&
		session.StartingIntake <= account.ProteinGoal {
		result.GoalReached = true
		session.GoalCelebrated = true
	}

	return result, nil
}

// DeleteEntries removes the named foods from day and rewrites the day's total.
// Names may be given in display or storage form; absent names are ignored.
// An empty set changes nothing.
func (l *Ledger) DeleteEntries(ctx context.Context, email string, day models.Day, foodNames []string) (*Snapshot, error) {
	keys := make(map[string]struct{}, len(foodNames))
	for _, name := range foodNames {
		if key := models.NormalizeFoodName(name); key != "" {
			keys[key] = struct{}{}
		}
	}

	if len(keys) == 0 {
		dayLog, err := l.store.GetDay(ctx, email, day)
		if errors.Is(err, ErrDayNotFound) {
			return &Snapshot{Day: day, Entries: []models.Entry{}}, nil
		}
		if err != nil {
			return nil, storageError("get day", err)
		}
		snapshot := snapshotOf(day, dayLog)
		return &snapshot, nil
	}

	var dayLog *models.DayLog
	err := l.store.InTx(ctx, func(ctx context.Context) error {
		for key := range keys {
			if err := l.store.DeleteEntry(ctx, email, day, key); err != nil {
				return err
			}
		}
		var err error
		dayLog, err = l.recomputeTotal(ctx, email, day)
		return err
	})
	if errors.Is(err, ErrDayNotFound) {
		return &Snapshot{Day: day, Entries: []models.Entry{}}, nil
	}
	if err != nil {
		return nil, storageError("delete entries", err)
	}

	snapshot := snapshotOf(day, dayLog)
	return &snapshot, nil
}

// TodaySnapshot returns day's entries and persisted total, creating an empty
// log for the day on first access.
func (l *Ledger) TodaySnapshot(ctx context.Context, email string, day models.Day) (*Snapshot, error) {
	dayLog, err := l.store.GetDay(ctx, email, day)
	if errors.Is(err, ErrDayNotFound) {
		if _, err := l.store.GetAccount(ctx, email); err != nil {
			return nil, storageError("get account", err)
		}
		if err := l.store.TouchDay(ctx, email, day); err != nil {
			return nil, storageError("touch day", err)
		}
		return &Snapshot{Day: day, Entries: []models.Entry{}}, nil
	}
	if err != nil {
		return nil, storageError("get day", err)
	}

	if dayLog.TotalIntake == nil {
		l.repairTotal(ctx, dayLog)
	}

	snapshot := snapshotOf(day, dayLog)
	return &snapshot, nil
}

// Streak counts the consecutive days before ref that have a log with a
// positive total. ref itself is not counted.
func (l *Ledger) Streak(ctx context.Context, email string, ref models.Day) (int, error) {
	if _, err := l.store.GetAccount(ctx, email); err != nil {
		return 0, storageError("get account", err)
	}

	streak := 0
	cursor := ref.AddDays(-1)
	for {
		from := cursor.AddDays(-(streakWindow - 1))
		totals, err := l.store.DayTotals(ctx, email, from, cursor)
		if err != nil {
			return 0, storageError("day totals", err)
		}
		for i := 0; i < streakWindow; i++ {
			total, ok := totals[cursor.AddDays(-i)]
			if !ok || total <= 0 {
				return streak, nil
			}
			streak++
		}
		cursor = from.AddDays(-1)
	}
}

// WeekSeries returns the totals of the seven days ending two days before ref,
// oldest first. Days without a log count as 0.
func (l *Ledger) WeekSeries(ctx context.Context, email string, ref models.Day) ([]float64, error) {
	if _, err := l.store.GetAccount(ctx, email); err != nil {
		return nil, storageError("get account", err)
	}

	from := ref.AddDays(-(WeekLength + 1))
	to := ref.AddDays(-2)
	totals, err := l.store.DayTotals(ctx, email, from, to)
	if err != nil {
		return nil, storageError("day totals", err)
	}

	series := make([]float64, WeekLength)
	for i := range series {
		series[i] = models.RoundGrams(totals[from.AddDays(i)])
	}
	return series, nil
}

// recomputeTotal reads the day back and persists the sum of its entries
func (l *Ledger) recomputeTotal(ctx context.Context, email string, day models.Day) (*models.DayLog, error) {
	dayLog, err := l.store.GetDay(ctx, email, day)
	if err != nil {
		return nil, err
	}

	total := sumEntries(dayLog)
	if err := l.store.SetDayTotal(ctx, email, day, total); err != nil {
		return nil, err
	}
	dayLog.TotalIntake = &total
	return dayLog, nil
}

// repairTotal fills in a total that was never written. A failed write is
// logged and the day reads as 0 until the next mutation.
func (l *Ledger) repairTotal(ctx context.Context, dayLog *models.DayLog) {
	total := sumEntries(dayLog)
	if len(dayLog.Entries) > 0 {
		warning := &ConsistencyWarning{Email: dayLog.Email, Day: dayLog.Day.String(), Reason: "total intake was never set"}
		log.Printf("Warning: %v, repairing to %.2f", warning, total)
	}

	if err := l.store.SetDayTotal(ctx, dayLog.Email, dayLog.Day, total); err != nil {
		log.Printf("Warning: failed to repair total for %s on %s: %v", dayLog.Email, dayLog.Day, err)
		total = 0
	}
	dayLog.TotalIntake = &total
}

func sumEntries(dayLog *models.DayLog) float64 {
	amounts := make([]float64, 0, len(dayLog.Entries))
	for _, amount := range dayLog.Entries {
		amounts = append(amounts, amount)
	}
	return models.SumGrams(amounts...)
}

func snapshotOf(day models.Day, dayLog *models.DayLog) Snapshot {
	return Snapshot{
		Day:         day,
		Entries:     dayLog.SortedEntries(),
		TotalIntake: dayLog.Total(),
	}
}
