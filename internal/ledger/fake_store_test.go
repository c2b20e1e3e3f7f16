package ledger

import (
	"context"
	"errors"

	"proteinbuddy/internal/models"
)

var errInjected = errors.New("injected failure")

type fakeDay struct {
	entries map[string]float64
	total   *float64
}

// fakeStore is an in-memory Store. InTx snapshots the data and restores it
// when fn fails, so tests can observe rollback.
type fakeStore struct {
	accounts map[string]*models.Account
	days     map[string]map[models.Day]*fakeDay

	failSetTotal   bool
	failUpsert     bool
	failDayTotals  bool
	setTotalCalls  int
	dayTotalsCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*models.Account),
		days:     make(map[string]map[models.Day]*fakeDay),
	}
}

func (s *fakeStore) addAccount(email string, goal float64) {
	s.accounts[email] = &models.Account{Email: email, ProteinGoal: goal}
	s.days[email] = make(map[models.Day]*fakeDay)
}

// setDay seeds a day with a persisted total and no entries
func (s *fakeStore) setDay(email string, day models.Day, total float64) {
	t := total
	s.days[email][day] = &fakeDay{entries: map[string]float64{}, total: &t}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := s.clone()
	if err := fn(ctx); err != nil {
		s.days = saved
		return err
	}
	return nil
}

func (s *fakeStore) clone() map[string]map[models.Day]*fakeDay {
	out := make(map[string]map[models.Day]*fakeDay, len(s.days))
	for email, days := range s.days {
		out[email] = make(map[models.Day]*fakeDay, len(days))
		for day, d := range days {
			entries := make(map[string]float64, len(d.entries))
			for k, v := range d.entries {
				entries[k] = v
			}
			var total *float64
			if d.total != nil {
				t := *d.total
				total = &t
			}
			out[email][day] = &fakeDay{entries: entries, total: total}
		}
	}
	return out
}

func (s *fakeStore) GetAccount(ctx context.Context, email string) (*models.Account, error) {
	account, ok := s.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *fakeStore) GetDay(ctx context.Context, email string, day models.Day) (*models.DayLog, error) {
	d, ok := s.days[email][day]
	if !ok {
		return nil, ErrDayNotFound
	}
	dayLog := &models.DayLog{Email: email, Day: day, Entries: make(map[string]float64)}
	for k, v := range d.entries {
		dayLog.Entries[k] = v
	}
	if d.total != nil {
		t := *d.total
		dayLog.TotalIntake = &t
	}
	return dayLog, nil
}

func (s *fakeStore) DayTotals(ctx context.Context, email string, from, to models.Day) (map[models.Day]float64, error) {
	s.dayTotalsCalls++
	if s.failDayTotals {
		return nil, errInjected
	}
	totals := make(map[models.Day]float64)
	for day, d := range s.days[email] {
		if day < from || day > to {
			continue
		}
		if d.total == nil {
			totals[day] = 0
		} else {
			totals[day] = *d.total
		}
	}
	return totals, nil
}

func (s *fakeStore) TouchDay(ctx context.Context, email string, day models.Day) error {
	if _, ok := s.accounts[email]; !ok {
		return ErrAccountNotFound
	}
	if _, ok := s.days[email][day]; !ok {
		zero := 0.0
		s.days[email][day] = &fakeDay{entries: map[string]float64{}, total: &zero}
	}
	return nil
}

func (s *fakeStore) UpsertEntry(ctx context.Context, email string, day models.Day, foodKey string, delta float64) error {
	if s.failUpsert {
		return errInjected
	}
	d, ok := s.days[email][day]
	if !ok {
		return ErrDayNotFound
	}
	d.entries[foodKey] = models.SumGrams(d.entries[foodKey], delta)
	return nil
}

func (s *fakeStore) DeleteEntry(ctx context.Context, email string, day models.Day, foodKey string) error {
	if d, ok := s.days[email][day]; ok {
		delete(d.entries, foodKey)
	}
	return nil
}

func (s *fakeStore) SetDayTotal(ctx context.Context, email string, day models.Day, total float64) error {
	s.setTotalCalls++
	if s.failSetTotal {
		return errInjected
	}
	d, ok := s.days[email][day]
	if !ok {
		return ErrDayNotFound
	}
	d.total = &total
	return nil
}
