package models

import (
	"sort"
	"strings"
	"time"
)

// Account represents a registered user
type Account struct {
	Email        string
	PasswordHash string
	ProteinGoal  float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DayLog holds one calendar day's food entries for an account.
// TotalIntake is nil when the total was never written.
type DayLog struct {
	Email       string
	Day         Day
	Entries     map[string]float64
	TotalIntake *float64
}

// Total returns the persisted total, or 0 when it was never written
func (d *DayLog) Total() float64 {
	if d == nil || d.TotalIntake == nil {
		return 0
	}
	return *d.TotalIntake
}

// SortedEntries returns the day's entries ordered by food name
func (d *DayLog) SortedEntries() []Entry {
	if d == nil {
		return []Entry{}
	}
	entries := make([]Entry, 0, len(d.Entries))
	for key, amount := range d.Entries {
		entries = append(entries, Entry{Key: key, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Entry is a single food and the grams of protein logged for it
type Entry struct {
	Key    string
	Amount float64
}

// Name returns the entry's food name for display
func (e Entry) Name() string {
	return DisplayFoodName(e.Key)
}

// NormalizeFoodName turns a food name into its storage key.
// Surrounding whitespace is dropped and inner whitespace becomes "_".
func NormalizeFoodName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// DisplayFoodName reverses NormalizeFoodName
func DisplayFoodName(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
