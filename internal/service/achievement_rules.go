package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/limbo/momentum/internal/repository"
)

// achievementRule is the closed set of unlock conditions. One type per rule
// kind keeps the catalog compile-time checked; adding a kind means adding a
// type, not a string branch.
type achievementRule interface {
	satisfied(ctx context.Context, agg *ruleAggregates) (bool, error)
}

type firstLogEver struct{}

type streakThreshold struct {
	Days int
}

type totalCompletionsThreshold struct {
	Count int
}

type distinctCategories struct {
	Count int
}

type concurrentStreaks struct {
	StreakDays int
	HabitCount int
}

// catalogEntry ties a rule to the seeded achievements row it unlocks.
type catalogEntry struct {
	Title string
	Rule  achievementRule
}

// ruleCatalog is evaluated and unlocked in this order.
var ruleCatalog = []catalogEntry{
	{Title: "First Habit Completed", Rule: firstLogEver{}},
	{Title: "3-Day Streak", Rule: streakThreshold{Days: 3}},
	{Title: "7-Day Streak", Rule: streakThreshold{Days: 7}},
	{Title: "Fortnight Focus", Rule: streakThreshold{Days: 15}},
	{Title: "Month of Mastery", Rule: streakThreshold{Days: 30}},
	{Title: "Habitual Hero", Rule: totalCompletionsThreshold{Count: 10}},
	{Title: "Golden Logger", Rule: totalCompletionsThreshold{Count: 50}},
	{Title: "Habit Veteran", Rule: totalCompletionsThreshold{Count: 100}},
	{Title: "Category Connoisseur", Rule: distinctCategories{Count: 3}},
	{Title: "All-Rounder", Rule: concurrentStreaks{StreakDays: 7, HabitCount: 3}},
}

// ruleAggregates memoizes the cross-habit queries so each one runs at most
// once per evaluation, and only when a still-locked rule actually needs it.
// Counts over sibling habits are a best-effort snapshot: only the logged
// habit's row is locked during evaluation.
type ruleAggregates struct {
	store         repository.CompletionStore
	userID        uuid.UUID
	currentStreak int

	totalLogs      *int
	categories     *int
	qualifyingHabs map[int]int
}

func newRuleAggregates(store repository.CompletionStore, userID uuid.UUID, currentStreak int) *ruleAggregates {
	return &ruleAggregates{
		store:          store,
		userID:         userID,
		currentStreak:  currentStreak,
		qualifyingHabs: make(map[int]int),
	}
}

func (agg *ruleAggregates) userLogCount(ctx context.Context) (int, error) {
	if agg.totalLogs == nil {
		count, err := agg.store.CountUserLogs(ctx, agg.userID)
		if err != nil {
			return 0, err
		}
		agg.totalLogs = &count
	}
	return *agg.totalLogs, nil
}

func (agg *ruleAggregates) loggedCategoryCount(ctx context.Context) (int, error) {
	if agg.categories == nil {
		count, err := agg.store.CountDistinctLoggedCategories(ctx, agg.userID)
		if err != nil {
			return 0, err
		}
		agg.categories = &count
	}
	return *agg.categories, nil
}

func (agg *ruleAggregates) habitsWithStreakAtLeast(ctx context.Context, threshold int) (int, error) {
	if count, ok := agg.qualifyingHabs[threshold]; ok {
		return count, nil
	}
	count, err := agg.store.CountHabitsWithStreakAtLeast(ctx, agg.userID, threshold)
	if err != nil {
		return 0, err
	}
	agg.qualifyingHabs[threshold] = count
	return count, nil
}

func (firstLogEver) satisfied(ctx context.Context, agg *ruleAggregates) (bool, error) {
	count, err := agg.userLogCount(ctx)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

func (r streakThreshold) satisfied(_ context.Context, agg *ruleAggregates) (bool, error) {
	return agg.currentStreak >= r.Days, nil
}

func (r totalCompletionsThreshold) satisfied(ctx context.Context, agg *ruleAggregates) (bool, error) {
	count, err := agg.userLogCount(ctx)
	if err != nil {
		return false, err
	}
	return count >= r.Count, nil
}

func (r distinctCategories) satisfied(ctx context.Context, agg *ruleAggregates) (bool, error) {
	count, err := agg.loggedCategoryCount(ctx)
	if err != nil {
		return false, err
	}
	return count >= r.Count, nil
}

func (r concurrentStreaks) satisfied(ctx context.Context, agg *ruleAggregates) (bool, error) {
	count, err := agg.habitsWithStreakAtLeast(ctx, r.StreakDays)
	if err != nil {
		return false, err
	}
	return count >= r.HabitCount, nil
}
