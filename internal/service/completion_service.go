package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/momentum/internal/error_values"
	"github.com/limbo/momentum/internal/repository"
	"github.com/limbo/momentum/pkg/entity"
)

// CompletionService records habit completions. Each call runs as one
// transaction holding an exclusive lock on the habit row, so completions of
// the same habit are strictly serialized while other habits stay untouched.
type CompletionService struct {
	repo repository.CompletionsRepositoryI
	// Honors caller-supplied completion timestamps; must stay off outside
	// development, it exists for deterministic testing only
	allowTimeOverride bool
}

func NewCompletionService(repo repository.CompletionsRepositoryI, allowTimeOverride bool) *CompletionService {
	if repo == nil {
		log.Fatal("on completion service provided nil repo")
	}
	return &CompletionService{
		repo:              repo,
		allowTimeOverride: allowTimeOverride,
	}
}

func (cs *CompletionService) LogCompletion(ctx context.Context, habitID, userID uuid.UUID, overrideAt *time.Time) (*entity.CompletionResult, error) {
	var result entity.CompletionResult
	err := cs.repo.InTx(ctx, func(store repository.CompletionStore) error {
		// The locking read is owner scoped, a foreign habit surfaces as
		// ErrHabitNotFound without ever taking its row lock
		habit, err := store.GetHabitForUpdate(ctx, habitID, userID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrHabitNotFound) || errors.Is(err, errorvalues.ErrCompletionConflict) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}

		completedAt := time.Now()
		if cs.allowTimeOverride && overrideAt != nil {
			completedAt = *overrideAt
		}
		logID, err := store.InsertLog(ctx, habitID, userID, completedAt)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}

		recent, err := store.GetRecentLogTimes(ctx, habitID, userID, 2)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		var previous *time.Time
		if len(recent) > 1 {
			previous = &recent[1]
		}
		newStreak := ComputeStreak(habit.Streak, completedAt, previous)

		totalCompletions := habit.TotalCompletions + 1
		if err = store.UpdateHabitCounters(ctx, habitID, newStreak, totalCompletions); err != nil {
			return errors.New("repository error: " + err.Error())
		}

		unlocked, err := cs.evaluateAchievements(ctx, store, userID, newStreak)
		if err != nil {
			return err
		}
		result = entity.CompletionResult{
			LogID:            logID,
			NewStreak:        newStreak,
			TotalCompletions: totalCompletions,
			Unlocked:         unlocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// evaluateAchievements walks the rule catalog against the just-updated
// counters and appends unlock rows for every newly satisfied rule. Already
// unlocked achievements are skipped without touching their aggregates; a
// concurrent unlock of the same pair is treated as already done.
func (cs *CompletionService) evaluateAchievements(ctx context.Context, store repository.CompletionStore, userID uuid.UUID, currentStreak int) ([]entity.Achievement, error) {
	definitions, err := store.GetAchievementsByTitle(ctx)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	unlockedIDs, err := store.GetUnlockedAchievementIDs(ctx, userID)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}

	agg := newRuleAggregates(store, userID, currentStreak)
	unlocked := make([]entity.Achievement, 0)
	for _, entry := range ruleCatalog {
		definition, ok := definitions[entry.Title]
		if !ok {
			// Catalog row not seeded, nothing to grant
			continue
		}
		if _, done := unlockedIDs[definition.ID]; done {
			continue
		}
		ok, err := entry.Rule.satisfied(ctx, agg)
		if err != nil {
			return nil, errors.New("repository error: " + err.Error())
		}
		if !ok {
			continue
		}
		err = store.InsertUnlock(ctx, userID, definition.ID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUnlockExists) {
				unlockedIDs[definition.ID] = struct{}{}
				continue
			}
			return nil, errors.New("repository error: " + err.Error())
		}
		unlockedIDs[definition.ID] = struct{}{}
		unlocked = append(unlocked, definition)
	}
	return unlocked, nil
}
