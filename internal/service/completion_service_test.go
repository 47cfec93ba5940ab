package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/momentum/internal/error_values"
	"github.com/limbo/momentum/internal/repository"
	"github.com/limbo/momentum/internal/repository/mocks"
	"github.com/limbo/momentum/internal/service"
	"github.com/limbo/momentum/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionRepoStub runs the callback directly against the given store, so
// service tests exercise the real transaction body without a database.
type completionRepoStub struct {
	store repository.CompletionStore
}

func (s *completionRepoStub) InTx(_ context.Context, f func(repository.CompletionStore) error) error {
	return f(s.store)
}

func seededAchievements() map[string]entity.Achievement {
	titles := []string{
		"First Habit Completed",
		"3-Day Streak",
		"7-Day Streak",
		"Fortnight Focus",
		"Month of Mastery",
		"Habitual Hero",
		"Golden Logger",
		"Habit Veteran",
		"Category Connoisseur",
		"All-Rounder",
	}
	definitions := make(map[string]entity.Achievement, len(titles))
	for i, title := range titles {
		definitions[title] = entity.Achievement{ID: int64(i + 1), Title: title}
	}
	return definitions
}

func TestLogCompletionFirstEver(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCompletionStore(ctrl)
	serv := service.NewCompletionService(&completionRepoStub{store: store}, false)

	habitID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
		ID:               habitID,
		UserID:           userID,
		Title:            "morning run",
		Streak:           0,
		TotalCompletions: 0,
	}, nil)
	store.EXPECT().InsertLog(gomock.Any(), habitID, userID, gomock.Any()).Return(int64(11), nil)
	store.EXPECT().GetRecentLogTimes(gomock.Any(), habitID, userID, 2).Return([]time.Time{now}, nil)
	store.EXPECT().UpdateHabitCounters(gomock.Any(), habitID, 1, 1).Return(nil)
	store.EXPECT().GetAchievementsByTitle(gomock.Any()).Return(seededAchievements(), nil)
	store.EXPECT().GetUnlockedAchievementIDs(gomock.Any(), userID).Return(map[int64]struct{}{}, nil)
	// Four rules read the log count, the aggregate must hit the store once
	store.EXPECT().CountUserLogs(gomock.Any(), userID).Return(1, nil).Times(1)
	store.EXPECT().CountDistinctLoggedCategories(gomock.Any(), userID).Return(1, nil)
	store.EXPECT().CountHabitsWithStreakAtLeast(gomock.Any(), userID, 7).Return(0, nil)
	store.EXPECT().InsertUnlock(gomock.Any(), userID, int64(1)).Return(nil)

	result, err := serv.LogCompletion(context.Background(), habitID, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.LogID)
	assert.Equal(t, 1, result.NewStreak)
	assert.Equal(t, 1, result.TotalCompletions)
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, "First Habit Completed", result.Unlocked[0].Title)
}

func TestLogCompletionConsecutiveDayExtends(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCompletionStore(ctrl)
	serv := service.NewCompletionService(&completionRepoStub{store: store}, false)

	habitID := uuid.New()
	userID := uuid.New()
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)

	store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
		ID:               habitID,
		UserID:           userID,
		Streak:           2,
		TotalCompletions: 5,
	}, nil)
	store.EXPECT().InsertLog(gomock.Any(), habitID, userID, gomock.Any()).Return(int64(42), nil)
	store.EXPECT().GetRecentLogTimes(gomock.Any(), habitID, userID, 2).Return([]time.Time{now, yesterday}, nil)
	store.EXPECT().UpdateHabitCounters(gomock.Any(), habitID, 3, 6).Return(nil)
	store.EXPECT().GetAchievementsByTitle(gomock.Any()).Return(seededAchievements(), nil)
	store.EXPECT().GetUnlockedAchievementIDs(gomock.Any(), userID).Return(map[int64]struct{}{1: {}}, nil)
	store.EXPECT().CountUserLogs(gomock.Any(), userID).Return(6, nil).Times(1)
	store.EXPECT().CountDistinctLoggedCategories(gomock.Any(), userID).Return(1, nil)
	store.EXPECT().CountHabitsWithStreakAtLeast(gomock.Any(), userID, 7).Return(0, nil)
	store.EXPECT().InsertUnlock(gomock.Any(), userID, int64(2)).Return(nil)

	result, err := serv.LogCompletion(context.Background(), habitID, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.NewStreak)
	assert.Equal(t, 6, result.TotalCompletions)
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, "3-Day Streak", result.Unlocked[0].Title)
}

func TestLogCompletionGapResets(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCompletionStore(ctrl)
	serv := service.NewCompletionService(&completionRepoStub{store: store}, false)

	habitID := uuid.New()
	userID := uuid.New()
	now := time.Now()
	threeDaysAgo := now.Add(-72 * time.Hour)

	store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
		ID:               habitID,
		UserID:           userID,
		Streak:           9,
		TotalCompletions: 20,
	}, nil)
	store.EXPECT().InsertLog(gomock.Any(), habitID, userID, gomock.Any()).Return(int64(77), nil)
	store.EXPECT().GetRecentLogTimes(gomock.Any(), habitID, userID, 2).Return([]time.Time{now, threeDaysAgo}, nil)
	store.EXPECT().UpdateHabitCounters(gomock.Any(), habitID, 1, 21).Return(nil)
	store.EXPECT().GetAchievementsByTitle(gomock.Any()).Return(seededAchievements(), nil)
	store.EXPECT().GetUnlockedAchievementIDs(gomock.Any(), userID).
		Return(map[int64]struct{}{1: {}, 2: {}, 3: {}, 6: {}}, nil)
	store.EXPECT().CountUserLogs(gomock.Any(), userID).Return(21, nil).Times(1)
	store.EXPECT().CountDistinctLoggedCategories(gomock.Any(), userID).Return(2, nil)
	store.EXPECT().CountHabitsWithStreakAtLeast(gomock.Any(), userID, 7).Return(1, nil)

	result, err := serv.LogCompletion(context.Background(), habitID, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewStreak)
	assert.Equal(t, 21, result.TotalCompletions)
	assert.Empty(t, result.Unlocked)
}

func TestLogCompletionSameDayStaysFlat(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCompletionStore(ctrl)
	serv := service.NewCompletionService(&completionRepoStub{store: store}, false)

	habitID := uuid.New()
	userID := uuid.New()
	now := time.Now()
	earlierToday := now.Add(-time.Minute)

	store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
		ID:               habitID,
		UserID:           userID,
		Streak:           5,
		TotalCompletions: 7,
	}, nil)
	store.EXPECT().InsertLog(gomock.Any(), habitID, userID, gomock.Any()).Return(int64(8), nil)
	store.EXPECT().GetRecentLogTimes(gomock.Any(), habitID, userID, 2).Return([]time.Time{now, earlierToday}, nil)
	// Streak untouched, total still counts the duplicate entry
	store.EXPECT().UpdateHabitCounters(gomock.Any(), habitID, 5, 8).Return(nil)
	store.EXPECT().GetAchievementsByTitle(gomock.Any()).Return(seededAchievements(), nil)
	store.EXPECT().GetUnlockedAchievementIDs(gomock.Any(), userID).
		Return(map[int64]struct{}{1: {}, 2: {}}, nil)
	store.EXPECT().CountUserLogs(gomock.Any(), userID).Return(8, nil).Times(1)
	store.EXPECT().CountDistinctLoggedCategories(gomock.Any(), userID).Return(1, nil)
	store.EXPECT().CountHabitsWithStreakAtLeast(gomock.Any(), userID, 7).Return(0, nil)

	result, err := serv.LogCompletion(context.Background(), habitID, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, result.NewStreak)
	assert.Equal(t, 8, result.TotalCompletions)
	assert.Empty(t, result.Unlocked)
}

func TestLogCompletionUnlockRaceSwallowed(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCompletionStore(ctrl)
	serv := service.NewCompletionService(&completionRepoStub{store: store}, false)

	habitID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
		ID:     habitID,
		UserID: userID,
	}, nil)
	store.EXPECT().InsertLog(gomock.Any(), habitID, userID, gomock.Any()).Return(int64(1), nil)
	store.EXPECT().GetRecentLogTimes(gomock.Any(), habitID, userID, 2).Return([]time.Time{now}, nil)
	store.EXPECT().UpdateHabitCounters(gomock.Any(), habitID, 1, 1).Return(nil)
	store.EXPECT().GetAchievementsByTitle(gomock.Any()).Return(seededAchievements(), nil)
	store.EXPECT().GetUnlockedAchievementIDs(gomock.Any(), userID).Return(map[int64]struct{}{}, nil)
	store.EXPECT().CountUserLogs(gomock.Any(), userID).Return(1, nil).Times(1)
	store.EXPECT().CountDistinctLoggedCategories(gomock.Any(), userID).Return(1, nil)
	store.EXPECT().CountHabitsWithStreakAtLeast(gomock.Any(), userID, 7).Return(0, nil)
	store.EXPECT().InsertUnlock(gomock.Any(), userID, int64(1)).Return(errorvalues.ErrUnlockExists)

	result, err := serv.LogCompletion(context.Background(), habitID, userID, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Unlocked)
}

func TestLogCompletionErrors(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCompletionStore(ctrl)
	serv := service.NewCompletionService(&completionRepoStub{store: store}, false)

	habitID := uuid.New()
	userID := uuid.New()
	testCases := []struct {
		Desc         string
		Error        error
		MockPrepFunc func()
	}{
		{
			// The locking read is scoped to the caller, so a foreign habit is
			// indistinguishable from a missing one
			Desc:  "error unexist or foreign habit",
			Error: errorvalues.ErrHabitNotFound,
			MockPrepFunc: func() {
				store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).
					Return(nil, errorvalues.ErrHabitNotFound)
			},
		},
		{
			Desc:  "error completion conflict",
			Error: errorvalues.ErrCompletionConflict,
			MockPrepFunc: func() {
				store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).
					Return(nil, errorvalues.ErrCompletionConflict)
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			result, err := serv.LogCompletion(ctx, habitID, userID, nil)
			assert.ErrorIs(t, err, tc.Error)
			assert.Nil(t, result)
		})
	}

	t.Run("error inserting log", func(t *testing.T) {
		store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
			ID:     habitID,
			UserID: userID,
		}, nil)
		store.EXPECT().InsertLog(gomock.Any(), habitID, userID, gomock.Any()).
			Return(int64(0), errors.New("db error"))
		result, err := serv.LogCompletion(ctx, habitID, userID, nil)
		assert.EqualError(t, err, "repository error: db error")
		assert.Nil(t, result)
	})
}

func TestLogCompletionTimeOverride(t *testing.T) {
	t.Parallel()
	habitID := uuid.New()
	userID := uuid.New()
	override := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	previous := override.Add(-24 * time.Hour)

	t.Run("honored when enabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockCompletionStore(ctrl)
		serv := service.NewCompletionService(&completionRepoStub{store: store}, true)

		store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
			ID:               habitID,
			UserID:           userID,
			Streak:           1,
			TotalCompletions: 1,
		}, nil)
		store.EXPECT().InsertLog(gomock.Any(), habitID, userID, override).Return(int64(2), nil)
		store.EXPECT().GetRecentLogTimes(gomock.Any(), habitID, userID, 2).
			Return([]time.Time{override, previous}, nil)
		store.EXPECT().UpdateHabitCounters(gomock.Any(), habitID, 2, 2).Return(nil)
		store.EXPECT().GetAchievementsByTitle(gomock.Any()).Return(seededAchievements(), nil)
		store.EXPECT().GetUnlockedAchievementIDs(gomock.Any(), userID).
			Return(map[int64]struct{}{1: {}}, nil)
		store.EXPECT().CountUserLogs(gomock.Any(), userID).Return(2, nil)
		store.EXPECT().CountDistinctLoggedCategories(gomock.Any(), userID).Return(1, nil)
		store.EXPECT().CountHabitsWithStreakAtLeast(gomock.Any(), userID, 7).Return(0, nil)

		result, err := serv.LogCompletion(context.Background(), habitID, userID, &override)
		require.NoError(t, err)
		assert.Equal(t, 2, result.NewStreak)
	})

	t.Run("ignored when disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockCompletionStore(ctrl)
		serv := service.NewCompletionService(&completionRepoStub{store: store}, false)

		store.EXPECT().GetHabitForUpdate(gomock.Any(), habitID, userID).Return(&entity.Habit{
			ID:     habitID,
			UserID: userID,
		}, nil)
		store.EXPECT().InsertLog(gomock.Any(), habitID, userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ uuid.UUID, completedAt time.Time) (int64, error) {
				assert.WithinDuration(t, time.Now(), completedAt, time.Minute)
				return 3, nil
			})
		store.EXPECT().GetRecentLogTimes(gomock.Any(), habitID, userID, 2).
			Return([]time.Time{time.Now()}, nil)
		store.EXPECT().UpdateHabitCounters(gomock.Any(), habitID, 1, 1).Return(nil)
		store.EXPECT().GetAchievementsByTitle(gomock.Any()).Return(seededAchievements(), nil)
		store.EXPECT().GetUnlockedAchievementIDs(gomock.Any(), userID).
			Return(map[int64]struct{}{1: {}}, nil)
		store.EXPECT().CountUserLogs(gomock.Any(), userID).Return(1, nil)
		store.EXPECT().CountDistinctLoggedCategories(gomock.Any(), userID).Return(1, nil)
		store.EXPECT().CountHabitsWithStreakAtLeast(gomock.Any(), userID, 7).Return(0, nil)

		_, err := serv.LogCompletion(context.Background(), habitID, userID, &override)
		require.NoError(t, err)
	})
}
