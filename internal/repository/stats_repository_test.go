package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/limbo/momentum/internal/repository"
	"github.com/limbo/momentum/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsSummary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	statsRepo := repository.NewStatsRepoWithConn(mock)
	habitsQuery := regexp.QuoteMeta(`SELECT COUNT(*), COALESCE(MAX(streak), 0), COALESCE(AVG(streak), 0),
		COUNT(*) FILTER (WHERE total_completions > 0)
		FROM habits WHERE user_id = $1;`)
	logsQuery := regexp.QuoteMeta(`SELECT COUNT(*), COUNT(DISTINCT habit_id) FILTER (WHERE completed_at::date = CURRENT_DATE)
		FROM habit_logs WHERE user_id = $1;`)
	userID := uuid.New()
	testCases := []struct {
		Desc          string
		Error         error
		SummaryResult *entity.StatsSummary
		MockPrepFunc  func()
	}{
		{
			Desc:  "successful",
			Error: nil,
			SummaryResult: &entity.StatsSummary{
				TotalHabits:          4,
				TotalCompletions:     33,
				LongestStreak:        9,
				AverageStreak:        3.5,
				CompletedTodayCount:  2,
				EngagementPercentage: 75,
			},
			MockPrepFunc: func() {
				mock.ExpectQuery(habitsQuery).
					WithArgs(userID).
					WillReturnRows(pgxmock.
						NewRows([]string{"count", "max", "avg", "engaged"}).
						AddRow(4, 9, 3.5, 3))
				mock.ExpectQuery(logsQuery).
					WithArgs(userID).
					WillReturnRows(pgxmock.
						NewRows([]string{"count", "completed_today"}).
						AddRow(33, 2))
			},
		},
		{
			Desc:  "no habits yet",
			Error: nil,
			SummaryResult: &entity.StatsSummary{
				TotalHabits:          0,
				TotalCompletions:     0,
				LongestStreak:        0,
				AverageStreak:        0,
				CompletedTodayCount:  0,
				EngagementPercentage: 0,
			},
			MockPrepFunc: func() {
				mock.ExpectQuery(habitsQuery).
					WithArgs(userID).
					WillReturnRows(pgxmock.
						NewRows([]string{"count", "max", "avg", "engaged"}).
						AddRow(0, 0, 0.0, 0))
				mock.ExpectQuery(logsQuery).
					WithArgs(userID).
					WillReturnRows(pgxmock.
						NewRows([]string{"count", "completed_today"}).
						AddRow(0, 0))
			},
		},
		{
			Desc:  "habit summary db error",
			Error: errors.New("getting habit summary error: db error"),
			MockPrepFunc: func() {
				mock.ExpectQuery(habitsQuery).WithArgs(userID).WillReturnError(errors.New("db error"))
			},
		},
		{
			Desc:  "log summary db error",
			Error: errors.New("getting log summary error: db error"),
			MockPrepFunc: func() {
				mock.ExpectQuery(habitsQuery).
					WithArgs(userID).
					WillReturnRows(pgxmock.
						NewRows([]string{"count", "max", "avg", "engaged"}).
						AddRow(4, 9, 3.5, 3))
				mock.ExpectQuery(logsQuery).WithArgs(userID).WillReturnError(errors.New("db error"))
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			summary, err := statsRepo.Summary(ctx, userID)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.SummaryResult, summary)
			}
		})
	}
}

func TestActivityTimeline(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	statsRepo := repository.NewStatsRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT to_char(completed_at::date, 'YYYY-MM-DD'), COUNT(*) FROM habit_logs
		WHERE user_id = $1 AND completed_at >= CURRENT_DATE - ($2 - 1) * INTERVAL '1 day'
		GROUP BY completed_at::date ORDER BY completed_at::date ASC;`)
	userID := uuid.New()
	returnedEntries := []entity.TimelineEntry{
		{Date: "2026-03-08", Completions: 2},
		{Date: "2026-03-10", Completions: 1},
	}
	testCases := []struct {
		Desc           string
		Error          error
		TimelineResult []entity.TimelineEntry
		MockPrepFunc   func()
	}{
		{
			Desc:           "successful",
			Error:          nil,
			TimelineResult: returnedEntries,
			MockPrepFunc: func() {
				rows := pgxmock.NewRows([]string{"date", "count"})
				for _, e := range returnedEntries {
					rows.AddRow(e.Date, e.Completions)
				}
				mock.ExpectQuery(query).WithArgs(userID, 7).WillReturnRows(rows)
			},
		},
		{
			Desc:           "no activity",
			Error:          nil,
			TimelineResult: []entity.TimelineEntry{},
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, 7).
					WillReturnRows(pgxmock.NewRows([]string{"date", "count"}))
			},
		},
		{
			Desc:           "db error",
			Error:          errors.New("getting activity timeline error: db error"),
			TimelineResult: nil,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).WithArgs(userID, 7).WillReturnError(errors.New("db error"))
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			timeline, err := statsRepo.ActivityTimeline(ctx, userID, 7)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.TimelineResult, timeline)
			}
		})
	}
}
