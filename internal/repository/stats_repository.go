package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/limbo/momentum/pkg/cleanup"
	"github.com/limbo/momentum/pkg/entity"
)

type StatsRepository struct {
	conn PgConnection
}

func NewStatsRepo(cfg DBConfig) *StatsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for statsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for statsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &StatsRepository{
		conn: pool,
	}
}

func NewStatsRepoWithConn(conn PgConnection) *StatsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for statsRepo: " + err.Error())
	}
	return &StatsRepository{
		conn: conn,
	}
}

func (sr *StatsRepository) Summary(ctx context.Context, uid uuid.UUID) (*entity.StatsSummary, error) {
	var s entity.StatsSummary
	row := sr.conn.QueryRow(
		ctx,
		`SELECT COUNT(*), COALESCE(MAX(streak), 0), COALESCE(AVG(streak), 0),
		COUNT(*) FILTER (WHERE total_completions > 0)
		FROM habits WHERE user_id = $1;`,
		uid,
	)
	var engaged int
	if err := row.Scan(&s.TotalHabits, &s.LongestStreak, &s.AverageStreak, &engaged); err != nil {
		return nil, errors.New("getting habit summary error: " + err.Error())
	}
	row = sr.conn.QueryRow(
		ctx,
		`SELECT COUNT(*), COUNT(DISTINCT habit_id) FILTER (WHERE completed_at::date = CURRENT_DATE)
		FROM habit_logs WHERE user_id = $1;`,
		uid,
	)
	if err := row.Scan(&s.TotalCompletions, &s.CompletedTodayCount); err != nil {
		return nil, errors.New("getting log summary error: " + err.Error())
	}
	if s.TotalHabits > 0 {
		s.EngagementPercentage = float64(engaged) / float64(s.TotalHabits) * 100
	}
	return &s, nil
}

func (sr *StatsRepository) ActivityTimeline(ctx context.Context, uid uuid.UUID, days int) ([]entity.TimelineEntry, error) {
	rows, err := sr.conn.Query(
		ctx,
		`SELECT to_char(completed_at::date, 'YYYY-MM-DD'), COUNT(*) FROM habit_logs
		WHERE user_id = $1 AND completed_at >= CURRENT_DATE - ($2 - 1) * INTERVAL '1 day'
		GROUP BY completed_at::date ORDER BY completed_at::date ASC;`,
		uid,
		days,
	)
	if err != nil {
		return nil, errors.New("getting activity timeline error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.TimelineEntry, 0, days)
	for rows.Next() {
		var e entity.TimelineEntry
		if err = rows.Scan(&e.Date, &e.Completions); err != nil {
			return nil, errors.New("timeline row parsing error: " + err.Error())
		}
		result = append(result, e)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected timeline rows error: " + rows.Err().Error())
	}
	return result, nil
}
