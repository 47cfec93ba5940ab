package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/momentum/internal/error_values"
	"github.com/limbo/momentum/pkg/cleanup"
	"github.com/limbo/momentum/pkg/entity"
)

type CompletionsRepository struct {
	conn PgConnection
}

func NewCompletionsRepo(cfg DBConfig) *CompletionsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for completionsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for completionsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &CompletionsRepository{
		conn: pool,
	}
}

func NewCompletionsRepoWithConn(conn PgConnection) *CompletionsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for completionsRepo: " + err.Error())
	}
	return &CompletionsRepository{
		conn: conn,
	}
}

func (cr *CompletionsRepository) InTx(ctx context.Context, f func(store CompletionStore) error) error {
	tx, err := cr.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning completion tx error: " + err.Error())
	}
	// No-op once the transaction is committed
	defer tx.Rollback(ctx)
	if err = f(&completionTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing completion tx error: " + err.Error())
	}
	return nil
}

// completionTx binds CompletionStore queries to one open pgx transaction.
type completionTx struct {
	tx pgx.Tx
}

// The lock is owner scoped: a habit belonging to someone else reads as
// missing and its row is never locked.
func (ct *completionTx) GetHabitForUpdate(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	var habit entity.Habit
	habit.ID = habitID
	row := ct.tx.QueryRow(
		ctx,
		`SELECT user_id, title, description, category, frequency, time_of_day, streak, total_completions
		FROM habits WHERE id = $1 AND user_id = $2 FOR UPDATE;`,
		habitID,
		userID,
	)
	err := row.Scan(&habit.UserID, &habit.Title, &habit.Description, &habit.Category,
		&habit.Frequency, &habit.TimeOfDay, &habit.Streak, &habit.TotalCompletions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Lock not available / deadlock detected
			case "55P03", "40P01":
				return nil, errorvalues.ErrCompletionConflict
			}
		}
		return nil, errors.New("locking habit row error: " + err.Error())
	}
	return &habit, nil
}

func (ct *completionTx) InsertLog(ctx context.Context, habitID, userID uuid.UUID, completedAt time.Time) (int64, error) {
	row := ct.tx.QueryRow(
		ctx,
		`INSERT INTO habit_logs (habit_id, user_id, completed_at) VALUES ($1, $2, $3) RETURNING id;`,
		habitID,
		userID,
		completedAt,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, errors.New("inserting habit log error: " + err.Error())
	}
	return id, nil
}

func (ct *completionTx) GetRecentLogTimes(ctx context.Context, habitID, userID uuid.UUID, limit int) ([]time.Time, error) {
	rows, err := ct.tx.Query(
		ctx,
		`SELECT completed_at FROM habit_logs WHERE habit_id = $1 AND user_id = $2
		ORDER BY completed_at DESC, id DESC LIMIT $3;`,
		habitID,
		userID,
		limit,
	)
	if err != nil {
		return nil, errors.New("getting recent log times error: " + err.Error())
	}
	defer rows.Close()
	result := make([]time.Time, 0, limit)
	for rows.Next() {
		var t time.Time
		if err = rows.Scan(&t); err != nil {
			return nil, errors.New("log time row parsing error: " + err.Error())
		}
		result = append(result, t)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected log time rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (ct *completionTx) UpdateHabitCounters(ctx context.Context, habitID uuid.UUID, streak, totalCompletions int) error {
	tag, err := ct.tx.Exec(
		ctx,
		`UPDATE habits SET streak = $1, total_completions = $2, updated_at = NOW() WHERE id = $3;`,
		streak,
		totalCompletions,
		habitID,
	)
	if err != nil {
		return errors.New("updating habit counters error: " + err.Error())
	}
	if tag.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (ct *completionTx) GetAchievementsByTitle(ctx context.Context) (map[string]entity.Achievement, error) {
	rows, err := ct.tx.Query(ctx, `SELECT id, title, description FROM achievements;`)
	if err != nil {
		return nil, errors.New("getting achievements error: " + err.Error())
	}
	defer rows.Close()
	result := make(map[string]entity.Achievement)
	for rows.Next() {
		var a entity.Achievement
		if err = rows.Scan(&a.ID, &a.Title, &a.Description); err != nil {
			return nil, errors.New("achievement row parsing error: " + err.Error())
		}
		result[a.Title] = a
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected achievement rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (ct *completionTx) GetUnlockedAchievementIDs(ctx context.Context, userID uuid.UUID) (map[int64]struct{}, error) {
	rows, err := ct.tx.Query(ctx, `SELECT achievement_id FROM user_achievements WHERE user_id = $1;`, userID)
	if err != nil {
		return nil, errors.New("getting unlocked achievements error: " + err.Error())
	}
	defer rows.Close()
	result := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, errors.New("unlocked achievement row parsing error: " + err.Error())
		}
		result[id] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected unlocked achievement rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (ct *completionTx) InsertUnlock(ctx context.Context, userID uuid.UUID, achievementID int64) error {
	_, err := ct.tx.Exec(
		ctx,
		`INSERT INTO user_achievements (user_id, achievement_id) VALUES ($1, $2);`,
		userID,
		achievementID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return errorvalues.ErrUnlockExists
			}
		}
		return errors.New("inserting achievement unlock error: " + err.Error())
	}
	return nil
}

func (ct *completionTx) CountUserLogs(ctx context.Context, userID uuid.UUID) (int, error) {
	row := ct.tx.QueryRow(ctx, `SELECT COUNT(*) FROM habit_logs WHERE user_id = $1;`, userID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("counting user logs error: " + err.Error())
	}
	return count, nil
}

func (ct *completionTx) CountDistinctLoggedCategories(ctx context.Context, userID uuid.UUID) (int, error) {
	row := ct.tx.QueryRow(
		ctx,
		`SELECT COUNT(DISTINCT h.category) FROM habits h
		JOIN habit_logs hl ON h.id = hl.habit_id WHERE hl.user_id = $1;`,
		userID,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("counting logged categories error: " + err.Error())
	}
	return count, nil
}

func (ct *completionTx) CountHabitsWithStreakAtLeast(ctx context.Context, userID uuid.UUID, threshold int) (int, error) {
	row := ct.tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM habits WHERE user_id = $1 AND streak >= $2;`,
		userID,
		threshold,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("counting qualifying streaks error: " + err.Error())
	}
	return count, nil
}
