package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/momentum/internal/error_values"
	"github.com/limbo/momentum/pkg/cleanup"
	"github.com/limbo/momentum/pkg/entity"
)

type HabitsRepository struct {
	conn PgConnection
}

func NewHabitsRepo(cfg DBConfig) *HabitsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for habitsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &HabitsRepository{
		conn: pool,
	}
}

func NewHabitsRepoWithConn(conn PgConnection) *HabitsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	return &HabitsRepository{
		conn: conn,
	}
}

func (hr *HabitsRepository) Create(ctx context.Context, habit *entity.Habit) (uuid.UUID, error) {
	row := hr.conn.QueryRow(
		ctx,
		`INSERT INTO habits (user_id, title, description, category, frequency, time_of_day)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		habit.UserID,
		habit.Title,
		habit.Description,
		habit.Category,
		habit.Frequency,
		habit.TimeOfDay,
	)
	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return uuid.UUID{}, errorvalues.ErrUserHasHabit
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrUserNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating habit db error: " + err.Error())
	}
	return id, nil
}

func (hr *HabitsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error) {
	var habit entity.Habit
	habit.ID = id
	row := hr.conn.QueryRow(
		ctx,
		`SELECT user_id, title, description, category, frequency, time_of_day,
		streak, total_completions, created_at, updated_at FROM habits WHERE id = $1;`,
		id,
	)
	err := row.Scan(&habit.UserID, &habit.Title, &habit.Description, &habit.Category,
		&habit.Frequency, &habit.TimeOfDay, &habit.Streak, &habit.TotalCompletions,
		&habit.CreatedAt, &habit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("getting habit by id error: " + err.Error())
	}
	return &habit, nil
}

func (hr *HabitsRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Habit, error) {
	habits := make([]*entity.Habit, 0)
	rows, err := hr.conn.Query(
		ctx,
		`SELECT id, user_id, title, description, category, frequency, time_of_day,
		streak, total_completions, created_at, updated_at,
		EXISTS(SELECT 1 FROM habit_logs hl WHERE hl.habit_id = habits.id
			AND hl.completed_at::date = CURRENT_DATE) AS completed_today
		FROM habits WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`,
		uid, limit, offset,
	)
	if err != nil {
		return nil, errors.New("getting habits by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		h := entity.Habit{}
		err = rows.Scan(&h.ID, &h.UserID, &h.Title, &h.Description, &h.Category,
			&h.Frequency, &h.TimeOfDay, &h.Streak, &h.TotalCompletions,
			&h.CreatedAt, &h.UpdatedAt, &h.CompletedToday)
		if err != nil {
			return nil, errors.New("habit row parsing error: " + err.Error())
		}
		habits = append(habits, &h)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected habit rows error: " + rows.Err().Error())
	}
	return habits, nil
}

func (hr *HabitsRepository) Update(ctx context.Context, habit *entity.Habit) error {
	ct, err := hr.conn.Exec(
		ctx,
		`UPDATE habits SET title = $1, description = $2, category = $3, frequency = $4,
		time_of_day = $5, updated_at = NOW() WHERE id = $6;`,
		habit.Title, habit.Description, habit.Category, habit.Frequency, habit.TimeOfDay, habit.ID,
	)
	if err != nil {
		return errors.New("error updating habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := hr.conn.Exec(ctx, `DELETE FROM habits WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) GetLogs(ctx context.Context, habitID uuid.UUID) ([]entity.HabitLog, error) {
	rows, err := hr.conn.Query(
		ctx,
		`SELECT id, habit_id, user_id, completed_at FROM habit_logs
		WHERE habit_id = $1 ORDER BY completed_at DESC, id DESC;`,
		habitID,
	)
	if err != nil {
		return nil, errors.New("getting habit logs error: " + err.Error())
	}
	defer rows.Close()
	logs := make([]entity.HabitLog, 0)
	for rows.Next() {
		var l entity.HabitLog
		if err = rows.Scan(&l.ID, &l.HabitID, &l.UserID, &l.CompletedAt); err != nil {
			return nil, errors.New("habit log row parsing error: " + err.Error())
		}
		logs = append(logs, l)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected habit log rows error: " + rows.Err().Error())
	}
	return logs, nil
}
