package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/momentum/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
}

type HabitsRepositoryI interface {
	// Creates new habit in database. Title, UserID and metadata fields are used
	Create(ctx context.Context, habit *entity.Habit) (uuid.UUID, error)
	// Searches habit with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error)
	// Lists habits owned by user with uid, newest first, with completed-today flag
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Habit, error)
	// Updates habit metadata by ID (ID in habit is necessary)
	Update(ctx context.Context, habit *entity.Habit) error
	// Deletes habit with id along with its logs
	Delete(ctx context.Context, id uuid.UUID) error
	// Lists completion logs of a habit, most recent first
	GetLogs(ctx context.Context, habitID uuid.UUID) ([]entity.HabitLog, error)
}

// CompletionStore is the transaction-scoped data access the completion
// coordinator works through. Every method runs on the same open transaction.
type CompletionStore interface {
	// Reads the habit row under an exclusive row lock; scoped to the owner,
	// so a foreign habit yields ErrHabitNotFound without locking anything
	GetHabitForUpdate(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)
	// Appends a completion event, returns its id
	InsertLog(ctx context.Context, habitID, userID uuid.UUID, completedAt time.Time) (int64, error)
	// Recent completion timestamps for the habit, most recent first.
	// Equal timestamps are ordered by insertion (id) so the newest wins
	GetRecentLogTimes(ctx context.Context, habitID, userID uuid.UUID, limit int) ([]time.Time, error)
	// Writes back the recomputed counters
	UpdateHabitCounters(ctx context.Context, habitID uuid.UUID, streak, totalCompletions int) error
	// Achievement catalog rows keyed by title
	GetAchievementsByTitle(ctx context.Context) (map[string]entity.Achievement, error)
	// Achievement ids the user already unlocked
	GetUnlockedAchievementIDs(ctx context.Context, userID uuid.UUID) (map[int64]struct{}, error)
	// Appends an unlock row; ErrUnlockExists when the pair is already present
	InsertUnlock(ctx context.Context, userID uuid.UUID, achievementID int64) error
	// User's completion-event count across all habits
	CountUserLogs(ctx context.Context, userID uuid.UUID) (int, error)
	// Distinct habit categories the user has logged at least once
	CountDistinctLoggedCategories(ctx context.Context, userID uuid.UUID) (int, error)
	// User's habits whose current streak is at least threshold
	CountHabitsWithStreakAtLeast(ctx context.Context, userID uuid.UUID, threshold int) (int, error)
}

type CompletionsRepositoryI interface {
	// Runs f inside a single transaction; commits when f returns nil,
	// rolls the whole unit back otherwise
	InTx(ctx context.Context, f func(store CompletionStore) error) error
}

type AchievementsRepositoryI interface {
	// Full achievement catalog ordered by title
	GetAll(ctx context.Context) ([]entity.Achievement, error)
	// Achievements unlocked by user, most recent unlock first
	GetUnlockedByUser(ctx context.Context, uid uuid.UUID) ([]entity.AchievementUnlock, error)
}

type StatsRepositoryI interface {
	Summary(ctx context.Context, uid uuid.UUID) (*entity.StatsSummary, error)
	ActivityTimeline(ctx context.Context, uid uuid.UUID, days int) ([]entity.TimelineEntry, error)
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
