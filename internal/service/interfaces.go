package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/momentum/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type CreateHabitRequest struct {
	Title       string
	Description string
	Category    string
	Frequency   string
	TimeOfDay   string
}

type UpdateHabitRequest struct {
	Title       string
	Description string
	Category    string
	Frequency   string
	TimeOfDay   string
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, gives back user's data with ID
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type HabitsServiceI interface {
	CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error)
	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)
	GetUserHabits(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Habit, error)
	UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, req *UpdateHabitRequest) (*entity.Habit, error)
	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error
	GetHabitLogs(ctx context.Context, habitID, userID uuid.UUID) ([]entity.HabitLog, error)
}

type CompletionServiceI interface {
	// Records one completion event for the habit and returns the refreshed
	// counters plus any achievements the event unlocked. overrideAt is only
	// honored when the service was built with debug timestamps enabled
	LogCompletion(ctx context.Context, habitID, userID uuid.UUID, overrideAt *time.Time) (*entity.CompletionResult, error)
}

type AchievementsServiceI interface {
	GetCatalog(ctx context.Context) ([]entity.Achievement, error)
	GetUserAchievements(ctx context.Context, uid uuid.UUID) ([]entity.AchievementUnlock, error)
}

type StatsServiceI interface {
	GetSummary(ctx context.Context, uid uuid.UUID) (*entity.StatsSummary, error)
	GetActivityTimeline(ctx context.Context, uid uuid.UUID, days int) ([]entity.TimelineEntry, error)
}
