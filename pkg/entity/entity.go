package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

type Habit struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"uid"`
	Title            string    `json:"title"`
	Description      string    `json:"desc"`
	Category         string    `json:"category"`
	Frequency        string    `json:"frequency"`
	TimeOfDay        string    `json:"time_of_day"`
	Streak           int       `json:"streak"`
	TotalCompletions int       `json:"total_completions"`
	CompletedToday   bool      `json:"completed_today"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type HabitLog struct {
	ID          int64     `json:"id"`
	HabitID     uuid.UUID `json:"habit_id"`
	UserID      uuid.UUID `json:"uid"`
	CompletedAt time.Time `json:"completed_at"`
}

type Achievement struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Criteria    string `json:"criteria,omitempty"`
}

type AchievementUnlock struct {
	Achievement
	UnlockedAt time.Time `json:"unlocked_at"`
}

// CompletionResult is what a single log-completion transaction produces.
type CompletionResult struct {
	LogID            int64         `json:"log_id"`
	NewStreak        int           `json:"new_streak"`
	TotalCompletions int           `json:"total_completions"`
	Unlocked         []Achievement `json:"unlocked_achievements"`
}

type StatsSummary struct {
	TotalHabits          int     `json:"total_habits"`
	TotalCompletions     int     `json:"total_completions"`
	LongestStreak        int     `json:"longest_streak"`
	AverageStreak        float64 `json:"average_streak"`
	CompletedTodayCount  int     `json:"completed_today_count"`
	EngagementPercentage float64 `json:"engagement_percentage"`
}

type TimelineEntry struct {
	Date        string `json:"date"`
	Completions int    `json:"completions"`
}
