package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/momentum/internal/repository"
	"github.com/limbo/momentum/pkg/entity"
)

const (
	defaultTimelineDays = 30
	maxTimelineDays     = 365
)

type StatsService struct {
	repo repository.StatsRepositoryI
}

func NewStatsService(statsRepo repository.StatsRepositoryI) *StatsService {
	if statsRepo == nil {
		log.Fatal("provided nil statsRepo")
	}
	return &StatsService{
		repo: statsRepo,
	}
}

func (ss *StatsService) GetSummary(ctx context.Context, uid uuid.UUID) (*entity.StatsSummary, error) {
	summary, err := ss.repo.Summary(ctx, uid)
	if err != nil {
		return nil, errors.New("stats repository error: " + err.Error())
	}
	return summary, nil
}

// GetActivityTimeline returns per-day completion counts for the last days
// days, oldest first, with zero entries for days without completions.
func (ss *StatsService) GetActivityTimeline(ctx context.Context, uid uuid.UUID, days int) ([]entity.TimelineEntry, error) {
	if days < 1 || days > maxTimelineDays {
		days = defaultTimelineDays
	}
	counted, err := ss.repo.ActivityTimeline(ctx, uid, days)
	if err != nil {
		return nil, errors.New("stats repository error: " + err.Error())
	}
	byDate := make(map[string]int, len(counted))
	for _, e := range counted {
		byDate[e.Date] = e.Completions
	}
	timeline := make([]entity.TimelineEntry, 0, days)
	today := time.Now().UTC()
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		timeline = append(timeline, entity.TimelineEntry{
			Date:        date,
			Completions: byDate[date],
		})
	}
	return timeline, nil
}
