package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/limbo/momentum/internal/repository"
	"github.com/limbo/momentum/pkg/entity"
)

// AchievementsService is the read side of the unlock ledger; granting
// happens only inside completion transactions.
type AchievementsService struct {
	repo repository.AchievementsRepositoryI
}

func NewAchievementsService(achievementsRepo repository.AchievementsRepositoryI) *AchievementsService {
	if achievementsRepo == nil {
		log.Fatal("provided nil achievementsRepo")
	}
	return &AchievementsService{
		repo: achievementsRepo,
	}
}

func (as *AchievementsService) GetCatalog(ctx context.Context) ([]entity.Achievement, error) {
	achievements, err := as.repo.GetAll(ctx)
	if err != nil {
		return nil, errors.New("achievements repository error: " + err.Error())
	}
	return achievements, nil
}

func (as *AchievementsService) GetUserAchievements(ctx context.Context, uid uuid.UUID) ([]entity.AchievementUnlock, error) {
	unlocks, err := as.repo.GetUnlockedByUser(ctx, uid)
	if err != nil {
		return nil, errors.New("achievements repository error: " + err.Error())
	}
	return unlocks, nil
}
