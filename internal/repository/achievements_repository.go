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

type AchievementsRepository struct {
	conn PgConnection
}

func NewAchievementsRepo(cfg DBConfig) *AchievementsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for achievementsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for achievementsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &AchievementsRepository{
		conn: pool,
	}
}

func NewAchievementsRepoWithConn(conn PgConnection) *AchievementsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for achievementsRepo: " + err.Error())
	}
	return &AchievementsRepository{
		conn: conn,
	}
}

func (ar *AchievementsRepository) GetAll(ctx context.Context) ([]entity.Achievement, error) {
	rows, err := ar.conn.Query(ctx, `SELECT id, title, description, criteria FROM achievements ORDER BY title;`)
	if err != nil {
		return nil, errors.New("getting achievements error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.Achievement, 0)
	for rows.Next() {
		var a entity.Achievement
		if err = rows.Scan(&a.ID, &a.Title, &a.Description, &a.Criteria); err != nil {
			return nil, errors.New("achievement row parsing error: " + err.Error())
		}
		result = append(result, a)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected achievement rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (ar *AchievementsRepository) GetUnlockedByUser(ctx context.Context, uid uuid.UUID) ([]entity.AchievementUnlock, error) {
	rows, err := ar.conn.Query(
		ctx,
		`SELECT a.id, a.title, a.description, a.criteria, ua.unlocked_at
		FROM user_achievements ua JOIN achievements a ON ua.achievement_id = a.id
		WHERE ua.user_id = $1 ORDER BY ua.unlocked_at DESC, a.title ASC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("getting user achievements error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.AchievementUnlock, 0)
	for rows.Next() {
		var u entity.AchievementUnlock
		if err = rows.Scan(&u.ID, &u.Title, &u.Description, &u.Criteria, &u.UnlockedAt); err != nil {
			return nil, errors.New("user achievement row parsing error: " + err.Error())
		}
		result = append(result, u)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected user achievement rows error: " + rows.Err().Error())
	}
	return result, nil
}
