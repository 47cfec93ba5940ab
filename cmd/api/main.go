package main

import (
	"log"

	"github.com/limbo/momentum/internal/api"
	"github.com/limbo/momentum/internal/repository"
	"github.com/limbo/momentum/internal/service"
	"github.com/limbo/momentum/pkg/cleanup"
	"github.com/limbo/momentum/pkg/config"
	jwtservice "github.com/limbo/momentum/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	defer cleanup.CleanUp()
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	// Debug completion timestamps are for local streak simulation only
	allowDebugTime := cfg.GetBool("DEBUG_COMPLETED_AT")

	userService := service.NewUserService(repository.NewUsersRepo(&dbCfg))
	habitsService := service.NewHabitsService(repository.NewHabitsRepo(&dbCfg))
	completionService := service.NewCompletionService(repository.NewCompletionsRepo(&dbCfg), allowDebugTime)
	achievementsService := service.NewAchievementsService(repository.NewAchievementsRepo(&dbCfg))
	statsService := service.NewStatsService(repository.NewStatsRepo(&dbCfg))

	serv := api.New(&api.ServicesList{
		UserService:         userService,
		HabitsService:       habitsService,
		CompletionService:   completionService,
		AchievementsService: achievementsService,
		StatsService:        statsService,
		JwtService:          jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	err := serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
