package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/momentum/internal/service"
)

type Server struct {
	mx                  *chi.Mux
	userService         service.UserServiceI
	habitService        service.HabitsServiceI
	completionService   service.CompletionServiceI
	achievementsService service.AchievementsServiceI
	statsService        service.StatsServiceI
	jwtService          JWTServiceI
}

type ServicesList struct {
	UserService         service.UserServiceI
	HabitsService       service.HabitsServiceI
	CompletionService   service.CompletionServiceI
	AchievementsService service.AchievementsServiceI
	StatsService        service.StatsServiceI
	JwtService          JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:                  chi.NewMux(),
		userService:         servicesOptions.UserService,
		habitService:        servicesOptions.HabitsService,
		completionService:   servicesOptions.CompletionService,
		achievementsService: servicesOptions.AchievementsService,
		statsService:        servicesOptions.StatsService,
		jwtService:          servicesOptions.JwtService,
	}
}

func (s *Server) registerRoutes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.Register)
			r.Post("/login", s.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
			r.Route("/habits", func(r chi.Router) {
				r.Post("/", s.CreateHabit)
				r.Get("/", s.GetHabits)
				r.Get("/{id}", s.GetHabit)
				r.Put("/{id}", s.UpdateHabit)
				r.Delete("/{id}", s.DeleteHabit)
				r.Post("/{id}/log", s.LogCompletion)
				r.Get("/{id}/logs", s.GetHabitLogs)
			})
			r.Route("/achievements", func(r chi.Router) {
				r.Get("/", s.GetAchievements)
				r.Get("/my", s.GetMyAchievements)
			})
			r.Route("/stats", func(r chi.Router) {
				r.Get("/summary", s.GetStatsSummary)
				r.Get("/timeline", s.GetActivityTimeline)
			})
		})
	})
}

func (s *Server) Run(address string) error {
	s.registerRoutes()
	return http.ListenAndServe(address, s.mx)
}
