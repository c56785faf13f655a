package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/racefan-dev/fantasy-chase/handlers"
	"github.com/racefan-dev/fantasy-chase/middleware"
	"github.com/racefan-dev/fantasy-chase/models"
)

// SetupRoutes wires every HTTP surface onto the router. Scoring and
// playoff transitions are operator actions; picks and profile routes only
// need an authenticated player.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	registry *prometheus.Registry,
	scoringHandler *handlers.ScoringHandler,
	chaseHandler *handlers.ChaseHandler,
	standingsHandler *handlers.StandingsHandler,
	pickHandler *handlers.PickHandler,
	userHandler *handlers.UserHandler,
	proxyHandler *handlers.ProxyHandler,
	webSocketHandler *handlers.WebSocketHandler,
	demoHandler *handlers.DemoHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Method("GET", "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Cached feed proxy, open to anonymous clients behind the rate limiter.
	router.Route("/feed/{season}/{series}", func(r chi.Router) {
		r.Get("/races", proxyHandler.RaceListHandler)
		r.Get("/races/{raceID}", proxyHandler.RaceDetailHandler)
	})

	// Live updates per league.
	router.Get("/ws/leagues/{leagueID}", webSocketHandler.LeagueUpdatesHandler)

	router.Route("/leagues/{leagueID}", func(r chi.Router) {
		r.Get("/standings", standingsHandler.ListHandler)
		r.Get("/chase/bracket", chaseHandler.BracketHandler)
		r.Get("/races/{raceID}/results", scoringHandler.RaceResultsHandler)
		r.Get("/free-pick-races", pickHandler.FreePickRacesHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/picks", pickHandler.SubmitHandler)
			r.Get("/picks", pickHandler.ListHandler)
			r.Get("/picks/usage", pickHandler.UsageHandler)
			r.Get("/users/me/scores", scoringHandler.MyScoresHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireRole(models.RoleOperator, models.RoleAdmin))

			r.Post("/races/{raceID}/score", scoringHandler.ScoreRaceHandler)
			r.Post("/chase/qualify", chaseHandler.QualifyHandler)
			r.Post("/chase/rounds/{roundNumber}/process", chaseHandler.ProcessRoundHandler)
			r.Post("/chase/finalize", chaseHandler.FinalizeHandler)
		})
	})

	router.Route("/users/me", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/", userHandler.ProfileHandler)
		r.Patch("/", userHandler.UpdateDisplayNameHandler)
		r.Post("/avatar", userHandler.UploadAvatarHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireRole(models.RoleOperator, models.RoleAdmin))

		r.Post("/demo/seed", demoHandler.SeedHandler)
	})
}
