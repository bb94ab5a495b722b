package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/chess-tournament/docs"
	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Participant *handlers.ParticipantHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, auth *middleware.Authenticator, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	admin := middleware.RequireRole(models.RoleAdmin)
	player := middleware.RequireRole(models.RolePlayer, models.RoleReferee, models.RoleAdmin)
	referee := middleware.RequireRole(models.RoleReferee, models.RoleAdmin)

	// Websocket connections are long-lived and stay outside the request timeout.
	router.Get("/ws", h.WebSocket.ServeWs)
	router.Get("/ws/tournaments/{tournamentKey}", h.WebSocket.ServeTournamentWs)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(15 * time.Second))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		r.Post("/auth/token", h.Auth.TokenHandler)

		r.Route("/participants", func(r chi.Router) {
			r.Post("/", h.Participant.CreateHandler)
			r.Get("/", h.Participant.ListHandler)
			r.Get("/{participantKey}", h.Participant.GetHandler)
		})
		r.Get("/leaderboard", h.Participant.LeaderboardHandler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.With(auth.Authenticate, admin).Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentKey}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetHandler)
				r.Get("/status", h.Tournament.StatusHandler)
				r.Get("/participants", h.Tournament.ParticipantsHandler)
				r.Get("/leaderboard", h.Tournament.LeaderboardHandler)
				r.Get("/rounds", h.Tournament.RoundsHandler)
				r.Get("/rounds/current", h.Tournament.CurrentRoundHandler)
				r.Get("/rounds/{number}", h.Tournament.RoundHandler)
				r.Get("/players/{participantKey}/results", h.Tournament.PlayerResultsHandler)
				r.Get("/matches/last", h.Tournament.LastMatchHandler)
				r.Get("/matches/ongoing/count", h.Tournament.OngoingCountHandler)

				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate)

					r.With(player).Post("/register", h.Tournament.RegisterHandler)
					r.With(player).Post("/invitations/accept", h.Tournament.AcceptInvitationHandler)

					r.Group(func(r chi.Router) {
						r.Use(admin)
						r.Delete("/", h.Tournament.DeleteHandler)
						r.Patch("/registration", h.Tournament.RegistrationHandler)
						r.Patch("/capacity", h.Tournament.CapacityHandler)
						r.Post("/invitations", h.Tournament.InviteHandler)
						r.Post("/start", h.Tournament.StartHandler)
						r.Post("/end", h.Tournament.EndHandler)
						r.Post("/advance", h.Tournament.AdvanceHandler)
						r.Put("/current-round", h.Tournament.SetCurrentRoundHandler)
						r.Post("/referees", h.Tournament.AssignRefereeHandler)
					})
				})
			})
		})

		r.Route("/matches/{matchKey}", func(r chi.Router) {
			r.Get("/", h.Match.GetHandler)
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.With(admin).Post("/referee", h.Match.AssignRefereeHandler)
				r.With(player).Post("/result", h.Match.PlayerResultHandler)
				r.With(referee).Post("/referee-result", h.Match.RefereeResultHandler)
			})
		})
	})
}
