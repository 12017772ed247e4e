package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mafspace/mafia-backend/handlers"
	"github.com/mafspace/mafia-backend/middleware"
	"github.com/mafspace/mafia-backend/repositories"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Club       *handlers.ClubHandler
	Season     *handlers.SeasonHandler
	Game       *handlers.GameHandler
	Tournament *handlers.TournamentHandler
	Rating     *handlers.RatingHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string, userRepo repositories.UserRepository) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret, userRepo)

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/", h.User.GetByNickname)
		r.Get("/{userID}", h.User.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", h.User.GetMe)
			r.Post("/{userID}/avatar", h.User.UploadAvatar)
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/{clubID}", h.Club.GetByID)
		r.Get("/{clubID}/seasons", h.Season.ListByClub)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Club.Create)
			r.Post("/{clubID}/requests", h.Club.RequestToJoin)
			r.Get("/{clubID}/requests", h.Club.ListRequests)
			r.Post("/{clubID}/logo", h.Club.UploadLogo)
		})
	})

	router.Route("/requests", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/{requestID}/approve", h.Club.ApproveRequest)
		r.Post("/{requestID}/reject", h.Club.RejectRequest)
	})

	router.Route("/seasons", func(r chi.Router) {
		r.Get("/{seasonID}", h.Season.GetByID)
		r.Get("/{seasonID}/games", h.Season.ListGames)
		r.Get("/{seasonID}/rating", h.Rating.SeasonRating)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Season.Create)
			r.Post("/{seasonID}/close", h.Season.Close)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.GetByID)
		r.Get("/{tournamentID}/games", h.Tournament.ListGames)
		r.Get("/{tournamentID}/rating", h.Rating.TournamentRating)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Tournament.Create)
			r.Put("/{tournamentID}", h.Tournament.Update)
			r.Patch("/{tournamentID}/status", h.Tournament.UpdateStatus)
			r.Post("/{tournamentID}/complete", h.Tournament.Complete)
			r.Post("/{tournamentID}/games/generate", h.Game.Generate)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Get("/{gameID}", h.Game.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Game.Create)
			r.Put("/{gameID}/results", h.Game.UpdateResults)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
}
