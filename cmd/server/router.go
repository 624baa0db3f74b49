package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/mnemo-api/internal/api"
	apiMiddleware "github.com/phrazzld/mnemo-api/internal/api/middleware"
	"github.com/phrazzld/mnemo-api/internal/api/shared"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.telemetry.TracerProvider, app.logger))
	r.Use(middleware.Recoverer)

	authHandler, err := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	mustWire(err)
	storyHandler, err := api.NewStoryHandler(app.storyService, app.logger)
	mustWire(err)
	reviewHandler, err := api.NewReviewHandler(app.reviewService, app.logger)
	mustWire(err)
	playlistHandler, err := api.NewPlaylistHandler(app.playlistService, app.logger)
	mustWire(err)
	aiHandler, err := api.NewAIHandler(app.generator, app.storyService, app.logger)
	mustWire(err)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/guest", authHandler.Guest)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Get("/stories", storyHandler.ListStories)
			r.Post("/stories", storyHandler.CreateStory)
			r.Get("/stories/{id}", storyHandler.GetStory)
			r.Put("/stories/{id}", storyHandler.UpdateStory)
			r.Delete("/stories/{id}", storyHandler.DeleteStory)
			r.Post("/stories/{id}/review", reviewHandler.SubmitReview)

			r.Get("/reviews/due", storyHandler.ListDue)

			r.Get("/playlists", playlistHandler.ListPlaylists)
			r.Post("/playlists", playlistHandler.CreatePlaylist)
			r.Get("/playlists/{id}", playlistHandler.GetPlaylist)
			r.Delete("/playlists/{id}", playlistHandler.DeletePlaylist)
			r.Post("/playlists/{id}/stories/{storyId}", playlistHandler.AddStory)
			r.Delete("/playlists/{id}/stories/{storyId}", playlistHandler.RemoveStory)

			r.Post("/ai/mnemonic", aiHandler.GenerateMnemonic)
			r.Post("/ai/quiz", aiHandler.GenerateQuiz)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// mustWire panics on a handler construction error. Handlers only fail on nil
// dependencies, which newApplication never leaves unset.
func mustWire(err error) {
	if err != nil {
		panic("router: " + err.Error())
	}
}
