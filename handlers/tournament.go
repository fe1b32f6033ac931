package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tournament-score-system/middleware"
	"tournament-score-system/services"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// 🔓 Public routes (only published tournaments)
	app.Get("/tournaments/published", tournamentService.GetPublishedTournaments)
	app.Get("/tournaments/published/:id", tournamentService.GetPublishedTournament)

	// 🔐 Authenticated organizer routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/tournaments", tournamentService.CreateTournament)
	secured.Get("/tournaments", tournamentService.GetMyTournaments)
	secured.Get("/tournaments/:id", tournamentService.GetTournamentByID)
	secured.Put("/tournaments/:id", tournamentService.UpdateTournament)
	secured.Delete("/tournaments/:id", tournamentService.DeleteTournament)

	// Publish lifecycle
	secured.Post("/tournaments/:id/publish/now", tournamentService.PublishNow)
	secured.Post("/tournaments/:id/publish/schedule", tournamentService.SchedulePublish)
	secured.Post("/tournaments/:id/publish/cancel", tournamentService.CancelScheduledPublish)
}
