package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tournament-score-system/middleware"
	"tournament-score-system/services"
)

func SetupScoreRoutes(app *fiber.App, scoreService *services.ScoreService) {
	// 🔐 All score management requires the organizer's session
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/tournaments/:id/scores", scoreService.ListTournamentScores)
	secured.Patch("/scores/:id", scoreService.UpdateScore)
	secured.Delete("/scores/:id", scoreService.DeleteScore)
}
