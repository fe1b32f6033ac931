package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tournament-score-system/middleware"
	"tournament-score-system/services"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/users/me/profile", profileService.GetMyProfile)
	secured.Patch("/users/me/profile", profileService.UpdateProfile)
	secured.Post("/users/me/avatar", profileService.UploadAvatar)
}
