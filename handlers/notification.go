package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tournament-score-system/middleware"
	"tournament-score-system/services"
)

func SetupNotificationRoutes(app *fiber.App, notificationService *services.NotificationService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/notifications", notificationService.ListNotifications)
	secured.Get("/notifications/unread-count", notificationService.UnreadCount)
	secured.Patch("/notifications/:id/read", notificationService.MarkRead)
	secured.Post("/notifications/read-all", notificationService.MarkAllRead)
}
