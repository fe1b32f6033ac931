package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tournament-score-system/middleware"
	"tournament-score-system/models"
	"tournament-score-system/utils"
)

const (
	notificationDefaultLimit = 20
	notificationMaxLimit     = 100
	unreadCountCacheTTL      = 60 * time.Second
)

// NotificationService exposes the owner-scoped notification surface.
// Notifications are created by the external fan-out pipeline; here they are
// only listed and flagged read. Every query and mutation carries the caller
// id in its WHERE clause, so one user can never touch another's rows.
type NotificationService struct {
	DB       *gorm.DB
	Redis    *redis.Client // nil disables the unread-count cache
	validate *validator.Validate
}

func NewNotificationService(db *gorm.DB, rdb *redis.Client) *NotificationService {
	return &NotificationService{
		DB:       db,
		Redis:    rdb,
		validate: validator.New(),
	}
}

// ListNotifications handles GET /notifications?limit=&unread_only=
func (s *NotificationService) ListNotifications(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	limit := c.QueryInt("limit", notificationDefaultLimit)
	if limit <= 0 {
		limit = notificationDefaultLimit
	}
	if limit > notificationMaxLimit {
		limit = notificationMaxLimit
	}
	unreadOnly := c.QueryBool("unread_only", false)

	q := s.DB.Where("user_id = ?", callerID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	notifications := make([]models.Notification, 0, limit)
	if err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		log.Printf("❌ [NOTIFY] failed to list notifications for %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeStoreError,
			"could not load notifications")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"notifications": notifications})
}

// MarkRead handles PATCH /notifications/:id/read
func (s *NotificationService) MarkRead(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)
	notificationID := c.Params("id")

	var req models.MarkNotificationReadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"is_read must be a boolean")
	}
	if err := s.validate.Struct(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"is_read must be a boolean")
	}

	// Ownership lives in the filter itself: an absent row and a foreign row
	// are indistinguishable here, both come back as zero rows affected.
	res := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, callerID).
		Update("is_read", *req.IsRead)
	if res.Error != nil {
		log.Printf("❌ [NOTIFY] failed to mark notification %s: %v", notificationID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeStoreError,
			"could not update notification")
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusForbidden, models.CodeForbidden,
			"notification does not belong to you")
	}

	s.invalidateUnreadCount(c.Context(), callerID)

	var updated models.Notification
	if err := s.DB.First(&updated, "id = ?", notificationID).Error; err != nil {
		log.Printf("❌ [NOTIFY] failed to reload notification %s: %v", notificationID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeStoreError,
			"could not load notification")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"notification": updated})
}

// MarkAllRead handles POST /notifications/read-all
func (s *NotificationService) MarkAllRead(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	res := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", callerID, false).
		Update("is_read", true)
	if res.Error != nil {
		log.Printf("❌ [NOTIFY] failed to mark all read for %s: %v", callerID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeStoreError,
			"could not update notifications")
	}

	s.invalidateUnreadCount(c.Context(), callerID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("%d notifications marked as read", res.RowsAffected),
	})
}

// UnreadCount handles GET /notifications/unread-count
func (s *NotificationService) UnreadCount(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(c.Context(), unreadCountKey(callerID)).Result(); err == nil {
			if n, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return c.Status(fiber.StatusOK).JSON(fiber.Map{"unread_count": n})
			}
		}
	}

	var count int64
	if err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", callerID, false).
		Count(&count).Error; err != nil {
		log.Printf("❌ [NOTIFY] failed to count unread for %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeStoreError,
			"could not count notifications")
	}

	if s.Redis != nil {
		if err := s.Redis.Set(c.Context(), unreadCountKey(callerID), count, unreadCountCacheTTL).Err(); err != nil {
			log.Printf("⚠️ [NOTIFY] failed to cache unread count for %s: %v", callerID, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"unread_count": count})
}

// PurgeReadOlderThan deletes read notifications whose created_at is before
// the cutoff. Invoked by the retention job, not by any route.
func (s *NotificationService) PurgeReadOlderThan(cutoff time.Time) (int64, error) {
	res := s.DB.
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (s *NotificationService) invalidateUnreadCount(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		log.Printf("⚠️ [NOTIFY] failed to invalidate unread count for %s: %v", userID, err)
	}
}

func unreadCountKey(userID string) string {
	return "notifications:unread:" + userID
}
