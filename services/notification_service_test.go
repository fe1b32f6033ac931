package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tournament-score-system/middleware"
	"tournament-score-system/models"
)

func newNotificationApp(db *gorm.DB) *fiber.App {
	app := newTestApp()
	svc := NewNotificationService(db, nil)

	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/notifications", svc.ListNotifications)
	secured.Get("/notifications/unread-count", svc.UnreadCount)
	secured.Patch("/notifications/:id/read", svc.MarkRead)
	secured.Post("/notifications/read-all", svc.MarkAllRead)
	return app
}

func TestListNotificationsOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	app := newNotificationApp(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		createTestNotification(t, db, "user-1", i%2 == 0, base.Add(time.Duration(i)*time.Minute))
	}

	// default limit is 20, newest first
	resp := doJSON(t, app, "GET", "/notifications", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	list, ok := body["notifications"].([]interface{})
	if !ok {
		t.Fatalf("expected notifications list, got %v", body)
	}
	if len(list) != 20 {
		t.Fatalf("expected default limit of 20, got %d", len(list))
	}
	var prev time.Time
	for i, raw := range list {
		ts, err := time.Parse(time.RFC3339, raw.(map[string]interface{})["created_at"].(string))
		if err != nil {
			t.Fatalf("bad created_at: %v", err)
		}
		if i > 0 && ts.After(prev) {
			t.Fatalf("notifications not ordered created_at descending")
		}
		prev = ts
	}

	// explicit limit
	resp = doJSON(t, app, "GET", "/notifications?limit=5", "user-1", "")
	if got := len(decodeBody(t, resp)["notifications"].([]interface{})); got != 5 {
		t.Fatalf("expected 5 notifications, got %d", got)
	}

	// oversized limit is clamped, not an error
	resp = doJSON(t, app, "GET", "/notifications?limit=100000", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for clamped limit, got %d", resp.StatusCode)
	}
}

func TestListNotificationsUnreadOnly(t *testing.T) {
	db := newTestDB(t)
	app := newNotificationApp(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestNotification(t, db, "user-1", true, base)
	createTestNotification(t, db, "user-1", false, base.Add(time.Minute))
	createTestNotification(t, db, "user-1", false, base.Add(2*time.Minute))
	createTestNotification(t, db, "user-2", false, base.Add(3*time.Minute))

	resp := doJSON(t, app, "GET", "/notifications?unread_only=true", "user-1", "")
	list := decodeBody(t, resp)["notifications"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("expected 2 unread notifications, got %d", len(list))
	}
	for _, raw := range list {
		n := raw.(map[string]interface{})
		if n["is_read"].(bool) {
			t.Fatalf("unread_only listing returned a read notification")
		}
		if n["user_id"].(string) != "user-1" {
			t.Fatalf("listing leaked another user's notification")
		}
	}
}

func TestMarkNotificationRead(t *testing.T) {
	db := newTestDB(t)
	app := newNotificationApp(db)

	n := createTestNotification(t, db, "user-1", false, time.Now())

	resp := doJSON(t, app, "PATCH", "/notifications/"+n.ID+"/read", "user-1", `{"is_read":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	updated, ok := body["notification"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected notification envelope, got %v", body)
	}
	if !updated["is_read"].(bool) {
		t.Fatalf("expected is_read true after mark")
	}
}

func TestMarkNotificationReadRejectsStringBoolean(t *testing.T) {
	db := newTestDB(t)
	app := newNotificationApp(db)

	n := createTestNotification(t, db, "user-1", false, time.Now())

	resp := doJSON(t, app, "PATCH", "/notifications/"+n.ID+"/read", "user-1", `{"is_read":"true"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, decodeBody(t, resp)); code != models.CodeInvalidFormat {
		t.Fatalf("expected %s, got %s", models.CodeInvalidFormat, code)
	}

	var stored models.Notification
	db.First(&stored, "id = ?", n.ID)
	if stored.IsRead {
		t.Fatalf("store was mutated despite validation failure")
	}
}

func TestMarkNotificationReadForeignOwner(t *testing.T) {
	db := newTestDB(t)
	app := newNotificationApp(db)

	n := createTestNotification(t, db, "owner", false, time.Now())

	resp := doJSON(t, app, "PATCH", "/notifications/"+n.ID+"/read", "intruder", `{"is_read":true}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if code := errorCode(t, decodeBody(t, resp)); code != models.CodeForbidden {
		t.Fatalf("expected %s, got %s", models.CodeForbidden, code)
	}

	var stored models.Notification
	db.First(&stored, "id = ?", n.ID)
	if stored.IsRead {
		t.Fatalf("another user's mutation reached the row")
	}
}

func TestUnreadCountAndReadAll(t *testing.T) {
	db := newTestDB(t)
	app := newNotificationApp(db)

	now := time.Now()
	createTestNotification(t, db, "user-1", false, now)
	createTestNotification(t, db, "user-1", false, now.Add(time.Second))
	createTestNotification(t, db, "user-1", true, now.Add(2*time.Second))
	createTestNotification(t, db, "user-2", false, now.Add(3*time.Second))

	resp := doJSON(t, app, "GET", "/notifications/unread-count", "user-1", "")
	if got := int(decodeBody(t, resp)["unread_count"].(float64)); got != 2 {
		t.Fatalf("expected unread_count 2, got %d", got)
	}

	resp = doJSON(t, app, "POST", "/notifications/read-all", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/notifications/unread-count", "user-1", "")
	if got := int(decodeBody(t, resp)["unread_count"].(float64)); got != 0 {
		t.Fatalf("expected unread_count 0 after read-all, got %d", got)
	}

	// user-2 untouched
	var stored models.Notification
	db.First(&stored, "user_id = ?", "user-2")
	if stored.IsRead {
		t.Fatalf("read-all leaked into another user's notifications")
	}
}

func TestPurgeReadOlderThan(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db, nil)

	old := time.Now().Add(-100 * 24 * time.Hour)
	createTestNotification(t, db, "user-1", true, old)
	createTestNotification(t, db, "user-1", false, old) // unread survives regardless of age
	createTestNotification(t, db, "user-1", true, time.Now())

	n, err := svc.PurgeReadOlderThan(time.Now().Add(-notificationRetention))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged notification, got %d", n)
	}

	var remaining int64
	db.Model(&models.Notification{}).Count(&remaining)
	if remaining != 2 {
		t.Fatalf("expected 2 remaining notifications, got %d", remaining)
	}
}
