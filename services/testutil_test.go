package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tournament-score-system/models"
	"tournament-score-system/utils"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Tournament{},
		&models.Score{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// newTestApp builds a fiber app with the central error handler, matching the
// production configuration minus the gateway token check.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
	})
}

// doJSON performs an in-process request. userID == "" sends the request
// unauthenticated.
func doJSON(t *testing.T, app *fiber.App, method, target, userID, body string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}

// errorCode extracts error.code from an error envelope.
func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()

	env, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	code, _ := env["code"].(string)
	return code
}

func createTestProfile(t *testing.T, db *gorm.DB, id, displayName string) *models.Profile {
	t.Helper()

	p := &models.Profile{ID: id, DisplayName: displayName}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

func createTestTournament(t *testing.T, db *gorm.DB, organizerID string) *models.Tournament {
	t.Helper()

	id := uuid.NewString()
	tr := &models.Tournament{
		ID:          id,
		OrganizerID: organizerID,
		Title:       "Test Cup",
		Slug:        "test-cup-" + id[:8],
		Status:      models.TournamentDraft,
		StartTime:   time.Now().Add(time.Hour),
	}
	if err := db.Create(tr).Error; err != nil {
		t.Fatalf("failed to create test tournament: %v", err)
	}
	return tr
}

func createTestScore(t *testing.T, db *gorm.DB, tournamentID, playerID string, value int64) *models.Score {
	t.Helper()

	sc := &models.Score{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		PlayerID:     playerID,
		Value:        value,
	}
	if err := db.Create(sc).Error; err != nil {
		t.Fatalf("failed to create test score: %v", err)
	}
	return sc
}

func createTestNotification(t *testing.T, db *gorm.DB, userID string, isRead bool, createdAt time.Time) *models.Notification {
	t.Helper()

	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "test",
		Body:      "test body",
		IsRead:    isRead,
		CreatedAt: createdAt,
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
