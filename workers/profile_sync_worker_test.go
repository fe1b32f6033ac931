package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"tournament-score-system/models"
)

func newWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSyncBatchUpsertsProfiles(t *testing.T) {
	db := newWorkerTestDB(t)

	avatar := "https://cdn.example.com/avatars/u2.png"
	now := time.Now().UTC().Truncate(time.Second)
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Service-Token")
		_ = json.NewEncoder(w).Encode(GetProfileChangesResponse{
			Profiles: []models.RemoteProfile{
				{ExternalID: "u1", DisplayName: "Alice", CreatedAt: now, UpdatedAt: now},
				{ExternalID: "u2", DisplayName: "Bob", AvatarURL: &avatar, CreatedAt: now, UpdatedAt: now},
			},
		})
	}))
	defer srv.Close()

	w := NewProfileSyncWorker(db, srv.URL, "/api/v1/public/profiles", "secret-token")
	if err := w.syncBatch(context.Background(), time.Time{}); err != nil {
		t.Fatalf("syncBatch failed: %v", err)
	}
	if gotToken != "secret-token" {
		t.Fatalf("expected service token header, got %q", gotToken)
	}

	var count int64
	db.Model(&models.Profile{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 mirrored profiles, got %d", count)
	}

	var bob models.Profile
	db.First(&bob, "id = ?", "u2")
	if bob.AvatarURL != avatar {
		t.Fatalf("expected avatar URL mirrored, got %q", bob.AvatarURL)
	}
}

func TestSyncBatchPreservesLocalDisplayName(t *testing.T) {
	db := newWorkerTestDB(t)

	// the user renamed themselves locally after signup
	if err := db.Create(&models.Profile{ID: "u1", DisplayName: "LocalName"}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(GetProfileChangesResponse{
			Profiles: []models.RemoteProfile{
				{ExternalID: "u1", DisplayName: "StaleRemoteName", CreatedAt: now, UpdatedAt: now},
			},
		})
	}))
	defer srv.Close()

	w := NewProfileSyncWorker(db, srv.URL, "/api/v1/public/profiles", "tok")
	if err := w.syncBatch(context.Background(), time.Time{}); err != nil {
		t.Fatalf("syncBatch failed: %v", err)
	}

	var stored models.Profile
	db.First(&stored, "id = ?", "u1")
	if stored.DisplayName != "LocalName" {
		t.Fatalf("sync clobbered a locally edited display name: %q", stored.DisplayName)
	}
}

func TestSyncBatchNon200(t *testing.T) {
	db := newWorkerTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	w := NewProfileSyncWorker(db, srv.URL, "/api/v1/public/profiles", "tok")
	if err := w.syncBatch(context.Background(), time.Time{}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
