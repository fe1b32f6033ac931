// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tournament-score-system/models"
)

// GetProfileChangesResponse is the top-level structure of the profile
// service's changes endpoint.
type GetProfileChangesResponse struct {
	Profiles []models.RemoteProfile `json:"profiles"`
}

// ProfileSyncWorker mirrors user profiles from the profile service into the
// local profiles table. Profiles are created there at signup; this worker is
// the only writer of new rows locally, the owner PATCH is the only other
// mutation path.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g. "http://localhost:8500"
	endpointPath string // e.g. "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (profile-service → profiles)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in the local mirror.
func (w *ProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM profiles").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch pulls profile changes since the given time and upserts them.
func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		// drain & close to keep the connection reusable
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}

	if len(response.Profiles) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d profile(s) since %s…", len(response.Profiles), sinceStr)

	var upsertCount, errorCount int
	for _, remote := range response.Profiles {
		local := models.Profile{
			ID:          remote.ExternalID,
			DisplayName: remote.DisplayName,
			CreatedAt:   remote.CreatedAt,
			UpdatedAt:   remote.UpdatedAt,
		}
		if remote.AvatarURL != nil {
			local.AvatarURL = *remote.AvatarURL
		}

		// Insert new mirrors; on conflict only refresh the sync-owned
		// columns so a locally edited display name is not clobbered by an
		// older remote revision.
		err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"avatar_url": local.AvatarURL,
				"updated_at": local.UpdatedAt,
			}),
		}).Create(&local).Error
		if err != nil {
			log.Printf("[SYNC] ❌ failed to upsert profile %s: %v", remote.ExternalID, err)
			errorCount++
			continue
		}
		upsertCount++
	}

	log.Printf("[SYNC] ✅ Profiles synced: %d upserted, %d failed", upsertCount, errorCount)
	return nil
}
