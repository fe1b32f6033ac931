// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"tournament-score-system/models"
)

const notificationRetention = 90 * 24 * time.Hour

// StartPublishScheduler promotes tournaments whose publish_schedule has
// passed. Checked every minute.
func (s *TournamentService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if n, err := s.PublishDueTournaments(time.Now()); err != nil {
				log.Printf("[SCHEDULER] DB error: %v", err)
			} else if n > 0 {
				log.Printf("✅ [SCHEDULER] auto-published %d tournament(s)", n)
			}
		}),
	)
}

// PublishDueTournaments publishes every draft whose schedule is at or before
// now. Returns the number published.
func (s *TournamentService) PublishDueTournaments(now time.Time) (int, error) {
	var due []models.Tournament
	err := s.DB.
		Where("status = ? AND publish_schedule IS NOT NULL AND publish_schedule <= ?",
			models.TournamentDraft, now).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	published := 0
	for _, t := range due {
		res := s.DB.Model(&models.Tournament{}).
			Where("id = ? AND status = ?", t.ID, models.TournamentDraft).
			Updates(map[string]interface{}{
				"status":           models.TournamentPublished,
				"published_at":     now,
				"publish_schedule": nil,
			})
		if res.Error != nil {
			log.Printf("[SCHEDULER] failed to publish tournament %s: %v", t.ID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			log.Printf("✅ Auto-published tournament: %s", t.Title)
			published++
		}
	}
	return published, nil
}

// StartRetentionJob purges read notifications older than the retention
// window once a day.
func (s *NotificationService) StartRetentionJob() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-notificationRetention)
			n, err := s.PurgeReadOlderThan(cutoff)
			if err != nil {
				log.Printf("[RETENTION] DB error: %v", err)
				return
			}
			if n > 0 {
				log.Printf("🧹 [RETENTION] purged %d read notification(s) older than %s", n, cutoff.Format(time.RFC3339))
			}
		}),
	)
}
