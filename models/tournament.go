package models

import (
	"time"
)

// Tournament is the authority-bearing aggregate: its OrganizerID decides who
// may touch the tournament itself and every score attached to it.
type Tournament struct {
	ID          string `json:"id" gorm:"primaryKey"`
	OrganizerID string `json:"organizer_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	Status      string `json:"status" gorm:"default:'draft'"` // draft | published

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	PublishedAt     *time.Time `json:"published_at,omitempty" gorm:"index"`
	PublishSchedule *time.Time `json:"publish_schedule,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Calculated for list views, not stored
	ScoreCount int64 `json:"score_count,omitempty" gorm:"-"`
}

const (
	TournamentDraft     = "draft"
	TournamentPublished = "published"
)
