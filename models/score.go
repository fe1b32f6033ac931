package models

import (
	"time"
)

// MaxScoreValue is the theoretical maximum a play can reach.
const MaxScoreValue = 1_010_000

// Score — one player's result in a tournament. Created by the external
// submission flow; this service only lets the tournament's organizer correct
// or remove it.
type Score struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TournamentID string    `json:"tournament_id" gorm:"not null;index"`
	PlayerID     string    `json:"player_id" gorm:"not null;index"`
	Value        int64     `json:"score"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
