package models

import (
	"time"
)

// Profile is the local mirror of a user's public profile.
// Rows are created externally at signup and pulled in by the profile sync
// worker; the only locally-originated mutations are the owner updating their
// display name or avatar.
type Profile struct {
	ID          string    `json:"id" gorm:"primaryKey"` // external user id from the identity provider
	DisplayName string    `json:"display_name" gorm:"not null;index"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RemoteProfile matches the JSON shape served by the profile service's
// changes endpoint. Consumed only by the sync worker.
type RemoteProfile struct {
	ExternalID  string    `json:"external_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
