package models

import "time"

// Location is carried on the user record for the nearby-matching feature.
// The auth core stores it untouched; only the owning user may overwrite it.
type Location struct {
	Longitude float64    `json:"longitude"`
	Latitude  float64    `json:"latitude"`
	Sharing   bool       `json:"locationSharing"`
	UpdatedAt *time.Time `json:"lastLocationUpdate,omitempty"`
}

// User is the identity record. Email is the primary reconciliation key:
// at most one user per (normalized) email. SocialID, once linked, belongs
// to exactly one user. RefreshToken holds the single currently-active
// refresh token; empty means no active session.
type User struct {
	ID           string    `gorm:"primaryKey"           json:"id"`
	Name         string    `gorm:"not null"             json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"not null"             json:"role"`
	AvatarURL    string    `json:"profilePicture,omitempty"`
	SocialID     string    `gorm:"index"                json:"-"`
	RefreshToken string    `json:"-"`
	Location     Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether this account can authenticate by password.
// Social-only accounts have no password credential.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
