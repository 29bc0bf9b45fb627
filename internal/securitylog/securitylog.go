// Package securitylog records authentication security events (failed
// logins, lockouts) for the admin security dashboard and for the login
// lockout check. Recording is best-effort: the auth service never fails
// a request because an event could not be written.
package securitylog

import (
	"context"
	"time"
)

type EventType string

const (
	EventFailedLogin    EventType = "failed_login"
	EventAccountLockout EventType = "account_lockout"
)

type Event struct {
	Type      EventType `json:"type"`
	UserEmail string    `json:"userEmail"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ipAddress,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Recorder interface {
	Record(ctx context.Context, ev Event) error
	CountRecentFailedLogins(ctx context.Context, email string, since time.Time) (int, error)
}
