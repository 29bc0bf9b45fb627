// Package store persists identity records. The auth service only assumes
// per-record atomicity of Save; there are no cross-record transactions.
package store

import (
	"context"
	"errors"

	"github.com/edulink/auth-service/internal/models"
)

var (
	ErrNotFound = errors.New("identity not found")
	// ErrConflict is returned when an email and a social id resolve to two
	// different records. That state is a data-integrity problem the caller
	// must surface, never silently resolve.
	ErrConflict = errors.New("conflicting identity records")
)

// IdentityStore expects emails to be normalized (trimmed, lowercased)
// by the caller before any lookup or save.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindBySocialID(ctx context.Context, socialID string) (*models.User, error)
	FindByEmailOrSocialID(ctx context.Context, email, socialID string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *models.User) error
}
