package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edulink/auth-service/internal/models"
)

func newSQLiteStore(t *testing.T) IdentityStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return NewGormStore(db)
}

func stores(t *testing.T) map[string]IdentityStore {
	t.Helper()

	return map[string]IdentityStore{
		"memory": NewMemoryStore(),
		"gorm":   newSQLiteStore(t),
	}
}

func newUser(email, socialID string) *models.User {
	return &models.User{
		ID:       uuid.NewString(),
		Name:     "Test User",
		Email:    email,
		Role:     "student",
		SocialID: socialID,
	}
}

func TestIdentityStore_FindByEmail(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.FindByEmail(ctx, "missing@x.com")
			assert.ErrorIs(t, err, ErrNotFound)

			u := newUser("a@x.com", "")
			require.NoError(t, s.Save(ctx, u))

			got, err := s.FindByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
		})
	}
}

func TestIdentityStore_FindBySocialID(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			u := newUser("a@x.com", "google-123")
			require.NoError(t, s.Save(ctx, u))

			got, err := s.FindBySocialID(ctx, "google-123")
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)

			_, err = s.FindBySocialID(ctx, "")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.FindBySocialID(ctx, "google-999")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestIdentityStore_FindByEmailOrSocialID(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			u := newUser("a@x.com", "google-123")
			require.NoError(t, s.Save(ctx, u))

			byEmail, err := s.FindByEmailOrSocialID(ctx, "a@x.com", "")
			require.NoError(t, err)
			assert.Equal(t, u.ID, byEmail.ID)

			bySocial, err := s.FindByEmailOrSocialID(ctx, "other@x.com", "google-123")
			require.NoError(t, err)
			assert.Equal(t, u.ID, bySocial.ID)

			_, err = s.FindByEmailOrSocialID(ctx, "other@x.com", "google-999")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestIdentityStore_FindByEmailOrSocialID_Conflict(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Save(ctx, newUser("a@x.com", "")))
			require.NoError(t, s.Save(ctx, newUser("b@x.com", "google-123")))

			// email matches one record, social id another: ambiguous
			_, err := s.FindByEmailOrSocialID(ctx, "a@x.com", "google-123")
			assert.ErrorIs(t, err, ErrConflict)
		})
	}
}

func TestIdentityStore_ExistsByEmail(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			exists, err := s.ExistsByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, s.Save(ctx, newUser("a@x.com", "")))

			exists, err = s.ExistsByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestIdentityStore_Save_Upsert(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			u := newUser("a@x.com", "")
			require.NoError(t, s.Save(ctx, u))

			u.RefreshToken = "rotated"
			require.NoError(t, s.Save(ctx, u))

			got, err := s.FindByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			assert.Equal(t, "rotated", got.RefreshToken)
			assert.Equal(t, u.ID, got.ID)
		})
	}
}

func TestMemoryStore_SaveReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	u := newUser("a@x.com", "")
	require.NoError(t, s.Save(ctx, u))

	got, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	got.RefreshToken = "mutated-without-save"

	again, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, again.RefreshToken)
	assert.False(t, again.CreatedAt.IsZero())
	assert.WithinDuration(t, time.Now(), again.UpdatedAt, 5*time.Second)
}
