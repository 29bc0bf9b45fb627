package securitylog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorder_CountRecentFailedLogins(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Record(ctx, Event{Type: EventFailedLogin, UserEmail: "a@x.com", Timestamp: now}))
	require.NoError(t, r.Record(ctx, Event{Type: EventFailedLogin, UserEmail: "a@x.com", Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, r.Record(ctx, Event{Type: EventFailedLogin, UserEmail: "b@x.com", Timestamp: now}))
	require.NoError(t, r.Record(ctx, Event{Type: EventAccountLockout, UserEmail: "a@x.com", Timestamp: now}))

	n, err := r.CountRecentFailedLogins(ctx, "a@x.com", now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.CountRecentFailedLogins(ctx, "a@x.com", now.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryRecorder_StampsTimestamp(t *testing.T) {
	t.Parallel()

	r := NewMemoryRecorder()
	require.NoError(t, r.Record(context.Background(), Event{Type: EventFailedLogin, UserEmail: "a@x.com"}))

	events := r.Events()
	require.Len(t, events, 1)
	assert.WithinDuration(t, time.Now(), events[0].Timestamp, 5*time.Second)
}
