package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	assert.NotEqual(t, "secret1", h)

	assert.True(t, CheckPassword(h, "secret1"))
	assert.False(t, CheckPassword(h, "wrong"))
	assert.False(t, CheckPassword("", "secret1"))
}
