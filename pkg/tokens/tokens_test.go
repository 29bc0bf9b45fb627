package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec([]byte("test-access-secret"), []byte("test-refresh-secret"), 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return codec
}

func TestNewCodec_EmptySecrets(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(nil, []byte("refresh"), time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewCodec([]byte("access"), nil, time.Minute, time.Hour)
	require.Error(t, err)
}

func TestCodec_IssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	for _, domain := range []Domain{DomainAccess, DomainRefresh} {
		token, err := codec.Issue("a@x.com", "student", domain)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := codec.Verify(token, domain)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", claims.Subject)
		assert.Equal(t, "student", claims.Role)
		assert.Equal(t, domain, claims.Domain)
		require.NotNil(t, claims.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(codec.TTL(domain)), claims.ExpiresAt.Time, 2*time.Second)
	}
}

func TestCodec_Verify_DomainIsolation(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	access, err := codec.Issue("a@x.com", "student", DomainAccess)
	require.NoError(t, err)
	refresh, err := codec.Issue("a@x.com", "student", DomainRefresh)
	require.NoError(t, err)

	_, err = codec.Verify(access, DomainRefresh)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	_, err = codec.Verify(refresh, DomainAccess)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodec_Verify_DomainClaimMismatch(t *testing.T) {
	t.Parallel()

	// Same secret on both domains: the dom claim is the only remaining
	// separation and must still reject cross-domain verification.
	codec, err := NewCodec([]byte("shared"), []byte("shared"), time.Minute, time.Hour)
	require.NoError(t, err)

	access, err := codec.Issue("a@x.com", "student", DomainAccess)
	require.NoError(t, err)

	_, err = codec.Verify(access, DomainRefresh)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Verify(tok, DomainAccess)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestCodec_Verify_TamperedSignature(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	other, err := NewCodec([]byte("other-secret"), []byte("other-refresh"), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := other.Issue("a@x.com", "student", DomainAccess)
	require.NoError(t, err)

	_, err = codec.Verify(token, DomainAccess)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodec_Verify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issuedAt }

	token, err := codec.Issue("a@x.com", "student", DomainAccess)
	require.NoError(t, err)
	exp := issuedAt.Add(codec.TTL(DomainAccess))

	codec.now = func() time.Time { return exp.Add(-time.Second) }
	_, err = codec.Verify(token, DomainAccess)
	require.NoError(t, err)

	// expired iff now >= exp: the exact boundary instant is already expired
	codec.now = func() time.Time { return exp }
	_, err = codec.Verify(token, DomainAccess)
	assert.ErrorIs(t, err, ErrExpired)

	codec.now = func() time.Time { return exp.Add(time.Hour) }
	_, err = codec.Verify(token, DomainAccess)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_UnknownDomain(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	_, err := codec.Issue("a@x.com", "student", Domain("session"))
	require.Error(t, err)

	_, err = codec.Verify("whatever", Domain("session"))
	require.Error(t, err)
}
