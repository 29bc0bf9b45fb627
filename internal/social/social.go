// Package social exchanges opaque third-party credentials for verified
// identity claims. The auth service treats implementations as black boxes:
// either a validated claim comes back or the credential is rejected.
package social

import "context"

// Claim is the normalized identity returned by a provider.
type Claim struct {
	ExternalID    string
	Email         string
	Name          string
	AvatarURL     string
	EmailVerified bool
}

type Verifier interface {
	Verify(ctx context.Context, credential string) (*Claim, error)
}
