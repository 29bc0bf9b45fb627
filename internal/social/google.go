package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

const googleIssuer = "https://accounts.google.com"

// GoogleVerifier validates Google ID tokens (the credential posted by the
// web sign-in flow) against the configured OAuth client ID.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("social: google client id is required")
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("social: init google oidc provider: %w", err)
	}
	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (*Claim, error) {
	idToken, err := g.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("social: google id_token verification failed: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("social: google id_token claims parse failed: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("social: google id_token missing required claims")
	}

	return &Claim{
		ExternalID:    claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		AvatarURL:     claims.Picture,
		EmailVerified: claims.EmailVerified,
	}, nil
}
