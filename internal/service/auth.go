package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edulink/auth-service/internal/models"
	"github.com/edulink/auth-service/internal/securitylog"
	"github.com/edulink/auth-service/internal/social"
	"github.com/edulink/auth-service/internal/store"
	pkg_hash "github.com/edulink/auth-service/pkg/hash"
	"github.com/edulink/auth-service/pkg/logging"
	"github.com/edulink/auth-service/pkg/tokens"
)

const (
	fallbackRole = "student"

	failedLoginLimit  = 5
	failedLoginWindow = 10 * time.Minute
)

// EventPublisher is the outbound event hook (kafka in production).
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

// AuthService orchestrates login, registration, social login, refresh,
// and logout. Security and Events are optional; when nil, lockout checks
// and event publication are skipped.
type AuthService struct {
	Store       store.IdentityStore
	Codec       *tokens.Codec
	Social      social.Verifier
	Security    securitylog.Recorder
	Events      EventPublisher
	DefaultRole string
}

// AuthResult is the success shape shared by register, login, social login,
// and refresh.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// LocationUpdate is the optional location payload accepted by login,
// social login, and the dedicated location endpoint. Coordinates are
// [longitude, latitude].
type LocationUpdate struct {
	Coordinates     []float64 `json:"coordinates"`
	LocationSharing *bool     `json:"locationSharing"`
}

func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	exists, err := s.Store.ExistsByEmail(ctx, email)
	if err != nil {
		l.Error("register_failed", "reason", "store lookup", "error", err)
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	if name == "" {
		name = localPart(email)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         s.roleOrDefault(role),
	}

	res, err := s.issueAndStore(ctx, user)
	if err != nil {
		l.Error("register_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, "user_registered", user)
	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, loc *LocationUpdate) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	if s.lockedOut(ctx, email) {
		s.record(ctx, securitylog.EventAccountLockout, email, "too many failed login attempts")
		l.Warn("login_locked_out", "email", email)
		return nil, ErrAccountLocked
	}

	user, err := s.Store.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.record(ctx, securitylog.EventFailedLogin, email, "unknown email")
		return nil, ErrUserNotFound
	}
	if err != nil {
		l.Error("login_failed", "reason", "store lookup", "error", err)
		return nil, err
	}

	if !user.HasPassword() || !pkg_hash.CheckPassword(user.PasswordHash, password) {
		s.record(ctx, securitylog.EventFailedLogin, email, "incorrect password")
		l.Warn("login_failed", "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	applyLocation(user, loc)

	res, err := s.issueAndStore(ctx, user)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, "user_logged_in", user)
	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

// SocialLogin resolves the verified claim by email OR social id, so a
// password account and a social sign-in sharing an email merge onto one
// record instead of duplicating. Profile fields follow the latest social
// login; the password credential is never touched.
func (s *AuthService) SocialLogin(ctx context.Context, credential, role string, loc *LocationUpdate) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.social_login")

	if strings.TrimSpace(credential) == "" {
		return nil, ErrMissingCredential
	}
	if s.Social == nil {
		return nil, ErrSocialTokenInvalid
	}

	claim, err := s.Social.Verify(ctx, credential)
	if err != nil {
		l.Warn("social_login_failed", "reason", "verifier rejected credential", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSocialTokenInvalid, err)
	}

	email := normalizeEmail(claim.Email)
	if email == "" {
		// email is the reconciliation key; a claim without one must never
		// mint an identity, whatever the verifier let through
		l.Warn("social_login_failed", "reason", "claim carries no email")
		return nil, ErrSocialTokenInvalid
	}

	user, err := s.Store.FindByEmailOrSocialID(ctx, email, claim.ExternalID)
	switch {
	case err == nil:
		user.SocialID = claim.ExternalID
		if claim.Name != "" {
			user.Name = claim.Name
		}
		user.AvatarURL = claim.AvatarURL
	case errors.Is(err, store.ErrNotFound):
		name := claim.Name
		if name == "" {
			name = localPart(email)
		}
		user = &models.User{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Role:      s.roleOrDefault(role),
			SocialID:  claim.ExternalID,
			AvatarURL: claim.AvatarURL,
		}
	default:
		l.Error("social_login_failed", "reason", "identity resolution", "error", err)
		return nil, err
	}

	applyLocation(user, loc)

	res, err := s.issueAndStore(ctx, user)
	if err != nil {
		l.Error("social_login_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, "social_login", user)
	l.Info("social_login_successful", "user_id", user.ID)
	return res, nil
}

// Refresh exchanges a current refresh token for a new access+refresh pair
// and rotates the stored token, invalidating the presented one.
//
// Known race: two concurrent calls presenting the same current token can
// both succeed; the later Save wins and the earlier caller's new refresh
// token is stale on its next use. Refresh is expected to come from a
// single client, so this is accepted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Codec.Verify(refreshToken, tokens.DomainRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	user, err := s.Store.FindByEmail(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		l.Error("refresh_failed", "reason", "store lookup", "error", err)
		return nil, err
	}

	if user.RefreshToken != refreshToken {
		l.Warn("refresh_rejected", "reason", "superseded token presented", "user_id", user.ID)
		return nil, ErrStaleRefreshToken
	}

	res, err := s.issueAndStore(ctx, user)
	if err != nil {
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, "tokens_refreshed", user)
	l.Info("tokens_refreshed", "user_id", user.ID)
	return res, nil
}

// Logout clears the stored refresh token for the token's subject. It is
// advisory and never returns a non-nil error: the access token stays
// valid until its short TTL runs out either way.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	claims, err := s.Codec.Verify(accessToken, tokens.DomainAccess)
	if err != nil {
		l.Warn("logout_token_unusable", "error", err)
		return nil
	}

	user, err := s.Store.FindByEmail(ctx, claims.Subject)
	if err != nil {
		l.Warn("logout_lookup_failed", "error", err)
		return nil
	}

	user.RefreshToken = ""
	if err := s.Store.Save(ctx, user); err != nil {
		l.Warn("logout_save_failed", "error", err)
		return nil
	}

	s.publish(ctx, "user_logged_out", user)
	l.Info("logout_successful", "user_id", user.ID)
	return nil
}

// CurrentUser resolves an access token to its identity record.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.Codec.Verify(accessToken, tokens.DomainAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.Store.FindByEmail(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateLocation overwrites the stored coordinates and sharing flag for
// the given (already authenticated) email.
func (s *AuthService) UpdateLocation(ctx context.Context, email string, loc LocationUpdate) (*models.User, error) {
	if len(loc.Coordinates) != 2 {
		return nil, ErrValidation
	}

	user, err := s.Store.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	applyLocation(user, &loc)
	if err := s.Store.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// issueAndStore mints a fresh access+refresh pair and persists the new
// refresh token on the record in a single Save. Overwriting the stored
// token is the rotation invariant: any earlier refresh token is dead
// from this point on.
func (s *AuthService) issueAndStore(ctx context.Context, user *models.User) (*AuthResult, error) {
	access, err := s.Codec.Issue(user.Email, user.Role, tokens.DomainAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.Issue(user.Email, user.Role, tokens.DomainRefresh)
	if err != nil {
		return nil, err
	}

	user.RefreshToken = refresh
	if err := s.Store.Save(ctx, user); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.Codec.TTL(tokens.DomainAccess),
	}, nil
}

func (s *AuthService) roleOrDefault(role string) string {
	if role = strings.TrimSpace(role); role != "" {
		return role
	}
	if s.DefaultRole != "" {
		return s.DefaultRole
	}
	return fallbackRole
}

func (s *AuthService) lockedOut(ctx context.Context, email string) bool {
	if s.Security == nil {
		return false
	}
	n, err := s.Security.CountRecentFailedLogins(ctx, email, time.Now().Add(-failedLoginWindow))
	if err != nil {
		logging.FromContext(ctx).Warn("security_log_count_failed", "error", err)
		return false
	}
	return n >= failedLoginLimit
}

func (s *AuthService) record(ctx context.Context, typ securitylog.EventType, email, details string) {
	if s.Security == nil {
		return
	}
	ev := securitylog.Event{
		Type:      typ,
		UserEmail: email,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := s.Security.Record(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("security_log_record_failed", "error", err)
	}
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) {
	if s.Events == nil {
		return
	}
	event := map[string]any{
		"type":    eventType,
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, user.ID, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "event", eventType, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func applyLocation(user *models.User, loc *LocationUpdate) {
	if loc == nil || len(loc.Coordinates) != 2 {
		return
	}
	sharing := true
	if loc.LocationSharing != nil {
		sharing = *loc.LocationSharing
	}
	now := time.Now()
	user.Location = models.Location{
		Longitude: loc.Coordinates[0],
		Latitude:  loc.Coordinates[1],
		Sharing:   sharing,
		UpdatedAt: &now,
	}
}
