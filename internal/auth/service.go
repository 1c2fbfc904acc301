// Package auth covers account registration, credential verification and JWT
// session management.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tasknest/internal/models"
	"tasknest/internal/storage/sqlite"
)

// ErrInvalidCredentials is returned on a failed sign-in. It does not say
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// TokenPair is the sign-in response body; the refresh token travels in a
// cookie instead.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Firstname string
	Lastname  string
	Username  string
	Email     string
	Password  string
}

// Service handles authentication against the user store.
type Service struct {
	store  *sqlite.Store
	hasher *PasswordHasher
	tokens *TokenManager
	google *GoogleOAuth
}

// NewService wires the auth service.
func NewService(store *sqlite.Store, hasher *PasswordHasher, tokens *TokenManager, google *GoogleOAuth) *Service {
	return &Service{store: store, hasher: hasher, tokens: tokens, google: google}
}

// Register creates a local account with a freshly assigned uuid.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Username:  in.Username,
		Email:     in.Email,
		Password:  hashed,
	}
	return s.store.CreateUser(ctx, user)
}

// Login verifies credentials and returns the account uuid.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sqlite.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(password, user.Password) {
		return "", ErrInvalidCredentials
	}
	return user.ID, nil
}

// IssueTokens creates the access/refresh pair for a signed-in user.
func (s *Service) IssueTokens(userID string) (TokenPair, string, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("issue refresh token: %w", err)
	}
	pair := TokenPair{
		AccessToken: access,
		ExpiresIn:   s.tokens.AccessTokenTTL(),
		TokenType:   "Bearer",
	}
	return pair, refresh, nil
}

// Refresh trades a valid refresh token for a new access token. The account
// must still exist.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return "", ErrInvalidToken
	}
	return s.tokens.IssueAccessToken(userID)
}

// GoogleAuthURL returns the consent-form URL.
func (s *Service) GoogleAuthURL(state string) string {
	return s.google.AuthURL(state)
}

// GoogleSignIn exchanges an authorization code and upserts the account keyed
// by the Google subject, returning the account uuid.
func (s *Service) GoogleSignIn(ctx context.Context, code string) (string, error) {
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	user := models.User{
		ID:         uuid.New().String(),
		Firstname:  profile.Firstname,
		Lastname:   profile.Lastname,
		Email:      profile.Email,
		GoogleSub:  profile.Sub,
		ProfilePic: profile.ProfilePic,
	}
	return s.store.UpsertGoogleUser(ctx, user)
}

// ResolveAccessToken maps a bearer access token to the owning user uuid.
func (s *Service) ResolveAccessToken(raw string) (string, error) {
	return s.tokens.VerifyAccessToken(raw)
}

// RefreshTTL reports how long refresh tokens stay valid, for cookie ages.
func (s *Service) RefreshTTL() time.Duration {
	return s.tokens.RefreshTokenTTL()
}
