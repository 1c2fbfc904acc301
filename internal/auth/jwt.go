package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

const (
	accessTokenTTL  = 10 * time.Minute
	refreshTokenTTL = 20 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims carries the user uuid and the token kind.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access and refresh tokens.
type TokenManager struct {
	secret []byte
	issuer string
}

// NewTokenManager creates a TokenManager signing with the given secret.
func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer}
}

// AccessTokenTTL reports the access token lifetime in seconds.
func (m *TokenManager) AccessTokenTTL() int64 {
	return int64(accessTokenTTL.Seconds())
}

// RefreshTokenTTL reports the refresh token lifetime.
func (m *TokenManager) RefreshTokenTTL() time.Duration {
	return refreshTokenTTL
}

// IssueAccessToken creates a short-lived access token for a user uuid.
func (m *TokenManager) IssueAccessToken(userID string) (string, error) {
	return m.issue(userID, tokenTypeAccess, accessTokenTTL)
}

// IssueRefreshToken creates a long-lived refresh token for a user uuid.
func (m *TokenManager) IssueRefreshToken(userID string) (string, error) {
	return m.issue(userID, tokenTypeRefresh, refreshTokenTTL)
}

func (m *TokenManager) issue(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyAccessToken resolves an access token to the user uuid it was issued
// for.
func (m *TokenManager) VerifyAccessToken(raw string) (string, error) {
	return m.verify(raw, tokenTypeAccess)
}

// VerifyRefreshToken resolves a refresh token to the user uuid.
func (m *TokenManager) VerifyRefreshToken(raw string) (string, error) {
	return m.verify(raw, tokenTypeRefresh)
}

func (m *TokenManager) verify(raw, wantType string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != wantType || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
