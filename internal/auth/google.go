package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoIDToken is returned when the token exchange response carries no
// id_token.
var ErrNoIDToken = errors.New("google response missing id_token")

// GoogleProfile is the subset of id_token claims the backend keeps.
type GoogleProfile struct {
	Sub        string
	Email      string
	Firstname  string
	Lastname   string
	ProfilePic string
}

// GoogleOAuth drives the Google authorization-code flow.
type GoogleOAuth struct {
	cfg *oauth2.Config
}

// NewGoogleOAuth configures the Google endpoint with the app credentials.
func NewGoogleOAuth(clientID, clientSecret, redirectURI string) *GoogleOAuth {
	return &GoogleOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL builds the consent-form URL the frontend redirects to.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and extracts the identity
// claims from the id_token. The signature is not verified: the token arrives
// over TLS directly from Google's token endpoint.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return GoogleProfile{}, ErrNoIDToken
	}
	return parseIDToken(idToken)
}

func parseIDToken(idToken string) (GoogleProfile, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return GoogleProfile{}, fmt.Errorf("parse id_token: %w", err)
	}

	profile := GoogleProfile{
		Sub:        stringClaim(claims, "sub"),
		Email:      stringClaim(claims, "email"),
		Firstname:  stringClaim(claims, "given_name"),
		Lastname:   stringClaim(claims, "family_name"),
		ProfilePic: stringClaim(claims, "picture"),
	}
	if profile.Sub == "" {
		return GoogleProfile{}, fmt.Errorf("id_token missing sub claim")
	}
	return profile, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
