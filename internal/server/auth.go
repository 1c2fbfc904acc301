package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknest/internal/auth"
)

const refreshCookieName = "refresh_token"

type signUpRequest struct {
	Firstname string `json:"firstname" binding:"required,max=50"`
	Lastname  string `json:"lastname" binding:"required,max=50"`
	Username  string `json:"username" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=8,max=50"`
}

type signInRequest struct {
	Agree    bool   `json:"agree"`
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=50"`
}

type googleCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// handleSignUp registers a local account.
func (s *Server) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	err := s.auth.Register(c.Request.Context(), auth.RegisterInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"success": "user has been added"})
}

// handleSignIn verifies credentials, sets the refresh cookie and returns the
// access token.
func (s *Server) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	userID, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.issueSession(c, userID, req.Agree)
}

// handleRefresh trades the refresh cookie for a new access token.
func (s *Server) handleRefresh(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookieName)
	if err != nil || refresh == "" {
		s.respondError(c, http.StatusUnauthorized, auth.ErrInvalidToken)
		return
	}

	access, err := s.auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"access_token": access})
}

// handleGoogleRedirect returns the Google consent-form URL.
func (s *Server) handleGoogleRedirect(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"url": s.auth.GoogleAuthURL(c.Query("state"))})
}

// handleGoogleCallback exchanges the authorization code and signs the user
// in, creating the account on first contact.
func (s *Server) handleGoogleCallback(c *gin.Context) {
	var req googleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	userID, err := s.auth.GoogleSignIn(c.Request.Context(), req.Code)
	if err != nil {
		s.respondError(c, http.StatusUnauthorized, err)
		return
	}

	s.issueSession(c, userID, true)
}

// handleLogout clears the refresh cookie.
func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/", "", false, true)
	respondSuccess(c, http.StatusOK, gin.H{"status": "logged_out"})
}

// issueSession writes the refresh cookie and responds with the token pair.
// The cookie outlives the browser session only when the client asked to be
// remembered.
func (s *Server) issueSession(c *gin.Context, userID string, remember bool) {
	pair, refresh, err := s.auth.IssueTokens(userID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	maxAge := 0
	if remember {
		maxAge = int(s.auth.RefreshTTL().Seconds())
	}
	c.SetCookie(refreshCookieName, refresh, maxAge, "/", "", false, true)
	respondSuccess(c, http.StatusOK, pair)
}
