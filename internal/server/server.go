package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tasknest/internal/auth"
	"tasknest/internal/images"
	"tasknest/internal/jobs"
	"tasknest/internal/storage/sqlite"
	"tasknest/internal/tasks"
)

// ownerKey is the gin context key holding the authenticated user uuid.
const ownerKey = "owner"

// Server provides the HTTP handlers for the task backend.
type Server struct {
	engine  *gin.Engine
	store   *sqlite.Store
	auth    *auth.Service
	tasks   *tasks.Engine
	images  *images.Store
	jobs    *jobs.Runner
	logger  *slog.Logger
	baseURL string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, authSvc *auth.Service, engine *tasks.Engine, imgStore *images.Store, runner *jobs.Runner, logger *slog.Logger, baseURL string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))

	srv := &Server{
		engine:  router,
		store:   store,
		auth:    authSvc,
		tasks:   engine,
		images:  imgStore,
		jobs:    runner,
		logger:  logger,
		baseURL: baseURL,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the API and the uploads mount together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/sign_up", s.handleSignUp)
			authGroup.POST("/sign_in", s.handleSignIn)
			authGroup.GET("/refresh", s.handleRefresh)
			authGroup.GET("/google/redirect", s.handleGoogleRedirect)
			authGroup.POST("/google/callback", s.handleGoogleCallback)
		}

		users := api.Group("/users", s.requireAuth())
		{
			users.GET("/me", s.handleUserData)
			users.PATCH("/me", s.handleUpdateUser)
			users.PATCH("/avatar", s.handleSetAvatar)
			users.GET("/avatar", s.handleGetAvatar)
			users.DELETE("/logout", s.handleLogout)

			taskGroup := users.Group("/tasks")
			{
				taskGroup.POST("", s.handleCreateTask)
				taskGroup.GET("", s.handleListTasks)
				taskGroup.GET("/vital", s.handleListVitalTasks)
				taskGroup.GET("/search", s.handleSearchTasks)
				taskGroup.PATCH("/:id", s.handleEditTask)
				taskGroup.POST("/:id/start", s.handleStartTask)
				taskGroup.POST("/:id/complete", s.handleCompleteTask)
				taskGroup.DELETE("/:id", s.handleDeleteTask)
			}
		}
	}

	s.mountUploads()
}

// mountUploads serves the image files the sidecar writes.
func (s *Server) mountUploads() {
	s.engine.StaticFS("/uploads", gin.Dir(s.images.Root(), false))
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireAuth resolves the bearer access token to a user uuid and aborts with
// 401 on any failure.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		ownerID, err := s.auth.ResolveAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ownerKey, ownerID)
		c.Next()
	}
}

// owner returns the authenticated user uuid stored by requireAuth.
func (s *Server) owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload. Internal errors are
// not echoed back to the client.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	msg := "internal error"
	if status < http.StatusInternalServerError && err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sqlite.ErrTaskNotFound),
		errors.Is(err, sqlite.ErrUserNotFound),
		errors.Is(err, sqlite.ErrNoProfilePic):
		s.respondError(c, http.StatusNotFound, err)
	case errors.Is(err, sqlite.ErrUserExists):
		s.respondError(c, http.StatusConflict, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		s.respondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, images.ErrUnsupportedImage):
		s.respondError(c, http.StatusBadRequest, err)
	default:
		s.respondError(c, http.StatusInternalServerError, err)
	}
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
