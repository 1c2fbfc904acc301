package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknest/internal/images"
	"tasknest/internal/models"
)

type userUpdateRequest struct {
	Firstname *string `json:"firstname" binding:"omitempty,min=1,max=50"`
	Lastname  *string `json:"lastname" binding:"omitempty,min=1,max=50"`
	Username  *string `json:"username" binding:"omitempty,min=1,max=50"`
	Email     *string `json:"email" binding:"omitempty,email,max=100"`
}

// handleUserData returns the profile fields for the dashboard.
func (s *Server) handleUserData(c *gin.Context) {
	user, err := s.store.GetUserByID(c.Request.Context(), s.owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"user_data": gin.H{
			"firstname": user.Firstname,
			"lastname":  user.Lastname,
			"username":  user.Username,
			"email":     user.Email,
		},
	})
}

// handleUpdateUser applies a partial profile update. Absent fields stay
// untouched.
func (s *Server) handleUpdateUser(c *gin.Context) {
	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	patch := models.UserPatch{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
		Email:     req.Email,
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := s.store.UpdateUser(c.Request.Context(), s.owner(c), patch); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"update data": "success"})
}

// handleSetAvatar stores the uploaded avatar file and defers the profile row
// update to a background job, like the other image side effects.
func (s *Server) handleSetAvatar(c *gin.Context) {
	ownerID := s.owner(c)

	header, err := c.FormFile("profile_pic")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	defer file.Close()

	if err := s.images.SaveAvatar(ownerID, header.Header.Get("Content-Type"), file); err != nil {
		s.fail(c, err)
		return
	}

	url := images.AvatarURL(s.baseURL, ownerID)
	s.jobs.Submit("users.persist_avatar", func(ctx context.Context) error {
		return s.store.SetProfilePic(ctx, ownerID, url)
	})
	respondSuccess(c, http.StatusOK, gin.H{"profile_pic": url})
}

// handleGetAvatar returns the stored avatar URL.
func (s *Server) handleGetAvatar(c *gin.Context) {
	url, err := s.store.GetProfilePic(c.Request.Context(), s.owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"profile_pic": url})
}
