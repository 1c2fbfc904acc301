package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknest/internal/models"
)

type taskCreateRequest struct {
	Title       string `form:"title" binding:"required,max=300"`
	Description string `form:"description" binding:"required,max=1000"`
	Status      string `form:"status" binding:"required"`
	Priority    string `form:"priority" binding:"required"`
	Deadline    string `form:"deadline" binding:"required"`
}

// handleCreateTask inserts a new task, with an optional image part.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	status, err := models.ParseTaskStatus(req.Status)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	priority, err := models.ParseTaskPriority(req.Priority)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	deadline, err := models.ParseDate(req.Deadline)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	img, closeImg, ok := s.openTaskImage(c)
	if !ok {
		return
	}
	defer closeImg()

	id, err := s.tasks.Create(c.Request.Context(), s.owner(c), models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		Deadline:    deadline,
	}, img)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"id": id})
}

// handleListTasks returns the owner's archive followed by active tasks.
func (s *Server) handleListTasks(c *gin.Context) {
	views, err := s.tasks.List(c.Request.Context(), s.owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": views})
}

// handleListVitalTasks returns the owner's Extreme-priority active tasks.
func (s *Server) handleListVitalTasks(c *gin.Context) {
	views, err := s.tasks.ListVital(c.Request.Context(), s.owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": views})
}

// handleSearchTasks matches active task titles against the q parameter.
func (s *Server) handleSearchTasks(c *gin.Context) {
	views, err := s.tasks.Search(c.Request.Context(), s.owner(c), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": views})
}

// handleStartTask moves a task to In Progress.
func (s *Server) handleStartTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.tasks.Start(c.Request.Context(), s.owner(c), id); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "started"})
}

// handleEditTask applies a partial update built from the form fields that
// were actually sent; absent fields mean "no change".
func (s *Server) handleEditTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	patch, ok := s.buildTaskPatch(c)
	if !ok {
		return
	}

	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	img, closeImg, ok := s.openTaskImage(c)
	if !ok {
		return
	}
	defer closeImg()

	if err := s.tasks.Edit(c.Request.Context(), s.owner(c), id, patch, img); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task updated": "true"})
}

// handleCompleteTask archives a task, reporting any retention eviction.
func (s *Server) handleCompleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	evicted, evictedID, err := s.tasks.Complete(c.Request.Context(), s.owner(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	payload := gin.H{"completed": true, "evicted": evicted}
	if evicted {
		payload["evicted_task_id"] = evictedID
	}
	respondSuccess(c, http.StatusOK, payload)
}

// handleDeleteTask removes a task from whichever table holds it.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.tasks.Delete(c.Request.Context(), s.owner(c), id); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// buildTaskPatch assembles a TaskPatch from the multipart form fields that
// are present, validating enum and date values.
func (s *Server) buildTaskPatch(c *gin.Context) (models.TaskPatch, bool) {
	var patch models.TaskPatch

	if v, ok := c.GetPostForm("title"); ok {
		if v == "" || len(v) > 300 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title must be 1-300 characters"})
			return patch, false
		}
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		if len(v) > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "description must be at most 1000 characters"})
			return patch, false
		}
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		status, err := models.ParseTaskStatus(v)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return patch, false
		}
		patch.Status = &status
	}
	if v, ok := c.GetPostForm("priority"); ok {
		priority, err := models.ParseTaskPriority(v)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return patch, false
		}
		patch.Priority = &priority
	}
	if v, ok := c.GetPostForm("deadline"); ok {
		deadline, err := models.ParseDate(v)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return patch, false
		}
		patch.Deadline = &deadline
	}
	return patch, true
}

// openTaskImage opens the optional task_img multipart part. The returned
// closer is safe to call when no image was sent.
func (s *Server) openTaskImage(c *gin.Context) (io.Reader, func(), bool) {
	header, err := c.FormFile("task_img")
	if err != nil {
		// Absent part: fine, the image is optional.
		return nil, func() {}, true
	}
	file, err := header.Open()
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return nil, func() {}, false
	}
	return file, func() { _ = file.Close() }, true
}
