package api

import (
	"errors"
	"net/http"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the student's own-paper views.
type UserHandler struct {
	paperService service.PaperService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(paperService service.PaperService) *UserHandler {
	return &UserHandler{paperService: paperService}
}

// MyDashboard returns all of the caller's papers regardless of status,
// optionally narrowed by ?status=, plus summary stats.
// GET /api/users/dashboard
func (h *UserHandler) MyDashboard(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	var status *domain.PaperStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.PaperStatus(raw)
		if !s.IsValid() {
			abortWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &s
	}

	dashboard, err := h.paperService.MyDashboard(c.Request.Context(), userID, status)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dashboard})
}

// DeleteMyPaper removes one of the caller's own papers. Approved papers
// cannot be deleted by students.
// DELETE /api/users/papers/:id
func (h *UserHandler) DeleteMyPaper(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}
	paperID, ok := paperIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.paperService.DeleteMyPaper(c.Request.Context(), userID, paperID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			abortWithError(c, http.StatusNotFound, "Paper Not Found")
		case errors.Is(err, service.ErrNotAuthorized):
			abortWithError(c, http.StatusForbidden, "Approved papers cannot be deleted by students")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete paper")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Paper Deleted Successfully",
		"details": outcome,
	})
}
