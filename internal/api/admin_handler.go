package api

import (
	"errors"
	"fmt"
	"net/http"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler holds the admin service dependency.
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListPending returns the moderation queue.
// GET /api/admin/pending-papers
func (h *AdminHandler) ListPending(c *gin.Context) {
	papers, err := h.adminService.ListPending(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch pending papers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(papers),
		"data":    gin.H{"papers": papers},
	})
}

// ListAll returns every paper, optionally narrowed by ?status=.
// GET /api/admin/papers
func (h *AdminHandler) ListAll(c *gin.Context) {
	var status *domain.PaperStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.PaperStatus(raw)
		if !s.IsValid() {
			abortWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &s
	}

	papers, err := h.adminService.ListAll(c.Request.Context(), status)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch papers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(papers),
		"data":    gin.H{"papers": papers},
	})
}

// ApprovePaper moves a pending paper to approved.
// PUT /api/admin/papers/:id/approve
func (h *AdminHandler) ApprovePaper(c *gin.Context) {
	id, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := h.adminService.ApprovePaper(c.Request.Context(), id)
	if err != nil {
		h.abortModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Paper Approved Successfully",
		"data":    paper,
	})
}

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectPaper moves a pending paper to rejected.
// PUT /api/admin/papers/:id/reject
func (h *AdminHandler) RejectPaper(c *gin.Context) {
	id, ok := paperIDParam(c)
	if !ok {
		return
	}

	var req RejectRequest
	// Body is optional; a missing reason falls back to the placeholder.
	_ = c.ShouldBindJSON(&req)

	paper, err := h.adminService.RejectPaper(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.abortModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Paper Rejected",
		"data":    paper,
	})
}

// abortModerationError maps moderation failures onto HTTP statuses,
// reporting the actual current state on a conflict.
func (h *AdminHandler) abortModerationError(c *gin.Context, err error) {
	var conflict *service.StatusConflictError
	switch {
	case errors.Is(err, service.ErrPaperNotFound):
		abortWithError(c, http.StatusNotFound, "Paper Not Found")
	case errors.As(err, &conflict):
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Paper is actually %s", conflict.Current))
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to moderate paper")
	}
}

// DeletePaper removes a paper from both stores, reporting the partial
// outcome per store.
// DELETE /api/admin/papers/:id
func (h *AdminHandler) DeletePaper(c *gin.Context) {
	id, ok := paperIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.adminService.DeletePaper(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			abortWithError(c, http.StatusNotFound, "Paper Not Found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete paper")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Paper deletion completed",
		"details": outcome,
	})
}

// Stats aggregates moderation counts and recent activity.
// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch admin stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"stats": gin.H{
				"totalPapers":    stats.TotalPapers,
				"pendingPapers":  stats.PendingPapers,
				"approvedPapers": stats.ApprovedPapers,
				"rejectedPapers": stats.RejectedPapers,
				"totalUsers":     stats.TotalUsers,
			},
			"recentActivity": stats.RecentPapers,
		},
	})
}
