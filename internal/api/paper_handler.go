package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pariksha/paper-share/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaperHandler holds the paper service dependency.
type PaperHandler struct {
	paperService service.PaperService
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(paperService service.PaperService) *PaperHandler {
	return &PaperHandler{paperService: paperService}
}

// ListApproved returns the newest approved papers.
// GET /api/papers
func (h *PaperHandler) ListApproved(c *gin.Context) {
	papers, err := h.paperService.ListApproved(c.Request.Context())
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

// GetPaperByID returns a single approved paper.
// GET /api/papers/:id
func (h *PaperHandler) GetPaperByID(c *gin.Context) {
	id, ok := paperIDParam(c)
	if !ok {
		return
	}

	paper, err := h.paperService.GetApprovedByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			abortWithError(c, http.StatusNotFound, "Paper Not Found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch paper")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": paper})
}

// DownloadPaper checks visibility, bumps the download counter and hands
// back the file locator. Runs behind optional auth so admins can fetch
// papers in any state.
// POST /api/papers/:id/download
func (h *PaperHandler) DownloadPaper(c *gin.Context) {
	id, ok := paperIDParam(c)
	if !ok {
		return
	}

	requester := service.Requester{Privileged: requesterIsPrivileged(c)}
	if idStr, err := getUserIDFromContext(c); err == nil {
		if uid, err := primitive.ObjectIDFromHex(idStr); err == nil {
			requester.UserID = uid
		}
	}

	result, err := h.paperService.DownloadPaper(c.Request.Context(), id, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			abortWithError(c, http.StatusNotFound, "Paper not found")
		case errors.Is(err, service.ErrFileURLMissing):
			abortWithError(c, http.StatusNotFound, "File URL not found")
		case errors.Is(err, service.ErrNotAuthorized):
			abortWithError(c, http.StatusForbidden, "Paper not available for download")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to process download")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Download URL generated",
		"data":    result,
	})
}

// FilterPapers applies the faceted filter over approved papers.
// GET /api/papers/filters
func (h *PaperHandler) FilterPapers(c *gin.Context) {
	params := service.FilterParams{
		Search:   strings.TrimSpace(c.Query("search")),
		Subject:  strings.TrimSpace(c.Query("subject")),
		Class:    strings.TrimSpace(c.Query("class")),
		Semester: strings.TrimSpace(c.Query("semester")),
		ExamType: strings.TrimSpace(c.Query("examType")),
		Year:     strings.TrimSpace(c.Query("year")),
		SortBy:   c.Query("sortBy"),
	}

	papers, err := h.paperService.FilterPapers(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch papers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"papers": papers, "total": len(papers)},
	})
}

// FilterOptions returns the distinct values available per facet.
// GET /api/papers/filter-options
func (h *PaperHandler) FilterOptions(c *gin.Context) {
	opts, err := h.paperService.FilterOptions(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch filter options")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": opts})
}

// HomeStats serves the public landing-page statistics.
// GET /api/home/stats
func (h *PaperHandler) HomeStats(c *gin.Context) {
	stats, err := h.paperService.HomeStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// UploadPaper accepts a multipart submission: the PDF plus descriptive
// metadata. The created paper starts out pending moderation.
// POST /api/papers/upload
func (h *PaperHandler) UploadPaper(c *gin.Context) {
	uploaderID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	in := service.SubmitPaperInput{
		Title:       c.PostForm("title"),
		Subject:     c.PostForm("subject"),
		Class:       c.PostForm("class"),
		Semester:    c.PostForm("semester"),
		Year:        c.PostForm("year"),
		ExamType:    c.PostForm("examType"),
		Tags:        parseTags(c.PostForm("tags")),
		File:        file,
		FileSize:    fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}

	paper, err := h.paperService.SubmitPaper(c.Request.Context(), uploaderID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed), errors.Is(err, service.ErrFileMissing):
			abortWithError(c, http.StatusBadRequest, "Please provide all the required fields")
		case errors.Is(err, service.ErrUploadFailed):
			abortWithError(c, http.StatusInternalServerError, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to submit paper")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Upload Successful! Waiting For Approval",
		"data":    gin.H{"paper": paper},
	})
}

// parseTags accepts either a JSON array string or a comma-separated list.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return tags
	}

	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// paperIDParam parses and validates the :id path parameter.
func paperIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid paper ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// userIDFromToken extracts the authenticated caller's ObjectID.
func userIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token")
		return primitive.NilObjectID, false
	}
	return id, true
}
