package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/repository"
	"pariksha/paper-share/internal/storage"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrValidationFailed = errors.New("all required fields must be provided")
	ErrPaperNotFound    = errors.New("paper not found")
	ErrFileMissing      = errors.New("no file uploaded")
	ErrFileURLMissing   = errors.New("file URL not found")
	ErrNotAuthorized    = errors.New("paper not available")
	ErrUploadFailed     = errors.New("failed to upload file to cloud storage")
)

// Listing caps: public read paths never scan unbounded.
const (
	listApprovedLimit = 50
	filterLimit       = 100
	recentPapersLimit = 5
)

// Requester identifies the caller of a read/download operation, as
// supplied by the authentication layer. The zero value is an anonymous,
// unprivileged caller.
type Requester struct {
	UserID     primitive.ObjectID
	Privileged bool
}

// SubmitPaperInput carries a new submission: the descriptive metadata
// plus the raw payload.
type SubmitPaperInput struct {
	Title    string
	Subject  string
	Class    string
	Semester string
	Year     string
	ExamType string
	Tags     []string

	File        io.Reader
	FileSize    int64
	ContentType string
}

// DownloadResult is what a successful download access yields: the
// retrieval locator plus the post-increment counter so callers can
// refresh cached views without re-querying.
type DownloadResult struct {
	FileURL       string `json:"fileUrl"`
	FileName      string `json:"fileName"`
	DownloadCount int    `json:"downloadCount"`
}

// FilterParams are the optional predicates of the faceted filter path.
type FilterParams struct {
	Search   string
	Subject  string
	Class    string
	Semester string
	ExamType string
	Year     string
	SortBy   string // "newest" (default), "popular", "title"
}

// FacetOptions holds the distinct filterable values across approved papers.
type FacetOptions struct {
	Subjects  []string `json:"subjects"`
	Classes   []string `json:"classes"`
	Semesters []string `json:"semesters"`
	ExamTypes []string `json:"examTypes"`
	Years     []string `json:"years"`
}

// DashboardStats summarizes a student's own submissions.
type DashboardStats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Approved       int `json:"approved"`
	Rejected       int `json:"rejected"`
	TotalDownloads int `json:"totalDownloads"`
}

// Dashboard is the owner-scoped view: every paper regardless of status.
type Dashboard struct {
	Stats  DashboardStats `json:"stats"`
	Papers []domain.Paper `json:"papers"`
}

// HomeStats are the public landing-page numbers.
type HomeStats struct {
	TotalPapers    int64 `json:"totalPapers"`
	TotalUsers     int64 `json:"totalUsers"`
	TotalDownloads int64 `json:"totalDownloads"`
}

// DeleteOutcome reports the dual-store deletion result. Metadata deletion
// is authoritative; the blob step is best effort and reported separately.
type DeleteOutcome struct {
	MetadataDeleted bool   `json:"metadataDeleted"`
	BlobDeleted     bool   `json:"blobDeleted"`
	BlobKey         string `json:"blobKey,omitempty"`
	BlobError       string `json:"blobError,omitempty"`
}

type PaperService interface {
	// Submission
	SubmitPaper(ctx context.Context, uploaderID primitive.ObjectID, in SubmitPaperInput) (*domain.Paper, error)

	// Public read paths
	ListApproved(ctx context.Context) ([]domain.Paper, error)
	GetApprovedByID(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error)
	FilterPapers(ctx context.Context, params FilterParams) ([]domain.Paper, error)
	FilterOptions(ctx context.Context) (*FacetOptions, error)
	HomeStats(ctx context.Context) (*HomeStats, error)

	// Download accounting
	DownloadPaper(ctx context.Context, id primitive.ObjectID, requester Requester) (*DownloadResult, error)

	// Owner paths
	MyDashboard(ctx context.Context, userID primitive.ObjectID, status *domain.PaperStatus) (*Dashboard, error)
	DeleteMyPaper(ctx context.Context, userID, paperID primitive.ObjectID) (*DeleteOutcome, error)
}

// paperService implements the PaperService interface.
type paperService struct {
	paperRepo   repository.PaperRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewPaperService creates a new instance of paperService.
func NewPaperService(
	paperRepo repository.PaperRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
) PaperService {
	return &paperService{
		paperRepo:   paperRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

// === Submission ===

// SubmitPaper runs the upload pipeline: derive the storage key, write the
// blob, then insert the metadata record with status pending. The blob
// write is ordered first so no record can ever reference a missing blob.
func (s *paperService) SubmitPaper(ctx context.Context, uploaderID primitive.ObjectID, in SubmitPaperInput) (*domain.Paper, error) {
	if uploaderID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	if in.Title == "" || in.Subject == "" || in.Class == "" || in.Semester == "" || in.Year == "" || in.ExamType == "" {
		return nil, ErrValidationFailed
	}
	if in.File == nil {
		return nil, ErrFileMissing
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	fileName := generatePaperKey(in.Title, time.Now())

	// Blob write failure aborts the whole submission; nothing persisted.
	fileURL, err := s.fileStorage.Upload(ctx, fileName, in.File, in.FileSize, contentType)
	if err != nil {
		return nil, ErrUploadFailed
	}

	paper := &domain.Paper{
		Title:      in.Title,
		Subject:    in.Subject,
		Class:      in.Class,
		Semester:   in.Semester,
		Year:       in.Year,
		ExamType:   in.ExamType,
		FileName:   fileName,
		FileURL:    fileURL,
		UploadedBy: uploaderID,
		Tags:       in.Tags,
		Status:     domain.StatusPending,
	}

	paperID, err := s.paperRepo.Create(ctx, paper)
	if err != nil {
		// The blob is already written; it stays behind as an orphan for
		// an out-of-band reconciliation pass, no synchronous rollback.
		log.Warn().
			Err(err).
			Str("key", fileName).
			Msg("metadata insert failed after blob write, orphan blob left behind")
		return nil, err
	}
	paper.ID = paperID

	// The counter is advisory; a failed bump never fails the submission.
	if err := s.userRepo.IncrementUploadCount(ctx, uploaderID); err != nil {
		log.Warn().Err(err).Str("userId", uploaderID.Hex()).Msg("failed to increment upload count")
	}

	return paper, nil
}

// === Public read paths ===

// ListApproved returns the newest approved papers.
func (s *paperService) ListApproved(ctx context.Context) ([]domain.Paper, error) {
	approved := domain.StatusApproved
	return s.paperRepo.Find(ctx, repository.PaperFilter{Status: &approved}, repository.SortNewest, listApprovedLimit)
}

// GetApprovedByID returns a single approved paper. Papers that exist but
// are not approved are reported as not found rather than forbidden, so
// unprivileged reads cannot probe the moderation queue.
func (s *paperService) GetApprovedByID(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error) {
	paper, err := s.paperRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}
	if paper.Status != domain.StatusApproved {
		return nil, ErrPaperNotFound
	}
	return paper, nil
}

// FilterPapers applies the faceted filter over approved papers.
func (s *paperService) FilterPapers(ctx context.Context, params FilterParams) ([]domain.Paper, error) {
	approved := domain.StatusApproved
	filter := repository.PaperFilter{
		Status:   &approved,
		Search:   params.Search,
		Subject:  params.Subject,
		Class:    params.Class,
		Semester: params.Semester,
		ExamType: params.ExamType,
		Year:     params.Year,
	}

	var sort repository.PaperSort
	switch params.SortBy {
	case "popular":
		sort = repository.SortPopular
	case "title":
		sort = repository.SortTitle
	default:
		sort = repository.SortNewest
	}

	return s.paperRepo.Find(ctx, filter, sort, filterLimit)
}

// FilterOptions returns the distinct values available for each facet
// across approved papers. Years are listed latest first.
func (s *paperService) FilterOptions(ctx context.Context) (*FacetOptions, error) {
	approved := domain.StatusApproved
	filter := repository.PaperFilter{Status: &approved}

	opts := &FacetOptions{}
	fields := []struct {
		name string
		dest *[]string
		desc bool
	}{
		{"subject", &opts.Subjects, false},
		{"class", &opts.Classes, false},
		{"semester", &opts.Semesters, false},
		{"examType", &opts.ExamTypes, false},
		{"year", &opts.Years, true},
	}

	for _, f := range fields {
		values, err := s.paperRepo.Distinct(ctx, f.name, filter)
		if err != nil {
			return nil, err
		}
		sortStrings(values, f.desc)
		*f.dest = values
	}

	return opts, nil
}

// HomeStats aggregates the public landing-page statistics.
func (s *paperService) HomeStats(ctx context.Context) (*HomeStats, error) {
	approved := domain.StatusApproved
	approvedFilter := repository.PaperFilter{Status: &approved}

	totalPapers, err := s.paperRepo.Count(ctx, approvedFilter)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalDownloads, err := s.paperRepo.SumDownloadCounts(ctx, approvedFilter)
	if err != nil {
		return nil, err
	}

	return &HomeStats{
		TotalPapers:    totalPapers,
		TotalUsers:     totalUsers,
		TotalDownloads: totalDownloads,
	}, nil
}

// === Download accounting ===

// DownloadPaper checks visibility and atomically bumps the download
// counter. Privileged requesters may download papers in any state.
func (s *paperService) DownloadPaper(ctx context.Context, id primitive.ObjectID, requester Requester) (*DownloadResult, error) {
	paper, err := s.paperRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}

	if !paper.IsVisibleTo(requester.Privileged) {
		return nil, ErrNotAuthorized
	}
	if paper.FileURL == "" {
		return nil, ErrFileURLMissing
	}

	// Fetch-and-increment inside the registry; lost updates under
	// concurrent downloads are impossible by construction.
	newCount, err := s.paperRepo.IncrementDownloadCount(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}

	return &DownloadResult{
		FileURL:       paper.FileURL,
		FileName:      paper.Title + ".pdf",
		DownloadCount: newCount,
	}, nil
}

// === Owner paths ===

// MyDashboard returns every paper owned by userID regardless of status,
// optionally narrowed to one status, with summary stats.
func (s *paperService) MyDashboard(ctx context.Context, userID primitive.ObjectID, status *domain.PaperStatus) (*Dashboard, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}

	filter := repository.PaperFilter{UploadedBy: &userID, Status: status}
	papers, err := s.paperRepo.Find(ctx, filter, repository.SortNewest, 0)
	if err != nil {
		return nil, err
	}

	stats := DashboardStats{Total: len(papers)}
	for _, p := range papers {
		switch p.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusApproved:
			stats.Approved++
		case domain.StatusRejected:
			stats.Rejected++
		}
		stats.TotalDownloads += p.DownloadCount
	}

	return &Dashboard{Stats: stats, Papers: papers}, nil
}

// DeleteMyPaper lets a student delete their own paper, unless it has
// already been approved. The actual deletion goes through the same
// dual-store orchestration as the admin path.
func (s *paperService) DeleteMyPaper(ctx context.Context, userID, paperID primitive.ObjectID) (*DeleteOutcome, error) {
	paper, err := s.paperRepo.GetByID(ctx, paperID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}

	// Ownership is reported as not-found so strangers cannot tell the
	// paper exists.
	if paper.UploadedBy != userID {
		return nil, ErrPaperNotFound
	}
	if paper.Status == domain.StatusApproved {
		return nil, ErrNotAuthorized
	}

	return deletePaperEverywhere(ctx, s.paperRepo, s.fileStorage, paper)
}

// deletePaperEverywhere is the deletion orchestrator shared by the admin
// and owner paths. Blob deletion is attempted first and its outcome
// recorded; metadata deletion then proceeds unconditionally, so the paper
// disappears from every listing even when the bytes cannot be reclaimed.
func deletePaperEverywhere(ctx context.Context, paperRepo repository.PaperRepository, fileStorage storage.FileStorage, paper *domain.Paper) (*DeleteOutcome, error) {
	outcome := &DeleteOutcome{}

	if paper.FileURL != "" {
		result := fileStorage.Delete(ctx, paper.FileURL)
		outcome.BlobDeleted = result.Deleted
		outcome.BlobKey = result.Key
		outcome.BlobError = result.Error
		if !result.Deleted {
			log.Warn().
				Str("paperId", paper.ID.Hex()).
				Str("fileUrl", paper.FileURL).
				Str("error", result.Error).
				Msg("blob deletion failed, metadata will be removed anyway")
		}
	}

	if err := paperRepo.Delete(ctx, paper.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}
	outcome.MetadataDeleted = true

	return outcome, nil
}

// sortStrings orders facet values ascending, or descending when desc is
// set (years list latest first).
func sortStrings(values []string, desc bool) {
	if desc {
		sort.Sort(sort.Reverse(sort.StringSlice(values)))
		return
	}
	sort.Strings(values)
}
