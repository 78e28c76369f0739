package service

import (
	"context"
	"errors"
	"fmt"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/repository"
	"pariksha/paper-share/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultRejectionReason = "No Reason Provided"

// StatusConflictError reports a moderation transition attempted on a
// paper that is no longer pending. Current carries the actual state so
// callers can say what the paper really is.
type StatusConflictError struct {
	Current domain.PaperStatus
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("paper is already %s", e.Current)
}

// AdminStats aggregates moderation counts for the admin dashboard.
type AdminStats struct {
	TotalPapers    int64          `json:"totalPapers"`
	PendingPapers  int64          `json:"pendingPapers"`
	ApprovedPapers int64          `json:"approvedPapers"`
	RejectedPapers int64          `json:"rejectedPapers"`
	TotalUsers     int64          `json:"totalUsers"`
	RecentPapers   []domain.Paper `json:"recentPapers"`
}

type AdminService interface {
	// Moderation queue
	ListPending(ctx context.Context) ([]domain.Paper, error)
	ListAll(ctx context.Context, status *domain.PaperStatus) ([]domain.Paper, error)

	// State machine: pending -> approved | rejected, both terminal.
	ApprovePaper(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error)
	RejectPaper(ctx context.Context, id primitive.ObjectID, reason string) (*domain.Paper, error)

	DeletePaper(ctx context.Context, id primitive.ObjectID) (*DeleteOutcome, error)
	Stats(ctx context.Context) (*AdminStats, error)
}

// adminService implements the AdminService interface.
type adminService struct {
	paperRepo   repository.PaperRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewAdminService creates a new instance of adminService.
func NewAdminService(
	paperRepo repository.PaperRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
) AdminService {
	return &adminService{
		paperRepo:   paperRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

// ListPending returns the moderation queue, newest first.
func (s *adminService) ListPending(ctx context.Context) ([]domain.Paper, error) {
	pending := domain.StatusPending
	return s.paperRepo.Find(ctx, repository.PaperFilter{Status: &pending}, repository.SortNewest, 0)
}

// ListAll returns every paper, optionally narrowed to one status.
func (s *adminService) ListAll(ctx context.Context, status *domain.PaperStatus) ([]domain.Paper, error) {
	return s.paperRepo.Find(ctx, repository.PaperFilter{Status: status}, repository.SortNewest, 0)
}

// ApprovePaper moves a pending paper to approved and clears any earlier
// rejection reason. The transition is a conditional update in the
// registry; losing the race reports the state that actually won.
func (s *adminService) ApprovePaper(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error) {
	paper, err := s.paperRepo.UpdateStatus(ctx, id, domain.StatusPending, domain.StatusApproved, nil)
	if err != nil {
		return nil, s.resolveTransitionError(ctx, id, err)
	}
	return paper, nil
}

// RejectPaper moves a pending paper to rejected, recording the supplied
// reason or a placeholder when none is given.
func (s *adminService) RejectPaper(ctx context.Context, id primitive.ObjectID, reason string) (*domain.Paper, error) {
	if reason == "" {
		reason = defaultRejectionReason
	}
	paper, err := s.paperRepo.UpdateStatus(ctx, id, domain.StatusPending, domain.StatusRejected, &reason)
	if err != nil {
		return nil, s.resolveTransitionError(ctx, id, err)
	}
	return paper, nil
}

// resolveTransitionError turns a failed conditional transition into either
// a not-found or a conflict carrying the paper's actual current status.
func (s *adminService) resolveTransitionError(ctx context.Context, id primitive.ObjectID, err error) error {
	if !errors.Is(err, repository.ErrStatusMismatch) {
		return err
	}

	paper, getErr := s.paperRepo.GetByID(ctx, id)
	if getErr != nil {
		if errors.Is(getErr, repository.ErrNotFound) {
			return ErrPaperNotFound
		}
		return getErr
	}
	return &StatusConflictError{Current: paper.Status}
}

// DeletePaper removes a paper from both stores via the shared orchestrator.
func (s *adminService) DeletePaper(ctx context.Context, id primitive.ObjectID) (*DeleteOutcome, error) {
	paper, err := s.paperRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}

	return deletePaperEverywhere(ctx, s.paperRepo, s.fileStorage, paper)
}

// Stats aggregates per-status counts, the user total and the five most
// recent submissions.
func (s *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}

	counts := []struct {
		status *domain.PaperStatus
		dest   *int64
	}{
		{nil, &stats.TotalPapers},
		{statusPtr(domain.StatusPending), &stats.PendingPapers},
		{statusPtr(domain.StatusApproved), &stats.ApprovedPapers},
		{statusPtr(domain.StatusRejected), &stats.RejectedPapers},
	}
	for _, c := range counts {
		n, err := s.paperRepo.Count(ctx, repository.PaperFilter{Status: c.status})
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}

	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = totalUsers

	recent, err := s.paperRepo.Find(ctx, repository.PaperFilter{}, repository.SortNewest, recentPapersLimit)
	if err != nil {
		return nil, err
	}
	stats.RecentPapers = recent

	return stats, nil
}

func statusPtr(s domain.PaperStatus) *domain.PaperStatus {
	return &s
}
