package repository

import (
	"context"

	"pariksha/paper-share/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound       = RepositoryError("not found")
	ErrDuplicate      = RepositoryError("duplicate record")
	ErrStatusMismatch = RepositoryError("status precondition not met")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PaperSort selects the ordering of a paper listing.
type PaperSort string

const (
	SortNewest  PaperSort = "newest"  // createdAt descending (default)
	SortPopular PaperSort = "popular" // downloadCount descending, createdAt tiebreak
	SortTitle   PaperSort = "title"   // title ascending
)

// PaperFilter describes the predicates a paper query may combine.
// Zero values mean "no constraint". Subject and Class are matched as
// case-insensitive substrings; Semester, ExamType and Year exactly.
// Search matches title OR subject OR any tag, case-insensitively.
type PaperFilter struct {
	Status     *domain.PaperStatus
	UploadedBy *primitive.ObjectID
	Subject    string
	Class      string
	Semester   string
	ExamType   string
	Year       string
	Search     string
}

// PaperRepository defines the interface for interacting with paper metadata.
type PaperRepository interface {
	Create(ctx context.Context, paper *domain.Paper) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error)

	// Find returns papers matching filter in the given order. A limit of
	// 0 means no cap; callers serving public traffic must pass one.
	Find(ctx context.Context, filter PaperFilter, sort PaperSort, limit int64) ([]domain.Paper, error)

	// UpdateStatus performs the moderation transition as a single
	// conditional update: the write only happens while the stored status
	// still equals expected. ErrStatusMismatch is returned when no
	// document matched, which covers both "not found" and "already
	// moderated"; callers disambiguate with GetByID.
	// reason is stored as the rejection reason when non-nil, and the
	// field is cleared when nil.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, expected, next domain.PaperStatus, reason *string) (*domain.Paper, error)

	// IncrementDownloadCount atomically adds 1 to the paper's download
	// counter and returns the post-increment value.
	IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (int, error)

	Delete(ctx context.Context, id primitive.ObjectID) error

	// Distinct returns the distinct values of a metadata field across
	// papers matching filter.
	Distinct(ctx context.Context, field string, filter PaperFilter) ([]string, error)

	Count(ctx context.Context, filter PaperFilter) (int64, error)

	// SumDownloadCounts totals downloadCount across papers matching filter.
	SumDownloadCounts(ctx context.Context, filter PaperFilter) (int64, error)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (*domain.User, error)

	// IncrementUploadCount adds 1 to the user's upload counter.
	IncrementUploadCount(ctx context.Context, id primitive.ObjectID) error

	Count(ctx context.Context) (int64, error)
}
