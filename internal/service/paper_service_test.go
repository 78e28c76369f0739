package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/repository"
	repomocks "pariksha/paper-share/internal/repository/mocks"
	"pariksha/paper-share/internal/storage"
	storagemocks "pariksha/paper-share/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validSubmitInput() SubmitPaperInput {
	return SubmitPaperInput{
		Title:       "Data Structures Final 2024",
		Subject:     "Computer Science",
		Class:       "BSc CS",
		Semester:    "4",
		Year:        "2024",
		ExamType:    "Final",
		Tags:        []string{"trees", "graphs"},
		File:        strings.NewReader("%PDF-1.4 fake"),
		FileSize:    13,
		ContentType: "application/pdf",
	}
}

func TestSubmitPaper_Success(t *testing.T) {
	paperRepo := new(repomocks.MockPaperRepository)
	userRepo := new(repomocks.MockUserRepository)
	fileStorage := new(storagemocks.MockFileStorage)
	svc := NewPaperService(paperRepo, userRepo, fileStorage)

	uploaderID := primitive.NewObjectID()
	paperID := primitive.NewObjectID()
	keyMatcher := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "data_structures_final_2024_") && strings.HasSuffix(key, ".pdf")
	})

	fileStorage.On("Upload", mock.Anything, keyMatcher, mock.Anything, int64(13), "application/pdf").
		Return("https://files.example.com/data_structures_final_2024_1700000000000.pdf", nil).Once()
	paperRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Paper) bool {
		return p.Status == domain.StatusPending && p.UploadedBy == uploaderID && p.FileURL != ""
	})).Return(paperID, nil).Once()
	userRepo.On("IncrementUploadCount", mock.Anything, uploaderID).Return(nil).Once()

	paper, err := svc.SubmitPaper(context.Background(), uploaderID, validSubmitInput())

	require.NoError(t, err)
	assert.Equal(t, paperID, paper.ID)
	assert.Equal(t, domain.StatusPending, paper.Status)
	assert.Zero(t, paper.DownloadCount)
	assert.Regexp(t, `^data_structures_final_2024_\d+\.pdf$`, paper.FileName)
	paperRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	fileStorage.AssertExpectations(t)
}

func TestSubmitPaper_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SubmitPaperInput)
		wantErr error
	}{
		{"missing title", func(in *SubmitPaperInput) { in.Title = "" }, ErrValidationFailed},
		{"missing subject", func(in *SubmitPaperInput) { in.Subject = "" }, ErrValidationFailed},
		{"missing class", func(in *SubmitPaperInput) { in.Class = "" }, ErrValidationFailed},
		{"missing semester", func(in *SubmitPaperInput) { in.Semester = "" }, ErrValidationFailed},
		{"missing year", func(in *SubmitPaperInput) { in.Year = "" }, ErrValidationFailed},
		{"missing exam type", func(in *SubmitPaperInput) { in.ExamType = "" }, ErrValidationFailed},
		{"missing file", func(in *SubmitPaperInput) { in.File = nil }, ErrFileMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paperRepo := new(repomocks.MockPaperRepository)
			userRepo := new(repomocks.MockUserRepository)
			fileStorage := new(storagemocks.MockFileStorage)
			svc := NewPaperService(paperRepo, userRepo, fileStorage)

			in := validSubmitInput()
			tt.mutate(&in)

			_, err := svc.SubmitPaper(context.Background(), primitive.NewObjectID(), in)

			assert.ErrorIs(t, err, tt.wantErr)
			fileStorage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			paperRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitPaper_UploadFailure(t *testing.T) {
	paperRepo := new(repomocks.MockPaperRepository)
	userRepo := new(repomocks.MockUserRepository)
	fileStorage := new(storagemocks.MockFileStorage)
	svc := NewPaperService(paperRepo, userRepo, fileStorage)

	fileStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("bucket unreachable")).Once()

	_, err := svc.SubmitPaper(context.Background(), primitive.NewObjectID(), validSubmitInput())

	assert.ErrorIs(t, err, ErrUploadFailed)
	paperRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "IncrementUploadCount", mock.Anything, mock.Anything)
}

func TestSubmitPaper_InsertFailureLeavesBlob(t *testing.T) {
	paperRepo := new(repomocks.MockPaperRepository)
	userRepo := new(repomocks.MockUserRepository)
	fileStorage := new(storagemocks.MockFileStorage)
	svc := NewPaperService(paperRepo, userRepo, fileStorage)

	insertErr := errors.New("write concern failed")
	fileStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://files.example.com/key.pdf", nil).Once()
	paperRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NilObjectID, insertErr).Once()

	_, err := svc.SubmitPaper(context.Background(), primitive.NewObjectID(), validSubmitInput())

	assert.ErrorIs(t, err, insertErr)
	// The blob stays behind; no compensating delete on the submission path.
	fileStorage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "IncrementUploadCount", mock.Anything, mock.Anything)
}

func TestSubmitPaper_UploadCountFailureIsNotFatal(t *testing.T) {
	paperRepo := new(repomocks.MockPaperRepository)
	userRepo := new(repomocks.MockUserRepository)
	fileStorage := new(storagemocks.MockFileStorage)
	svc := NewPaperService(paperRepo, userRepo, fileStorage)

	uploaderID := primitive.NewObjectID()
	fileStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://files.example.com/key.pdf", nil).Once()
	paperRepo.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil).Once()
	userRepo.On("IncrementUploadCount", mock.Anything, uploaderID).Return(errors.New("user gone")).Once()

	paper, err := svc.SubmitPaper(context.Background(), uploaderID, validSubmitInput())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, paper.Status)
}

func TestGetApprovedByID(t *testing.T) {
	paperID := primitive.NewObjectID()

	tests := []struct {
		name     string
		paper    *domain.Paper
		repoErr  error
		wantErr  error
		wantLoad bool
	}{
		{"approved paper returned", &domain.Paper{ID: paperID, Status: domain.StatusApproved}, nil, nil, true},
		{"pending paper hidden", &domain.Paper{ID: paperID, Status: domain.StatusPending}, nil, ErrPaperNotFound, false},
		{"rejected paper hidden", &domain.Paper{ID: paperID, Status: domain.StatusRejected}, nil, ErrPaperNotFound, false},
		{"missing paper", nil, repository.ErrNotFound, ErrPaperNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paperRepo := new(repomocks.MockPaperRepository)
			svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), new(storagemocks.MockFileStorage))

			paperRepo.On("GetByID", mock.Anything, paperID).Return(tt.paper, tt.repoErr).Once()

			paper, err := svc.GetApprovedByID(context.Background(), paperID)

			if tt.wantLoad {
				require.NoError(t, err)
				assert.Equal(t, paperID, paper.ID)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFilterPapers_BuildsFilterAndSort(t *testing.T) {
	tests := []struct {
		name     string
		sortBy   string
		wantSort repository.PaperSort
	}{
		{"default is newest", "", repository.SortNewest},
		{"popular", "popular", repository.SortPopular},
		{"title", "title", repository.SortTitle},
		{"unknown falls back to newest", "weird", repository.SortNewest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paperRepo := new(repomocks.MockPaperRepository)
			svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), new(storagemocks.MockFileStorage))

			filterMatcher := mock.MatchedBy(func(f repository.PaperFilter) bool {
				return f.Status != nil && *f.Status == domain.StatusApproved &&
					f.Subject == "Maths" && f.Year == "2023" && f.Search == "calculus"
			})
			paperRepo.On("Find", mock.Anything, filterMatcher, tt.wantSort, int64(filterLimit)).
				Return([]domain.Paper{}, nil).Once()

			_, err := svc.FilterPapers(context.Background(), FilterParams{
				Search:  "calculus",
				Subject: "Maths",
				Year:    "2023",
				SortBy:  tt.sortBy,
			})

			require.NoError(t, err)
			paperRepo.AssertExpectations(t)
		})
	}
}

func TestFilterOptions_YearsDescending(t *testing.T) {
	paperRepo := new(repomocks.MockPaperRepository)
	svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), new(storagemocks.MockFileStorage))

	paperRepo.On("Distinct", mock.Anything, "subject", mock.Anything).Return([]string{"Physics", "Maths"}, nil).Once()
	paperRepo.On("Distinct", mock.Anything, "class", mock.Anything).Return([]string{"BSc"}, nil).Once()
	paperRepo.On("Distinct", mock.Anything, "semester", mock.Anything).Return([]string{"4", "2"}, nil).Once()
	paperRepo.On("Distinct", mock.Anything, "examType", mock.Anything).Return([]string{"Final", "Midterm"}, nil).Once()
	paperRepo.On("Distinct", mock.Anything, "year", mock.Anything).Return([]string{"2022", "2024", "2023"}, nil).Once()

	opts, err := svc.FilterOptions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Maths", "Physics"}, opts.Subjects)
	assert.Equal(t, []string{"2", "4"}, opts.Semesters)
	assert.Equal(t, []string{"2024", "2023", "2022"}, opts.Years)
}

func TestHomeStats(t *testing.T) {
	paperRepo := new(repomocks.MockPaperRepository)
	userRepo := new(repomocks.MockUserRepository)
	svc := NewPaperService(paperRepo, userRepo, new(storagemocks.MockFileStorage))

	paperRepo.On("Count", mock.Anything, mock.Anything).Return(int64(42), nil).Once()
	userRepo.On("Count", mock.Anything).Return(int64(7), nil).Once()
	paperRepo.On("SumDownloadCounts", mock.Anything, mock.Anything).Return(int64(1234), nil).Once()

	stats, err := svc.HomeStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalPapers)
	assert.Equal(t, int64(7), stats.TotalUsers)
	assert.Equal(t, int64(1234), stats.TotalDownloads)
}

func TestDownloadPaper(t *testing.T) {
	paperID := primitive.NewObjectID()
	approved := &domain.Paper{ID: paperID, Title: "Algorithms Midterm", Status: domain.StatusApproved, FileURL: "https://files.example.com/a.pdf"}
	pending := &domain.Paper{ID: paperID, Title: "Algorithms Midterm", Status: domain.StatusPending, FileURL: "https://files.example.com/a.pdf"}
	noURL := &domain.Paper{ID: paperID, Title: "Algorithms Midterm", Status: domain.StatusApproved}

	tests := []struct {
		name          string
		paper         *domain.Paper
		repoErr       error
		requester     Requester
		wantErr       error
		wantIncrement bool
	}{
		{"anonymous downloads approved", approved, nil, Requester{}, nil, true},
		{"anonymous denied pending", pending, nil, Requester{}, ErrNotAuthorized, false},
		{"privileged downloads pending", pending, nil, Requester{Privileged: true}, nil, true},
		{"missing file url", noURL, nil, Requester{}, ErrFileURLMissing, false},
		{"missing paper", nil, repository.ErrNotFound, Requester{}, ErrPaperNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paperRepo := new(repomocks.MockPaperRepository)
			svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), new(storagemocks.MockFileStorage))

			paperRepo.On("GetByID", mock.Anything, paperID).Return(tt.paper, tt.repoErr).Once()
			if tt.wantIncrement {
				paperRepo.On("IncrementDownloadCount", mock.Anything, paperID).Return(6, nil).Once()
			}

			result, err := svc.DownloadPaper(context.Background(), paperID, tt.requester)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				paperRepo.AssertNotCalled(t, "IncrementDownloadCount", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.paper.FileURL, result.FileURL)
			assert.Equal(t, "Algorithms Midterm.pdf", result.FileName)
			assert.Equal(t, 6, result.DownloadCount)
		})
	}
}

// countingPaperRepo backs the download counter with an atomic integer so
// concurrent downloads can be exercised without a real registry.
type countingPaperRepo struct {
	repomocks.MockPaperRepository
	paper *domain.Paper
	count int64
}

func (r *countingPaperRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error) {
	return r.paper, nil
}

func (r *countingPaperRepo) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (int, error) {
	return int(atomic.AddInt64(&r.count, 1)), nil
}

func TestDownloadPaper_ConcurrentDownloadsAllCounted(t *testing.T) {
	const downloads = 50

	paperID := primitive.NewObjectID()
	paperRepo := &countingPaperRepo{
		paper: &domain.Paper{ID: paperID, Title: "OS Final", Status: domain.StatusApproved, FileURL: "https://files.example.com/os.pdf"},
	}
	svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), new(storagemocks.MockFileStorage))

	var wg sync.WaitGroup
	errs := make(chan error, downloads)
	for i := 0; i < downloads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DownloadPaper(context.Background(), paperID, Requester{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(downloads), atomic.LoadInt64(&paperRepo.count))
}

func TestMyDashboard(t *testing.T) {
	userID := primitive.NewObjectID()
	paperRepo := new(repomocks.MockPaperRepository)
	svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), new(storagemocks.MockFileStorage))

	papers := []domain.Paper{
		{Status: domain.StatusApproved, DownloadCount: 10},
		{Status: domain.StatusApproved, DownloadCount: 3},
		{Status: domain.StatusPending},
		{Status: domain.StatusRejected},
	}
	paperRepo.On("Find", mock.Anything, mock.MatchedBy(func(f repository.PaperFilter) bool {
		return f.UploadedBy != nil && *f.UploadedBy == userID && f.Status == nil
	}), repository.SortNewest, int64(0)).Return(papers, nil).Once()

	dash, err := svc.MyDashboard(context.Background(), userID, nil)

	require.NoError(t, err)
	assert.Equal(t, 4, dash.Stats.Total)
	assert.Equal(t, 2, dash.Stats.Approved)
	assert.Equal(t, 1, dash.Stats.Pending)
	assert.Equal(t, 1, dash.Stats.Rejected)
	assert.Equal(t, 13, dash.Stats.TotalDownloads)
	assert.Len(t, dash.Papers, 4)
}

func TestDeleteMyPaper(t *testing.T) {
	ownerID := primitive.NewObjectID()
	paperID := primitive.NewObjectID()

	tests := []struct {
		name    string
		paper   *domain.Paper
		repoErr error
		caller  primitive.ObjectID
		wantErr error
	}{
		{"stranger sees not found", &domain.Paper{ID: paperID, UploadedBy: ownerID, Status: domain.StatusPending}, nil, primitive.NewObjectID(), ErrPaperNotFound},
		{"approved paper protected", &domain.Paper{ID: paperID, UploadedBy: ownerID, Status: domain.StatusApproved}, nil, ownerID, ErrNotAuthorized},
		{"missing paper", nil, repository.ErrNotFound, ownerID, ErrPaperNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paperRepo := new(repomocks.MockPaperRepository)
			fileStorage := new(storagemocks.MockFileStorage)
			svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), fileStorage)

			paperRepo.On("GetByID", mock.Anything, paperID).Return(tt.paper, tt.repoErr).Once()

			_, err := svc.DeleteMyPaper(context.Background(), tt.caller, paperID)

			assert.ErrorIs(t, err, tt.wantErr)
			paperRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			fileStorage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestDeleteMyPaper_BlobFailureStillRemovesMetadata(t *testing.T) {
	ownerID := primitive.NewObjectID()
	paperID := primitive.NewObjectID()
	paper := &domain.Paper{ID: paperID, UploadedBy: ownerID, Status: domain.StatusRejected, FileURL: "https://files.example.com/key.pdf"}

	paperRepo := new(repomocks.MockPaperRepository)
	fileStorage := new(storagemocks.MockFileStorage)
	svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), fileStorage)

	paperRepo.On("GetByID", mock.Anything, paperID).Return(paper, nil).Once()
	fileStorage.On("Delete", mock.Anything, paper.FileURL).
		Return(storage.DeleteResult{Deleted: false, Key: "key.pdf", Error: "access denied"}).Once()
	paperRepo.On("Delete", mock.Anything, paperID).Return(nil).Once()

	outcome, err := svc.DeleteMyPaper(context.Background(), ownerID, paperID)

	require.NoError(t, err)
	assert.True(t, outcome.MetadataDeleted)
	assert.False(t, outcome.BlobDeleted)
	assert.Equal(t, "key.pdf", outcome.BlobKey)
	assert.Equal(t, "access denied", outcome.BlobError)
	paperRepo.AssertExpectations(t)
	fileStorage.AssertExpectations(t)
}

func TestDeleteMyPaper_FullSuccess(t *testing.T) {
	ownerID := primitive.NewObjectID()
	paperID := primitive.NewObjectID()
	paper := &domain.Paper{ID: paperID, UploadedBy: ownerID, Status: domain.StatusPending, FileURL: "https://files.example.com/key.pdf"}

	paperRepo := new(repomocks.MockPaperRepository)
	fileStorage := new(storagemocks.MockFileStorage)
	svc := NewPaperService(paperRepo, new(repomocks.MockUserRepository), fileStorage)

	paperRepo.On("GetByID", mock.Anything, paperID).Return(paper, nil).Once()
	fileStorage.On("Delete", mock.Anything, paper.FileURL).
		Return(storage.DeleteResult{Deleted: true, Key: "key.pdf"}).Once()
	paperRepo.On("Delete", mock.Anything, paperID).Return(nil).Once()

	outcome, err := svc.DeleteMyPaper(context.Background(), ownerID, paperID)

	require.NoError(t, err)
	assert.True(t, outcome.MetadataDeleted)
	assert.True(t, outcome.BlobDeleted)
}
