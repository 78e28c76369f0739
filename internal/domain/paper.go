package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaperStatus is the moderation state of a paper.
type PaperStatus string

const (
	StatusPending  PaperStatus = "pending"
	StatusApproved PaperStatus = "approved"
	StatusRejected PaperStatus = "rejected"
)

// IsValid reports whether s is one of the known moderation states.
func (s PaperStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether a paper in state s can still be moderated.
// There is no path back to pending once a decision has been made.
func (s PaperStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Paper represents a submitted exam paper plus its descriptive metadata
// and moderation status. The binary itself lives in object storage under
// FileName; FileURL is the public locator and is set iff a blob exists.
type Paper struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Subject  string             `bson:"subject" json:"subject"`
	Class    string             `bson:"class" json:"class"`
	Semester string             `bson:"semester" json:"semester"`
	Year     string             `bson:"year" json:"year"`
	ExamType string             `bson:"examType" json:"examType"`

	FileName string `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileURL  string `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`

	UploadedBy primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	Tags       []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	Status          PaperStatus `bson:"status" json:"status"`
	RejectionReason string      `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`

	// DownloadCount is mutated only through the registry's atomic
	// increment; it is never written read-modify-write from Go code.
	DownloadCount int `bson:"downloadCount" json:"downloadCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsVisibleTo reports whether the paper can be served to a caller.
// Unprivileged callers only ever see approved papers.
func (p *Paper) IsVisibleTo(privileged bool) bool {
	return p.Status == StatusApproved || privileged
}
