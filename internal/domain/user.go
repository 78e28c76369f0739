package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User represents a registered member of the institution (a student or an admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`           // Should be unique
	RollNumber   string             `bson:"rollNumber" json:"rollNumber"` // Unique, used as the login credential
	Class        string             `bson:"class,omitempty" json:"class,omitempty"`
	Semester     string             `bson:"semester,omitempty" json:"semester,omitempty"`
	Year         string             `bson:"year,omitempty" json:"year,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`

	// UploadCount is incremented once per successful paper submission.
	UploadCount int `bson:"uploadCount" json:"uploadCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
