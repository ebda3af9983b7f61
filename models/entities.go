package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a platform account. Email is the business key; the stored role
// may be absent, in which case readers fall back to "user".
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Email string             `bson:"email" json:"email" validate:"required,email"`
	Role  string             `bson:"role,omitempty" json:"role,omitempty"`
}

// Session lifecycle: pending (initial) -> approved -> rejected, with an
// explicit reset back to pending on a reconsideration request.
const (
	SessionPending  = "pending"
	SessionApproved = "approved"
	SessionRejected = "rejected"
)

type Session struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title             string             `bson:"title,omitempty" json:"title,omitempty"`
	TutorName         string             `bson:"tutorName,omitempty" json:"tutorName,omitempty"`
	TutorEmail        string             `bson:"tutorEmail" json:"tutorEmail" validate:"required,email"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	RegistrationStart string             `bson:"registrationStart,omitempty" json:"registrationStart,omitempty"`
	RegistrationEnd   string             `bson:"registrationEnd,omitempty" json:"registrationEnd,omitempty"`
	ClassStart        string             `bson:"classStart,omitempty" json:"classStart,omitempty"`
	ClassEnd          string             `bson:"classEnd,omitempty" json:"classEnd,omitempty"`
	Duration          string             `bson:"duration,omitempty" json:"duration,omitempty"`
	Status            string             `bson:"status" json:"status"`
	IsPaid            bool               `bson:"isPaid" json:"isPaid"`
	Price             float64            `bson:"price" json:"price"`
}

type Review struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	SessionID    string             `bson:"sessionId" json:"sessionId"`
	StudentName  string             `bson:"studentName,omitempty" json:"studentName,omitempty"`
	StudentEmail string             `bson:"studentEmail,omitempty" json:"studentEmail,omitempty"`
	Rating       float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	Comment      string             `bson:"comment,omitempty" json:"comment,omitempty"`
	ReviewDate   string             `bson:"reviewDate" json:"reviewDate"`
}

// Booking links a student to a session. One booking per
// (sessionId, studentEmail) pair, backed by a unique compound index.
type Booking struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	SessionID    string             `bson:"sessionId" json:"sessionId" validate:"required"`
	SessionTitle string             `bson:"sessionTitle,omitempty" json:"sessionTitle,omitempty"`
	TutorEmail   string             `bson:"tutorEmail,omitempty" json:"tutorEmail,omitempty"`
	StudentEmail string             `bson:"studentEmail" json:"studentEmail" validate:"required,email"`
}

type Note struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email       string             `bson:"email" json:"email" validate:"required,email"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Tutor is a derived roster entry, never persisted.
type Tutor struct {
	TutorEmail   string `json:"tutorEmail"`
	TutorName    string `json:"tutorName,omitempty"`
	SessionCount int    `json:"sessionCount"`
}
