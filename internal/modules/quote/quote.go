package quote

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRequested     Status = "requested"
	StatusPendingReview Status = "pending_review"
	StatusAccepted      Status = "accepted"
	StatusRejected      Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusPendingReview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Quote is a price quote requested from a vendor. Its secure token is
// independent of any vendor request token.
type Quote struct {
	ID                 uuid.UUID  `json:"id"`
	VendorRequestID    *uuid.UUID `json:"vendor_request_id,omitempty"`
	SecureToken        string     `json:"secure_token"`
	Title              string     `json:"title"`
	RequestDescription string     `json:"request_description"`
	VendorEmail        string     `json:"vendor_email"`
	Amount             *float64   `json:"amount,omitempty"`
	Description        string     `json:"description"`
	FilePath           string     `json:"file_path,omitempty"`
	Status             Status     `json:"status"`
	VendorSubmitted    bool       `json:"vendor_submitted"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	CreatedBy          *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// View is what the vendor sees through the quote link.
type View struct {
	Title              string     `json:"title"`
	RequestDescription string     `json:"request_description"`
	Status             Status     `json:"status"`
	VendorSubmitted    bool       `json:"vendor_submitted"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
}

func (q *Quote) View() *View {
	return &View{
		Title:              q.Title,
		RequestDescription: q.RequestDescription,
		Status:             q.Status,
		VendorSubmitted:    q.VendorSubmitted,
		SubmittedAt:        q.SubmittedAt,
	}
}

// File is an attachment to a quote submission.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Submission is the vendor's answer to a quote request.
type Submission struct {
	Token       string
	File        *File
	Amount      *float64
	Description string
}

// CreateRequest opens a quote request.
type CreateRequest struct {
	VendorRequestID    *uuid.UUID `json:"vendor_request_id,omitempty"`
	Title              string     `json:"title"`
	RequestDescription string     `json:"request_description"`
	VendorEmail        string     `json:"vendor_email"`
	CreatedBy          *uuid.UUID `json:"-"`
}
