package receipt

import (
	"time"

	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Receipt is an uploaded receipt of an approved vendor. Only administrators
// change its status.
type Receipt struct {
	ID              uuid.UUID  `json:"id"`
	VendorRequestID uuid.UUID  `json:"vendor_request_id"`
	FileName        string     `json:"file_name"`
	FilePath        string     `json:"-"`
	Amount          *float64   `json:"amount,omitempty"`
	Description     string     `json:"description"`
	Status          Status     `json:"status"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewNote      string     `json:"review_note,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// VendorSummary identifies the vendor in the receipts listing.
type VendorSummary struct {
	ID         uuid.UUID     `json:"id"`
	VendorName string        `json:"vendor_name"`
	Status     vendor.Status `json:"status"`
}

// Listing is the vendor-facing receipts page.
type Listing struct {
	Vendor   VendorSummary `json:"vendor"`
	Receipts []*Receipt    `json:"receipts"`
}

// Upload is a receipt file sent by a vendor.
type Upload struct {
	Token       string
	FileName    string
	ContentType string
	Data        []byte
	Amount      *float64
	Description string
}

// Review is an administrator's decision on a receipt.
type Review struct {
	Status     Status    `json:"status"`
	Note       string    `json:"note"`
	ReviewedBy uuid.UUID `json:"-"`
}
