package document

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the document slot a vendor uploads into.
type Kind string

const (
	KindBookkeepingCert  Kind = "bookkeeping_cert"
	KindTaxCert          Kind = "tax_cert"
	KindBankConfirmation Kind = "bank_confirmation"
	KindInvoice          Kind = "invoice"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBookkeepingCert, KindTaxCert, KindBankConfirmation, KindInvoice:
		return true
	}
	return false
}

// Document is a stored attachment of one vendor request. Documents are never
// modified; a vendor replaces one by deleting it and uploading again.
type Document struct {
	ID                uuid.UUID `json:"id"`
	VendorRequestID   uuid.UUID `json:"vendor_request_id"`
	Kind              Kind      `json:"kind"`
	FileName          string    `json:"file_name"`
	FilePath          string    `json:"-"`
	ContentType       string    `json:"content_type"`
	SizeBytes         int64     `json:"size_bytes"`
	DetectedType      string    `json:"detected_type,omitempty"`
	MismatchConfirmed bool      `json:"mismatch_confirmed"`
	CreatedAt         time.Time `json:"created_at"`
}

// Classification is what the external classifier inferred about a file.
// An empty DetectedType means the result is inconclusive.
type Classification struct {
	DetectedType string            `json:"document_type"`
	Confidence   float64           `json:"confidence"`
	Reasoning    string            `json:"reasoning"`
	Extracted    map[string]string `json:"extracted,omitempty"`
}

// Upload is a vendor upload into a document slot.
type Upload struct {
	Token     string
	Kind      Kind
	FileName  string
	Type      string
	Data      []byte
	Confirmed bool
}

// UploadResult is either a stored document or a pending confirmation.
type UploadResult struct {
	Decision Decision  `json:"decision"`
	Document *Document `json:"document,omitempty"`
}
