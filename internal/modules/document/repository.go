package document

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for document metadata storage.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Document, error)
	// Delete removes a document only if it belongs to requestID.
	Delete(ctx context.Context, id, requestID uuid.UUID) error
}
