package receipt

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for receipt storage.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	Get(ctx context.Context, id uuid.UUID) (*Receipt, error)
	// ListByRequest returns receipts newest first.
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Receipt, error)
	SetStatus(ctx context.Context, id uuid.UUID, review Review) error
}
