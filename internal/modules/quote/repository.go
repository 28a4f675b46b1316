package quote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for quote storage.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByToken(ctx context.Context, token string) (*Quote, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	List(ctx context.Context, status Status) ([]*Quote, error)
	// MarkSubmitted records the vendor's answer only if the quote has not been
	// submitted yet. It returns a Conflict error otherwise.
	MarkSubmitted(ctx context.Context, id uuid.UUID, amount *float64, description, filePath string, at time.Time) error
	// UpdateStatus changes the status only if it is still from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}
