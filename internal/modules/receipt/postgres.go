package receipt

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/google/uuid"
)

const notFoundMessage = "הקבלה לא נמצאה"

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL receipt repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const selectReceipt = `
	SELECT id, vendor_request_id, file_name, file_path, amount, description, status,
	       reviewed_by, review_note, created_at, updated_at
	FROM receipts`

func (r *postgresRepository) Create(ctx context.Context, rc *Receipt) error {
	query := `
		INSERT INTO receipts (id, vendor_request_id, file_name, file_path, amount, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	var amount sql.NullFloat64
	if rc.Amount != nil {
		amount = sql.NullFloat64{Float64: *rc.Amount, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		rc.ID, rc.VendorRequestID, rc.FileName, rc.FilePath, amount, rc.Description, rc.Status,
	).Scan(&rc.CreatedAt, &rc.UpdatedAt)
	return apperr.FromStore(err, notFoundMessage)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	rc, err := scanReceipt(r.db.QueryRowContext(ctx, selectReceipt+` WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, apperr.FromStore(err, notFoundMessage)
	}
	return rc, nil
}

func (r *postgresRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Receipt, error) {
	rows, err := r.db.QueryContext(ctx, selectReceipt+` WHERE vendor_request_id = $1 ORDER BY created_at DESC`, requestID)
	if err != nil {
		return nil, apperr.FromStore(err, "")
	}
	defer rows.Close()

	var receipts []*Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows.Scan)
		if err != nil {
			return nil, apperr.FromStore(err, "")
		}
		receipts = append(receipts, rc)
	}
	return receipts, apperr.FromStore(rows.Err(), "")
}

func (r *postgresRepository) SetStatus(ctx context.Context, id uuid.UUID, review Review) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE receipts SET status = $2, reviewed_by = $3, review_note = $4, updated_at = NOW()
		WHERE id = $1
	`, id, review.Status, uuid.NullUUID{UUID: review.ReviewedBy, Valid: review.ReviewedBy != uuid.Nil}, review.Note)
	if err != nil {
		return apperr.FromStore(err, notFoundMessage)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.FromStore(err, "")
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, notFoundMessage)
	}
	return nil
}

func scanReceipt(scan func(...interface{}) error) (*Receipt, error) {
	var (
		rc         Receipt
		amount     sql.NullFloat64
		reviewedBy uuid.NullUUID
	)
	err := scan(
		&rc.ID, &rc.VendorRequestID, &rc.FileName, &rc.FilePath, &amount, &rc.Description, &rc.Status,
		&reviewedBy, &rc.ReviewNote, &rc.CreatedAt, &rc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if amount.Valid {
		rc.Amount = &amount.Float64
	}
	if reviewedBy.Valid {
		rc.ReviewedBy = &reviewedBy.UUID
	}
	return &rc, nil
}
