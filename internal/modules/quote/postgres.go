package quote

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/google/uuid"
)

const notFoundMessage = "בקשת הצעת המחיר לא נמצאה"

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL quote repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const selectQuote = `
	SELECT id, vendor_request_id, secure_token, title, request_description, vendor_email,
	       amount, description, file_path, status, vendor_submitted, submitted_at, created_by,
	       created_at, updated_at
	FROM quotes`

func (r *postgresRepository) Create(ctx context.Context, q *Quote) error {
	query := `
		INSERT INTO quotes (id, vendor_request_id, secure_token, title, request_description, vendor_email, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		q.ID, nullUUID(q.VendorRequestID), q.SecureToken, q.Title, q.RequestDescription, q.VendorEmail,
		q.Status, nullUUID(q.CreatedBy),
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	return apperr.FromStore(err, notFoundMessage)
}

func (r *postgresRepository) GetByToken(ctx context.Context, token string) (*Quote, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectQuote+` WHERE secure_token = $1`, token))
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectQuote+` WHERE id = $1`, id))
}

func (r *postgresRepository) List(ctx context.Context, status Status) ([]*Quote, error) {
	query := selectQuote
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromStore(err, "")
	}
	defer rows.Close()

	var quotes []*Quote
	for rows.Next() {
		q, err := scanQuote(rows.Scan)
		if err != nil {
			return nil, apperr.FromStore(err, "")
		}
		quotes = append(quotes, q)
	}
	return quotes, apperr.FromStore(rows.Err(), "")
}

func (r *postgresRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, amount *float64, description, filePath string, at time.Time) error {
	query := `
		UPDATE quotes
		SET vendor_submitted = TRUE, amount = $2, description = $3, file_path = $4,
		    submitted_at = $5, status = 'pending_review', updated_at = NOW()
		WHERE id = $1 AND vendor_submitted = FALSE
	`
	var amt sql.NullFloat64
	if amount != nil {
		amt = sql.NullFloat64{Float64: *amount, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, query, id, amt, description, filePath, at)
	if err != nil {
		return apperr.FromStore(err, notFoundMessage)
	}
	return expectOneRow(res, "הצעת המחיר כבר הוגשה")
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return apperr.FromStore(err, notFoundMessage)
	}
	return expectOneRow(res, "quote is no longer in status "+string(from))
}

func expectOneRow(res sql.Result, conflictMessage string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.FromStore(err, "")
	}
	if n == 0 {
		return apperr.New(apperr.Conflict, conflictMessage)
	}
	return nil
}

func (r *postgresRepository) scan(row *sql.Row) (*Quote, error) {
	q, err := scanQuote(row.Scan)
	if err != nil {
		return nil, apperr.FromStore(err, notFoundMessage)
	}
	return q, nil
}

func scanQuote(scan func(...interface{}) error) (*Quote, error) {
	var (
		q           Quote
		requestID   uuid.NullUUID
		createdBy   uuid.NullUUID
		amount      sql.NullFloat64
		submittedAt sql.NullTime
	)
	err := scan(
		&q.ID, &requestID, &q.SecureToken, &q.Title, &q.RequestDescription, &q.VendorEmail,
		&amount, &q.Description, &q.FilePath, &q.Status, &q.VendorSubmitted, &submittedAt, &createdBy,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if requestID.Valid {
		q.VendorRequestID = &requestID.UUID
	}
	if createdBy.Valid {
		q.CreatedBy = &createdBy.UUID
	}
	if amount.Valid {
		q.Amount = &amount.Float64
	}
	if submittedAt.Valid {
		q.SubmittedAt = &submittedAt.Time
	}
	return &q, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
