package document

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/google/uuid"
)

const notFoundMessage = "המסמך לא נמצא"

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL document repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const selectDocument = `
	SELECT id, vendor_request_id, kind, file_name, file_path, content_type, size_bytes,
	       detected_type, mismatch_confirmed, created_at
	FROM vendor_documents`

func (r *postgresRepository) Create(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO vendor_documents (id, vendor_request_id, kind, file_name, file_path, content_type,
		                              size_bytes, detected_type, mismatch_confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.VendorRequestID, doc.Kind, doc.FileName, doc.FilePath, doc.ContentType,
		doc.SizeBytes, doc.DetectedType, doc.MismatchConfirmed,
	).Scan(&doc.CreatedAt)
	return apperr.FromStore(err, notFoundMessage)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	doc, err := scanDocument(r.db.QueryRowContext(ctx, selectDocument+` WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, apperr.FromStore(err, notFoundMessage)
	}
	return doc, nil
}

func (r *postgresRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Document, error) {
	rows, err := r.db.QueryContext(ctx, selectDocument+` WHERE vendor_request_id = $1 ORDER BY created_at DESC`, requestID)
	if err != nil {
		return nil, apperr.FromStore(err, "")
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, apperr.FromStore(err, "")
		}
		docs = append(docs, doc)
	}
	return docs, apperr.FromStore(rows.Err(), "")
}

func (r *postgresRepository) Delete(ctx context.Context, id, requestID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vendor_documents WHERE id = $1 AND vendor_request_id = $2`, id, requestID)
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

func scanDocument(scan func(...interface{}) error) (*Document, error) {
	doc := &Document{}
	err := scan(
		&doc.ID,
		&doc.VendorRequestID,
		&doc.Kind,
		&doc.FileName,
		&doc.FilePath,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.DetectedType,
		&doc.MismatchConfirmed,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
