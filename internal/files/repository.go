package files

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/purrscribe/backend/internal/models"
)

// Repository handles file attachment metadata persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a files repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const fileColumns = `id, name, content_type, size_bytes, s3_key, uploaded_by, pet_id, created_at`

func scanFile(row pgx.Row) (*models.FileAttachment, error) {
	var f models.FileAttachment
	err := row.Scan(&f.ID, &f.Name, &f.ContentType, &f.SizeBytes, &f.S3Key, &f.UploadedBy, &f.PetID, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a file attachment record.
func (r *Repository) Create(ctx context.Context, f *models.FileAttachment) (*models.FileAttachment, error) {
	const q = `INSERT INTO file_attachments (id, name, content_type, size_bytes, s3_key, uploaded_by, pet_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + fileColumns
	return scanFile(r.pool.QueryRow(ctx, q, f.ID, f.Name, f.ContentType, f.SizeBytes, f.S3Key, f.UploadedBy, f.PetID))
}

// GetByID returns a file attachment, or nil if not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.FileAttachment, error) {
	const q = `SELECT ` + fileColumns + ` FROM file_attachments WHERE id = $1`
	f, err := scanFile(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// List returns file attachments, newest first, optionally scoped to a pet.
func (r *Repository) List(ctx context.Context, petID *uuid.UUID) ([]models.FileAttachment, error) {
	q := `SELECT ` + fileColumns + ` FROM file_attachments`
	args := []interface{}{}
	if petID != nil {
		q += ` WHERE pet_id = $1`
		args = append(args, *petID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.FileAttachment
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

// Delete removes a file attachment record. Returns false if no row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM file_attachments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
