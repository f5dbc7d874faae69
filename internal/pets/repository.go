package pets

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/purrscribe/backend/internal/models"
)

// Repository handles pet persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a pets repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const petColumns = `id, name, species, breed, age, owner_name, image_url, COALESCE(notes,''), clinic_id, created_at, updated_at`

func scanPet(row pgx.Row) (*models.Pet, error) {
	var p models.Pet
	err := row.Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Age, &p.OwnerName,
		&p.ImageURL, &p.Notes, &p.ClinicID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns pets, newest first, optionally filtered by a free-text search
// over name, breed and owner, and by species.
func (r *Repository) List(ctx context.Context, search, species string) ([]models.Pet, error) {
	q := `SELECT ` + petColumns + ` FROM pets WHERE 1=1`
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+search+"%")
		q += ` AND (name ILIKE $1 OR breed ILIKE $1 OR owner_name ILIKE $1)`
	}
	if species != "" {
		args = append(args, species)
		q += ` AND species = $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// GetByID returns a pet by ID, or nil if not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	const q = `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	p, err := scanPet(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Create inserts a new pet.
func (r *Repository) Create(ctx context.Context, p *models.Pet) (*models.Pet, error) {
	const q = `INSERT INTO pets (name, species, breed, age, owner_name, image_url, notes, clinic_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8)
		RETURNING ` + petColumns
	return scanPet(r.pool.QueryRow(ctx, q, p.Name, p.Species, p.Breed, p.Age, p.OwnerName, p.ImageURL, p.Notes, p.ClinicID))
}

// Update replaces a pet's mutable fields. Returns nil if not found.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p *models.Pet) (*models.Pet, error) {
	const q = `UPDATE pets SET name = $2, species = $3, breed = $4, age = $5, owner_name = $6,
		image_url = $7, notes = NULLIF($8,''), clinic_id = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + petColumns
	updated, err := scanPet(r.pool.QueryRow(ctx, q, id, p.Name, p.Species, p.Breed, p.Age, p.OwnerName, p.ImageURL, p.Notes, p.ClinicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return updated, err
}

// Delete removes a pet. Returns false if no row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
