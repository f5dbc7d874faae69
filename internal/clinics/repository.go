package clinics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/purrscribe/backend/internal/models"
)

// Repository handles clinic persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a clinics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clinicColumns = `c.id, c.name, c.address, c.city, c.state, c.zip_code, c.phone, c.email,
	c.manager, c.logo_url, c.clinic_type, COALESCE(c.notes,''), c.created_at, c.updated_at`

func scanClinic(row pgx.Row, withCount bool) (*models.Clinic, error) {
	var cl models.Clinic
	dest := []interface{}{&cl.ID, &cl.Name, &cl.Address, &cl.City, &cl.State, &cl.ZipCode,
		&cl.Phone, &cl.Email, &cl.Manager, &cl.LogoURL, &cl.Type, &cl.Notes, &cl.CreatedAt, &cl.UpdatedAt}
	if withCount {
		dest = append(dest, &cl.PetCount)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &cl, nil
}

// List returns all clinics with their pet counts, alphabetically.
func (r *Repository) List(ctx context.Context) ([]models.Clinic, error) {
	const q = `SELECT ` + clinicColumns + `, COUNT(p.id)
		FROM clinics c
		LEFT JOIN pets p ON p.clinic_id = c.id
		GROUP BY c.id
		ORDER BY c.name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Clinic
	for rows.Next() {
		cl, err := scanClinic(rows, true)
		if err != nil {
			return nil, err
		}
		list = append(list, *cl)
	}
	return list, rows.Err()
}

// GetByID returns a clinic with its pet count, or nil if not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	const q = `SELECT ` + clinicColumns + `, COUNT(p.id)
		FROM clinics c
		LEFT JOIN pets p ON p.clinic_id = c.id
		WHERE c.id = $1
		GROUP BY c.id`
	cl, err := scanClinic(r.pool.QueryRow(ctx, q, id), true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return cl, err
}

// Create inserts a new clinic.
func (r *Repository) Create(ctx context.Context, cl *models.Clinic) (*models.Clinic, error) {
	const q = `INSERT INTO clinics (name, address, city, state, zip_code, phone, email, manager, logo_url, clinic_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11,''))
		RETURNING ` + clinicColumns
	// a fresh clinic has no pets, skip the join
	return scanClinic(r.pool.QueryRow(ctx, q, cl.Name, cl.Address, cl.City, cl.State, cl.ZipCode,
		cl.Phone, cl.Email, cl.Manager, cl.LogoURL, cl.Type, cl.Notes), false)
}

// Update replaces a clinic's mutable fields. Returns nil if not found.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, cl *models.Clinic) (*models.Clinic, error) {
	const q = `UPDATE clinics c SET name = $2, address = $3, city = $4, state = $5, zip_code = $6,
		phone = $7, email = $8, manager = $9, logo_url = $10, clinic_type = $11, notes = NULLIF($12,''), updated_at = NOW()
		WHERE c.id = $1
		RETURNING ` + clinicColumns
	updated, err := scanClinic(r.pool.QueryRow(ctx, q, id, cl.Name, cl.Address, cl.City, cl.State,
		cl.ZipCode, cl.Phone, cl.Email, cl.Manager, cl.LogoURL, cl.Type, cl.Notes), false)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return updated, err
}

// Delete removes a clinic. Pets referencing it keep existing with a cleared
// clinic. Returns false if no row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
