package models

import (
	"time"

	"github.com/google/uuid"
)

// Pet is a patient record.
type Pet struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed"`
	Age       string     `json:"age,omitempty"`
	OwnerName string     `json:"owner_name"`
	ImageURL  string     `json:"image_url,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	ClinicID  *uuid.UUID `json:"clinic_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
