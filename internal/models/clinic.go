package models

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is a practice location.
type Clinic struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zip_code,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Manager   string    `json:"manager,omitempty"`
	LogoURL   string    `json:"logo_url,omitempty"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes,omitempty"`
	PetCount  int       `json:"pet_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
