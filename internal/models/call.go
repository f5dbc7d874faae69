package models

import "time"

// Review status of a transcribed call recording.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// CallMetadata is the descriptive context captured when a call is saved.
// All fields are optional except Duration, which comes from the session.
type CallMetadata struct {
	PetID      string `json:"pet_id,omitempty"`
	PetName    string `json:"pet_name,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
	OwnerName  string `json:"owner_name,omitempty"`
	ClinicID   string `json:"clinic_id,omitempty"`
	ClinicName string `json:"clinic_name,omitempty"`
	VisitType  string `json:"visit_type,omitempty"`
	Duration   int    `json:"duration"`
}

// CallRecording is one captured owner/vet phone interaction plus its
// derived artifacts. Metadata fields are immutable after creation; the
// transcription pipeline and review workflow are the only mutation paths.
type CallRecording struct {
	ID            string     `json:"id"`
	PetID         string     `json:"pet_id,omitempty"`
	PetName       string     `json:"pet_name,omitempty"`
	OwnerID       string     `json:"owner_id,omitempty"`
	OwnerName     string     `json:"owner_name,omitempty"`
	ClinicID      string     `json:"clinic_id,omitempty"`
	ClinicName    string     `json:"clinic_name,omitempty"`
	VisitType     string     `json:"visit_type,omitempty"`
	Duration      int        `json:"duration"`
	Date          time.Time  `json:"date"`
	AudioURL      string     `json:"audio_url,omitempty"`
	Transcription string     `json:"transcription,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	Status        string     `json:"status,omitempty"`
	ApprovedBy    string     `json:"approved_by,omitempty"`
	ApprovedDate  *time.Time `json:"approved_date,omitempty"`
}
