package models

import (
	"time"

	"github.com/google/uuid"
)

// FileAttachment is an uploaded document (lab report, imaging, consent form).
type FileAttachment struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	S3Key       string     `json:"s3_key,omitempty"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	PetID       *uuid.UUID `json:"pet_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
