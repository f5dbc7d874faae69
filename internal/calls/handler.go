package calls

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/middleware"
	"github.com/purrscribe/backend/internal/models"
	"github.com/purrscribe/backend/pkg/queue"
	"github.com/purrscribe/backend/pkg/response"
)

// Enricher runs transcription and summarization against the store.
type Enricher interface {
	Transcribe(ctx context.Context, id string) (models.CallRecording, error)
	Summarize(ctx context.Context, id string) (models.CallRecording, error)
}

// Reviewer applies approve/reject decisions.
type Reviewer interface {
	Approve(ctx context.Context, id, approver string) (models.CallRecording, error)
	Reject(ctx context.Context, id string) (models.CallRecording, error)
}

// Handler exposes call recording endpoints.
type Handler struct {
	store    *Store
	enricher Enricher
	reviewer Reviewer
	signer   *S3AudioStore // optional; nil when S3 is not configured
	jobs     *queue.Queue  // optional; enables async enrichment
	maxAudio int64
	logger   *zap.Logger
}

// NewHandler creates a calls handler.
func NewHandler(store *Store, enricher Enricher, reviewer Reviewer, maxAudio int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxAudio <= 0 {
		maxAudio = 50 * 1024 * 1024
	}
	return &Handler{store: store, enricher: enricher, reviewer: reviewer, maxAudio: maxAudio, logger: logger}
}

// SetAudioSigner sets the optional presigned-download source.
func (h *Handler) SetAudioSigner(s *S3AudioStore) { h.signer = s }

// SetJobQueue sets the optional queue for async transcription jobs.
func (h *Handler) SetJobQueue(q *queue.Queue) { h.jobs = q }

// List handles GET /calls. Optional ?pet_id= filters to one pet.
func (h *Handler) List(c *gin.Context) {
	if petID := c.Query("pet_id"); petID != "" {
		response.OK(c, h.store.ListByPet(petID))
		return
	}
	response.OK(c, h.store.List())
}

// GetByID handles GET /calls/:id.
func (h *Handler) GetByID(c *gin.Context) {
	rec, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		response.NotFound(c, "recording not found")
		return
	}
	response.OK(c, rec)
}

// Create handles POST /calls: multipart audio upload plus metadata form
// fields. This is the non-WebSocket save path for already-captured audio.
func (h *Handler) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		response.BadRequest(c, "audio file required")
		return
	}
	defer file.Close()
	if header.Size > h.maxAudio {
		response.BadRequest(c, "audio file too large")
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(file, h.maxAudio+1)); err != nil {
		response.Internal(c, "failed to read audio")
		return
	}
	if int64(buf.Len()) > h.maxAudio {
		response.BadRequest(c, "audio file too large")
		return
	}

	meta := models.CallMetadata{
		PetID:      c.PostForm("pet_id"),
		PetName:    c.PostForm("pet_name"),
		OwnerID:    c.PostForm("owner_id"),
		OwnerName:  c.PostForm("owner_name"),
		ClinicID:   c.PostForm("clinic_id"),
		ClinicName: c.PostForm("clinic_name"),
		VisitType:  c.PostForm("visit_type"),
	}
	if d, ok := parsePositiveInt(c.PostForm("duration")); ok {
		meta.Duration = d
	}

	rec, err := h.store.Create(c.Request.Context(), meta, buf.Bytes())
	if err != nil {
		h.logger.Error("save call recording failed", zap.Error(err))
		response.Internal(c, "failed to save recording")
		return
	}
	response.Created(c, rec)
}

// Delete handles DELETE /calls/:id.
func (h *Handler) Delete(c *gin.Context) {
	err := h.store.DeleteByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "recording not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to delete recording")
		return
	}
	response.NoContent(c)
}

// Transcribe handles POST /calls/:id/transcribe. With ?async=true and a
// configured queue the work is handed to the background worker instead.
func (h *Handler) Transcribe(c *gin.Context) {
	h.enrich(c, queue.JobTypeTranscribe, h.enricher.Transcribe)
}

// Summarize handles POST /calls/:id/summarize.
func (h *Handler) Summarize(c *gin.Context) {
	h.enrich(c, queue.JobTypeSummarize, h.enricher.Summarize)
}

func (h *Handler) enrich(c *gin.Context, jobType queue.JobType, run func(context.Context, string) (models.CallRecording, error)) {
	id := c.Param("id")
	if c.Query("async") == "true" && h.jobs != nil {
		if _, err := h.store.GetByID(id); err != nil {
			response.NotFound(c, "recording not found")
			return
		}
		if err := h.jobs.EnqueueTranscription(c.Request.Context(), jobType, queue.TranscriptionPayload{RecordingID: id}); err != nil {
			h.logger.Error("enqueue transcription job failed", zap.Error(err), zap.String("recording_id", id))
			response.Internal(c, "failed to enqueue job")
			return
		}
		response.OK(c, gin.H{"recording_id": id, "queued": true})
		return
	}

	rec, err := run(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "recording not found")
		return
	}
	if err != nil {
		h.logger.Error("enrichment failed", zap.Error(err), zap.String("recording_id", id))
		response.Internal(c, "enrichment failed")
		return
	}
	response.OK(c, rec)
}

// ApproveRequest is the body for POST /calls/:id/approve.
type ApproveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

// Approve handles POST /calls/:id/approve. The approver defaults to the
// authenticated user's email when the body omits one.
func (h *Handler) Approve(c *gin.Context) {
	var req ApproveRequest
	_ = c.ShouldBindJSON(&req)
	approver := req.ApprovedBy
	if approver == "" {
		if email, ok := c.Get(middleware.ContextUserEmail); ok {
			approver, _ = email.(string)
		}
	}
	if approver == "" {
		response.BadRequest(c, "approver identity required")
		return
	}

	rec, err := h.reviewer.Approve(c.Request.Context(), c.Param("id"), approver)
	if h.reviewError(c, err) {
		return
	}
	response.OK(c, rec)
}

// Reject handles POST /calls/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	rec, err := h.reviewer.Reject(c.Request.Context(), c.Param("id"))
	if h.reviewError(c, err) {
		return
	}
	response.OK(c, rec)
}

// reviewError maps workflow errors onto HTTP responses. Returns true when
// the request was terminated.
func (h *Handler) reviewError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "recording not found")
	default:
		// invalid-state failures (untranscribed, already resolved)
		response.Conflict(c, err.Error())
	}
	return true
}

// AudioURL handles GET /calls/:id/audio-url. Returns a presigned download
// URL when S3 is configured, otherwise the stored reference.
func (h *Handler) AudioURL(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.store.GetByID(id)
	if err != nil {
		response.NotFound(c, "recording not found")
		return
	}
	if rec.AudioURL == "" {
		response.BadRequest(c, "recording has no audio")
		return
	}
	if h.signer == nil {
		response.OK(c, gin.H{"audio_url": rec.AudioURL})
		return
	}
	url, err := h.signer.DownloadURL(c.Request.Context(), audioKeyFor(id))
	if err != nil {
		h.logger.Error("presign audio download failed", zap.Error(err), zap.String("recording_id", id))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"audio_url": url})
}

func parsePositiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
