package files

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/middleware"
	"github.com/purrscribe/backend/internal/models"
	"github.com/purrscribe/backend/pkg/response"
	"github.com/purrscribe/backend/pkg/storage"
)

// Handler handles file attachment HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a files handler.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// Upload handles POST /files: multipart "file" plus optional pet_id form field.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > storage.MaxFileSize {
		response.BadRequest(c, "file exceeds maximum size")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fileHeader.Filename)
	}
	if !storage.ValidateFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "unsupported file type")
		return
	}

	var petID *uuid.UUID
	if raw := c.PostForm("pet_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid pet id")
			return
		}
		petID = &id
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	fileID := uuid.New()
	key := storage.FileKey(fileID.String(), fileHeader.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), h.s3.FilesBucket(), key, contentType, src, fileHeader.Size); err != nil {
		h.logger.Error("upload to storage failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to store file")
		return
	}

	attachment := &models.FileAttachment{
		ID:          fileID,
		Name:        fileHeader.Filename,
		ContentType: contentType,
		SizeBytes:   fileHeader.Size,
		S3Key:       key,
		PetID:       petID,
	}
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if uid, ok := v.(uuid.UUID); ok {
			attachment.UploadedBy = &uid
		}
	}

	saved, err := h.repo.Create(c.Request.Context(), attachment)
	if err != nil {
		h.logger.Error("persist file record failed", zap.Error(err))
		// best effort cleanup of the orphaned object
		_ = h.s3.DeleteObject(c.Request.Context(), h.s3.FilesBucket(), key)
		response.Internal(c, "failed to save file record")
		return
	}
	response.Created(c, saved)
}

// List handles GET /files?pet_id=.
func (h *Handler) List(c *gin.Context) {
	var petID *uuid.UUID
	if raw := c.Query("pet_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid pet id")
			return
		}
		petID = &id
	}
	list, err := h.repo.List(c.Request.Context(), petID)
	if err != nil {
		h.logger.Error("list files failed", zap.Error(err))
		response.Internal(c, "failed to list files")
		return
	}
	if list == nil {
		list = []models.FileAttachment{}
	}
	response.OK(c, list)
}

// DownloadURL handles GET /files/:id/download-url.
func (h *Handler) DownloadURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid file id")
		return
	}
	f, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load file")
		return
	}
	if f == nil {
		response.NotFound(c, "file not found")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.FilesBucket(), f.S3Key, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign download failed", zap.Error(err), zap.String("key", f.S3Key))
		response.Internal(c, "failed to generate download url")
		return
	}
	response.OK(c, gin.H{"url": url, "expires_in_seconds": int(h.s3.PresignExpire().Seconds())})
}

// Download handles GET /files/:id/content: streams the object through the
// server for clients that cannot follow presigned URLs.
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid file id")
		return
	}
	f, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load file")
		return
	}
	if f == nil {
		response.NotFound(c, "file not found")
		return
	}
	body, contentType, err := h.s3.GetObjectStream(c.Request.Context(), h.s3.FilesBucket(), f.S3Key)
	if err != nil {
		h.logger.Error("stream object failed", zap.Error(err), zap.String("key", f.S3Key))
		response.Internal(c, "failed to read file")
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = f.ContentType
	}
	c.Header("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	c.DataFromReader(http.StatusOK, f.SizeBytes, contentType, body, nil)
}

// Delete handles DELETE /files/:id. Removes the record, then the object.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid file id")
		return
	}
	f, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load file")
		return
	}
	if f == nil {
		response.NotFound(c, "file not found")
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete file record failed", zap.Error(err))
		response.Internal(c, "failed to delete file")
		return
	}
	if deleted {
		if err := h.s3.DeleteObject(c.Request.Context(), h.s3.FilesBucket(), f.S3Key); err != nil {
			h.logger.Warn("delete stored object failed", zap.Error(err), zap.String("key", f.S3Key))
		}
	}
	response.NoContent(c)
}
