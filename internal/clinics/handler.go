package clinics

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/models"
	"github.com/purrscribe/backend/pkg/response"
)

// ClinicRequest is the body for creating or updating a clinic.
type ClinicRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Manager string `json:"manager"`
	LogoURL string `json:"logo_url"`
	Type    string `json:"type"`
	Notes   string `json:"notes"`
}

// Handler handles clinic HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a clinics handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /clinics.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list clinics failed", zap.Error(err))
		response.Internal(c, "failed to list clinics")
		return
	}
	if list == nil {
		list = []models.Clinic{}
	}
	response.OK(c, list)
}

// GetByID handles GET /clinics/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid clinic id")
		return
	}
	clinic, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load clinic")
		return
	}
	if clinic == nil {
		response.NotFound(c, "clinic not found")
		return
	}
	response.OK(c, clinic)
}

// Create handles POST /clinics.
func (h *Handler) Create(c *gin.Context) {
	req, ok := h.bindClinic(c)
	if !ok {
		return
	}
	clinic, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("create clinic failed", zap.Error(err))
		response.Internal(c, "failed to create clinic")
		return
	}
	response.Created(c, clinic)
}

// Update handles PUT /clinics/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid clinic id")
		return
	}
	req, ok := h.bindClinic(c)
	if !ok {
		return
	}
	clinic, err := h.repo.Update(c.Request.Context(), id, req)
	if err != nil {
		h.logger.Error("update clinic failed", zap.Error(err))
		response.Internal(c, "failed to update clinic")
		return
	}
	if clinic == nil {
		response.NotFound(c, "clinic not found")
		return
	}
	response.OK(c, clinic)
}

// Delete handles DELETE /clinics/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid clinic id")
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete clinic failed", zap.Error(err))
		response.Internal(c, "failed to delete clinic")
		return
	}
	if !deleted {
		response.NotFound(c, "clinic not found")
		return
	}
	response.NoContent(c)
}

func (h *Handler) bindClinic(c *gin.Context) (*models.Clinic, bool) {
	var req ClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return nil, false
	}
	clinicType := req.Type
	if clinicType == "" {
		clinicType = "general"
	}
	return &models.Clinic{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Phone:   req.Phone,
		Email:   req.Email,
		Manager: req.Manager,
		LogoURL: req.LogoURL,
		Type:    clinicType,
		Notes:   req.Notes,
	}, true
}
