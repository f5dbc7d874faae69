package pets

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/models"
	"github.com/purrscribe/backend/pkg/response"
)

// PetRequest is the body for creating or updating a pet.
type PetRequest struct {
	Name      string `json:"name" binding:"required"`
	Species   string `json:"species" binding:"required"`
	Breed     string `json:"breed" binding:"required"`
	Age       string `json:"age"`
	OwnerName string `json:"owner_name" binding:"required"`
	ImageURL  string `json:"image_url"`
	Notes     string `json:"notes"`
	ClinicID  string `json:"clinic_id"`
}

// Handler handles pet HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a pets handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /pets?search=&species=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), c.Query("search"), c.Query("species"))
	if err != nil {
		h.logger.Error("list pets failed", zap.Error(err))
		response.Internal(c, "failed to list pets")
		return
	}
	if list == nil {
		list = []models.Pet{}
	}
	response.OK(c, list)
}

// GetByID handles GET /pets/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}
	pet, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load pet")
		return
	}
	if pet == nil {
		response.NotFound(c, "pet not found")
		return
	}
	response.OK(c, pet)
}

// Create handles POST /pets.
func (h *Handler) Create(c *gin.Context) {
	req, ok := h.bindPet(c)
	if !ok {
		return
	}
	pet, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("create pet failed", zap.Error(err))
		response.Internal(c, "failed to create pet")
		return
	}
	response.Created(c, pet)
}

// Update handles PUT /pets/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}
	req, ok := h.bindPet(c)
	if !ok {
		return
	}
	pet, err := h.repo.Update(c.Request.Context(), id, req)
	if err != nil {
		h.logger.Error("update pet failed", zap.Error(err))
		response.Internal(c, "failed to update pet")
		return
	}
	if pet == nil {
		response.NotFound(c, "pet not found")
		return
	}
	response.OK(c, pet)
}

// Delete handles DELETE /pets/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet id")
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete pet failed", zap.Error(err))
		response.Internal(c, "failed to delete pet")
		return
	}
	if !deleted {
		response.NotFound(c, "pet not found")
		return
	}
	response.NoContent(c)
}

func (h *Handler) bindPet(c *gin.Context) (*models.Pet, bool) {
	var req PetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return nil, false
	}
	pet := &models.Pet{
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		Age:       req.Age,
		OwnerName: req.OwnerName,
		ImageURL:  req.ImageURL,
		Notes:     req.Notes,
	}
	if req.ClinicID != "" {
		clinicID, err := uuid.Parse(req.ClinicID)
		if err != nil {
			response.BadRequest(c, "invalid clinic id")
			return nil, false
		}
		pet.ClinicID = &clinicID
	}
	return pet, true
}
