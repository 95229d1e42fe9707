package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
	"github.com/noah-isme/student-resources-api/pkg/response"
)

type materialCatalog interface {
	ListApprovedFiltered(ctx context.Context, criteria dto.MaterialFilter) ([]models.Material, error)
	ListLegacy(ctx context.Context, criteria dto.MaterialFilter) (*dto.LegacyMaterialsResponse, error)
	Search(ctx context.Context, query string) ([]models.Material, error)
}

// MaterialHandler serves the public catalog of approved materials.
type MaterialHandler struct {
	service materialCatalog
}

// NewMaterialHandler constructs the handler.
func NewMaterialHandler(service materialCatalog) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// List godoc
// @Summary List approved materials
// @Description Blank or "All" criteria match everything. Materials missing a filtered attribute still match.
// @Tags Materials
// @Produce json
// @Param semester query string false "Semester"
// @Param subject query string false "Subject"
// @Param group query string false "Group"
// @Param year query string false "Upload year"
// @Param type query string false "Material type"
// @Success 200 {array} models.Material
// @Failure 503 {object} response.Envelope
// @Router /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	var filter dto.MaterialFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid filter"))
		return
	}
	items, err := h.service.ListApprovedFiltered(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, items)
}

// Search godoc
// @Summary Search approved materials
// @Description Case-insensitive substring match on title, subject and description. A blank query lists everything approved.
// @Tags Materials
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {array} models.Material
// @Failure 503 {object} response.Envelope
// @Router /materials/search [get]
func (h *MaterialHandler) Search(c *gin.Context) {
	items, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, items)
}

// Legacy godoc
// @Summary List approved materials in the legacy shape
// @Description Same criteria as /materials, but materials missing a filtered attribute are excluded.
// @Tags Materials
// @Produce json
// @Param semester query string false "Semester"
// @Param subject query string false "Subject"
// @Param group query string false "Group"
// @Param year query string false "Upload year"
// @Param type query string false "Material type"
// @Success 200 {object} dto.LegacyMaterialsResponse
// @Failure 503 {object} response.Envelope
// @Router /legacy/materials [get]
func (h *MaterialHandler) Legacy(c *gin.Context) {
	var filter dto.MaterialFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid filter"))
		return
	}
	result, err := h.service.ListLegacy(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, result)
}
