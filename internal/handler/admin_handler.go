package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
	"github.com/noah-isme/student-resources-api/internal/service"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
	"github.com/noah-isme/student-resources-api/pkg/response"
)

const (
	approvedMarker = "Approved!"
	deletedMarker  = "Deleted!"
)

type moderationService interface {
	ListPending(ctx context.Context) ([]models.Material, error)
	ListApproved(ctx context.Context) ([]models.Material, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	AuditTrail(ctx context.Context, filter models.MaterialAuditFilter) ([]models.MaterialAuditLog, error)
}

type catalogExporter interface {
	Catalog(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error)
}

type downloadLinker interface {
	SignedURL(ctx context.Context, id int64) (*dto.DownloadURLResponse, error)
}

// AdminHandler exposes the moderation queue and its tooling.
type AdminHandler struct {
	service moderationService
	export  catalogExporter
	links   downloadLinker
}

// NewAdminHandler constructs the handler. export and links may be nil.
func NewAdminHandler(service moderationService, export catalogExporter, links downloadLinker) *AdminHandler {
	return &AdminHandler{service: service, export: export, links: links}
}

// Pending godoc
// @Summary List materials awaiting review
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Material
// @Failure 503 {object} response.Envelope
// @Router /admin/pending [get]
func (h *AdminHandler) Pending(c *gin.Context) {
	items, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, items)
}

// Approved godoc
// @Summary List approved materials, newest first
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Material
// @Failure 503 {object} response.Envelope
// @Router /admin/approved [get]
func (h *AdminHandler) Approved(c *gin.Context) {
	items, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, items)
}

// Approve godoc
// @Summary Approve a pending material
// @Description Approving an already approved material succeeds without changes.
// @Tags Admin
// @Produce plain
// @Param id path int true "Material ID"
// @Success 200 {string} string "Approved!"
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/approve/{id} [put]
func (h *AdminHandler) Approve(c *gin.Context) {
	id, err := materialIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Approve(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, approvedMarker)
}

// Reject godoc
// @Summary Reject a material
// @Description The material is removed. Unknown ids succeed.
// @Tags Admin
// @Produce plain
// @Param id path int true "Material ID"
// @Success 200 {string} string "Deleted!"
// @Failure 400 {object} response.Envelope
// @Router /admin/reject/{id} [delete]
func (h *AdminHandler) Reject(c *gin.Context) {
	id, err := materialIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Reject(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, deletedMarker)
}

// Delete godoc
// @Summary Delete a material in any state
// @Description Unknown ids succeed.
// @Tags Admin
// @Produce plain
// @Param id path int true "Material ID"
// @Success 200 {string} string "Deleted!"
// @Failure 400 {object} response.Envelope
// @Router /admin/delete/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	id, err := materialIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, deletedMarker)
}

// Audit godoc
// @Summary List moderation audit entries
// @Tags Admin
// @Produce json
// @Param materialId query int false "Restrict to one material"
// @Param limit query int false "Maximum entries (default 100, max 500)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/audit [get]
func (h *AdminHandler) Audit(c *gin.Context) {
	var filter models.MaterialAuditFilter
	if raw := strings.TrimSpace(c.Query("materialId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "materialId must be a positive integer"))
			return
		}
		filter.MaterialID = id
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}
	logs, err := h.service.AuditTrail(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, map[string]interface{}{"count": len(logs)})
}

// Export godoc
// @Summary Export the approved catalog
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.export.Catalog(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// DownloadURL godoc
// @Summary Issue a signed download link for a material file
// @Description Works for pending materials so reviewers can inspect them.
// @Tags Admin
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/materials/{id}/download-url [get]
func (h *AdminHandler) DownloadURL(c *gin.Context) {
	if h.links == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "download links not configured"))
		return
	}
	id, err := materialIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.links.SignedURL(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link)
}
