package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-resources-api/internal/service"
	"github.com/noah-isme/student-resources-api/pkg/response"
)

type fileServer interface {
	OpenApproved(ctx context.Context, id int64) (*service.MaterialDownload, error)
	OpenSigned(ctx context.Context, token string) (*service.MaterialDownload, error)
}

// FileHandler streams stored material files.
type FileHandler struct {
	service fileServer
}

// NewFileHandler constructs the handler.
func NewFileHandler(service fileServer) *FileHandler {
	return &FileHandler{service: service}
}

// Download godoc
// @Summary Download the file of an approved material
// @Tags Files
// @Produce octet-stream
// @Param id path int true "Material ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /files/{id} [get]
func (h *FileHandler) Download(c *gin.Context) {
	id, err := materialIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.OpenApproved(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, result)
}

// Signed godoc
// @Summary Download a material file through a signed token
// @Tags Files
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /files/signed [get]
func (h *FileHandler) Signed(c *gin.Context) {
	result, err := h.service.OpenSigned(c.Request.Context(), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, result)
}

func stream(c *gin.Context, result *service.MaterialDownload) {
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}
