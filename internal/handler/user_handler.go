package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-resources-api/internal/models"
	"github.com/noah-isme/student-resources-api/pkg/response"
)

type uploaderService interface {
	ListUploadsByUser(ctx context.Context, name string) ([]models.Material, error)
	GetStatus(ctx context.Context, id int64) (models.MaterialState, error)
}

// UserHandler lets uploaders follow their own submissions.
type UserHandler struct {
	service uploaderService
}

// NewUserHandler constructs the handler.
func NewUserHandler(service uploaderService) *UserHandler {
	return &UserHandler{service: service}
}

// Uploads godoc
// @Summary List uploads by uploader name
// @Tags User
// @Produce json
// @Param uploaderName query string true "Uploader name"
// @Success 200 {array} models.Material
// @Failure 400 {object} response.Envelope
// @Router /user/uploads [get]
func (h *UserHandler) Uploads(c *gin.Context) {
	items, err := h.service.ListUploadsByUser(c.Request.Context(), c.Query("uploaderName"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, items)
}

// Status godoc
// @Summary Moderation state of a material
// @Description One of pending, approved or not_found.
// @Tags User
// @Produce plain
// @Param id path int true "Material ID"
// @Success 200 {string} string "pending"
// @Failure 400 {object} response.Envelope
// @Router /user/status/{id} [get]
func (h *UserHandler) Status(c *gin.Context) {
	id, err := materialIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.service.GetStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, string(state))
}
