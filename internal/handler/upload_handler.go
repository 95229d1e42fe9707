package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
	"github.com/noah-isme/student-resources-api/internal/service"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
	"github.com/noah-isme/student-resources-api/pkg/response"
)

type materialUploader interface {
	Upload(ctx context.Context, meta dto.UploadMaterialRequest, upload service.MaterialUpload) (*models.Material, error)
}

// UploadHandler accepts new material submissions.
type UploadHandler struct {
	service      materialUploader
	maxBodyBytes int64
}

// NewUploadHandler constructs the handler. maxBodyBytes caps the whole request body; zero disables the cap.
func NewUploadHandler(service materialUploader, maxBodyBytes int64) *UploadHandler {
	return &UploadHandler{service: service, maxBodyBytes: maxBodyBytes}
}

// Upload godoc
// @Summary Submit a material for review
// @Description The material starts pending and is hidden from the public catalog until approved.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param title formData string true "Title"
// @Param subject formData string false "Subject"
// @Param description formData string false "Description"
// @Param semester formData string false "Semester"
// @Param groupName formData string false "Group"
// @Param uploadYear formData string false "Upload year"
// @Param type formData string false "Material type"
// @Param uploaderName formData string false "Uploader name"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	var req dto.UploadMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, formError(err, "invalid material payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, formError(err, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}
	material, err := h.service.Upload(c.Request.Context(), req, service.MaterialUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  reader,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

func formError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.ErrPayloadTooLarge
	}
	return appErrors.Clone(appErrors.ErrValidation, message)
}
