package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
	"github.com/noah-isme/student-resources-api/internal/service"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
	"github.com/noah-isme/student-resources-api/pkg/response"
)

type moderationServiceMock struct {
	err         error
	pending     []models.Material
	approvedIDs []int64
	lastFilter  models.MaterialAuditFilter
	auditCalled bool
}

func (m *moderationServiceMock) ListPending(ctx context.Context) ([]models.Material, error) {
	return m.pending, m.err
}

func (m *moderationServiceMock) ListApproved(ctx context.Context) ([]models.Material, error) {
	return nil, m.err
}

func (m *moderationServiceMock) Approve(ctx context.Context, id int64) error {
	m.approvedIDs = append(m.approvedIDs, id)
	return m.err
}

func (m *moderationServiceMock) Reject(ctx context.Context, id int64) error { return m.err }

func (m *moderationServiceMock) Delete(ctx context.Context, id int64) error { return m.err }

func (m *moderationServiceMock) AuditTrail(ctx context.Context, filter models.MaterialAuditFilter) ([]models.MaterialAuditLog, error) {
	m.auditCalled = true
	m.lastFilter = filter
	return []models.MaterialAuditLog{{ID: "a1", MaterialID: filter.MaterialID, Action: models.AuditActionApprove}}, m.err
}

type catalogExporterMock struct {
	format service.ExportFormat
}

func (m *catalogExporterMock) Catalog(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error) {
	m.format = format
	return &service.ExportResult{Filename: "materials.pdf", ContentType: "application/pdf", Payload: []byte("%PDF")}, nil
}

type downloadLinkerMock struct{}

func (downloadLinkerMock) SignedURL(ctx context.Context, id int64) (*dto.DownloadURLResponse, error) {
	return &dto.DownloadURLResponse{MaterialID: id, DownloadURL: "/api/files/signed?token=t"}, nil
}

func newAdminContext(method, target string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Params = params
	return c, w
}

func TestAdminHandlerPendingRendersBareArray(t *testing.T) {
	svc := &moderationServiceMock{pending: []models.Material{{ID: 4, Title: "Algebra"}}}
	h := NewAdminHandler(svc, nil, nil)

	c, w := newAdminContext(http.MethodGet, "/admin/pending", nil)
	h.Pending(c)

	require.Equal(t, http.StatusOK, w.Code)
	var items []models.Material
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].ID)
}

func TestAdminHandlerStorageFailureMapsTo503(t *testing.T) {
	svc := &moderationServiceMock{err: appErrors.Storage(errors.New("connection refused"), "failed to list materials")}
	h := NewAdminHandler(svc, nil, nil)

	c, w := newAdminContext(http.MethodGet, "/admin/pending", nil)
	h.Pending(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrStorageUnavailable.Code, env.Error.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestAdminHandlerApprovePassesID(t *testing.T) {
	svc := &moderationServiceMock{}
	h := NewAdminHandler(svc, nil, nil)

	c, w := newAdminContext(http.MethodPut, "/admin/approve/9000000000", gin.Params{{Key: "id", Value: "9000000000"}})
	h.Approve(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Approved!", w.Body.String())
	assert.Equal(t, []int64{9000000000}, svc.approvedIDs)
}

func TestAdminHandlerApproveNotFound(t *testing.T) {
	h := NewAdminHandler(&moderationServiceMock{err: appErrors.ErrNotFound}, nil, nil)

	c, w := newAdminContext(http.MethodPut, "/admin/approve/3", gin.Params{{Key: "id", Value: "3"}})
	h.Approve(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Not Found")
}

func TestAdminHandlerAuditParsesQuery(t *testing.T) {
	svc := &moderationServiceMock{}
	h := NewAdminHandler(svc, nil, nil)

	c, w := newAdminContext(http.MethodGet, "/admin/audit?materialId=5&limit=20", nil)
	h.Audit(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.MaterialAuditFilter{MaterialID: 5, Limit: 20}, svc.lastFilter)
	var env struct {
		Data []models.MaterialAuditLog `json:"data"`
		Meta map[string]interface{}    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Len(t, env.Data, 1)
	assert.Equal(t, float64(1), env.Meta["count"])
}

func TestAdminHandlerAuditRejectsBadQuery(t *testing.T) {
	for _, target := range []string{"/admin/audit?materialId=0", "/admin/audit?materialId=x", "/admin/audit?limit=-1"} {
		svc := &moderationServiceMock{}
		h := NewAdminHandler(svc, nil, nil)
		c, w := newAdminContext(http.MethodGet, target, nil)
		h.Audit(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.False(t, svc.auditCalled, target)
	}
}

func TestAdminHandlerExportPDF(t *testing.T) {
	exporter := &catalogExporterMock{}
	h := NewAdminHandler(&moderationServiceMock{}, exporter, nil)

	c, w := newAdminContext(http.MethodGet, "/admin/export?format=PDF", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatPDF, exporter.format)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="materials.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", w.Body.String())
}

func TestAdminHandlerOptionalCollaborators(t *testing.T) {
	h := NewAdminHandler(&moderationServiceMock{}, nil, nil)

	c, w := newAdminContext(http.MethodGet, "/admin/export", nil)
	h.Export(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	c, w = newAdminContext(http.MethodGet, "/admin/materials/1/download-url", gin.Params{{Key: "id", Value: "1"}})
	h.DownloadURL(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	h = NewAdminHandler(&moderationServiceMock{}, nil, downloadLinkerMock{})
	c, w = newAdminContext(http.MethodGet, "/admin/materials/1/download-url", gin.Params{{Key: "id", Value: "1"}})
	h.DownloadURL(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"downloadUrl":"/api/files/signed?token=t"`)
}
