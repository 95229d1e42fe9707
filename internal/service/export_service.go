package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-resources-api/internal/models"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
	"github.com/noah-isme/student-resources-api/pkg/export"
)

// ExportFormat names a supported catalog export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type approvedLister interface {
	ListApproved(ctx context.Context) ([]models.Material, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered catalog ready to be written to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

var catalogHeaders = []string{"ID", "Title", "Subject", "Semester", "Group", "Year", "Type", "Uploader", "Created At"}

// ExportService renders the approved catalog as CSV or PDF.
type ExportService struct {
	materials approvedLister
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(materials approvedLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		materials: materials,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		now:       time.Now,
	}
}

// ParseExportFormat accepts csv or pdf in any case; blank means csv.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ExportFormatCSV):
		return ExportFormatCSV, nil
	case string(ExportFormatPDF):
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Catalog renders every approved material, newest first.
func (s *ExportService) Catalog(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	materials, err := s.materials.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	dataset := buildCatalogDataset(materials)
	stamp := s.now().UTC()

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Approved materials %s", stamp.Format("2006-01-02")))
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("catalog exported", zap.String("format", string(format)), zap.Int("rows", len(materials)))
	return &ExportResult{
		Filename:    fmt.Sprintf("materials_%s.%s", stamp.Format("20060102_150405"), format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func buildCatalogDataset(materials []models.Material) export.Dataset {
	rows := make([]map[string]string, 0, len(materials))
	for _, m := range materials {
		rows = append(rows, map[string]string{
			"ID":         strconv.FormatInt(m.ID, 10),
			"Title":      m.Title,
			"Subject":    models.StringValue(m.Subject),
			"Semester":   models.StringValue(m.Semester),
			"Group":      models.StringValue(m.GroupName),
			"Year":       models.StringValue(m.UploadYear),
			"Type":       models.StringValue(m.Type),
			"Uploader":   models.StringValue(m.UploaderName),
			"Created At": formatExportTime(m.CreatedAt),
		})
	}
	return export.Dataset{Headers: catalogHeaders, Rows: rows}
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
