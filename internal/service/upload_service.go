package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
)

type materialFileStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type materialSubmitter interface {
	Submit(ctx context.Context, material *models.Material) error
	Get(ctx context.Context, id int64) (*models.Material, error)
}

type downloadSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

type uploadObserver interface {
	ObserveUpload(sizeBytes int64)
}

// MaterialUpload carries the uploaded file stream and its metadata.
type MaterialUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// MaterialDownload bundles an open file with what is needed to stream it.
type MaterialDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
}

// UploadServiceConfig holds validation limits and URL settings.
type UploadServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// UploadService validates and stores material files, and serves them back.
type UploadService struct {
	materials materialSubmitter
	storage   materialFileStorage
	signer    downloadSigner
	validator *validator.Validate
	metrics   uploadObserver
	logger    *zap.Logger
	cfg       UploadServiceConfig
	mimeSet   map[string]struct{}
}

// NewUploadService constructs the service with defaults.
func NewUploadService(materials materialSubmitter, storage materialFileStorage, signer downloadSigner, validate *validator.Validate, metrics uploadObserver, logger *zap.Logger, cfg UploadServiceConfig) *UploadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 20 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/png", "image/jpeg", "text/plain"}
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &UploadService{
		materials: materials,
		storage:   storage,
		signer:    signer,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// Upload stores the file and creates a pending material pointing at it.
func (s *UploadService) Upload(ctx context.Context, meta dto.UploadMaterialRequest, upload MaterialUpload) (*models.Material, error) {
	meta = trimUpload(meta)
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := s.detectMime(upload)
	if err != nil {
		return nil, err
	}
	if _, allowed := s.mimeSet[mimeType]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}

	filename := generateFilename(upload.Filename)
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	path, err := s.storage.SaveStream(filename, upload.Content)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to persist material file")
	}

	material := &models.Material{
		Title:        meta.Title,
		Subject:      models.StringPtr(meta.Subject),
		Description:  models.StringPtr(meta.Description),
		Semester:     models.StringPtr(meta.Semester),
		GroupName:    models.StringPtr(meta.GroupName),
		UploadYear:   models.StringPtr(meta.UploadYear),
		Type:         models.StringPtr(meta.Type),
		UploaderName: models.StringPtr(meta.UploaderName),
		FilePath:     models.StringPtr(path),
		FileName:     models.StringPtr(filepath.Base(upload.Filename)),
		MimeType:     models.StringPtr(mimeType),
		SizeBytes:    upload.Size,
	}
	if err := s.materials.Submit(ctx, material); err != nil {
		if rmErr := s.storage.Delete(path); rmErr != nil {
			s.logger.Warn("failed to clean up orphaned upload", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveUpload(upload.Size)
	}
	return material, nil
}

// OpenApproved opens the file of an approved material for public download.
func (s *UploadService) OpenApproved(ctx context.Context, id int64) (*MaterialDownload, error) {
	material, err := s.materials.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !material.Approved || !material.HasFile() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	return s.open(material)
}

// SignedURL returns a time-limited download link that works for any moderation state.
func (s *UploadService) SignedURL(ctx context.Context, id int64) (*dto.DownloadURLResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	material, err := s.materials.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !material.HasFile() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	token, expiresAt, err := s.signer.Generate(strconv.FormatInt(material.ID, 10), *material.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	return &dto.DownloadURLResponse{
		MaterialID:  material.ID,
		DownloadURL: fmt.Sprintf("%s/files/signed?token=%s", s.cfg.APIPrefix, token),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// OpenSigned validates a download token and opens the referenced file.
func (s *UploadService) OpenSigned(ctx context.Context, token string) (*MaterialDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	rawID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid token subject")
	}
	material, err := s.materials.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !material.HasFile() || *material.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	return s.open(material)
}

func (s *UploadService) open(material *models.Material) (*MaterialDownload, error) {
	file, err := s.storage.Open(*material.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Storage(err, "failed to open material file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Storage(err, "failed to read material file")
	}
	name := models.StringValue(material.FileName)
	if name == "" {
		name = filepath.Base(*material.FilePath)
	}
	mimeType := models.StringValue(material.MimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &MaterialDownload{
		File:      file,
		Filename:  name,
		MimeType:  mimeType,
		SizeBytes: info.Size(),
	}, nil
}

func (s *UploadService) detectMime(upload MaterialUpload) (string, error) {
	if declared := normalizeMime(upload.MimeType); declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return normalizeMime(http.DetectContentType(header[:n])), nil
}

// normalizeMime drops parameters such as "; charset=utf-8".
func normalizeMime(raw string) string {
	if idx := strings.Index(raw, ";"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func generateFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" || len(ext) > 10 {
		ext = ".bin"
	}
	return fmt.Sprintf("materials/%s%s", uuid.NewString(), ext)
}

func trimUpload(meta dto.UploadMaterialRequest) dto.UploadMaterialRequest {
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Subject = strings.TrimSpace(meta.Subject)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Semester = strings.TrimSpace(meta.Semester)
	meta.GroupName = strings.TrimSpace(meta.GroupName)
	meta.UploadYear = strings.TrimSpace(meta.UploadYear)
	meta.Type = strings.TrimSpace(meta.Type)
	meta.UploaderName = strings.TrimSpace(meta.UploaderName)
	return meta
}
