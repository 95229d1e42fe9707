package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
)

type materialStore interface {
	Create(ctx context.Context, material *models.Material) error
	FindByID(ctx context.Context, id int64) (*models.Material, error)
	MarkApproved(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ListByApproval(ctx context.Context, approved bool) ([]models.Material, error)
	ListByUploader(ctx context.Context, name string) ([]models.Material, error)
	SearchApproved(ctx context.Context, term string) ([]models.Material, error)
}

type auditStore interface {
	Create(ctx context.Context, log *models.MaterialAuditLog) error
	List(ctx context.Context, filter models.MaterialAuditFilter) ([]models.MaterialAuditLog, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event models.MaterialEvent)
}

type fileRemover interface {
	Delete(filename string) error
}

type moderationObserver interface {
	ObserveModeration(action string)
}

// MaterialServiceConfig holds presentation settings for material payloads.
type MaterialServiceConfig struct {
	APIPrefix string
}

// MaterialService owns the approval state machine and the material queries.
type MaterialService struct {
	repo    materialStore
	audit   auditStore
	events  eventPublisher
	files   fileRemover
	metrics moderationObserver
	logger  *zap.Logger
	cfg     MaterialServiceConfig
}

// NewMaterialService creates a new material service. audit, events, files and metrics are optional.
func NewMaterialService(repo materialStore, audit auditStore, events eventPublisher, files fileRemover, metrics moderationObserver, logger *zap.Logger, cfg MaterialServiceConfig) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	return &MaterialService{repo: repo, audit: audit, events: events, files: files, metrics: metrics, logger: logger, cfg: cfg}
}

// Submit stores a new material in the pending state.
func (s *MaterialService) Submit(ctx context.Context, material *models.Material) error {
	material.Approved = false
	if err := s.repo.Create(ctx, material); err != nil {
		return appErrors.Storage(err, "failed to create material")
	}
	s.decorate(material)
	s.recordTransition(ctx, models.AuditActionUpload, material)
	return nil
}

// Approve moves a pending material to approved. Approving twice is a no-op.
func (s *MaterialService) Approve(ctx context.Context, id int64) error {
	material, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if material.Approved {
		return nil
	}
	if err := s.repo.MarkApproved(ctx, id); err != nil {
		return appErrors.Storage(err, "failed to approve material")
	}
	material.Approved = true
	s.recordTransition(ctx, models.AuditActionApprove, material)
	return nil
}

// Reject removes a material that failed review. Unknown ids succeed silently.
func (s *MaterialService) Reject(ctx context.Context, id int64) error {
	return s.remove(ctx, id, models.AuditActionReject)
}

// Delete removes a material regardless of state. Unknown ids succeed silently.
func (s *MaterialService) Delete(ctx context.Context, id int64) error {
	return s.remove(ctx, id, models.AuditActionDelete)
}

// Get returns one material in any state.
func (s *MaterialService) Get(ctx context.Context, id int64) (*models.Material, error) {
	material, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(material)
	return material, nil
}

// ListPending returns materials awaiting review, newest first.
func (s *MaterialService) ListPending(ctx context.Context) ([]models.Material, error) {
	return s.list(ctx, false)
}

// ListApproved returns publicly visible materials, newest first.
func (s *MaterialService) ListApproved(ctx context.Context) ([]models.Material, error) {
	return s.list(ctx, true)
}

// ListApprovedFiltered narrows ListApproved; materials missing a filtered attribute still match.
func (s *MaterialService) ListApprovedFiltered(ctx context.Context, criteria dto.MaterialFilter) ([]models.Material, error) {
	approved, err := s.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	return FilterMaterials(approved, criteria, NullMatches), nil
}

// ListLegacy narrows ListApproved the way the legacy listing does: missing attributes never match.
func (s *MaterialService) ListLegacy(ctx context.Context, criteria dto.MaterialFilter) (*dto.LegacyMaterialsResponse, error) {
	approved, err := s.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	items := FilterMaterials(approved, criteria, NullFails)
	return &dto.LegacyMaterialsResponse{Items: items, Total: len(items)}, nil
}

// ListUploadsByUser returns everything submitted under name, with its approval state.
func (s *MaterialService) ListUploadsByUser(ctx context.Context, name string) ([]models.Material, error) {
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "uploaderName is required")
	}
	materials, err := s.repo.ListByUploader(ctx, name)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list uploads")
	}
	s.decorateAll(materials)
	return materials, nil
}

// GetStatus reports the moderation state of one material.
func (s *MaterialService) GetStatus(ctx context.Context, id int64) (models.MaterialState, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MaterialStateNotFound, nil
		}
		return "", appErrors.Storage(err, "failed to load material")
	}
	return material.State(), nil
}

// Search finds approved materials whose title, subject or description contains query.
func (s *MaterialService) Search(ctx context.Context, query string) ([]models.Material, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListApproved(ctx)
	}
	materials, err := s.repo.SearchApproved(ctx, query)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to search materials")
	}
	s.decorateAll(materials)
	return materials, nil
}

// AuditTrail returns recorded moderation steps, newest first.
func (s *MaterialService) AuditTrail(ctx context.Context, filter models.MaterialAuditFilter) ([]models.MaterialAuditLog, error) {
	if s.audit == nil {
		return []models.MaterialAuditLog{}, nil
	}
	logs, err := s.audit.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list audit trail")
	}
	return logs, nil
}

func (s *MaterialService) remove(ctx context.Context, id int64, action models.MaterialAuditAction) error {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Storage(err, "failed to load material")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Storage(err, "failed to delete material")
	}
	if material.HasFile() && s.files != nil {
		if err := s.files.Delete(*material.FilePath); err != nil {
			s.logger.Warn("failed to remove material file", zap.Int64("material_id", id), zap.Error(err))
		}
	}
	s.recordTransition(ctx, action, material)
	return nil
}

func (s *MaterialService) load(ctx context.Context, id int64) (*models.Material, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Storage(err, "failed to load material")
	}
	return material, nil
}

func (s *MaterialService) list(ctx context.Context, approved bool) ([]models.Material, error) {
	materials, err := s.repo.ListByApproval(ctx, approved)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list materials")
	}
	s.decorateAll(materials)
	return materials, nil
}

func (s *MaterialService) decorateAll(materials []models.Material) {
	for i := range materials {
		s.decorate(&materials[i])
	}
}

func (s *MaterialService) decorate(material *models.Material) {
	material.FileURL = material.DownloadPath(s.cfg.APIPrefix)
}

// recordTransition writes the audit entry and event for a state change. Failures are logged only.
func (s *MaterialService) recordTransition(ctx context.Context, action models.MaterialAuditAction, material *models.Material) {
	if s.metrics != nil {
		s.metrics.ObserveModeration(string(action))
	}
	if s.audit != nil {
		entry := &models.MaterialAuditLog{
			MaterialID:   material.ID,
			Action:       action,
			Title:        models.StringPtr(material.Title),
			UploaderName: material.UploaderName,
		}
		if err := s.audit.Create(ctx, entry); err != nil {
			s.logger.Warn("failed to record material audit", zap.Int64("material_id", material.ID), zap.String("action", string(action)), zap.Error(err))
		}
	}
	if s.events != nil {
		s.events.Publish(ctx, models.MaterialEvent{
			Type:         action,
			MaterialID:   material.ID,
			Title:        material.Title,
			UploaderName: models.StringValue(material.UploaderName),
			OccurredAt:   time.Now().UTC(),
		})
	}
	s.logger.Info("material transition", zap.Int64("material_id", material.ID), zap.String("action", string(action)))
}
