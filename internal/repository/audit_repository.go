package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-resources-api/internal/models"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// AuditRepository persists the material moderation trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores an audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *models.MaterialAuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO material_audit_logs (id, material_id, action, title, uploader_name, created_at) VALUES (:id, :material_id, :action, :title, :uploader_name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns audit entries newest first, optionally scoped to one material.
func (r *AuditRepository) List(ctx context.Context, filter models.MaterialAuditFilter) ([]models.MaterialAuditLog, error) {
	query := `SELECT id, material_id, action, title, uploader_name, created_at FROM material_audit_logs`
	args := make([]interface{}, 0, 1)
	if filter.MaterialID > 0 {
		query += ` WHERE material_id = ?`
		args = append(args, filter.MaterialID)
	}
	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, material_id DESC, action LIMIT %d`, limit)

	logs := []models.MaterialAuditLog{}
	if err := r.db.SelectContext(ctx, &logs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
