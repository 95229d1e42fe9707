package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-resources-api/internal/models"
)

const materialColumns = `id, title, subject, description, semester, group_name, upload_year, type, uploader_name, approved, file_path, file_name, mime_type, size_bytes, created_at`

// QueryObserver receives timings for executed statements.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// MaterialRepository handles persistence for materials.
type MaterialRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewMaterialRepository creates a new repository instance.
func NewMaterialRepository(db *sqlx.DB, observer QueryObserver) *MaterialRepository {
	return &MaterialRepository{db: db, observer: observer}
}

// Create persists a new material and assigns its identifier.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	defer r.observe("materials.create", time.Now())
	if material.CreatedAt.IsZero() {
		material.CreatedAt = time.Now().UTC()
	}

	const insert = `INSERT INTO materials (title, subject, description, semester, group_name, upload_year, type, uploader_name, approved, file_path, file_name, mime_type, size_bytes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []interface{}{
		material.Title, material.Subject, material.Description, material.Semester, material.GroupName,
		material.UploadYear, material.Type, material.UploaderName, material.Approved, material.FilePath,
		material.FileName, material.MimeType, material.SizeBytes, material.CreatedAt,
	}

	if sqlx.BindType(r.db.DriverName()) == sqlx.DOLLAR {
		var id int64
		if err := r.db.QueryRowxContext(ctx, r.db.Rebind(insert+" RETURNING id"), args...).Scan(&id); err != nil {
			return fmt.Errorf("create material: %w", err)
		}
		material.ID = id
		return nil
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(insert), args...)
	if err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read material id: %w", err)
	}
	material.ID = id
	return nil
}

// FindByID returns a material by id; sql.ErrNoRows is returned unwrapped when absent.
func (r *MaterialRepository) FindByID(ctx context.Context, id int64) (*models.Material, error) {
	defer r.observe("materials.find_by_id", time.Now())
	query := r.db.Rebind(`SELECT ` + materialColumns + ` FROM materials WHERE id = ?`)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// MarkApproved flips the approval flag on; it never clears it.
func (r *MaterialRepository) MarkApproved(ctx context.Context, id int64) error {
	defer r.observe("materials.mark_approved", time.Now())
	query := r.db.Rebind(`UPDATE materials SET approved = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, true, id); err != nil {
		return fmt.Errorf("approve material: %w", err)
	}
	return nil
}

// Delete removes a material record. Missing ids are not an error.
func (r *MaterialRepository) Delete(ctx context.Context, id int64) error {
	defer r.observe("materials.delete", time.Now())
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM materials WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}

// ListByApproval returns materials in the given approval state, newest first.
func (r *MaterialRepository) ListByApproval(ctx context.Context, approved bool) ([]models.Material, error) {
	defer r.observe("materials.list_by_approval", time.Now())
	query := r.db.Rebind(`SELECT ` + materialColumns + ` FROM materials WHERE approved = ? ORDER BY id DESC`)
	materials := []models.Material{}
	if err := r.db.SelectContext(ctx, &materials, query, approved); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// ListByUploader returns every material submitted under name, newest first.
func (r *MaterialRepository) ListByUploader(ctx context.Context, name string) ([]models.Material, error) {
	defer r.observe("materials.list_by_uploader", time.Now())
	query := r.db.Rebind(`SELECT ` + materialColumns + ` FROM materials WHERE uploader_name = ? ORDER BY id DESC`)
	materials := []models.Material{}
	if err := r.db.SelectContext(ctx, &materials, query, name); err != nil {
		return nil, fmt.Errorf("list uploader materials: %w", err)
	}
	return materials, nil
}

// SearchApproved matches term case-insensitively against title, subject or description.
func (r *MaterialRepository) SearchApproved(ctx context.Context, term string) ([]models.Material, error) {
	defer r.observe("materials.search_approved", time.Now())
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	query := r.db.Rebind(`SELECT ` + materialColumns + ` FROM materials
	WHERE approved = ? AND (LOWER(title) LIKE ? ESCAPE '!' OR LOWER(subject) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')
	ORDER BY id DESC`)
	materials := []models.Material{}
	if err := r.db.SelectContext(ctx, &materials, query, true, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("search materials: %w", err)
	}
	return materials, nil
}

func (r *MaterialRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

func escapeLike(raw string) string {
	replacer := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return replacer.Replace(raw)
}
