package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS materials (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			subject TEXT NULL,
			description TEXT NULL,
			semester TEXT NULL,
			group_name TEXT NULL,
			upload_year TEXT NULL,
			type TEXT NULL,
			uploader_name TEXT NULL,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			file_path TEXT NULL,
			file_name TEXT NULL,
			mime_type TEXT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_approved ON materials (approved, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_uploader ON materials (uploader_name, id DESC)`,
		`CREATE TABLE IF NOT EXISTS material_audit_logs (
			id TEXT PRIMARY KEY,
			material_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			title TEXT NULL,
			uploader_name TEXT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_material_audit_material ON material_audit_logs (material_id)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS materials (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			subject VARCHAR(255) NULL,
			description TEXT NULL,
			semester VARCHAR(64) NULL,
			group_name VARCHAR(64) NULL,
			upload_year VARCHAR(16) NULL,
			type VARCHAR(64) NULL,
			uploader_name VARCHAR(255) NULL,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			file_path VARCHAR(512) NULL,
			file_name VARCHAR(255) NULL,
			mime_type VARCHAR(255) NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_materials_approved (approved, id),
			INDEX idx_materials_uploader (uploader_name, id)
		)`,
		`CREATE TABLE IF NOT EXISTS material_audit_logs (
			id VARCHAR(36) PRIMARY KEY,
			material_id BIGINT NOT NULL,
			action VARCHAR(32) NOT NULL,
			title VARCHAR(255) NULL,
			uploader_name VARCHAR(255) NULL,
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_material_audit_material (material_id)
		)`,
	},
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS materials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			subject TEXT NULL,
			description TEXT NULL,
			semester TEXT NULL,
			group_name TEXT NULL,
			upload_year TEXT NULL,
			type TEXT NULL,
			uploader_name TEXT NULL,
			approved BOOLEAN NOT NULL DEFAULT 0,
			file_path TEXT NULL,
			file_name TEXT NULL,
			mime_type TEXT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_approved ON materials (approved, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_uploader ON materials (uploader_name, id DESC)`,
		`CREATE TABLE IF NOT EXISTS material_audit_logs (
			id TEXT PRIMARY KEY,
			material_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			title TEXT NULL,
			uploader_name TEXT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_material_audit_material ON material_audit_logs (material_id)`,
	},
}

// Migrate creates the tables the service needs if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
