package models

import "time"

// MaterialAuditAction names a moderation step recorded in the audit trail.
type MaterialAuditAction string

const (
	AuditActionUpload  MaterialAuditAction = "UPLOAD"
	AuditActionApprove MaterialAuditAction = "APPROVE"
	AuditActionReject  MaterialAuditAction = "REJECT"
	AuditActionDelete  MaterialAuditAction = "DELETE"
)

// MaterialAuditLog keeps the moderation history after a material row is removed.
type MaterialAuditLog struct {
	ID           string              `db:"id" json:"id"`
	MaterialID   int64               `db:"material_id" json:"materialId"`
	Action       MaterialAuditAction `db:"action" json:"action"`
	Title        *string             `db:"title" json:"title,omitempty"`
	UploaderName *string             `db:"uploader_name" json:"uploaderName,omitempty"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
}

// MaterialAuditFilter narrows audit listings.
type MaterialAuditFilter struct {
	MaterialID int64
	Limit      int
}
