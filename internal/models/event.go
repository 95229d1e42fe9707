package models

import "time"

// MaterialEvent is published whenever a material changes moderation state.
type MaterialEvent struct {
	Type         MaterialAuditAction `json:"type"`
	MaterialID   int64               `json:"materialId"`
	Title        string              `json:"title"`
	UploaderName string              `json:"uploaderName,omitempty"`
	OccurredAt   time.Time           `json:"occurredAt"`
}
