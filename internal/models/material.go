package models

import (
	"strconv"
	"time"
)

// MaterialState is the moderation state visible to uploaders.
type MaterialState string

const (
	MaterialStatePending  MaterialState = "pending"
	MaterialStateApproved MaterialState = "approved"
	MaterialStateNotFound MaterialState = "not_found"
)

// Material is one uploaded study resource. Filter dimensions are nullable.
type Material struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Subject      *string   `db:"subject" json:"subject"`
	Description  *string   `db:"description" json:"description"`
	Semester     *string   `db:"semester" json:"semester"`
	GroupName    *string   `db:"group_name" json:"groupName"`
	UploadYear   *string   `db:"upload_year" json:"uploadYear"`
	Type         *string   `db:"type" json:"type"`
	UploaderName *string   `db:"uploader_name" json:"uploaderName"`
	Approved     bool      `db:"approved" json:"approved"`
	FilePath     *string   `db:"file_path" json:"-"`
	FileName     *string   `db:"file_name" json:"fileName,omitempty"`
	MimeType     *string   `db:"mime_type" json:"mimeType,omitempty"`
	SizeBytes    int64     `db:"size_bytes" json:"sizeBytes"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	FileURL      string    `db:"-" json:"fileUrl,omitempty"`
}

// State maps the approval flag onto the moderation state.
func (m *Material) State() MaterialState {
	if m == nil {
		return MaterialStateNotFound
	}
	if m.Approved {
		return MaterialStateApproved
	}
	return MaterialStatePending
}

// HasFile reports whether a stored file backs the material.
func (m *Material) HasFile() bool {
	return m != nil && m.FilePath != nil && *m.FilePath != ""
}

// DownloadPath returns the public download route for the material's file under prefix.
func (m *Material) DownloadPath(prefix string) string {
	if !m.HasFile() {
		return ""
	}
	return prefix + "/files/" + strconv.FormatInt(m.ID, 10)
}

// StringPtr returns nil for blank input so optional columns stay NULL.
func StringPtr(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}

// StringValue dereferences an optional column.
func StringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
