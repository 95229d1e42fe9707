package dto

import "github.com/noah-isme/student-resources-api/internal/models"

// MaterialFilter carries the five optional listing criteria as received from the query string.
type MaterialFilter struct {
	Semester string `form:"semester"`
	Subject  string `form:"subject"`
	Group    string `form:"group"`
	Year     string `form:"year"`
	Type     string `form:"type"`
}

// UploadMaterialRequest contains metadata submitted alongside a file upload.
type UploadMaterialRequest struct {
	Title        string `form:"title" json:"title" validate:"required,max=255"`
	Subject      string `form:"subject" json:"subject" validate:"max=255"`
	Description  string `form:"description" json:"description" validate:"max=4000"`
	Semester     string `form:"semester" json:"semester" validate:"max=64"`
	GroupName    string `form:"groupName" json:"groupName" validate:"max=64"`
	UploadYear   string `form:"uploadYear" json:"uploadYear" validate:"max=16"`
	Type         string `form:"type" json:"type" validate:"max=64"`
	UploaderName string `form:"uploaderName" json:"uploaderName" validate:"max=255"`
}

// LegacyMaterialsResponse is the `{items, total}` shape served by the legacy listing.
type LegacyMaterialsResponse struct {
	Items []models.Material `json:"items"`
	Total int               `json:"total"`
}

// DownloadURLResponse wraps a signed, time-limited download link.
type DownloadURLResponse struct {
	MaterialID  int64  `json:"materialId"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
}
