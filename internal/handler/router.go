package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-resources-api/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Materials *MaterialHandler
	Admin     *AdminHandler
	User      *UserHandler
	Uploads   *UploadHandler
	Files     *FileHandler
	Metrics   *MetricsHandler
	SPA       *SPAHandler
}

// RegisterRoutes mounts the API under prefix, /metrics at the root and the SPA fallback.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	api := r.Group(prefix)

	if h.Metrics != nil {
		api.GET("/health", h.Metrics.Health)
		api.GET("/test", h.Metrics.Test)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	if h.Materials != nil {
		api.GET("/materials", h.Materials.List)
		api.GET("/materials/search", h.Materials.Search)
		api.GET("/legacy/materials", middleware.Deprecated(strings.TrimRight(prefix, "/")+"/materials"), h.Materials.Legacy)
	}

	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.GET("/pending", h.Admin.Pending)
		admin.GET("/approved", h.Admin.Approved)
		admin.PUT("/approve/:id", h.Admin.Approve)
		admin.DELETE("/reject/:id", h.Admin.Reject)
		admin.DELETE("/delete/:id", h.Admin.Delete)
		admin.GET("/audit", h.Admin.Audit)
		admin.GET("/export", h.Admin.Export)
		admin.GET("/materials/:id/download-url", h.Admin.DownloadURL)
	}

	if h.User != nil {
		user := api.Group("/user")
		user.GET("/uploads", h.User.Uploads)
		user.GET("/status/:id", h.User.Status)
	}

	if h.Uploads != nil {
		api.POST("/uploads", h.Uploads.Upload)
	}

	if h.Files != nil {
		api.GET("/files/signed", h.Files.Signed)
		api.GET("/files/:id", h.Files.Download)
	}

	if h.SPA != nil {
		r.NoRoute(h.SPA.NoRoute)
	}
}
