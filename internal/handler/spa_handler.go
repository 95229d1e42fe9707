package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
	"github.com/noah-isme/student-resources-api/pkg/response"
)

// SPAHandler serves the frontend entry page for client-side routes.
type SPAHandler struct {
	index     string
	apiPrefix string
}

// NewSPAHandler constructs the handler for the given static directory and API prefix.
func NewSPAHandler(staticDir, apiPrefix string) *SPAHandler {
	return &SPAHandler{
		index:     filepath.Join(staticDir, "index.html"),
		apiPrefix: strings.TrimRight(apiPrefix, "/"),
	}
}

// NoRoute answers unmatched requests: GET client routes get index.html, everything else a 404 envelope.
func (h *SPAHandler) NoRoute(c *gin.Context) {
	if c.Request.Method != http.MethodGet || !h.isClientRoute(c.Request.URL.Path) {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	if _, err := os.Stat(h.index); err != nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	c.File(h.index)
}

func (h *SPAHandler) isClientRoute(path string) bool {
	if path == "/favicon.ico" || strings.Contains(path, ".") {
		return false
	}
	for _, prefix := range []string{h.apiPrefix, "/static", "/uploads"} {
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return false
		}
	}
	return true
}
