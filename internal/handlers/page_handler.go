package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studio-interiors/site-server/internal/models"
	"github.com/studio-interiors/site-server/internal/seo"
	"github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/metrics"
	"go.uber.org/zap"
)

const (
	shellFile       = "index.html"
	buildMissingMsg = "Build output not found. Run the frontend build before starting the server."
)

// SeoResolver finds the SEO record for a request path
type SeoResolver interface {
	FetchSeoDataForRoute(ctx context.Context, path string) *models.SeoDetails
}

// PageHandler serves built assets and the HTML shell with per-route meta tags
type PageHandler struct {
	distDir  string
	baseURL  string
	resolver SeoResolver
	injector *seo.Injector
}

func NewPageHandler(distDir, baseURL string, resolver SeoResolver, injector *seo.Injector) *PageHandler {
	return &PageHandler{
		distDir:  distDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		resolver: resolver,
		injector: injector,
	}
}

// ShellPath is the location of the built index.html
func (h *PageHandler) ShellPath() string {
	return filepath.Join(h.distDir, shellFile)
}

// Serve handles every route not registered elsewhere
func (h *PageHandler) Serve(c *gin.Context) {
	requestPath := c.Request.URL.Path
	if requestPath == "/api" || strings.HasPrefix(requestPath, "/api/") {
		APINotFound(c)
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		respondError(c, http.StatusNotFound, "Not found", nil)
		return
	}

	if file, ok := h.staticFile(requestPath); ok {
		c.File(file)
		return
	}

	shell, err := os.ReadFile(h.ShellPath())
	if err != nil {
		metrics.PageRenders.WithLabelValues("build_missing").Inc()
		attachError(c, errors.BuildMissingError(h.ShellPath(), err))
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(buildMissingMsg))
		return
	}

	page := h.render(c.Request.Context(), requestPath, string(shell))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// staticFile maps a request path to a regular file inside distDir
func (h *PageHandler) staticFile(requestPath string) (string, bool) {
	clean := path.Clean("/" + requestPath)
	if clean == "/" {
		return "", false
	}
	file := filepath.Join(h.distDir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return file, true
}

// render injects the route's meta tags into shell. Any panic along the way
// yields the unmodified shell.
func (h *PageHandler) render(ctx context.Context, requestPath, shell string) (page string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.PageRenders.WithLabelValues("fallback").Inc()
			logger.Error("Meta tag injection panicked, serving plain shell",
				zap.String("path", requestPath),
				zap.Error(fmt.Errorf("%v", r)))
			page = shell
		}
	}()

	details := h.resolver.FetchSeoDataForRoute(ctx, requestPath)
	if details == nil {
		metrics.PageRenders.WithLabelValues("plain").Inc()
		return shell
	}

	tags := h.injector.GenerateMetaTags(details, h.baseURL+requestPath)
	metrics.PageRenders.WithLabelValues("injected").Inc()
	return seo.InjectMetaTagsIntoHTML(shell, tags)
}
