package seo

import (
	"context"
	"strings"

	"github.com/studio-interiors/site-server/internal/cms"
	"github.com/studio-interiors/site-server/internal/models"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/metrics"
	"go.uber.org/zap"
)

const (
	BlogPostsCollection = "blog-posts"
	ProjectsCollection  = "projects"

	BlogPathPrefix    = "/blog/"
	ProjectPathPrefix = "/portfolio/project-details/"
)

// RouteEndpoint points a page at the CMS document carrying its SEO block.
// Key names the property the document is nested under, if any.
type RouteEndpoint struct {
	Endpoint string
	Key      string
}

// DefaultRoutes maps the site's fixed pages to their CMS globals
var DefaultRoutes = map[string]RouteEndpoint{
	"/":          {Endpoint: "globals/home-page"},
	"/about":     {Endpoint: "globals/about-page"},
	"/services":  {Endpoint: "globals/services-page"},
	"/portfolio": {Endpoint: "globals/portfolio-page"},
	"/blog":      {Endpoint: "globals/blog-page"},
	"/contact":   {Endpoint: "globals/contact-page"},
	"/careers":   {Endpoint: "globals/careers-page"},
}

// ContentSource is the subset of the CMS client the resolver needs
type ContentSource interface {
	FindBySlug(ctx context.Context, collection, slug string) (*cms.Document, error)
	GetGlobal(ctx context.Context, endpoint, key string) (*cms.Document, error)
}

// Resolver finds the SEO record for a request path
type Resolver struct {
	source ContentSource
	routes map[string]RouteEndpoint
}

// NewResolver creates a resolver over routes; nil routes means DefaultRoutes
func NewResolver(source ContentSource, routes map[string]RouteEndpoint) *Resolver {
	if routes == nil {
		routes = DefaultRoutes
	}
	return &Resolver{source: source, routes: routes}
}

// FetchSeoDataForRoute returns the SEO record for path, or nil when the path
// is unmapped, the document has none, or the CMS call fails. Failures are
// logged; callers serve the page without injected tags.
func (r *Resolver) FetchSeoDataForRoute(ctx context.Context, path string) *models.SeoDetails {
	switch {
	case strings.HasPrefix(path, BlogPathPrefix):
		return r.fetchBySlug(ctx, "blog", BlogPostsCollection, strings.TrimPrefix(path, BlogPathPrefix))
	case strings.HasPrefix(path, ProjectPathPrefix):
		return r.fetchBySlug(ctx, "project", ProjectsCollection, strings.TrimPrefix(path, ProjectPathPrefix))
	}

	route, ok := r.routes[path]
	if !ok {
		metrics.SeoLookups.WithLabelValues("static", "unmapped").Inc()
		return nil
	}

	doc, err := r.source.GetGlobal(ctx, route.Endpoint, route.Key)
	if err != nil {
		metrics.SeoLookups.WithLabelValues("static", "error").Inc()
		logger.Warn("Failed to fetch SEO data for route",
			zap.String("path", path),
			zap.String("endpoint", route.Endpoint),
			zap.Error(err))
		return nil
	}

	return seoFrom(doc, "static")
}

func (r *Resolver) fetchBySlug(ctx context.Context, kind, collection, slug string) *models.SeoDetails {
	if slug == "" {
		metrics.SeoLookups.WithLabelValues(kind, "unmapped").Inc()
		return nil
	}

	doc, err := r.source.FindBySlug(ctx, collection, slug)
	if err != nil {
		metrics.SeoLookups.WithLabelValues(kind, "error").Inc()
		logger.Warn("Failed to fetch SEO data by slug",
			zap.String("collection", collection),
			zap.String("slug", slug),
			zap.Error(err))
		return nil
	}

	return seoFrom(doc, kind)
}

func seoFrom(doc *cms.Document, kind string) *models.SeoDetails {
	if doc == nil || doc.SeoDetails == nil {
		metrics.SeoLookups.WithLabelValues(kind, "empty").Inc()
		return nil
	}
	metrics.SeoLookups.WithLabelValues(kind, "found").Inc()
	return doc.SeoDetails
}
