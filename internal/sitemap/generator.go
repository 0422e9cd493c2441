package sitemap

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/studio-interiors/site-server/internal/cms"
	"github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/httpclient"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/retry"
	"github.com/studio-interiors/site-server/pkg/trigger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultFetchLimit = 1000

// CollectionSource lists CMS collections
type CollectionSource interface {
	ListCollection(ctx context.Context, collection string, limit int) ([]cms.Document, error)
}

// Publisher stores the finished sitemap somewhere besides local disk
type Publisher interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Config controls one generator run
type Config struct {
	BaseURL    string
	OutputPath string
	// SitemapURL is the public address announced to search engines
	SitemapURL string
	// PingURLs are endpoint prefixes; the escaped SitemapURL is appended
	PingURLs   []string
	PublishKey string
	FetchLimit int
	Retry      retry.Config
}

// Generator builds sitemap.xml from static routes and CMS collections
type Generator struct {
	source     CollectionSource
	httpClient httpclient.Client
	publisher  Publisher
	cfg        Config
	routes     []StaticRoute
	now        func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithPublisher uploads the sitemap after a successful write
func WithPublisher(p Publisher) Option {
	return func(g *Generator) {
		g.publisher = p
	}
}

// WithClock overrides the time source used for lastmod fallbacks
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithStaticRoutes replaces DefaultStaticRoutes
func WithStaticRoutes(routes []StaticRoute) Option {
	return func(g *Generator) {
		g.routes = routes
	}
}

// NewGenerator creates a generator. httpClient is used for search-engine pings.
func NewGenerator(source CollectionSource, httpClient httpclient.Client, cfg Config, opts ...Option) *Generator {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = defaultFetchLimit
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.SitemapConfig()
	}

	g := &Generator{
		source:     source,
		httpClient: httpClient,
		cfg:        cfg,
		routes:     DefaultStaticRoutes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result summarizes a successful run
type Result struct {
	Entries     int
	Bytes       int
	PingsSent   int
	PublishedTo string
}

// Run generates, writes and validates the sitemap, then notifies search
// engines. Only failures before notification are returned.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(g.cfg.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	projects, posts, err := g.fetchCollections(ctx)
	if err != nil {
		return nil, err
	}

	entries := BuildEntries(g.cfg.BaseURL, g.routes, projects, posts, g.now())
	data := RenderXML(entries)

	if err := os.WriteFile(g.cfg.OutputPath, data, 0o644); err != nil { //nolint:gosec // sitemap is public
		return nil, fmt.Errorf("failed to write sitemap: %w", err)
	}

	size, err := Validate(g.cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	logger.Info("Sitemap written",
		zap.String("path", g.cfg.OutputPath),
		zap.Int("entries", len(entries)),
		zap.Int("projects", len(projects)),
		zap.Int("blog_posts", len(posts)),
		zap.Int64("bytes", size),
		zap.Duration("duration", time.Since(start)))

	result := &Result{Entries: len(entries), Bytes: int(size)}
	result.PingsSent = trigger.CallAll(ctx, g.httpClient, g.pingTargets())
	result.PublishedTo = g.publish(ctx, data)

	return result, nil
}

func (g *Generator) fetchCollections(ctx context.Context) ([]cms.Document, []cms.Document, error) {
	var projects, posts []cms.Document

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		docs, err := g.fetchWithRetry(groupCtx, projectRoutes.collection)
		projects = docs
		return err
	})
	group.Go(func() error {
		docs, err := g.fetchWithRetry(groupCtx, blogRoutes.collection)
		posts = docs
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return projects, posts, nil
}

func (g *Generator) fetchWithRetry(ctx context.Context, collection string) ([]cms.Document, error) {
	return retry.DoWithResult(ctx, g.cfg.Retry, "fetch "+collection, func() ([]cms.Document, error) {
		return g.source.ListCollection(ctx, collection, g.cfg.FetchLimit)
	})
}

func (g *Generator) pingTargets() []string {
	escaped := url.QueryEscape(g.cfg.SitemapURL)
	targets := make([]string, 0, len(g.cfg.PingURLs))
	for _, prefix := range g.cfg.PingURLs {
		targets = append(targets, prefix+escaped)
	}
	return targets
}

func (g *Generator) publish(ctx context.Context, data []byte) string {
	if g.publisher == nil {
		return ""
	}
	key := g.cfg.PublishKey
	if key == "" {
		key = filepath.Base(g.cfg.OutputPath)
	}
	location, err := g.publisher.Upload(ctx, key, data, "application/xml")
	if err != nil {
		logger.Warn("Failed to publish sitemap", zap.String("key", key), zap.Error(err))
		return ""
	}
	logger.Info("Sitemap published", zap.String("url", location))
	return location
}

// Validate re-reads path and checks it holds a complete XML sitemap.
// It returns the stored size.
func Validate(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read back sitemap: %w", err)
	}
	if len(data) == 0 {
		return 0, errors.InvalidOutputError(path, "file is empty")
	}
	if !bytes.Contains(data, []byte("<?xml")) {
		return 0, errors.InvalidOutputError(path, "missing XML declaration")
	}
	if !bytes.Contains(data, []byte("</urlset>")) {
		return 0, errors.InvalidOutputError(path, "missing closing </urlset>")
	}
	return int64(len(data)), nil
}
