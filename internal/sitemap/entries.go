package sitemap

import (
	"strconv"
	"strings"
	"time"

	"github.com/studio-interiors/site-server/internal/cms"
	"github.com/studio-interiors/site-server/internal/models"
	"github.com/studio-interiors/site-server/internal/seo"
	"github.com/studio-interiors/site-server/pkg/logger"
	"go.uber.org/zap"
)

// isoLayout matches JavaScript's Date.prototype.toISOString for UTC times
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// StaticRoute is a fixed page listed in every sitemap
type StaticRoute struct {
	Path       string
	Priority   float64
	ChangeFreq string
}

// DefaultStaticRoutes are listed first, in this order
var DefaultStaticRoutes = []StaticRoute{
	{Path: "/", Priority: 1.0, ChangeFreq: "weekly"},
	{Path: "/about", Priority: 0.8, ChangeFreq: "monthly"},
	{Path: "/services", Priority: 0.9, ChangeFreq: "monthly"},
	{Path: "/portfolio", Priority: 0.9, ChangeFreq: "weekly"},
	{Path: "/blog", Priority: 0.8, ChangeFreq: "daily"},
	{Path: "/contact", Priority: 0.7, ChangeFreq: "yearly"},
	{Path: "/careers", Priority: 0.5, ChangeFreq: "monthly"},
}

// dynamicRoute describes how a collection's documents become URLs
type dynamicRoute struct {
	collection string
	prefix     string
	priority   float64
	changeFreq string
}

var (
	projectRoutes = dynamicRoute{
		collection: seo.ProjectsCollection,
		prefix:     seo.ProjectPathPrefix,
		priority:   0.7,
		changeFreq: "monthly",
	}
	blogRoutes = dynamicRoute{
		collection: seo.BlogPostsCollection,
		prefix:     seo.BlogPathPrefix,
		priority:   0.6,
		changeFreq: "monthly",
	}
)

// BuildEntries lists static routes, then projects, then blog posts.
// Documents without a slug are skipped with a warning.
func BuildEntries(baseURL string, static []StaticRoute, projects, posts []cms.Document, now time.Time) []models.SitemapEntry {
	baseURL = strings.TrimRight(baseURL, "/")
	nowISO := now.UTC().Format(isoLayout)

	entries := make([]models.SitemapEntry, 0, len(static)+len(projects)+len(posts))
	for _, route := range static {
		entries = append(entries, models.SitemapEntry{
			Loc:        baseURL + route.Path,
			Priority:   route.Priority,
			LastMod:    nowISO,
			ChangeFreq: route.ChangeFreq,
		})
	}

	entries = appendDocuments(entries, baseURL, projectRoutes, projects, now)
	entries = appendDocuments(entries, baseURL, blogRoutes, posts, now)
	return entries
}

func appendDocuments(entries []models.SitemapEntry, baseURL string, route dynamicRoute, docs []cms.Document, now time.Time) []models.SitemapEntry {
	for i, doc := range docs {
		if doc.Slug == "" {
			logger.Warn("Skipping document without slug",
				zap.String("collection", route.collection),
				zap.Int("index", i))
			continue
		}
		entries = append(entries, models.SitemapEntry{
			Loc:        baseURL + route.prefix + doc.Slug,
			Priority:   route.priority,
			LastMod:    LastModified(doc, now),
			ChangeFreq: route.changeFreq,
		})
	}
	return entries
}

// LastModified picks updatedAt, then createdAt, then now, as ISO-8601 UTC.
// Timestamps that do not parse are treated as absent.
func LastModified(doc cms.Document, now time.Time) string {
	for _, candidate := range []string{doc.UpdatedAt, doc.CreatedAt} {
		if candidate == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, candidate); err == nil {
			return t.UTC().Format(isoLayout)
		}
		logger.Warn("Ignoring unparseable timestamp", zap.String("value", candidate))
	}
	return now.UTC().Format(isoLayout)
}

// RenderXML serializes entries as a sitemaps.org 0.9 urlset
func RenderXML(entries []models.SitemapEntry) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		b.WriteString("  <url>\n")
		b.WriteString("    <loc>" + seo.EscapeHTML(entry.Loc) + "</loc>\n")
		b.WriteString("    <priority>" + strconv.FormatFloat(entry.Priority, 'f', 1, 64) + "</priority>\n")
		b.WriteString("    <lastmod>" + seo.EscapeHTML(entry.LastMod) + "</lastmod>\n")
		if entry.ChangeFreq != "" {
			b.WriteString("    <changefreq>" + seo.EscapeHTML(entry.ChangeFreq) + "</changefreq>\n")
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString("</urlset>\n")
	return []byte(b.String())
}
