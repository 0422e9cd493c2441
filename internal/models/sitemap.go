package models

// SitemapEntry is one <url> element of sitemap.xml
type SitemapEntry struct {
	Loc        string
	Priority   float64
	LastMod    string
	ChangeFreq string
}
