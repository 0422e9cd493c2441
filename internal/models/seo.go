package models

import "encoding/json"

// SeoDetails is the SEO block attached to CMS pages, projects and blog posts.
// StructuredData is kept raw: editors paste either a JSON-LD object or a
// string that may still carry its <script> wrapper.
type SeoDetails struct {
	MetaTitle       string          `json:"metaTitle,omitempty"`
	MetaDescription string          `json:"metaDescription,omitempty"`
	MetaKey         string          `json:"metaKey,omitempty"`
	StructuredData  json.RawMessage `json:"seoStructuredData,omitempty"`
}
