package seo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/studio-interiors/site-server/internal/models"
	"github.com/studio-interiors/site-server/pkg/logger"
	"go.uber.org/zap"
)

const headClose = "</head>"

var scriptTagPattern = regexp.MustCompile(`(?i)<script[^>]*>|</script\s*>`)

// Injector renders SEO tags for one site
type Injector struct {
	siteName string
}

// NewInjector creates an injector that stamps og:site_name with siteName
func NewInjector(siteName string) *Injector {
	return &Injector{siteName: siteName}
}

// GenerateMetaTags renders the head tags for seo. A nil record yields "".
func (i *Injector) GenerateMetaTags(seo *models.SeoDetails, canonicalURL string) string {
	if seo == nil {
		return ""
	}

	var tags []string

	if seo.MetaTitle != "" {
		title := EscapeHTML(seo.MetaTitle)
		tags = append(tags,
			fmt.Sprintf("<title>%s</title>", title),
			fmt.Sprintf(`<meta property="og:title" content="%s" />`, title),
			fmt.Sprintf(`<meta name="twitter:title" content="%s" />`, title),
		)
	}

	if seo.MetaDescription != "" {
		description := EscapeHTML(seo.MetaDescription)
		tags = append(tags,
			fmt.Sprintf(`<meta name="description" content="%s" />`, description),
			fmt.Sprintf(`<meta property="og:description" content="%s" />`, description),
			fmt.Sprintf(`<meta name="twitter:description" content="%s" />`, description),
		)
	}

	if seo.MetaKey != "" {
		tags = append(tags, fmt.Sprintf(`<meta name="keywords" content="%s" />`, EscapeHTML(seo.MetaKey)))
	}

	if canonicalURL != "" {
		canonical := EscapeHTML(canonicalURL)
		tags = append(tags,
			fmt.Sprintf(`<link rel="canonical" href="%s" />`, canonical),
			fmt.Sprintf(`<meta property="og:url" content="%s" />`, canonical),
		)
	}

	tags = append(tags,
		`<meta property="og:type" content="website" />`,
		fmt.Sprintf(`<meta property="og:site_name" content="%s" />`, EscapeHTML(i.siteName)),
		`<meta name="twitter:card" content="summary_large_image" />`,
	)

	if jsonLD, ok := normalizeStructuredData(seo.StructuredData); ok {
		tags = append(tags, fmt.Sprintf(`<script type="application/ld+json">%s</script>`, jsonLD))
	}

	return strings.Join(tags, "\n")
}

// InjectMetaTagsIntoHTML inserts metaTags before the first </head>.
// HTML without </head> is returned unchanged.
func InjectMetaTagsIntoHTML(html, metaTags string) string {
	if metaTags == "" {
		return html
	}
	return strings.Replace(html, headClose, metaTags+headClose, 1)
}

// normalizeStructuredData accepts either a JSON value or a JSON string holding
// the JSON-LD text (optionally still wrapped in <script> tags) and returns a
// compact encoding that is safe inside a script element.
func normalizeStructuredData(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	var value any
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			logger.Warn("Invalid structured data string", zap.Error(err))
			return "", false
		}
		text = strings.TrimSpace(scriptTagPattern.ReplaceAllString(text, ""))
		if text == "" {
			return "", false
		}
		if err := json.Unmarshal([]byte(text), &value); err != nil {
			logger.Warn("Failed to parse structured data, omitting JSON-LD",
				zap.Error(err),
				zap.Int("length", len(text)))
			return "", false
		}
	} else if err := json.Unmarshal(trimmed, &value); err != nil {
		logger.Warn("Failed to parse structured data, omitting JSON-LD", zap.Error(err))
		return "", false
	}

	switch value.(type) {
	case map[string]any, []any:
	default:
		logger.Warn("Structured data is not a JSON object or array, omitting JSON-LD",
			zap.String("type", fmt.Sprintf("%T", value)))
		return "", false
	}

	// json.Marshal escapes <, > and & so the payload cannot close the script element.
	encoded, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode structured data", zap.Error(err))
		return "", false
	}
	return string(encoded), true
}
