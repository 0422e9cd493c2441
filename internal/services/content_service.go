package services

import (
	"context"
	"encoding/json"

	"github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/metrics"
	"go.uber.org/zap"
)

// ProxiedCollections are the CMS collections exposed read-only under /api
var ProxiedCollections = []string{"team-members", "projects", "testimonials", "offices"}

// RawFetcher returns a CMS endpoint's body untouched
type RawFetcher interface {
	GetRaw(ctx context.Context, endpoint, rawQuery string) ([]byte, error)
}

// ContentService relays CMS collection queries
type ContentService struct {
	cms RawFetcher
}

// NewContentService creates a new content service instance
func NewContentService(cms RawFetcher) *ContentService {
	return &ContentService{cms: cms}
}

// GetCollection forwards rawQuery to collection and returns the JSON body.
// Any upstream failure, including a body that is not JSON, is an error.
func (s *ContentService) GetCollection(ctx context.Context, collection, rawQuery string) (json.RawMessage, error) {
	body, err := s.cms.GetRaw(ctx, collection, rawQuery)
	if err != nil {
		metrics.ProxyRequests.WithLabelValues(collection, "error").Inc()
		logger.Warn("CMS proxy request failed",
			zap.String("collection", collection),
			zap.Error(err))
		return nil, err
	}

	if !json.Valid(body) {
		metrics.ProxyRequests.WithLabelValues(collection, "invalid").Inc()
		logger.Warn("CMS proxy returned non-JSON body", zap.String("collection", collection))
		return nil, errors.UpstreamStatusError("cms", 0, collection+" response is not JSON")
	}

	metrics.ProxyRequests.WithLabelValues(collection, "success").Inc()
	return body, nil
}
