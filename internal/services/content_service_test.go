package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studio-interiors/site-server/internal/services"
)

func TestContentService_GetCollection(t *testing.T) {
	fetcher := new(MockRawFetcher)
	service := services.NewContentService(fetcher)
	ctx := context.Background()

	fetcher.On("GetRaw", ctx, "team-members", "limit=5&sort=order").
		Return([]byte(`{"docs":[{"name":"Ana"}],"totalDocs":1}`), nil).Once()

	body, err := service.GetCollection(ctx, "team-members", "limit=5&sort=order")

	require.NoError(t, err)
	assert.JSONEq(t, `{"docs":[{"name":"Ana"}],"totalDocs":1}`, string(body))
	fetcher.AssertExpectations(t)
}

func TestContentService_GetCollection_UpstreamError(t *testing.T) {
	fetcher := new(MockRawFetcher)
	service := services.NewContentService(fetcher)
	ctx := context.Background()

	fetcher.On("GetRaw", ctx, "offices", "").Return(nil, errors.New("circuit breaker 'cms' is open")).Once()

	body, err := service.GetCollection(ctx, "offices", "")

	assert.Error(t, err)
	assert.Nil(t, body)
}

func TestContentService_GetCollection_NotJSON(t *testing.T) {
	fetcher := new(MockRawFetcher)
	service := services.NewContentService(fetcher)
	ctx := context.Background()

	fetcher.On("GetRaw", ctx, "testimonials", "").Return([]byte("<html>maintenance</html>"), nil).Once()

	body, err := service.GetCollection(ctx, "testimonials", "")

	assert.Error(t, err)
	assert.Nil(t, body)
}
