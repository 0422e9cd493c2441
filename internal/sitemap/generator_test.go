package sitemap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studio-interiors/site-server/internal/cms"
	apperrors "github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/httpclient"
	"github.com/studio-interiors/site-server/pkg/retry"
)

type MockCollectionSource struct {
	mock.Mock
}

func (m *MockCollectionSource) ListCollection(ctx context.Context, collection string, limit int) ([]cms.Document, error) {
	args := m.Called(ctx, collection, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cms.Document), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// recordingSleep captures retry delays without waiting
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func testConfig(t *testing.T, sleeper *recordingSleep) Config {
	t.Helper()
	retryCfg := retry.SitemapConfig()
	retryCfg.Sleep = sleeper.sleep
	return Config{
		BaseURL:    "https://example.com",
		OutputPath: filepath.Join(t.TempDir(), "nested", "sitemap.xml"),
		SitemapURL: "https://example.com/sitemap.xml",
		Retry:      retryCfg,
	}
}

func TestGenerator_Run(t *testing.T) {
	source := new(MockCollectionSource)
	source.On("ListCollection", mock.Anything, "projects", 1000).
		Return([]cms.Document{{Slug: "loft", UpdatedAt: "2024-01-02T03:04:05Z"}, {}}, nil).Once()
	source.On("ListCollection", mock.Anything, "blog-posts", 1000).
		Return([]cms.Document{{Slug: "trends"}}, nil).Once()

	cfg := testConfig(t, &recordingSleep{})
	gen := NewGenerator(source, httpclient.NewStandardClient(), cfg, WithClock(func() time.Time { return fixedNow }))

	result, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 9, result.Entries)
	assert.Zero(t, result.PingsSent)
	assert.Empty(t, result.PublishedTo)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	out := string(data)
	assert.Equal(t, 9, strings.Count(out, "<url>"))
	assert.Contains(t, out, "<loc>https://example.com/portfolio/project-details/loft</loc>")
	assert.Contains(t, out, "<loc>https://example.com/blog/trends</loc>")
	assert.Less(t, strings.Index(out, "/careers"), strings.Index(out, "/portfolio/project-details/loft"))
	assert.Less(t, strings.Index(out, "/portfolio/project-details/loft"), strings.Index(out, "/blog/trends"))
	assert.Equal(t, len(data), result.Bytes)
	source.AssertExpectations(t)
}

func TestGenerator_RetriesThenSucceeds(t *testing.T) {
	source := new(MockCollectionSource)
	source.On("ListCollection", mock.Anything, "projects", 1000).Return(nil, errors.New("timeout")).Twice()
	source.On("ListCollection", mock.Anything, "projects", 1000).Return([]cms.Document{{Slug: "loft"}}, nil).Once()
	source.On("ListCollection", mock.Anything, "blog-posts", 1000).Return([]cms.Document{}, nil).Once()

	sleeper := &recordingSleep{}
	gen := NewGenerator(source, httpclient.NewStandardClient(), testConfig(t, sleeper))

	result, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, len(DefaultStaticRoutes)+1, result.Entries)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
	source.AssertExpectations(t)
}

func TestGenerator_FailsAfterThreeAttempts(t *testing.T) {
	source := new(MockCollectionSource)
	source.On("ListCollection", mock.Anything, "projects", 1000).Return([]cms.Document{}, nil).Maybe()
	source.On("ListCollection", mock.Anything, "blog-posts", 1000).Return(nil, errors.New("status 502")).Times(3)

	cfg := testConfig(t, &recordingSleep{})
	gen := NewGenerator(source, httpclient.NewStandardClient(), cfg)

	result, err := gen.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.NoFileExists(t, cfg.OutputPath)
	source.AssertExpectations(t)
}

func TestGenerator_PingsAreIndependent(t *testing.T) {
	var mu sync.Mutex
	var received []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received = append(received, r.URL.Path+"?"+r.URL.RawQuery)
		mu.Unlock()
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	source := new(MockCollectionSource)
	source.On("ListCollection", mock.Anything, mock.Anything, 1000).Return([]cms.Document{}, nil)

	cfg := testConfig(t, &recordingSleep{})
	cfg.PingURLs = []string{server.URL + "/broken?sitemap=", server.URL + "/ok?sitemap="}
	gen := NewGenerator(source, httpclient.NewStandardClient(), cfg)

	result, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.PingsSent)
	assert.Equal(t, []string{
		"/broken?sitemap=https%3A%2F%2Fexample.com%2Fsitemap.xml",
		"/ok?sitemap=https%3A%2F%2Fexample.com%2Fsitemap.xml",
	}, received)
}

func TestGenerator_Publish(t *testing.T) {
	source := new(MockCollectionSource)
	source.On("ListCollection", mock.Anything, mock.Anything, 1000).Return([]cms.Document{}, nil)

	publisher := new(MockPublisher)
	publisher.On("Upload", mock.Anything, "sitemap.xml", mock.AnythingOfType("[]uint8"), "application/xml").
		Return("https://bucket.example.com/sitemap.xml", nil).Once()

	gen := NewGenerator(source, httpclient.NewStandardClient(), testConfig(t, &recordingSleep{}), WithPublisher(publisher))

	result, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/sitemap.xml", result.PublishedTo)
	publisher.AssertExpectations(t)
}

func TestGenerator_PublishFailureIsNotFatal(t *testing.T) {
	source := new(MockCollectionSource)
	source.On("ListCollection", mock.Anything, mock.Anything, 1000).Return([]cms.Document{}, nil)

	publisher := new(MockPublisher)
	publisher.On("Upload", mock.Anything, "custom.xml", mock.Anything, "application/xml").
		Return("", errors.New("access denied")).Once()

	cfg := testConfig(t, &recordingSleep{})
	cfg.PublishKey = "custom.xml"
	gen := NewGenerator(source, httpclient.NewStandardClient(), cfg, WithPublisher(publisher))

	result, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, result.PublishedTo)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	size, err := Validate(write("ok.xml", string(RenderXML(nil))))
	require.NoError(t, err)
	assert.Positive(t, size)

	for name, content := range map[string]string{
		"empty.xml":     "",
		"no-decl.xml":   "<urlset></urlset>",
		"truncated.xml": `<?xml version="1.0"?><urlset><url>`,
	} {
		_, err := Validate(write(name, content))
		require.Error(t, err, name)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidOutput), name)
	}

	_, err = Validate(filepath.Join(dir, "missing.xml"))
	assert.Error(t, err)
}
