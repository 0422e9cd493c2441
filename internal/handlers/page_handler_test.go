package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studio-interiors/site-server/internal/handlers"
	"github.com/studio-interiors/site-server/internal/models"
	"github.com/studio-interiors/site-server/internal/seo"
)

const testShell = "<html><head><meta charset=\"utf-8\"></head><body><div id=\"root\"></div></body></html>"

// MockSeoResolver implements handlers.SeoResolver for testing
type MockSeoResolver struct {
	mock.Mock
}

func (m *MockSeoResolver) FetchSeoDataForRoute(ctx context.Context, path string) *models.SeoDetails {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.SeoDetails)
}

type panickingResolver struct{}

func (panickingResolver) FetchSeoDataForRoute(context.Context, string) *models.SeoDetails {
	panic("unexpected document shape")
}

func newDist(t *testing.T, withShell bool) string {
	t.Helper()
	dir := t.TempDir()
	if withShell {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(testShell), 0o600))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o600))
	return dir
}

func newPageRouter(handler *handlers.PageHandler) *gin.Engine {
	router := gin.New()
	router.NoRoute(handler.Serve)
	return router
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, http.NoBody))
	return w
}

func TestPageHandler_InjectsMetaTags(t *testing.T) {
	resolver := new(MockSeoResolver)
	resolver.On("FetchSeoDataForRoute", mock.Anything, "/blog/winter-trends").
		Return(&models.SeoDetails{MetaTitle: "Winter Trends", MetaDescription: "Cosy & warm"}).Once()

	handler := handlers.NewPageHandler(newDist(t, true), "https://example.com/", resolver, seo.NewInjector("Studio"))
	w := serve(newPageRouter(handler), "GET", "/blog/winter-trends?ref=home")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<title>Winter Trends</title>")
	assert.Contains(t, body, `<meta name="description" content="Cosy &amp; warm" />`)
	assert.Contains(t, body, `<link rel="canonical" href="https://example.com/blog/winter-trends" />`)
	assert.Contains(t, body, `<meta name="twitter:card" content="summary_large_image" /></head>`)
	assert.Contains(t, body, `<div id="root"></div>`)
	resolver.AssertExpectations(t)
}

func TestPageHandler_NoSeoServesShell(t *testing.T) {
	resolver := new(MockSeoResolver)
	resolver.On("FetchSeoDataForRoute", mock.Anything, "/unknown-page").Return(nil).Once()

	handler := handlers.NewPageHandler(newDist(t, true), "https://example.com", resolver, seo.NewInjector("Studio"))
	w := serve(newPageRouter(handler), "GET", "/unknown-page")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testShell, w.Body.String())
}

func TestPageHandler_PanicServesShell(t *testing.T) {
	handler := handlers.NewPageHandler(newDist(t, true), "https://example.com", panickingResolver{}, seo.NewInjector("Studio"))
	w := serve(newPageRouter(handler), "GET", "/about")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testShell, w.Body.String())
}

func TestPageHandler_BuildMissing(t *testing.T) {
	resolver := new(MockSeoResolver)
	handler := handlers.NewPageHandler(newDist(t, false), "https://example.com", resolver, seo.NewInjector("Studio"))
	w := serve(newPageRouter(handler), "GET", "/about")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Build output not found. Run the frontend build before starting the server.", w.Body.String())
	resolver.AssertNotCalled(t, "FetchSeoDataForRoute", mock.Anything, mock.Anything)
}

func TestPageHandler_StaticAsset(t *testing.T) {
	resolver := new(MockSeoResolver)
	handler := handlers.NewPageHandler(newDist(t, true), "https://example.com", resolver, seo.NewInjector("Studio"))
	w := serve(newPageRouter(handler), "GET", "/assets/app.js")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())
	resolver.AssertNotCalled(t, "FetchSeoDataForRoute", mock.Anything, mock.Anything)
}

func TestPageHandler_TraversalStaysInDist(t *testing.T) {
	parent := t.TempDir()
	dist := filepath.Join(parent, "dist")
	require.NoError(t, os.MkdirAll(dist, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte(testShell), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("top secret"), 0o600))

	resolver := new(MockSeoResolver)
	resolver.On("FetchSeoDataForRoute", mock.Anything, mock.Anything).Return(nil)

	handler := handlers.NewPageHandler(dist, "https://example.com", resolver, seo.NewInjector("Studio"))
	w := serve(newPageRouter(handler), "GET", "/../secret.txt")

	assert.NotContains(t, w.Body.String(), "top secret")
}

func TestPageHandler_UnknownAPIRoute(t *testing.T) {
	resolver := new(MockSeoResolver)
	handler := handlers.NewPageHandler(newDist(t, true), "https://example.com", resolver, seo.NewInjector("Studio"))
	router := newPageRouter(handler)

	for _, target := range []string{"/api/unknown", "/api"} {
		w := serve(router, "GET", target)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String(), target)
	}
	resolver.AssertNotCalled(t, "FetchSeoDataForRoute", mock.Anything, mock.Anything)
}

func TestPageHandler_NonGetMethod(t *testing.T) {
	resolver := new(MockSeoResolver)
	handler := handlers.NewPageHandler(newDist(t, true), "https://example.com", resolver, seo.NewInjector("Studio"))
	w := serve(newPageRouter(handler), "POST", "/about")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPageHandler_ShellReadPerRequest(t *testing.T) {
	dist := newDist(t, true)
	resolver := new(MockSeoResolver)
	resolver.On("FetchSeoDataForRoute", mock.Anything, "/").Return(nil)

	handler := handlers.NewPageHandler(dist, "https://example.com", resolver, seo.NewInjector("Studio"))
	router := newPageRouter(handler)

	assert.Equal(t, testShell, serve(router, "GET", "/").Body.String())

	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html><head></head>v2</html>"), 0o600))
	assert.Equal(t, "<html><head></head>v2</html>", serve(router, "GET", "/").Body.String())
}
