package trigger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/httpclient"
)

func TestCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	client := httpclient.NewStandardClient()

	require.NoError(t, Call(context.Background(), client, server.URL+"/ok"))

	err := Call(context.Background(), client, server.URL+"/gone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
	assert.Contains(t, err.Error(), "status 410")
}

func TestCallAll_ContinuesAfterFailure(t *testing.T) {
	var hits []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		if r.URL.Path == "/first" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	succeeded := CallAll(context.Background(), httpclient.NewStandardClient(), []string{
		server.URL + "/first",
		"http://127.0.0.1:1/unreachable",
		server.URL + "/second",
	})

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, []string{"/first", "/second"}, hits)
}
