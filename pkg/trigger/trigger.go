package trigger

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/httpclient"
	"github.com/studio-interiors/site-server/pkg/logger"
	"go.uber.org/zap"
)

// Call issues a GET to targetURL and returns an error for transport
// failures or non-2xx responses. The response body is discarded.
func Call(ctx context.Context, httpClient httpclient.Client, targetURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build trigger request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.UpstreamTransportError(targetURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if !httpclient.IsSuccess(resp.StatusCode) {
		return errors.UpstreamStatusError(targetURL, resp.StatusCode, "")
	}
	return nil
}

// CallAll calls every URL independently. A failure is logged and does not
// stop the remaining calls. It returns the number of successful calls.
func CallAll(ctx context.Context, httpClient httpclient.Client, targetURLs []string) int {
	succeeded := 0
	for _, targetURL := range targetURLs {
		if err := Call(ctx, httpClient, targetURL); err != nil {
			logger.Warn("Trigger URL call failed",
				zap.String("url", targetURL),
				zap.Error(err))
			continue
		}
		logger.Info("Trigger URL called successfully", zap.String("url", targetURL))
		succeeded++
	}
	return succeeded
}
