package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/studio-interiors/site-server/config"
	"github.com/studio-interiors/site-server/internal/models"
	"github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/httpclient"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/metrics"
	"go.uber.org/zap"
)

const (
	emailService    = "email"
	jsonContentType = "application/json; charset=utf-8"
)

// newEmailPolicy extends the UGC policy with inline styles and table layout
// attributes. <style> blocks are still removed.
func newEmailPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("style").Globally()
	policy.AllowStyles(
		"color", "background-color", "font-family", "font-size", "font-weight", "font-style",
		"line-height", "text-align", "text-decoration", "margin", "padding", "border",
		"width", "max-width", "height",
	).Globally()
	policy.AllowAttrs("align", "bgcolor", "width", "cellpadding", "cellspacing", "border").
		OnElements("table", "td", "th", "tr")
	return policy
}

// EmailService forwards contact form submissions to the email provider
type EmailService struct {
	config     config.EmailConfig
	httpClient httpclient.Client
	policy     *bluemonday.Policy
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.EmailConfig, httpClient httpclient.Client) *EmailService {
	return &EmailService{
		config:     cfg,
		httpClient: httpClient,
		policy:     newEmailPolicy(),
	}
}

// Send sanitizes the message body and posts it to the provider. On a
// provider rejection the returned error is an *errors.UpstreamError whose
// Message holds the provider's explanation, when it gave one.
func (s *EmailService) Send(ctx context.Context, req *models.SendEmailRequest) (*models.SendEmailResult, error) {
	start := time.Now()

	if s.config.APIKey == "" {
		metrics.EmailSubmissions.WithLabelValues("not_configured").Inc()
		logger.Error("Email API key is not configured")
		return nil, errors.UpstreamStatusError(emailService, http.StatusInternalServerError, "")
	}

	payload, err := json.Marshal(models.ProviderEmail{
		From:    s.config.From,
		To:      s.config.To,
		Subject: req.Subject,
		HTML:    s.policy.Sanitize(req.HTML),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.EmailSubmissions.WithLabelValues("error").Inc()
		logger.LogAPICall(ctx, emailService, "send", "error", metrics.MeasureDuration(start), zap.Error(err))
		return nil, errors.UpstreamTransportError(emailService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.EmailSubmissions.WithLabelValues("error").Inc()
		return nil, errors.UpstreamTransportError(emailService, err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		logger.LogAPICall(ctx, emailService, "send", "error", metrics.MeasureDuration(start),
			zap.Int("status_code", resp.StatusCode))
		metrics.EmailSubmissions.WithLabelValues("rejected").Inc()
		var providerErr models.ProviderError
		_ = json.Unmarshal(body, &providerErr) //nolint:errcheck // message is optional
		logger.Warn("Email provider rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("provider_error", providerErr.Name),
			zap.String("message", providerErr.Message))
		return nil, errors.UpstreamStatusError(emailService, resp.StatusCode, providerErr.Message)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = jsonContentType
	}
	if !json.Valid(body) {
		logger.Warn("Email provider returned a non-JSON success body",
			zap.Int("status", resp.StatusCode),
			zap.String("content_type", contentType),
			zap.Int("length", len(body)))
	}

	logger.LogAPICall(ctx, emailService, "send", "success", metrics.MeasureDuration(start))
	metrics.EmailSubmissions.WithLabelValues("success").Inc()
	return &models.SendEmailResult{Body: body, ContentType: contentType}, nil
}
