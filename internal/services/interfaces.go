package services

import (
	"context"
	"encoding/json"

	"github.com/studio-interiors/site-server/internal/models"
)

// EmailServiceInterface defines the interface for email relay operations
type EmailServiceInterface interface {
	Send(ctx context.Context, req *models.SendEmailRequest) (*models.SendEmailResult, error)
}

// ContentServiceInterface defines the interface for CMS proxy operations
type ContentServiceInterface interface {
	GetCollection(ctx context.Context, collection, rawQuery string) (json.RawMessage, error)
}
