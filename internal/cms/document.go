package cms

import (
	"encoding/json"

	"github.com/studio-interiors/site-server/internal/models"
)

// Document holds the fields the server reads from any CMS document
type Document struct {
	Slug       string             `json:"slug,omitempty"`
	SeoDetails *models.SeoDetails `json:"seoDetails,omitempty"`
	UpdatedAt  string             `json:"updatedAt,omitempty"`
	CreatedAt  string             `json:"createdAt,omitempty"`
}

// CollectionResponse is the paginated envelope of collection queries
type CollectionResponse struct {
	Docs       []Document `json:"docs"`
	TotalDocs  int        `json:"totalDocs"`
	TotalPages int        `json:"totalPages"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// EmptyCollection is served by the proxies when the CMS is unavailable
func EmptyCollection() CollectionResponse {
	return CollectionResponse{
		Docs:       []Document{},
		TotalDocs:  0,
		TotalPages: 0,
		Page:       1,
		Limit:      10,
	}
}

func (d *Document) fromFields(raw map[string]json.RawMessage) error {
	// Re-marshal keeps decoding rules identical to the nested case.
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, d)
}
