package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studio-interiors/site-server/internal/cms"
	"github.com/studio-interiors/site-server/internal/services"
)

type ContentHandler struct {
	service services.ContentServiceInterface
}

func NewContentHandler(service services.ContentServiceInterface) *ContentHandler {
	return &ContentHandler{service: service}
}

// Collection proxies GET requests to the CMS collection of the same name.
// When the CMS cannot answer the client still gets a valid empty page.
func (h *ContentHandler) Collection(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := h.service.GetCollection(c.Request.Context(), collection, c.Request.URL.RawQuery)
		if err != nil {
			attachError(c, err)
			c.JSON(http.StatusOK, cms.EmptyCollection())
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
