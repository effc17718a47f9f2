package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CoversController serves book covers from the local cache.
type CoversController struct {
	cache   CoverCache
	catalog Catalog
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverCache, catalog Catalog) *CoversController {
	return &CoversController{
		cache:   cache,
		catalog: catalog,
	}
}

// GetCover serves the cached cover, downloading it on first use. When the
// download fails the client is sent to the image's origin instead.
// GET /covers/:id
func (cc *CoversController) GetCover(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	book := cc.catalog.FetchBookByID(c.Request.Context(), bookID)
	if book == nil {
		c.Status(http.StatusNotFound)
		return
	}

	coverURL := cc.catalog.ImageURL(*book)
	cachePath, err := cc.cache.GetCover(c.Request.Context(), bookID, coverURL)
	if err != nil || cachePath == "" {
		if err != nil {
			log.Printf("[COVERS] %v", err)
		}
		c.Redirect(http.StatusTemporaryRedirect, coverURL)
		return
	}

	c.Header("Cache-Control", "private, max-age=86400")
	c.File(cachePath)
}
