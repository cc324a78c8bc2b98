package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/services"
)

// CatalogController serves the menu, gallery and specials listings.
type CatalogController struct {
	Catalog *services.CatalogService
	Errors  ErrorHandler
}

func NewCatalogController(catalog *services.CatalogService, errs ErrorHandler) *CatalogController {
	return &CatalogController{Catalog: catalog, Errors: errs}
}

// GetMenu handles GET /api/menu[?category=]
func (cc *CatalogController) GetMenu(c *gin.Context) {
	items, err := cc.Catalog.Menu(c.Request.Context(), c.Query("category"))
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		cc.Errors.Respond(c, err, "", "")
		return
	case err != nil:
		cc.Errors.RespondInternal(c, err, "Failed to fetch menu")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetGallery handles GET /api/gallery[?category=]
func (cc *CatalogController) GetGallery(c *gin.Context) {
	items, err := cc.Catalog.Gallery(c.Request.Context(), c.Query("category"))
	if err != nil {
		cc.Errors.RespondInternal(c, err, "Failed to fetch gallery")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetSpecials handles GET /api/specials
func (cc *CatalogController) GetSpecials(c *gin.Context) {
	items, err := cc.Catalog.Specials(c.Request.Context())
	if err != nil {
		cc.Errors.RespondInternal(c, err, "Failed to fetch specials")
		return
	}
	c.JSON(http.StatusOK, items)
}
