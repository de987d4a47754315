package handlers

import (
	"net/http"

	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/catalog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves the public listing and the admin catalog endpoints.
type CatalogHandler struct {
	CatalogSvc catalog.CatalogService
	Logger     *zap.Logger
}

func NewCatalogHandler(svc catalog.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{CatalogSvc: svc, Logger: logger}
}

// SearchServices handles GET /api/services.
func (h *CatalogHandler) SearchServices(c *gin.Context) {
	var filter models.ServiceSearch
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "message": err.Error()})
		return
	}
	for param, dest := range map[string]**models.Amount{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		amount, err := models.ParseAmount(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param, "message": err.Error()})
			return
		}
		*dest = &amount
	}

	services, err := h.CatalogSvc.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// GetService handles GET /api/services/:id.
func (h *CatalogHandler) GetService(c *gin.Context) {
	svc, err := h.CatalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService handles POST /api/services.
func (h *CatalogHandler) CreateService(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input models.ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}
	svc, err := h.CatalogSvc.Create(c.Request.Context(), identity, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Logger.Info("Service listed", zap.String("serviceID", svc.ID), zap.String("admin", identity.ID))
	c.JSON(http.StatusCreated, svc)
}

// UpdatePrice handles PATCH /api/services/:id/price.
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var body struct {
		PricePerPerson models.Amount `json:"price_per_person" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}
	svc, err := h.CatalogSvc.UpdatePrice(c.Request.Context(), identity, c.Param("id"), body.PricePerPerson)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// RelistService handles POST /api/services/:id/relist.
func (h *CatalogHandler) RelistService(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var body struct {
		Units int `json:"units" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}
	svc, err := h.CatalogSvc.Relist(c.Request.Context(), identity, c.Param("id"), body.Units)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// SetServiceActive handles PATCH /api/services/:id/active.
func (h *CatalogHandler) SetServiceActive(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var body struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}
	svc, err := h.CatalogSvc.SetActive(c.Request.Context(), identity, c.Param("id"), *body.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}
