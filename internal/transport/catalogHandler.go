package transport

import (
	"net/http"
	"strconv"

	"github.com/dkolesni/eventboard/internal/entity"
	"github.com/dkolesni/eventboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	catalogService   service.CatalogService
	inventoryService service.InventoryService
	trendingLimit    int
}

func NewCatalogHandler(catalogService service.CatalogService, inventoryService service.InventoryService, trendingLimit int) *CatalogHandler {
	return &CatalogHandler{
		catalogService:   catalogService,
		inventoryService: inventoryService,
		trendingLimit:    trendingLimit,
	}
}

// GetEvents serves the storefront listing with search text and category
// filter. A failed catalog load degrades to an empty listing.
func (h *CatalogHandler) GetEvents(c *gin.Context) {
	search := c.Query("search")
	category := c.DefaultQuery("category", service.CategoryAll)

	snapshot, err := h.catalogService.Snapshot(c.Request.Context())
	if err != nil {
		logrus.Errorf("Failed to load catalog: %v", err)
		c.JSON(http.StatusOK, []*entity.Event{})
		return
	}

	events := make([]*entity.Event, 0)
	for event := range snapshot.Search(search, category) {
		events = append(events, event)
	}

	c.JSON(http.StatusOK, events)
}

// GetTrending serves the promoted subset for the hero slider.
func (h *CatalogHandler) GetTrending(c *gin.Context) {
	limit := h.trendingLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	snapshot, err := h.catalogService.Snapshot(c.Request.Context())
	if err != nil {
		logrus.Errorf("Failed to load catalog: %v", err)
		c.JSON(http.StatusOK, []*entity.Event{})
		return
	}

	trending := snapshot.Trending(limit)
	if trending == nil {
		trending = []*entity.Event{}
	}
	c.JSON(http.StatusOK, trending)
}

func (h *CatalogHandler) GetEvent(c *gin.Context) {
	event, err := h.catalogService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// BookSeat is the "Book Now" action: one seat per call, no hold phase.
func (h *CatalogHandler) BookSeat(c *gin.Context) {
	event, err := h.inventoryService.BookSeat(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
