package transport

import (
	"net/http"

	"github.com/dkolesni/eventboard/internal/entity"
	"github.com/dkolesni/eventboard/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService     service.AdminService
	inventoryService service.InventoryService
}

func NewAdminHandler(adminService service.AdminService, inventoryService service.InventoryService) *AdminHandler {
	return &AdminHandler{
		adminService:     adminService,
		inventoryService: inventoryService,
	}
}

// CreateEvent accepts the multipart admin form. All field parsing happens in
// the service so the validation error lists every bad field at once.
func (h *AdminHandler) CreateEvent(c *gin.Context) {
	in := &service.CreateEventInput{
		Title:       c.PostForm("title"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
		StartDate:   c.PostForm("start_date"),
		EndDate:     c.PostForm("end_date"),
		TotalSeats:  c.PostForm("total_seats"),
		Trending:    c.PostForm("trending"),
	}

	file, header, err := c.Request.FormFile("image")
	if err == nil {
		defer file.Close()
		in.Image = file
		in.ImageName = header.Filename
	}

	event, err := h.adminService.CreateEvent(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent edits an event; only the posted fields change.
func (h *AdminHandler) UpdateEvent(c *gin.Context) {
	in := &service.UpdateEventInput{}
	if v, ok := c.GetPostForm("title"); ok {
		in.Title = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		in.Category = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("location"); ok {
		in.Location = &v
	}
	if v, ok := c.GetPostForm("start_date"); ok {
		in.StartDate = &v
	}
	if v, ok := c.GetPostForm("end_date"); ok {
		in.EndDate = &v
	}
	if v, ok := c.GetPostForm("total_seats"); ok {
		in.TotalSeats = &v
	}

	file, header, err := c.Request.FormFile("image")
	if err == nil {
		defer file.Close()
		in.Image = file
		in.ImageName = header.Filename
	}

	event, err := h.adminService.UpdateEvent(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	if err := h.adminService.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListEvents is the admin-side listing with its simpler title/location
// filter.
func (h *AdminHandler) ListEvents(c *gin.Context) {
	events, err := h.adminService.ListEvents(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	if events == nil {
		events = []*entity.Event{}
	}
	c.JSON(http.StatusOK, events)
}

type setTrendingRequest struct {
	Rank *int `json:"rank" binding:"required"`
}

// SetTrending assigns the promotional rank supplied by the operator.
func (h *AdminHandler) SetTrending(c *gin.Context) {
	var req setTrendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trending rank must be a positive integer"})
		return
	}

	if err := h.inventoryService.SetTrending(c.Request.Context(), c.Param("id"), *req.Rank); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "trending set"})
}

func (h *AdminHandler) ClearTrending(c *gin.Context) {
	if err := h.inventoryService.ClearTrending(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "trending cleared"})
}
