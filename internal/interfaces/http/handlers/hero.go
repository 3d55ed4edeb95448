// internal/interfaces/http/handlers/hero.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/domain/hero"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// HeroHandler handles storefront banner endpoints
type HeroHandler struct {
	heroes *hero.Service
}

// NewHeroHandler creates a new hero handler
func NewHeroHandler(heroes *hero.Service) *HeroHandler {
	return &HeroHandler{heroes: heroes}
}

// ListActive handles GET /hero
func (h *HeroHandler) ListActive(c *gin.Context) {
	images, err := h.heroes.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"data": images})
}

// ListAll handles GET /admin/hero
func (h *HeroHandler) ListAll(c *gin.Context) {
	list, err := h.heroes.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{
		"data":        list.Images,
		"activeCount": list.ActiveCount,
	})
}

// Create handles POST /admin/hero (multipart with an "image" file)
func (h *HeroHandler) Create(c *gin.Context) {
	var req hero.CreateInput
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Image file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Failed to read uploaded image")
		return
	}
	defer file.Close()

	img, err := h.heroes.Create(c.Request.Context(), req, &hero.Image{File: file, Filename: header.Filename})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Hero image uploaded", gin.H{"data": img})
}

// Update handles PUT /admin/hero/:id; the image is optional
func (h *HeroHandler) Update(c *gin.Context) {
	id, ok := heroID(c)
	if !ok {
		return
	}

	var req hero.UpdateInput
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	var image *hero.Image
	if isMultipart(c) {
		if header, err := c.FormFile("image"); err == nil {
			file, err := header.Open()
			if err != nil {
				response.Fail(c, http.StatusBadRequest, "Failed to read uploaded image")
				return
			}
			defer file.Close()
			image = &hero.Image{File: file, Filename: header.Filename}
		}
	}

	img, err := h.heroes.Update(c.Request.Context(), id, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Hero image updated", gin.H{"data": img})
}

// ToggleActive handles PATCH /admin/hero/:id/toggle
func (h *HeroHandler) ToggleActive(c *gin.Context) {
	id, ok := heroID(c)
	if !ok {
		return
	}

	img, err := h.heroes.ToggleActive(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Hero image status updated", gin.H{"data": img})
}

// Delete handles DELETE /admin/hero/:id
func (h *HeroHandler) Delete(c *gin.Context) {
	id, ok := heroID(c)
	if !ok {
		return
	}

	if err := h.heroes.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Hero image deleted", nil)
}

func heroID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, "Invalid hero image ID")
		return 0, false
	}
	return uint(id), true
}
