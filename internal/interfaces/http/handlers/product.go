// internal/interfaces/http/handlers/product.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

const productImageFolder = "products"

// FileStore stores uploaded files
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*upload.Result, error)
	Destroy(ctx context.Context, publicID string) error
}

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	products *catalog.Service
	reviews  *review.Service
	files    FileStore
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *catalog.Service, reviews *review.Service, files FileStore) *ProductHandler {
	return &ProductHandler{
		products: products,
		reviews:  reviews,
		files:    files,
	}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var q catalog.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	list, err := h.products.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{
		"products":   list.Products,
		"pagination": list.Pagination,
	})
}

// GetProduct handles GET /products/:id. The first page of reviews and the
// average rating come along with the product.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	reviews, err := h.reviews.ListForProduct(c.Request.Context(), id, 1, 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{
		"product":       product,
		"reviews":       reviews.Reviews,
		"averageRating": reviews.AverageRating,
	})
}

// AdminListProducts handles GET /admin/products
func (h *ProductHandler) AdminListProducts(c *gin.Context) {
	var q catalog.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	list, err := h.products.AdminList(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{
		"products":   list.Products,
		"pagination": list.Pagination,
	})
}

// CreateProduct handles POST /admin/products. Accepts JSON, or a multipart
// form with an "image" file.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req catalog.CreateInput

	if isMultipart(c) {
		price, err := formDecimal(c, "price")
		if err != nil || price == nil {
			response.Fail(c, http.StatusBadRequest, "Invalid price")
			return
		}
		original, err := formDecimal(c, "originalPrice")
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "Invalid original price")
			return
		}
		req = catalog.CreateInput{
			Name:          c.PostForm("name"),
			Description:   c.PostForm("description"),
			Price:         *price,
			OriginalPrice: original,
			Category:      c.PostForm("category"),
			SubCategories: formList(c, "subCategories"),
			Author:        c.PostForm("author"),
			ISBN:          c.PostForm("isbn"),
			Language:      c.PostForm("language"),
		}

		stored, ok := h.storeImage(c)
		if !ok {
			return
		}
		if stored != nil {
			req.Image = stored.URL
			req.ImagePublicID = stored.PublicID
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		if req.ImagePublicID != "" {
			_ = h.files.Destroy(c.Request.Context(), req.ImagePublicID)
		}
		response.Error(c, err)
		return
	}

	response.Created(c, "Product added", gin.H{"product": product})
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req catalog.UpdateInput

	if isMultipart(c) {
		price, err := formDecimal(c, "price")
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "Invalid price")
			return
		}
		original, err := formDecimal(c, "originalPrice")
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "Invalid original price")
			return
		}
		req = catalog.UpdateInput{
			Name:          formValue(c, "name"),
			Description:   formValue(c, "description"),
			Price:         price,
			OriginalPrice: original,
			Category:      formValue(c, "category"),
			SubCategories: formList(c, "subCategories"),
			Author:        formValue(c, "author"),
			ISBN:          formValue(c, "isbn"),
			Language:      formValue(c, "language"),
		}

		stored, ok := h.storeImage(c)
		if !ok {
			return
		}
		if stored != nil {
			req.Image = stored.URL
			req.ImagePublicID = stored.PublicID
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if req.ImagePublicID != "" {
			_ = h.files.Destroy(c.Request.Context(), req.ImagePublicID)
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated", gin.H{"product": product})
}

// RemoveProduct handles DELETE /admin/products/:id
func (h *ProductHandler) RemoveProduct(c *gin.Context) {
	if err := h.products.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product removed", nil)
}

// ToggleAvailability handles PATCH /admin/products/:id/availability
func (h *ProductHandler) ToggleAvailability(c *gin.Context) {
	product, err := h.products.ToggleAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Availability updated", gin.H{"product": product})
}

// ToggleBestseller handles PATCH /admin/products/:id/bestseller
func (h *ProductHandler) ToggleBestseller(c *gin.Context) {
	product, err := h.products.ToggleBestseller(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bestseller status updated", gin.H{"product": product})
}

// storeImage saves the optional "image" file of a multipart request. It
// writes the failure response itself and reports false when it did.
func (h *ProductHandler) storeImage(c *gin.Context) (*upload.Result, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, true
	}
	if !upload.IsImage(header.Filename) {
		response.Error(c, upload.ErrExtensionBlocked)
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Failed to read uploaded image")
		return nil, false
	}
	defer file.Close()

	stored, err := h.files.Upload(c.Request.Context(), file, header.Filename, productImageFolder, "")
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return stored, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// formDecimal parses an optional decimal form field
func formDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	v, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return nil, apperror.Validationf("invalid %s", key)
	}
	return &d, nil
}

// formList reads a list field sent as a JSON array, a comma separated
// string, or repeated keys. Absent fields yield nil.
func formList(c *gin.Context, key string) []string {
	values, ok := c.GetPostFormArray(key)
	if !ok {
		return nil
	}
	if len(values) == 1 {
		raw := strings.TrimSpace(values[0])
		var decoded []string
		if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &decoded) == nil {
			return decoded
		}
		return strings.Split(raw, ",")
	}
	return values
}
