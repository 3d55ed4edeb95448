// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// Folders an admin may upload into
var uploadFolders = map[string]bool{
	"products": true,
	"hero":     true,
	"misc":     true,
}

// UploadHandler handles admin file upload endpoints
type UploadHandler struct {
	files  FileStore
	logger *logrus.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(files FileStore, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		files:  files,
		logger: logger,
	}
}

// UploadImage handles POST /admin/uploads/image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	header, err := c.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "No image file provided")
		return
	}
	if !upload.IsImage(header.Filename) {
		response.Error(c, upload.ErrExtensionBlocked)
		return
	}

	folder := strings.TrimSpace(c.DefaultPostForm("folder", "misc"))
	if !uploadFolders[folder] {
		response.Fail(c, http.StatusBadRequest, "Invalid upload folder")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Failed to read uploaded image")
		return
	}
	defer file.Close()

	stored, err := h.files.Upload(c.Request.Context(), file, header.Filename, folder, "")
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"public_id": stored.PublicID,
		"size":      upload.FormatSize(stored.Size),
	}).Info("image uploaded")

	response.Created(c, "Image uploaded successfully", gin.H{"file": stored})
}

// DeleteFile handles DELETE /admin/uploads/*publicId
func (h *UploadHandler) DeleteFile(c *gin.Context) {
	publicID := strings.Trim(c.Param("publicId"), "/")
	if publicID == "" {
		response.Fail(c, http.StatusBadRequest, "File ID is required")
		return
	}

	if err := h.files.Destroy(c.Request.Context(), publicID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "File deleted successfully", nil)
}
