package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxUploadSize is the largest accepted image
const MaxUploadSize = 5 << 20

var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
}

// UploadResponse reports where an upload was stored
type UploadResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// UploadHandler stores product images on the configured disk
type UploadHandler struct {
	disk   storage.Disk
	logger *zap.Logger
	now    func() time.Time
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(disk storage.Disk, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		disk:   disk,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterRoutes registers the upload route; uploads are admin only
func (h *UploadHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware, adminMiddleware).Post("/api/upload", h.Upload)
}

// checkImage accepts the file only when both the sniffed type and the
// extension are an allowed image kind. It returns the sniffed MIME type.
func checkImage(filename string, head []byte) (string, error) {
	detected := mimetype.Detect(head)

	for mimeType, extensions := range allowedImageTypes {
		if !detected.Is(mimeType) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(filename))
		for _, allowed := range extensions {
			if ext == allowed {
				return mimeType, nil
			}
		}
		return "", fmt.Errorf("extension %q does not match %s", ext, mimeType)
	}

	return "", fmt.Errorf("unsupported file type %s", detected.String())
}

// Upload accepts a multipart "image" field and stores it as
// uploads/image-<unix nanos><ext>
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Room for the multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusBadRequest, "file too large, max 5MB")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "no image file provided")
		return
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		middleware.RespondWithError(w, http.StatusBadRequest, "file too large, max 5MB")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	contentType, err := checkImage(header.Filename, content)
	if err != nil {
		h.logger.Debug("Upload rejected", zap.String("filename", header.Filename), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "images only (jpeg, jpg, png, gif)")
		return
	}

	key := fmt.Sprintf("uploads/image-%d%s", h.now().UnixNano(), strings.ToLower(filepath.Ext(header.Filename)))
	path, err := h.disk.Put(r.Context(), key, bytes.NewReader(content), contentType)
	if err != nil {
		h.logger.Error("Failed to store upload", zap.String("key", key), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("Image uploaded", zap.String("path", path), zap.Int("bytes", len(content)))
	middleware.RespondWithJSON(w, http.StatusOK, UploadResponse{Message: "Image uploaded", Path: path})
}
