package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast-server/internal/upload"
)

// UploadHandler accepts image uploads and returns their public URL.
// The URL travels back to the server inside a chat message; the
// session engine treats it as opaque payload.
type UploadHandler struct {
	storage  upload.Storage
	maxBytes int64
	log      *zerolog.Logger
}

// NewUploadHandler creates a new upload handler instance.
func NewUploadHandler(storage upload.Storage, maxBytes int64, logger *zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		storage:  storage,
		maxBytes: maxBytes,
		log:      logger,
	}
}

// UploadResponse represents the upload response body.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload handles a multipart image upload. Content type is sniffed
// from the payload, not trusted from the request; only images pass.
// POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.log.Debug().Err(err).Msg("invalid upload request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file field is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Debug().Err(err).Msg("failed to read upload")
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "upload too large"})
		return
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		h.log.Debug().Str("mime", mtype.String()).Msg("rejected non-image upload")
		c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{Error: "only image uploads are accepted"})
		return
	}

	url, err := h.storage.Save(c.Request.Context(), data, mtype.Extension())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("url", url).Int("bytes", len(data)).Msg("image uploaded")
	c.JSON(http.StatusOK, UploadResponse{URL: url})
}
