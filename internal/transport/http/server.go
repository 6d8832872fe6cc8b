package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast-server/internal/config"
	"github.com/roomcast/roomcast-server/internal/core"
	"github.com/roomcast/roomcast-server/internal/store"
	"github.com/roomcast/roomcast-server/internal/upload"
)

// NewServer builds the HTTP server: REST surface, upload endpoint,
// and the websocket bridge into the hub.
func NewServer(hub *core.Hub, st store.Store, uploads upload.Storage, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	roomHandlers := NewRoomHandlers(st, logger)
	api := router.Group("/api")
	{
		api.GET("/rooms", roomHandlers.ListRooms)
		api.POST("/rooms", roomHandlers.CreateRoom)
		api.GET("/rooms/:id/messages", roomHandlers.ListMessages)
		api.POST("/upload", NewUploadHandler(uploads, cfg.Upload.MaxBytes, logger).Upload)
	}

	// Local uploads are served straight off disk; the s3 backend
	// returns bucket URLs instead.
	if cfg.Upload.Backend == "local" {
		router.Static("/uploads", cfg.Upload.Dir)
	}

	wsHandler := NewWSHandler(hub, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
