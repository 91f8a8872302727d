package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/brnhrs/warhorse-server/internal/auth"
	"github.com/brnhrs/warhorse-server/internal/config"
	"github.com/brnhrs/warhorse-server/internal/core"
)

// NewServer builds the gin-routed HTTP server: a root liveness route and
// the /ws upgrade route. Per spec §6's CLI/env note, there is no other
// surface.
func NewServer(hub *core.Hub, authService *auth.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/", healthHandler)
	router.GET("/ws", NewWSHandler(hub, authService, &cfg, logger))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
