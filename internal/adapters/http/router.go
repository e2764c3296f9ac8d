package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/adapters/api"
	"github.com/apurv-sgh/test-edtech/internal/adapters/rtc"
	"github.com/apurv-sgh/test-edtech/internal/adapters/signal"
	"github.com/apurv-sgh/test-edtech/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives every browser a stable opaque token; guests
// that announce presence without an identity of their own fall back to it.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, sessionsHandler *api.SessionHandler, signalCtl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("EdtechSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	apiGroup := r.Group("/api")

	apiGroup.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"message":   "EdTech Platform API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	apiGroup.GET("/webrtc-config", func(c *gin.Context) {
		c.JSON(http.StatusOK, rtc.ForClients(cfg))
	})

	apiGroup.GET("/ws", func(c *gin.Context) {
		signalCtl.HandleWS(ctx, c)
	})

	live := apiGroup.Group("/live-sessions", api.AuthMiddleware(cfg.JWTSecret))
	live.POST("", sessionsHandler.Create)
	live.GET("", sessionsHandler.List)
	live.GET("/:sessionId", sessionsHandler.Get)
	live.POST("/:sessionId/start", sessionsHandler.Start)
	live.POST("/:sessionId/stop", sessionsHandler.Stop)
	live.POST("/:sessionId/cancel", sessionsHandler.Cancel)
	live.POST("/:sessionId/join", sessionsHandler.Join)

	return r
}
