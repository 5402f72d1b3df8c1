package router

import (
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/handler"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/middleware"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/realtime"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRouter arma el engine con el pipeline de middlewares y las rutas.
// mensajesHandler y wsHandler llegan por inyección; rateLimiter puede ser nil
// para desactivar la limitación (pruebas).
func InitRouter(mensajesHandler *handler.MensajesHandler, wsHandler *realtime.WSHandler, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()

	r.Use(middleware.GinRecovery(true))
	r.Use(util.TraceLogger())
	r.Use(middleware.ClientIPMiddleware())
	r.Use(middleware.GinLogger())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.CorsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus recolecta de aquí
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if wsHandler != nil {
		r.GET("/ws", wsHandler.ServeWS)
	}

	api := r.Group("/api")
	if rateLimiter != nil {
		api.Use(middleware.IPRateLimitMiddleware(rateLimiter))
	}
	{
		// toda la mensajería entra por un único endpoint; el campo accion
		// del payload decide la operación
		api.POST("/mensajes", mensajesHandler.Manejar)
		api.GET("/mensajes", mensajesHandler.Manejar)
	}

	return r
}
