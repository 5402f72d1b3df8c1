package middleware

import (
	"context"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewContextWithGin crea un context.Context con trace_id, usuario_id y
// client_ip tomados del contexto de Gin, para que el sistema de logs los
// propague aguas abajo.
func NewContextWithGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if traceID, exists := c.Get("trace_id"); exists {
		ctx = context.WithValue(ctx, "trace_id", traceID)
	}
	if usuarioID, exists := c.Get("usuario_id"); exists {
		ctx = context.WithValue(ctx, "usuario_id", usuarioID)
	}
	if clientIP, exists := c.Get("client_ip"); exists {
		ctx = context.WithValue(ctx, "client_ip", clientIP)
	}
	return ctx
}

// GinLogger registra el ciclo de cada petición con el logger estructurado.
// Las peticiones normales no se registran al terminar; solo errores de
// servidor (5xx) y peticiones lentas (>2s).
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		ctx := NewContextWithGin(c)

		logger.Info(ctx, "petición recibida",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.String("ip", ClientIPFromGinContext(c)),
		)

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()

		if status >= 500 || cost > 2*time.Second {
			logger.Warn(ctx, "petición lenta o error de servidor",
				logger.Int("status", status),
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.String("query", query),
				logger.String("ip", c.ClientIP()),
				logger.String("user-agent", c.Request.UserAgent()),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
				logger.Duration("cost", cost),
			)
		}
	}
}
