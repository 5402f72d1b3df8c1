package util

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger middleware de trazabilidad: genera u obtiene el trace_id y lo
// deja en el contexto de Gin.
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Intentar tomarlo de la cabecera (puede venir de Nginx)
		traceID := c.GetHeader(HeaderXRequestID)

		// 2. Si no vino, generar uno propio
		if traceID == "" {
			traceID = uuid.New().String()
		}

		// 3. Dejarlo en el contexto de Gin para los handlers posteriores
		c.Set("trace_id", traceID)

		// 4. Devolverlo en la cabecera para que el cliente pueda reclamar con ID
		c.Header(HeaderXRequestID, traceID)

		c.Next()
	}
}

// NewUUID genera un UUID nuevo.
func NewUUID() string {
	return uuid.New().String()
}
