package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	headerXRealIP       = "X-Real-IP"
	headerXForwardedFor = "X-Forwarded-For"
)

// GetClientIP resuelve la IP real del cliente.
// Prioridad: X-Real-IP > X-Forwarded-For > ClientIP de Gin.
func GetClientIP(c *gin.Context) string {
	if ip := c.GetHeader(headerXRealIP); ip != "" {
		return strings.TrimSpace(ip)
	}

	if xff := c.GetHeader(headerXForwardedFor); xff != "" {
		// el primer valor de la cadena de proxies es el cliente original
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	return c.ClientIP()
}

// GetClientIPSafe resuelve la IP y valida su formato.
func GetClientIPSafe(c *gin.Context) (string, bool) {
	ip := GetClientIP(c)
	if ip == "" || net.ParseIP(ip) == nil {
		return "", false
	}
	return ip, true
}

// ClientIPMiddleware inyecta la IP resuelta en ambos contextos.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := GetClientIP(c)

		c.Set("client_ip", ip)

		ctx := context.WithValue(c.Request.Context(), "client_ip", ip)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ClientIPFromGinContext lee la IP ya inyectada por el middleware.
func ClientIPFromGinContext(c *gin.Context) string {
	if ip, exists := c.Get("client_ip"); exists {
		if ipStr, ok := ip.(string); ok {
			return ipStr
		}
	}
	return ""
}
