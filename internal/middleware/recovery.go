package middleware

import (
	"net"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/result"

	"github.com/gin-gonic/gin"
)

// GinRecovery recupera cualquier panic del pipeline y responde con el sobre
// de error estándar en lugar de cortar la conexión. stack controla si el
// stacktrace completo va al log.
func GinRecovery(stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// una tubería rota no admite respuesta; solo se registra
				var brokenPipe bool
				if ne, ok := err.(*net.OpError); ok {
					if se, ok := ne.Err.(*os.SyscallError); ok {
						msg := strings.ToLower(se.Error())
						if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
							brokenPipe = true
						}
					}
				}

				ctx := NewContextWithGin(c)
				httpRequest, _ := httputil.DumpRequest(c.Request, false)
				if brokenPipe {
					logger.Error(ctx, "conexión rota",
						logger.Any("error", err),
						logger.String("request", string(httpRequest)),
					)
					c.Abort()
					return
				}

				if stack {
					logger.Error(ctx, "panic recuperado",
						logger.Any("error", err),
						logger.String("request", string(httpRequest)),
						logger.String("stack", string(debug.Stack())),
					)
				} else {
					logger.Error(ctx, "panic recuperado",
						logger.Any("error", err),
						logger.String("request", string(httpRequest)),
					)
				}

				result.Fallo(c, consts.CodeInternalError)
				c.Abort()
			}
		}()
		c.Next()
	}
}
