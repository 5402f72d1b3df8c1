package realtime

import (
	"net/http"

	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/middleware"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/token"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// el origen se valida en el CORS del frontend; aquí se permite todo
	// para los distintos clientes (web, móvil, pruebas locales)
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WSHandler atiende /ws: autentica el token del query, hace el upgrade y
// entrega la conexión al hub.
type WSHandler struct {
	hub      *Hub
	verifier *token.Verifier
}

// NewWSHandler crea el handler de WebSocket.
func NewWSHandler(hub *Hub, verifier *token.Verifier) *WSHandler {
	return &WSHandler{hub: hub, verifier: verifier}
}

// ServeWS flujo de conexión: token y device_id del query string, luego
// upgrade. Error de autenticación responde 401 antes del upgrade.
func (h *WSHandler) ServeWS(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		result.NoAutenticado(c, "token no proporcionado")
		return
	}

	claims, err := h.verifier.Verificar(tokenString)
	if err != nil {
		result.NoAutenticado(c, "token inválido o expirado")
		return
	}

	deviceID := c.Query("device_id")
	if deviceID == "" {
		deviceID = "web"
	}

	ctx := middleware.NewContextWithGin(c)
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(ctx, "fallo el upgrade de WebSocket", logger.ErrorField("error", err))
		return
	}

	cliente := NewCliente(conn, claims.UsuarioID, deviceID)
	if desplazado := h.hub.Registrar(cliente); desplazado != nil {
		desplazado.Cerrar()
	}

	logger.Info(ctx, "conexión WebSocket establecida",
		logger.Int64("usuario_id", claims.UsuarioID),
		logger.String("device_id", deviceID),
		logger.Int("conectados", h.hub.Conectados()),
	)

	cliente.Ejecutar(ctx, func() {
		h.hub.Quitar(cliente)
		logger.Info(ctx, "conexión WebSocket cerrada",
			logger.Int64("usuario_id", claims.UsuarioID),
			logger.String("device_id", deviceID),
			logger.Int("conectados", h.hub.Conectados()),
		)
	})
}
