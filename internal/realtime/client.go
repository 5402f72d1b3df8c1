package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	colaEnvioSize    = 64
	escrituraTimeout = 5 * time.Second
)

// Cliente envuelve una conexión WebSocket de un usuario.
// La cola de envío desacopla a los productores del ritmo de la red; done es
// la señal única de cierre y once hace el cierre idempotente.
type Cliente struct {
	conn      *websocket.Conn
	usuarioID int64
	deviceID  string
	envio     chan []byte
	done      chan struct{}
	once      sync.Once
}

// NewCliente crea el envoltorio de conexión.
func NewCliente(conn *websocket.Conn, usuarioID int64, deviceID string) *Cliente {
	return &Cliente{
		conn:      conn,
		usuarioID: usuarioID,
		deviceID:  deviceID,
		envio:     make(chan []byte, colaEnvioSize),
		done:      make(chan struct{}),
	}
}

// Clave identifica la conexión (usuario:dispositivo). Una conexión nueva del
// mismo dispositivo reemplaza a la anterior.
func (c *Cliente) Clave() string {
	return claveConexion(c.usuarioID, c.deviceID)
}

func (c *Cliente) UsuarioID() int64 { return c.usuarioID }

func (c *Cliente) DeviceID() string { return c.deviceID }

// Encolar deposita un mensaje en la cola de escritura. Devuelve false si la
// conexión está cerrada o la cola llena; el llamador decide descartar o
// cerrar.
func (c *Cliente) Encolar(msg []byte) bool {
	if len(msg) == 0 {
		return true
	}
	clonado := append([]byte(nil), msg...)
	select {
	case <-c.done:
		return false
	case c.envio <- clonado:
		return true
	default:
		return false
	}
}

// Ejecutar arranca el bucle de escritura en su propia goroutine y bloquea en
// el de lectura; al salir garantiza Cerrar y el callback de limpieza.
func (c *Cliente) Ejecutar(ctx context.Context, alCerrar func()) {
	defer func() {
		c.Cerrar()
		if alCerrar != nil {
			alCerrar()
		}
	}()

	go c.bucleEscritura(ctx)
	c.bucleLectura(ctx)
}

// Cerrar cierre idempotente: señal de done y cierre del socket.
func (c *Cliente) Cerrar() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// bucleLectura drena los frames entrantes. Este servicio no acepta tráfico
// de subida por WebSocket (las acciones van por HTTP); leer solo sirve para
// detectar la desconexión y responder a los pings del protocolo.
func (c *Cliente) bucleLectura(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Cliente) bucleEscritura(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case msg := <-c.envio:
			_ = c.conn.SetWriteDeadline(time.Now().Add(escrituraTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Cerrar()
				return
			}
		}
	}
}

func claveConexion(usuarioID int64, deviceID string) string {
	return fmt.Sprintf("%d:%s", usuarioID, deviceID)
}
