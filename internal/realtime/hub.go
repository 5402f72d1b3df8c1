package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/BryanHuaPer/viajeros-peru-sub002/model"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
)

// Tipos de frame de bajada.
const (
	FrameNuevoMensaje = "nuevo_mensaje"
)

// Frame sobre de los mensajes de bajada por WebSocket.
type Frame struct {
	Tipo  string      `json:"tipo"`
	Datos interface{} `json:"datos,omitempty"`
}

// Hub mantiene las conexiones vivas con dos índices: por clave
// usuario:dispositivo para el reemplazo exacto y por usuario para el
// broadcast de avisos.
type Hub struct {
	mu        sync.RWMutex
	porClave  map[string]*Cliente
	porUsuario map[int64]map[string]*Cliente
	apagado   bool
}

// NewHub crea el hub de conexiones.
func NewHub() *Hub {
	return &Hub{
		porClave:   make(map[string]*Cliente),
		porUsuario: make(map[int64]map[string]*Cliente),
	}
}

// Registrar añade la conexión. Devuelve la conexión desplazada del mismo
// dispositivo, si la había; el llamador debe cerrarla.
func (h *Hub) Registrar(cliente *Cliente) (desplazado *Cliente) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.apagado {
		return nil
	}

	clave := cliente.Clave()
	if anterior, ok := h.porClave[clave]; ok && anterior != cliente {
		desplazado = anterior
	}

	h.porClave[clave] = cliente
	conexiones, ok := h.porUsuario[cliente.UsuarioID()]
	if !ok {
		conexiones = make(map[string]*Cliente)
		h.porUsuario[cliente.UsuarioID()] = conexiones
	}
	conexiones[cliente.DeviceID()] = cliente
	return desplazado
}

// Quitar elimina la conexión solo si sigue siendo la vigente para su clave;
// una conexión reemplazada de forma concurrente no borra a la nueva.
func (h *Hub) Quitar(cliente *Cliente) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clave := cliente.Clave()
	vigente, ok := h.porClave[clave]
	if !ok || vigente != cliente {
		return
	}

	delete(h.porClave, clave)
	if conexiones, ok := h.porUsuario[cliente.UsuarioID()]; ok {
		delete(conexiones, cliente.DeviceID())
		if len(conexiones) == 0 {
			delete(h.porUsuario, cliente.UsuarioID())
		}
	}
}

// EnviarAUsuario difunde el payload a todos los dispositivos conectados del
// usuario. Devuelve cuántas colas lo aceptaron.
func (h *Hub) EnviarAUsuario(usuarioID int64, msg []byte) int {
	h.mu.RLock()
	conexiones, ok := h.porUsuario[usuarioID]
	if !ok || len(conexiones) == 0 {
		h.mu.RUnlock()
		return 0
	}
	clientes := make([]*Cliente, 0, len(conexiones))
	for _, cliente := range conexiones {
		clientes = append(clientes, cliente)
	}
	h.mu.RUnlock()

	enviados := 0
	for _, cliente := range clientes {
		if cliente.Encolar(msg) {
			enviados++
		}
	}
	return enviados
}

// Conectados número de conexiones vivas.
func (h *Hub) Conectados() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.porClave)
}

// Apagar cierra todas las conexiones y rechaza registros posteriores. Para el
// apagado ordenado del proceso.
func (h *Hub) Apagar() {
	h.mu.Lock()
	if h.apagado {
		h.mu.Unlock()
		return
	}
	h.apagado = true

	clientes := make([]*Cliente, 0, len(h.porClave))
	for _, cliente := range h.porClave {
		clientes = append(clientes, cliente)
	}
	h.porClave = make(map[string]*Cliente)
	h.porUsuario = make(map[int64]map[string]*Cliente)
	h.mu.Unlock()

	for _, cliente := range clientes {
		cliente.Cerrar()
	}
}

// NotificarNuevoMensaje implementa el contrato de notificación de los
// servicios: entrega de mejor esfuerzo del mensaje recién persistido a los
// dispositivos conectados del destinatario.
func (h *Hub) NotificarNuevoMensaje(ctx context.Context, destinatarioID int64, mensaje *model.Mensaje) {
	payload, err := json.Marshal(Frame{Tipo: FrameNuevoMensaje, Datos: mensaje})
	if err != nil {
		logger.Warn(ctx, "no se pudo serializar el aviso de mensaje nuevo",
			logger.ErrorField("error", err))
		return
	}
	h.EnviarAUsuario(destinatarioID, payload)
}
