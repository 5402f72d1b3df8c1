package repository

import (
	"context"

	"github.com/BryanHuaPer/viajeros-peru-sub002/model"
)

// Capacidades del esquema, resueltas una sola vez en el arranque a partir de
// config.SchemaConfig. Reemplaza al sondeo por petición de information_schema
// del sistema original: el comportamiento es determinista por despliegue.
type Capacidades struct {
	// TieneEstado indica que la tabla mensajes tiene la columna estado
	// (enviado/entregado/visto). Sin ella, solo existe el booleano leido.
	TieneEstado bool
}

// ChatResumen fila de la lista de chats: el mensaje más reciente de cada par
// (contraparte, anuncio) más el conteo de no leídos de ese par exacto.
type ChatResumen struct {
	Mensaje           model.Mensaje `json:"mensaje"`
	ContraparteID     int64         `json:"contraparte_id"`
	ContraparteNombre string        `json:"contraparte_nombre,omitempty"`
	AnuncioID         *int64        `json:"anuncio_id"`
	NoLeidos          int64         `json:"no_leidos"`
}

// EstadoMensaje par id->estado para pintar los checks del cliente.
type EstadoMensaje struct {
	ID     int64  `json:"id"`
	Estado string `json:"estado"`
}

// IMensajeRepository acceso a datos de mensajes y su máquina de estados.
type IMensajeRepository interface {
	// Crear inserta el mensaje en estado enviado y devuelve su id.
	Crear(ctx context.Context, mensaje *model.Mensaje) (int64, error)
	// ObtenerPorID lee un mensaje con los nombres denormalizados de ambos participantes.
	ObtenerPorID(ctx context.Context, id int64) (*model.Mensaje, error)
	// Conversacion devuelve la página pedida (ventana en orden descendente,
	// página reordenada ascendente para presentación) y el total de mensajes.
	Conversacion(ctx context.Context, usuarioA, usuarioB int64, anuncioID *int64, pagina, limite int) ([]model.Mensaje, int64, error)
	// MarcarEntregados transición de cortesía: todo mensaje enviado cuyo
	// destinatario es quien consulta pasa a entregado.
	MarcarEntregados(ctx context.Context, consultante, contraparte int64, anuncioID *int64) error
	// MarcarLeidos avanza en bloque los mensajes enviado->visto del par+contexto.
	MarcarLeidos(ctx context.Context, remitenteID, destinatarioID int64, anuncioID *int64) (int64, error)
	// MarcarConversacionVista avanza a visto todo lo no visto del par+contexto.
	MarcarConversacionVista(ctx context.Context, destinatarioID, remitenteID int64, anuncioID *int64) (int64, error)
	// MarcarVisto avanza exactamente un mensaje a visto si el consultante es el
	// destinatario y aún no está visto. Devuelve si se aplicó.
	MarcarVisto(ctx context.Context, mensajeID, destinatarioID int64) (bool, error)
	// TotalNoLeidos cuenta los mensajes dirigidos al usuario que no están vistos.
	TotalNoLeidos(ctx context.Context, usuarioID int64) (int64, error)
	// ListaChats una fila por par (contraparte, anuncio) con el último mensaje
	// y su conteo de no leídos, ordenadas por fecha del último mensaje.
	ListaChats(ctx context.Context, usuarioID int64) ([]ChatResumen, error)
	// UltimosEntrePar instantánea reciente entre dos usuarios (contexto de reportes).
	UltimosEntrePar(ctx context.Context, usuarioA, usuarioB int64, limite int) ([]model.Mensaje, error)
	// EstadosEntre estados de los mensajes enviados por usuario a contraparte.
	EstadosEntre(ctx context.Context, usuarioID, otroUsuarioID int64) ([]EstadoMensaje, error)
}

// DetalleBloqueo resultado de la verificación direccional de bloqueo.
type DetalleBloqueo struct {
	Bloqueado           bool  `json:"bloqueado"`
	UsuarioBloqueadorID int64 `json:"usuario_bloqueador_id,omitempty"`
	UsuarioBloqueadoID  int64 `json:"usuario_bloqueado_id,omitempty"`
}

// IBloqueoRepository acceso a datos del registro de bloqueos.
type IBloqueoRepository interface {
	// ExisteEntre true si existe bloqueo en cualquiera de las dos direcciones.
	ExisteEntre(ctx context.Context, usuarioA, usuarioB int64) (bool, error)
	// DetalleEntre además identifica quién bloqueó a quién.
	DetalleEntre(ctx context.Context, usuarioA, usuarioB int64) (DetalleBloqueo, error)
	// Crear inserta el par dirigido; ErrClaveDuplicada si ya existe.
	Crear(ctx context.Context, bloqueadorID, bloqueadoID int64) error
	// Eliminar borra el par dirigido; ErrRegistroNoEncontrado si no había fila.
	Eliminar(ctx context.Context, bloqueadorID, bloqueadoID int64) error
}

// IReporteRepository acceso a datos de reportes.
type IReporteRepository interface {
	Crear(ctx context.Context, reporte *model.Reporte) (int64, error)
}

// INotificacionRepository acceso a datos de notificaciones.
type INotificacionRepository interface {
	Crear(ctx context.Context, notificacion *model.Notificacion) error
}

// IUsuarioRepository lectura de usuarios para denormalización y fan-out.
type IUsuarioRepository interface {
	ObtenerPorID(ctx context.Context, id int64) (*model.Usuario, error)
	AdministradoresActivos(ctx context.Context) ([]model.Usuario, error)
}
