package consts

// Códigos generales
const (
	CodeSuccess int32 = 0 // éxito
)

// Errores de cliente (1xxxx)
const (
	CodeParamError       int32 = 10001 // parámetros incompletos o inválidos
	CodeBodyError        int32 = 10002 // cuerpo de la petición mal formado
	CodeAccionDesconocida int32 = 10003 // acción no reconocida
	CodeTooManyRequests  int32 = 10005 // demasiadas peticiones
)

// Errores de autenticación (2xxxx)
const (
	CodeNoAutenticado  int32 = 20001 // sin token en ninguna ubicación
	CodeTokenInvalido  int32 = 20002 // token inválido o expirado
	CodeNoAutorizado   int32 = 20004 // autenticado pero actúa sobre recurso ajeno
)

// Errores del módulo de mensajería (13xxx)
const (
	CodeMensajeNoEncontrado int32 = 13001 // mensaje no existe
	CodeEnvioFallido        int32 = 13002 // fallo al enviar mensaje
	CodeContenidoInvalido   int32 = 13003 // contenido rechazado por validación
	CodeUsuarioBloqueado    int32 = 13004 // bloqueo vigente entre los usuarios
)

// Errores del módulo de bloqueos (15xxx)
const (
	CodeYaBloqueado    int32 = 15001 // el par dirigido ya existe
	CodeBloqueoNoExiste int32 = 15002 // no hay fila que eliminar
)

// Errores del módulo de reportes (16xxx)
const (
	CodeReporteFallido int32 = 16001 // fallo al registrar reporte
)

// Errores de servidor (3xxxx)
const (
	CodeInternalError int32 = 30001 // error interno
	CodeAlmacenamiento int32 = 30002 // fallo de persistencia
)

// Mapa de mensajes de error
var CodeMessage = map[int32]string{
	CodeSuccess: "éxito",

	// Errores de cliente
	CodeParamError:        "Datos incompletos o inválidos",
	CodeBodyError:         "Cuerpo de la petición mal formado",
	CodeAccionDesconocida: "Acción no válida",
	CodeTooManyRequests:   "Demasiadas peticiones, intenta más tarde",

	// Errores de autenticación
	CodeNoAutenticado: "No autenticado: token no proporcionado",
	CodeTokenInvalido: "Token inválido o expirado",
	CodeNoAutorizado:  "No autorizado para realizar esta acción",

	// Módulo de mensajería
	CodeMensajeNoEncontrado: "Mensaje no encontrado",
	CodeEnvioFallido:        "No se pudo enviar el mensaje",
	CodeContenidoInvalido:   "El contenido del mensaje no es válido",
	CodeUsuarioBloqueado:    "No puedes enviar mensajes a este usuario",

	// Módulo de bloqueos
	CodeYaBloqueado:     "El usuario ya está bloqueado",
	CodeBloqueoNoExiste: "No existe un bloqueo que eliminar",

	// Módulo de reportes
	CodeReporteFallido: "No se pudo registrar el reporte",

	// Errores de servidor
	CodeInternalError:  "Error interno del servidor",
	CodeAlmacenamiento: "Error al acceder a los datos",
}

// GetMessage devuelve el mensaje asociado a un código de error.
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "Error desconocido"
}

// IsNonServerError indica si el código corresponde a un error de negocio
// (se devuelve tal cual al cliente, sin log de error interno).
func IsNonServerError(code int32) bool {
	return code > 0 && code < 30000
}

// Códigos de validación de contenido (legibles por máquina, viajan en `codigo`).
const (
	ValContenidoVacio   = "CONTENIDO_VACIO"
	ValContenidoLargo   = "CONTENIDO_DEMASIADO_LARGO"
	ValContenidoCorto   = "CONTENIDO_DEMASIADO_CORTO"
	ValPatronProhibido  = "PATRON_PROHIBIDO"
	ValLenguajeOfensivo = "LENGUAJE_OFENSIVO"
	ValExcesoMayusculas = "EXCESO_MAYUSCULAS"
	ValRepeticionExcesiva = "REPETICION_EXCESIVA"
	ValSoloEmojis       = "SOLO_EMOJIS"
)

// CodigoUsuarioBloqueado código de rechazo por bloqueo vigente.
const CodigoUsuarioBloqueado = "USUARIO_BLOQUEADO"

// Acciones del endpoint de mensajería (campo `accion`).
const (
	AccionEnviar                  = "enviar"
	AccionObtenerConversacion     = "obtener_conversacion"
	AccionObtenerChats            = "obtener_chats"
	AccionMarcarLeidos            = "marcar_leidos"
	AccionObtenerNoLeidos         = "obtener_no_leidos"
	AccionVerificarBloqueo        = "verificar_bloqueo"
	AccionBloquearUsuario         = "bloquear_usuario"
	AccionDesbloquearUsuario      = "desbloquear_usuario"
	AccionReportarMensaje         = "reportar_mensaje"
	AccionObtenerEstadoMensaje    = "obtener_estado_mensaje"
	AccionMarcarVisto             = "marcar_visto"
	AccionMarcarConversacionVista = "marcar_conversacion_vista"
	AccionObtenerEstadosMensajes  = "obtener_estados_mensajes"
)

// Longitudes de contenido de mensaje.
const (
	ContenidoMaxLen = 2000 // longitud máxima en bytes crudos
	ContenidoMinLen = 2    // longitud mínima tras recortar espacios
)
