package dto

import (
	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
)

// ErrorPeticion error de forma de una petición, con el código de negocio que
// debe viajar en la respuesta.
type ErrorPeticion struct {
	Code int32
}

func (e *ErrorPeticion) Error() string { return consts.GetMessage(e.Code) }

func errParam() error { return &ErrorPeticion{Code: consts.CodeParamError} }

// Peticion contrato común de las variantes por acción: cada una valida su
// propia forma antes de llegar al servicio.
type Peticion interface {
	Validar() error
}

// ==================== Variantes por acción ====================

// EnviarRequest payload de la acción enviar.
type EnviarRequest struct {
	RemitenteID    int64  `json:"remitente_id" form:"remitente_id"`
	DestinatarioID int64  `json:"destinatario_id" form:"destinatario_id"`
	AnuncioID      *int64 `json:"anuncio_id" form:"anuncio_id"`
	Contenido      string `json:"contenido" form:"contenido"`
}

func (r *EnviarRequest) Validar() error {
	if r.RemitenteID <= 0 || r.DestinatarioID <= 0 {
		return errParam()
	}
	// el contenido vacío lo rechaza el validador con su propio código
	return nil
}

// ObtenerConversacionRequest payload de obtener_conversacion.
// SoloRecientes y SoloNuevos son banderas heredadas del cliente; se aceptan y
// se ignoran en la consulta (la paginación ya acota la ventana).
type ObtenerConversacionRequest struct {
	Usuario1      int64  `json:"usuario1" form:"usuario1"`
	Usuario2      int64  `json:"usuario2" form:"usuario2"`
	AnuncioID     *int64 `json:"anuncio_id" form:"anuncio_id"`
	Pagina        int    `json:"pagina" form:"pagina"`
	Limite        int    `json:"limite" form:"limite"`
	SoloRecientes bool   `json:"solo_recientes" form:"solo_recientes"`
	SoloNuevos    bool   `json:"solo_nuevos" form:"solo_nuevos"`
}

func (r *ObtenerConversacionRequest) Validar() error {
	if r.Usuario1 <= 0 || r.Usuario2 <= 0 {
		return errParam()
	}
	if r.Pagina < 1 {
		r.Pagina = 1
	}
	if r.Limite < 1 || r.Limite > 100 {
		r.Limite = 20
	}
	return nil
}

// ObtenerChatsRequest payload de obtener_chats.
type ObtenerChatsRequest struct {
	UsuarioID int64 `json:"usuario_id" form:"usuario_id"`
}

func (r *ObtenerChatsRequest) Validar() error {
	if r.UsuarioID <= 0 {
		return errParam()
	}
	return nil
}

// MarcarLeidosRequest payload de marcar_leidos.
type MarcarLeidosRequest struct {
	RemitenteID    int64  `json:"remitente_id" form:"remitente_id"`
	DestinatarioID int64  `json:"destinatario_id" form:"destinatario_id"`
	AnuncioID      *int64 `json:"anuncio_id" form:"anuncio_id"`
}

func (r *MarcarLeidosRequest) Validar() error {
	if r.RemitenteID <= 0 || r.DestinatarioID <= 0 {
		return errParam()
	}
	return nil
}

// ObtenerNoLeidosRequest payload de obtener_no_leidos.
type ObtenerNoLeidosRequest struct {
	UsuarioID int64 `json:"usuario_id" form:"usuario_id"`
}

func (r *ObtenerNoLeidosRequest) Validar() error {
	if r.UsuarioID <= 0 {
		return errParam()
	}
	return nil
}

// VerificarBloqueoRequest payload de verificar_bloqueo.
type VerificarBloqueoRequest struct {
	Usuario1 int64 `json:"usuario1" form:"usuario1"`
	Usuario2 int64 `json:"usuario2" form:"usuario2"`
}

func (r *VerificarBloqueoRequest) Validar() error {
	if r.Usuario1 <= 0 || r.Usuario2 <= 0 {
		return errParam()
	}
	return nil
}

// BloquearUsuarioRequest payload de bloquear_usuario.
type BloquearUsuarioRequest struct {
	UsuarioBloqueadorID int64 `json:"usuario_bloqueador_id" form:"usuario_bloqueador_id"`
	UsuarioBloqueadoID  int64 `json:"usuario_bloqueado_id" form:"usuario_bloqueado_id"`
}

func (r *BloquearUsuarioRequest) Validar() error {
	if r.UsuarioBloqueadorID <= 0 || r.UsuarioBloqueadoID <= 0 {
		return errParam()
	}
	if r.UsuarioBloqueadorID == r.UsuarioBloqueadoID {
		return errParam()
	}
	return nil
}

// DesbloquearUsuarioRequest payload de desbloquear_usuario.
type DesbloquearUsuarioRequest struct {
	UsuarioBloqueadorID int64 `json:"usuario_bloqueador_id" form:"usuario_bloqueador_id"`
	UsuarioBloqueadoID  int64 `json:"usuario_bloqueado_id" form:"usuario_bloqueado_id"`
}

func (r *DesbloquearUsuarioRequest) Validar() error {
	if r.UsuarioBloqueadorID <= 0 || r.UsuarioBloqueadoID <= 0 {
		return errParam()
	}
	return nil
}

// ReportarMensajeRequest payload de reportar_mensaje.
type ReportarMensajeRequest struct {
	UsuarioReportadorID int64  `json:"usuario_reportador_id" form:"usuario_reportador_id"`
	MensajeID           int64  `json:"mensaje_id" form:"mensaje_id"`
	Motivo              string `json:"motivo" form:"motivo"`
}

func (r *ReportarMensajeRequest) Validar() error {
	if r.UsuarioReportadorID <= 0 || r.MensajeID <= 0 || r.Motivo == "" {
		return errParam()
	}
	return nil
}

// ObtenerEstadoMensajeRequest payload de obtener_estado_mensaje.
type ObtenerEstadoMensajeRequest struct {
	MensajeID int64 `json:"mensaje_id" form:"mensaje_id"`
	UsuarioID int64 `json:"usuario_id" form:"usuario_id"`
}

func (r *ObtenerEstadoMensajeRequest) Validar() error {
	if r.MensajeID <= 0 || r.UsuarioID <= 0 {
		return errParam()
	}
	return nil
}

// MarcarVistoRequest payload de marcar_visto.
type MarcarVistoRequest struct {
	MensajeID int64 `json:"mensaje_id" form:"mensaje_id"`
	UsuarioID int64 `json:"usuario_id" form:"usuario_id"`
}

func (r *MarcarVistoRequest) Validar() error {
	if r.MensajeID <= 0 || r.UsuarioID <= 0 {
		return errParam()
	}
	return nil
}

// MarcarConversacionVistaRequest payload de marcar_conversacion_vista.
type MarcarConversacionVistaRequest struct {
	DestinatarioID int64  `json:"destinatario_id" form:"destinatario_id"`
	RemitenteID    int64  `json:"remitente_id" form:"remitente_id"`
	AnuncioID      *int64 `json:"anuncio_id" form:"anuncio_id"`
}

func (r *MarcarConversacionVistaRequest) Validar() error {
	if r.DestinatarioID <= 0 || r.RemitenteID <= 0 {
		return errParam()
	}
	return nil
}

// ObtenerEstadosMensajesRequest payload de obtener_estados_mensajes.
type ObtenerEstadosMensajesRequest struct {
	UsuarioID     int64 `json:"usuario_id" form:"usuario_id"`
	OtroUsuarioID int64 `json:"otro_usuario_id" form:"otro_usuario_id"`
}

func (r *ObtenerEstadosMensajesRequest) Validar() error {
	if r.UsuarioID <= 0 || r.OtroUsuarioID <= 0 {
		return errParam()
	}
	return nil
}
