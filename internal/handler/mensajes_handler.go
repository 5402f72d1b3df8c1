package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/dto"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/middleware"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/service"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/token"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/validator"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/result"

	"github.com/gin-gonic/gin"
)

// MensajesHandler único punto de entrada de mensajería: el campo `accion`
// selecciona la operación. El transporte puede ser JSON, formulario o query
// string en GET; el sobre de respuesta es siempre {exito: bool, ...}.
type MensajesHandler struct {
	verifier   *token.Verifier
	mensajeSvc service.IMensajeService
	bloqueoSvc service.IBloqueoService
}

// NewMensajesHandler crea el handler de despacho.
func NewMensajesHandler(verifier *token.Verifier, mensajeSvc service.IMensajeService, bloqueoSvc service.IBloqueoService) *MensajesHandler {
	return &MensajesHandler{
		verifier:   verifier,
		mensajeSvc: mensajeSvc,
		bloqueoSvc: bloqueoSvc,
	}
}

// Manejar despacha la acción. Flujo: leer el cuerpo una sola vez, resolver la
// acción, aplicar la política de autenticación (una acción desconocida exige
// token igual que las conocidas) y derivar al servicio que corresponda.
func (h *MensajesHandler) Manejar(c *gin.Context) {
	rawBody := h.leerCuerpo(c)
	accion := h.resolverAccion(c, rawBody)

	var actorID int64
	if h.verifier.RequiereAuth(accion) {
		claims, err := h.verifier.Autenticar(c, rawBody)
		if err != nil {
			middleware.ContarAccion(accion, "no_autenticado")
			if errors.Is(err, token.ErrSinToken) {
				result.NoAutenticado(c, consts.GetMessage(consts.CodeNoAutenticado))
			} else {
				result.NoAutenticado(c, consts.GetMessage(consts.CodeTokenInvalido))
			}
			return
		}
		actorID = claims.UsuarioID
		c.Set("usuario_id", actorID)
	}

	switch accion {
	case consts.AccionEnviar:
		h.enviar(c, actorID, rawBody)
	case consts.AccionObtenerConversacion:
		h.obtenerConversacion(c, rawBody)
	case consts.AccionObtenerChats:
		h.obtenerChats(c, actorID, rawBody)
	case consts.AccionMarcarLeidos:
		h.marcarLeidos(c, actorID, rawBody)
	case consts.AccionObtenerNoLeidos:
		h.obtenerNoLeidos(c, actorID, rawBody)
	case consts.AccionVerificarBloqueo:
		h.verificarBloqueo(c, actorID, rawBody)
	case consts.AccionBloquearUsuario:
		h.bloquearUsuario(c, actorID, rawBody)
	case consts.AccionDesbloquearUsuario:
		h.desbloquearUsuario(c, actorID, rawBody)
	case consts.AccionReportarMensaje:
		h.reportarMensaje(c, actorID, rawBody)
	case consts.AccionObtenerEstadoMensaje:
		h.obtenerEstadoMensaje(c, actorID, rawBody)
	case consts.AccionMarcarVisto:
		h.marcarVisto(c, actorID, rawBody)
	case consts.AccionMarcarConversacionVista:
		h.marcarConversacionVista(c, actorID, rawBody)
	case consts.AccionObtenerEstadosMensajes:
		h.obtenerEstadosMensajes(c, actorID, rawBody)
	default:
		middleware.ContarAccion("desconocida", "rechazado")
		result.Fallo(c, consts.CodeAccionDesconocida)
	}
}

// leerCuerpo consume el cuerpo una sola vez y lo restaura para que el binding
// de formulario posterior siga funcionando.
func (h *MensajesHandler) leerCuerpo(c *gin.Context) []byte {
	if c.Request.Body == nil {
		return nil
	}
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))
	return rawBody
}

// resolverAccion busca el campo accion en el cuerpo JSON, el formulario o el
// query string, en ese orden.
func (h *MensajesHandler) resolverAccion(c *gin.Context, rawBody []byte) string {
	if len(rawBody) > 0 && strings.Contains(c.ContentType(), "json") {
		var sobre struct {
			Accion string `json:"accion"`
		}
		if err := json.Unmarshal(rawBody, &sobre); err == nil && sobre.Accion != "" {
			return sobre.Accion
		}
	}
	if accion := c.PostForm("accion"); accion != "" {
		return accion
	}
	return c.Query("accion")
}

// bind materializa la variante de petición de la acción desde el transporte
// que haya usado el cliente.
func (h *MensajesHandler) bind(c *gin.Context, rawBody []byte, req dto.Peticion) error {
	ct := c.ContentType()
	if len(rawBody) > 0 && strings.Contains(ct, "json") {
		if err := json.Unmarshal(rawBody, req); err != nil {
			return &dto.ErrorPeticion{Code: consts.CodeBodyError}
		}
		return req.Validar()
	}
	if c.Request.Method == http.MethodGet {
		if err := c.ShouldBindQuery(req); err != nil {
			return &dto.ErrorPeticion{Code: consts.CodeBodyError}
		}
		return req.Validar()
	}
	if err := c.ShouldBind(req); err != nil {
		return &dto.ErrorPeticion{Code: consts.CodeBodyError}
	}
	return req.Validar()
}

// responderError mapea los errores de las capas inferiores al sobre de
// respuesta. Cualquier error no tipado es un fallo interno.
func (h *MensajesHandler) responderError(c *gin.Context, accion string, err error) {
	var errValidacion *validator.ErrorValidacion
	if errors.As(err, &errValidacion) {
		middleware.ContarAccion(accion, "rechazado")
		result.FalloValidacion(c, errValidacion.Codigo, errValidacion.Mensaje)
		return
	}

	var errPeticion *dto.ErrorPeticion
	if errors.As(err, &errPeticion) {
		middleware.ContarAccion(accion, "rechazado")
		result.Fallo(c, errPeticion.Code)
		return
	}

	var errNegocio *service.ErrorNegocio
	if errors.As(err, &errNegocio) {
		middleware.ContarAccion(accion, "fallo")
		if errNegocio.Codigo != "" {
			result.FalloValidacion(c, errNegocio.Codigo, errNegocio.Error())
			return
		}
		result.Fallo(c, errNegocio.Code)
		return
	}

	middleware.ContarAccion(accion, "error")
	logger.Error(middleware.NewContextWithGin(c), "error no mapeado en el despacho",
		logger.String("accion", accion),
		logger.ErrorField("error", err))
	result.Fallo(c, consts.CodeInternalError)
}

// ==================== Acciones ====================

func (h *MensajesHandler) enviar(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.EnviarRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionEnviar, err)
		return
	}
	mensaje, err := h.mensajeSvc.Enviar(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionEnviar, err)
		return
	}
	middleware.ContarAccion(consts.AccionEnviar, "exito")
	result.Exito(c, gin.H{
		"mensaje_id": mensaje.ID,
		"datos":      mensaje,
	})
}

func (h *MensajesHandler) obtenerConversacion(c *gin.Context, rawBody []byte) {
	var req dto.ObtenerConversacionRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionObtenerConversacion, err)
		return
	}
	mensajes, paginacion, err := h.mensajeSvc.ObtenerConversacion(middleware.NewContextWithGin(c), &req)
	if err != nil {
		h.responderError(c, consts.AccionObtenerConversacion, err)
		return
	}
	middleware.ContarAccion(consts.AccionObtenerConversacion, "exito")
	result.Exito(c, gin.H{
		"data": gin.H{
			"mensajes":   mensajes,
			"paginacion": paginacion,
		},
	})
}

func (h *MensajesHandler) obtenerChats(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.ObtenerChatsRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionObtenerChats, err)
		return
	}
	chats, err := h.mensajeSvc.ObtenerChats(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionObtenerChats, err)
		return
	}
	middleware.ContarAccion(consts.AccionObtenerChats, "exito")
	result.Exito(c, gin.H{"chats": chats})
}

func (h *MensajesHandler) marcarLeidos(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.MarcarLeidosRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionMarcarLeidos, err)
		return
	}
	if err := h.mensajeSvc.MarcarLeidos(middleware.NewContextWithGin(c), actorID, &req); err != nil {
		h.responderError(c, consts.AccionMarcarLeidos, err)
		return
	}
	middleware.ContarAccion(consts.AccionMarcarLeidos, "exito")
	result.Exito(c, gin.H{})
}

func (h *MensajesHandler) obtenerNoLeidos(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.ObtenerNoLeidosRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionObtenerNoLeidos, err)
		return
	}
	total, err := h.mensajeSvc.TotalNoLeidos(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionObtenerNoLeidos, err)
		return
	}
	middleware.ContarAccion(consts.AccionObtenerNoLeidos, "exito")
	result.Exito(c, gin.H{"total_no_leidos": total})
}

func (h *MensajesHandler) verificarBloqueo(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.VerificarBloqueoRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionVerificarBloqueo, err)
		return
	}
	detalle, err := h.bloqueoSvc.Verificar(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionVerificarBloqueo, err)
		return
	}
	middleware.ContarAccion(consts.AccionVerificarBloqueo, "exito")
	data := gin.H{"bloqueado": detalle.Bloqueado}
	if detalle.Bloqueado {
		data["usuario_bloqueador_id"] = detalle.UsuarioBloqueadorID
		data["usuario_bloqueado_id"] = detalle.UsuarioBloqueadoID
	}
	result.Exito(c, data)
}

func (h *MensajesHandler) bloquearUsuario(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.BloquearUsuarioRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionBloquearUsuario, err)
		return
	}
	if err := h.bloqueoSvc.Bloquear(middleware.NewContextWithGin(c), actorID, &req); err != nil {
		h.responderError(c, consts.AccionBloquearUsuario, err)
		return
	}
	middleware.ContarAccion(consts.AccionBloquearUsuario, "exito")
	result.Exito(c, gin.H{})
}

func (h *MensajesHandler) desbloquearUsuario(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.DesbloquearUsuarioRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionDesbloquearUsuario, err)
		return
	}
	if err := h.bloqueoSvc.Desbloquear(middleware.NewContextWithGin(c), actorID, &req); err != nil {
		h.responderError(c, consts.AccionDesbloquearUsuario, err)
		return
	}
	middleware.ContarAccion(consts.AccionDesbloquearUsuario, "exito")
	result.Exito(c, gin.H{})
}

func (h *MensajesHandler) reportarMensaje(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.ReportarMensajeRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionReportarMensaje, err)
		return
	}
	reporteID, err := h.mensajeSvc.ReportarMensaje(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionReportarMensaje, err)
		return
	}
	middleware.ContarAccion(consts.AccionReportarMensaje, "exito")
	result.Exito(c, gin.H{"reporte_id": reporteID})
}

func (h *MensajesHandler) obtenerEstadoMensaje(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.ObtenerEstadoMensajeRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionObtenerEstadoMensaje, err)
		return
	}
	estado, err := h.mensajeSvc.EstadoMensaje(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionObtenerEstadoMensaje, err)
		return
	}
	middleware.ContarAccion(consts.AccionObtenerEstadoMensaje, "exito")
	result.Exito(c, gin.H{"estado": estado})
}

func (h *MensajesHandler) marcarVisto(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.MarcarVistoRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionMarcarVisto, err)
		return
	}
	aplicado, err := h.mensajeSvc.MarcarVisto(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionMarcarVisto, err)
		return
	}
	if !aplicado {
		// caso no-aplicado: no es un error, pero el sobre lo comunica con
		// exito:false para que el cliente no actualice su vista
		middleware.ContarAccion(consts.AccionMarcarVisto, "no_aplicado")
		result.FalloMensaje(c, "El mensaje no se pudo marcar como visto")
		return
	}
	middleware.ContarAccion(consts.AccionMarcarVisto, "exito")
	result.Exito(c, gin.H{})
}

func (h *MensajesHandler) marcarConversacionVista(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.MarcarConversacionVistaRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionMarcarConversacionVista, err)
		return
	}
	filas, err := h.mensajeSvc.MarcarConversacionVista(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionMarcarConversacionVista, err)
		return
	}
	middleware.ContarAccion(consts.AccionMarcarConversacionVista, "exito")
	result.Exito(c, gin.H{"filas_afectadas": filas})
}

func (h *MensajesHandler) obtenerEstadosMensajes(c *gin.Context, actorID int64, rawBody []byte) {
	var req dto.ObtenerEstadosMensajesRequest
	if err := h.bind(c, rawBody, &req); err != nil {
		h.responderError(c, consts.AccionObtenerEstadosMensajes, err)
		return
	}
	estados, err := h.mensajeSvc.EstadosMensajes(middleware.NewContextWithGin(c), actorID, &req)
	if err != nil {
		h.responderError(c, consts.AccionObtenerEstadosMensajes, err)
		return
	}
	middleware.ContarAccion(consts.AccionObtenerEstadosMensajes, "exito")
	result.Exito(c, gin.H{"estados": estados})
}
