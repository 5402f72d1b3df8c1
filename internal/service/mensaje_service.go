package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/audit"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/dto"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/repository"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/validator"
	"github.com/BryanHuaPer/viajeros-peru-sub002/model"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/async"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/mail"
)

// mensajeServiceImpl orquesta el envío y la máquina de estados de entrega.
type mensajeServiceImpl struct {
	mensajeRepo      repository.IMensajeRepository
	bloqueoRepo      repository.IBloqueoRepository
	reporteRepo      repository.IReporteRepository
	notificacionRepo repository.INotificacionRepository
	usuarioRepo      repository.IUsuarioRepository
	validador        *validator.Validador
	auditor          audit.Auditor
	mailer           mail.Mailer
	notificador      Notificador
	caps             repository.Capacidades
}

// NewMensajeService crea el servicio de mensajes con todos sus colaboradores.
func NewMensajeService(
	mensajeRepo repository.IMensajeRepository,
	bloqueoRepo repository.IBloqueoRepository,
	reporteRepo repository.IReporteRepository,
	notificacionRepo repository.INotificacionRepository,
	usuarioRepo repository.IUsuarioRepository,
	validador *validator.Validador,
	auditor audit.Auditor,
	mailer mail.Mailer,
	notificador Notificador,
	caps repository.Capacidades,
) IMensajeService {
	return &mensajeServiceImpl{
		mensajeRepo:      mensajeRepo,
		bloqueoRepo:      bloqueoRepo,
		reporteRepo:      reporteRepo,
		notificacionRepo: notificacionRepo,
		usuarioRepo:      usuarioRepo,
		validador:        validador,
		auditor:          auditor,
		mailer:           mailer,
		notificador:      notificador,
		caps:             caps,
	}
}

// errAlmacenamiento registra el error de persistencia y lo convierte al fallo
// genérico que ve el cliente. Ningún error de la capa de datos se propaga
// crudo hacia arriba.
func errAlmacenamiento(ctx context.Context, operacion string, err error) error {
	logger.Error(ctx, "fallo de almacenamiento",
		logger.String("operacion", operacion),
		logger.ErrorField("error", err))
	return NewError(consts.CodeAlmacenamiento)
}

// Enviar recorre el pipeline completo: validación de contenido, verificación
// de bloqueo, inserción, efectos de mejor esfuerzo y relectura del mensaje
// persistido con los nombres denormalizados.
func (s *mensajeServiceImpl) Enviar(ctx context.Context, actorID int64, req *dto.EnviarRequest) (*model.Mensaje, error) {
	if actorID != req.RemitenteID {
		s.auditor.Registrar(ctx, audit.Evento{
			Accion:    consts.AccionEnviar,
			ActorID:   actorID,
			Resultado: audit.ResultadoNoAutorizado,
			Detalle:   fmt.Sprintf("actor %d intentó enviar como %d", actorID, req.RemitenteID),
		})
		return nil, NewError(consts.CodeNoAutorizado)
	}

	// el validador audita por sí mismo cada rechazo; su error viaja intacto
	// al cliente con su código de violación
	contenido, err := s.validador.Validar(ctx, req.Contenido, actorID)
	if err != nil {
		return nil, err
	}

	bloqueado, err := s.bloqueoRepo.ExisteEntre(ctx, req.RemitenteID, req.DestinatarioID)
	if err != nil {
		return nil, errAlmacenamiento(ctx, "verificar bloqueo", err)
	}
	if bloqueado {
		s.auditor.Registrar(ctx, audit.Evento{
			Accion:    consts.AccionEnviar,
			ActorID:   actorID,
			ObjetoID:  req.DestinatarioID,
			Resultado: audit.ResultadoRechazado,
			Detalle:   "bloqueo vigente entre remitente y destinatario",
		})
		return nil, ErrBloqueado()
	}

	mensaje := &model.Mensaje{
		RemitenteID:    req.RemitenteID,
		DestinatarioID: req.DestinatarioID,
		AnuncioID:      req.AnuncioID,
		Contenido:      contenido,
	}
	mensajeID, err := s.mensajeRepo.Crear(ctx, mensaje)
	if err != nil {
		s.auditor.Registrar(ctx, audit.Evento{
			Accion:    consts.AccionEnviar,
			ActorID:   actorID,
			Resultado: audit.ResultadoError,
			Detalle:   "fallo al persistir el mensaje",
		})
		logger.Error(ctx, "fallo al persistir mensaje", logger.ErrorField("error", err))
		return nil, NewError(consts.CodeEnvioFallido)
	}

	s.efectosEnvio(ctx, mensaje)

	s.auditor.Registrar(ctx, audit.Evento{
		Accion:    consts.AccionEnviar,
		ActorID:   actorID,
		ObjetoID:  mensajeID,
		Resultado: audit.ResultadoExito,
	})

	// relectura para devolver los nombres denormalizados; si falla se
	// devuelve lo que ya tenemos en memoria
	persistido, err := s.mensajeRepo.ObtenerPorID(ctx, mensajeID)
	if err != nil {
		logger.Warn(ctx, "no se pudo releer el mensaje enviado",
			logger.Int64("mensaje_id", mensajeID),
			logger.ErrorField("error", err))
		return mensaje, nil
	}
	return persistido, nil
}

// efectosEnvio efectos de mejor esfuerzo tras un envío exitoso: la fila de
// notificación y el aviso en tiempo real. Ninguno revierte el envío.
func (s *mensajeServiceImpl) efectosEnvio(ctx context.Context, mensaje *model.Mensaje) {
	destinatarioID := mensaje.DestinatarioID
	contenido := mensaje.Contenido
	async.RunSafe(ctx, func(runCtx context.Context) {
		notificacion := &model.Notificacion{
			UsuarioID: destinatarioID,
			Tipo:      model.NotificacionNuevoMensaje,
			Titulo:    "Tienes un mensaje nuevo",
			Contenido: recortar(contenido, 120),
		}
		if err := s.notificacionRepo.Crear(runCtx, notificacion); err != nil {
			logger.Warn(runCtx, "no se pudo crear la notificación de mensaje",
				logger.Int64("usuario_id", destinatarioID),
				logger.ErrorField("error", err))
		}
	}, 5*time.Second)

	if s.notificador != nil {
		s.notificador.NotificarNuevoMensaje(ctx, destinatarioID, mensaje)
	}
}

// ObtenerConversacion devuelve la página pedida de la conversación. Antes de
// leer, los mensajes en enviado que usuario1 recibió de usuario2 avanzan a
// entregado; que usuario1 sea realmente quien consulta es responsabilidad del
// cliente en esta acción pública. Las dos sentencias no son atómicas: un
// envío concurrente puede aparecer en la lectura sin la transición aplicada.
func (s *mensajeServiceImpl) ObtenerConversacion(ctx context.Context, req *dto.ObtenerConversacionRequest) ([]model.Mensaje, Paginacion, error) {
	if err := s.mensajeRepo.MarcarEntregados(ctx, req.Usuario1, req.Usuario2, req.AnuncioID); err != nil {
		// la transición de cortesía nunca bloquea la lectura
		logger.Warn(ctx, "fallo en la transición a entregado",
			logger.Int64("usuario1", req.Usuario1),
			logger.Int64("usuario2", req.Usuario2),
			logger.ErrorField("error", err))
	}

	mensajes, total, err := s.mensajeRepo.Conversacion(ctx, req.Usuario1, req.Usuario2, req.AnuncioID, req.Pagina, req.Limite)
	if err != nil {
		return nil, Paginacion{}, errAlmacenamiento(ctx, "obtener conversación", err)
	}

	paginacion := Paginacion{
		Pagina: req.Pagina,
		Limite: req.Limite,
		Total:  total,
	}
	if req.Limite > 0 {
		paginacion.TotalPaginas = (total + int64(req.Limite) - 1) / int64(req.Limite)
	}
	return mensajes, paginacion, nil
}

// ObtenerChats lista de chats del propio actor.
func (s *mensajeServiceImpl) ObtenerChats(ctx context.Context, actorID int64, req *dto.ObtenerChatsRequest) ([]repository.ChatResumen, error) {
	if actorID != req.UsuarioID {
		return nil, NewError(consts.CodeNoAutorizado)
	}
	chats, err := s.mensajeRepo.ListaChats(ctx, actorID)
	if err != nil {
		return nil, errAlmacenamiento(ctx, "listar chats", err)
	}
	return chats, nil
}

// MarcarLeidos el actor debe ser el destinatario del par que marca.
func (s *mensajeServiceImpl) MarcarLeidos(ctx context.Context, actorID int64, req *dto.MarcarLeidosRequest) error {
	if actorID != req.DestinatarioID {
		return NewError(consts.CodeNoAutorizado)
	}
	if _, err := s.mensajeRepo.MarcarLeidos(ctx, req.RemitenteID, req.DestinatarioID, req.AnuncioID); err != nil {
		return errAlmacenamiento(ctx, "marcar leídos", err)
	}
	return nil
}

// TotalNoLeidos el actor solo consulta su propio contador.
func (s *mensajeServiceImpl) TotalNoLeidos(ctx context.Context, actorID int64, req *dto.ObtenerNoLeidosRequest) (int64, error) {
	if actorID != req.UsuarioID {
		return 0, NewError(consts.CodeNoAutorizado)
	}
	total, err := s.mensajeRepo.TotalNoLeidos(ctx, actorID)
	if err != nil {
		return 0, errAlmacenamiento(ctx, "contar no leídos", err)
	}
	return total, nil
}

// EstadoMensaje solo los dos participantes del mensaje pueden consultarlo.
func (s *mensajeServiceImpl) EstadoMensaje(ctx context.Context, actorID int64, req *dto.ObtenerEstadoMensajeRequest) (string, error) {
	if actorID != req.UsuarioID {
		return "", NewError(consts.CodeNoAutorizado)
	}

	mensaje, err := s.mensajeRepo.ObtenerPorID(ctx, req.MensajeID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistroNoEncontrado) {
			return "", NewError(consts.CodeMensajeNoEncontrado)
		}
		return "", errAlmacenamiento(ctx, "obtener estado de mensaje", err)
	}
	if mensaje.RemitenteID != actorID && mensaje.DestinatarioID != actorID {
		return "", NewError(consts.CodeNoAutorizado)
	}
	return s.caps.EstadoEfectivo(*mensaje), nil
}

// MarcarVisto resultado no-aplicado (false) cuando el mensaje no existe, el
// actor no es el destinatario o ya estaba visto. Nunca es un error.
func (s *mensajeServiceImpl) MarcarVisto(ctx context.Context, actorID int64, req *dto.MarcarVistoRequest) (bool, error) {
	if actorID != req.UsuarioID {
		return false, NewError(consts.CodeNoAutorizado)
	}
	aplicado, err := s.mensajeRepo.MarcarVisto(ctx, req.MensajeID, actorID)
	if err != nil {
		return false, errAlmacenamiento(ctx, "marcar visto", err)
	}
	return aplicado, nil
}

// MarcarConversacionVista el actor debe ser el destinatario.
func (s *mensajeServiceImpl) MarcarConversacionVista(ctx context.Context, actorID int64, req *dto.MarcarConversacionVistaRequest) (int64, error) {
	if actorID != req.DestinatarioID {
		return 0, NewError(consts.CodeNoAutorizado)
	}
	filas, err := s.mensajeRepo.MarcarConversacionVista(ctx, req.DestinatarioID, req.RemitenteID, req.AnuncioID)
	if err != nil {
		return 0, errAlmacenamiento(ctx, "marcar conversación vista", err)
	}
	return filas, nil
}

// EstadosMensajes estados de los mensajes que el actor envió a la contraparte.
func (s *mensajeServiceImpl) EstadosMensajes(ctx context.Context, actorID int64, req *dto.ObtenerEstadosMensajesRequest) ([]repository.EstadoMensaje, error) {
	if actorID != req.UsuarioID {
		return nil, NewError(consts.CodeNoAutorizado)
	}
	estados, err := s.mensajeRepo.EstadosEntre(ctx, actorID, req.OtroUsuarioID)
	if err != nil {
		return nil, errAlmacenamiento(ctx, "obtener estados de mensajes", err)
	}
	return estados, nil
}

// ReportarMensaje resuelve la contraparte como el otro participante del
// mensaje respecto al reportador, toma una instantánea de los últimos 5
// mensajes del par y dispara el aviso a administradores activos en segundo
// plano.
func (s *mensajeServiceImpl) ReportarMensaje(ctx context.Context, actorID int64, req *dto.ReportarMensajeRequest) (int64, error) {
	if actorID != req.UsuarioReportadorID {
		return 0, NewError(consts.CodeNoAutorizado)
	}

	mensaje, err := s.mensajeRepo.ObtenerPorID(ctx, req.MensajeID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistroNoEncontrado) {
			return 0, NewError(consts.CodeMensajeNoEncontrado)
		}
		return 0, errAlmacenamiento(ctx, "obtener mensaje reportado", err)
	}

	var reportadoID int64
	switch actorID {
	case mensaje.RemitenteID:
		reportadoID = mensaje.DestinatarioID
	case mensaje.DestinatarioID:
		reportadoID = mensaje.RemitenteID
	default:
		return 0, NewError(consts.CodeNoAutorizado)
	}

	contexto := s.contextoReporte(ctx, actorID, reportadoID)
	motivo := model.MotivoReporte{
		Motivo:    req.Motivo,
		MensajeID: req.MensajeID,
		Contexto:  contexto,
		Fecha:     time.Now(),
	}
	motivoJSON, err := json.Marshal(motivo)
	if err != nil {
		logger.Error(ctx, "no se pudo serializar el motivo del reporte", logger.ErrorField("error", err))
		return 0, NewError(consts.CodeReporteFallido)
	}

	reporte := &model.Reporte{
		ReportadorID: actorID,
		ReportadoID:  reportadoID,
		Tipo:         model.ReporteTipoMensaje,
		Motivo:       string(motivoJSON),
	}
	reporteID, err := s.reporteRepo.Crear(ctx, reporte)
	if err != nil {
		logger.Error(ctx, "fallo al persistir reporte", logger.ErrorField("error", err))
		return 0, NewError(consts.CodeReporteFallido)
	}

	s.auditor.Registrar(ctx, audit.Evento{
		Accion:    consts.AccionReportarMensaje,
		ActorID:   actorID,
		ObjetoID:  reporteID,
		Resultado: audit.ResultadoExito,
		Detalle:   fmt.Sprintf("reportado %d por mensaje %d", reportadoID, req.MensajeID),
	})

	s.avisarAdministradores(ctx, reporteID, actorID, reportadoID)

	return reporteID, nil
}

// contextoReporte instantánea de los últimos 5 mensajes entre el par. Un fallo
// aquí no impide el reporte: el contexto queda vacío.
func (s *mensajeServiceImpl) contextoReporte(ctx context.Context, reportadorID, reportadoID int64) []model.MensajeContexto {
	ultimos, err := s.mensajeRepo.UltimosEntrePar(ctx, reportadorID, reportadoID, 5)
	if err != nil {
		logger.Warn(ctx, "no se pudo capturar el contexto del reporte", logger.ErrorField("error", err))
		return nil
	}
	contexto := make([]model.MensajeContexto, 0, len(ultimos))
	for _, m := range ultimos {
		contexto = append(contexto, model.MensajeContexto{
			ID:          m.ID,
			RemitenteID: m.RemitenteID,
			Contenido:   m.Contenido,
			FechaEnvio:  m.FechaEnvio,
		})
	}
	return contexto
}

// avisarAdministradores fan-out de mejor esfuerzo a los administradores
// activos: fila de notificación y correo por cada uno, en segundo plano.
func (s *mensajeServiceImpl) avisarAdministradores(ctx context.Context, reporteID, reportadorID, reportadoID int64) {
	async.RunSafe(ctx, func(runCtx context.Context) {
		admins, err := s.usuarioRepo.AdministradoresActivos(runCtx)
		if err != nil {
			logger.Warn(runCtx, "no se pudieron listar administradores para el aviso de reporte",
				logger.ErrorField("error", err))
			return
		}
		asunto := fmt.Sprintf("Nuevo reporte de mensaje #%d", reporteID)
		cuerpo := fmt.Sprintf("El usuario %d reportó al usuario %d. Revisa el panel de moderación.", reportadorID, reportadoID)
		for _, admin := range admins {
			notificacion := &model.Notificacion{
				UsuarioID: admin.ID,
				Tipo:      model.NotificacionReporte,
				Titulo:    asunto,
				Contenido: cuerpo,
			}
			if err := s.notificacionRepo.Crear(runCtx, notificacion); err != nil {
				logger.Warn(runCtx, "no se pudo notificar a administrador",
					logger.Int64("admin_id", admin.ID),
					logger.ErrorField("error", err))
			}
			if admin.Email != "" {
				if err := s.mailer.Enviar(admin.Email, asunto, cuerpo); err != nil {
					logger.Warn(runCtx, "no se pudo enviar correo de reporte",
						logger.Int64("admin_id", admin.ID),
						logger.ErrorField("error", err))
				}
			}
		}
	}, 15*time.Second)
}

// recortar limita un texto a n runas para los resúmenes de notificación.
func recortar(texto string, n int) string {
	runas := []rune(texto)
	if len(runas) <= n {
		return texto
	}
	return string(runas[:n]) + "…"
}
