package audit

import (
	"context"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/async"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/mq"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/util"
)

// Resultados posibles de un evento de auditoría.
const (
	ResultadoExito      = "exito"
	ResultadoRechazado  = "rechazado"
	ResultadoNoAutorizado = "no_autorizado"
	ResultadoError      = "error"
)

// Evento hecho auditable. ObjetoID refiere al recurso afectado (mensaje,
// bloqueo, reporte) cuando aplica.
type Evento struct {
	Accion    string
	ActorID   int64
	ObjetoID  int64
	Resultado string
	Detalle   string
}

// Auditor registra eventos de auditoría. Se construye una sola vez en el
// arranque y se inyecta por constructor en cada componente que lo necesite;
// no existe ningún singleton memoizado.
type Auditor interface {
	Registrar(ctx context.Context, evento Evento)
}

// auditorImpl escribe el evento como entrada estructurada de log y, si hay
// publicador configurado, lo replica al topic de auditoría desde el pool
// asíncrono. Registrar nunca falla hacia el llamador: auditar es un efecto
// de mejor esfuerzo en todos los puntos del servicio.
type auditorImpl struct {
	publicador mq.Publicador
}

// NewAuditor crea el auditor del proceso.
func NewAuditor(publicador mq.Publicador) Auditor {
	if publicador == nil {
		publicador = mq.NewNopPublicador()
	}
	return &auditorImpl{publicador: publicador}
}

// Registrar escribe el evento en el log y lo publica en segundo plano.
func (a *auditorImpl) Registrar(ctx context.Context, evento Evento) {
	id := util.GenID()

	logger.Info(ctx, "auditoría",
		logger.Int64("evento_id", id),
		logger.String("accion", evento.Accion),
		logger.Int64("actor_id", evento.ActorID),
		logger.Int64("objeto_id", evento.ObjetoID),
		logger.String("resultado", evento.Resultado),
		logger.String("detalle", evento.Detalle),
	)

	traceID, _ := ctx.Value("trace_id").(string)
	payload := mq.EventoAuditoria{
		ID:        id,
		Accion:    evento.Accion,
		ActorID:   evento.ActorID,
		ObjetoID:  evento.ObjetoID,
		Resultado: evento.Resultado,
		Detalle:   evento.Detalle,
		TraceID:   traceID,
		Timestamp: time.Now(),
	}

	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := a.publicador.Publicar(runCtx, payload); err != nil {
			// publicar es mejor esfuerzo: se registra y se descarta
			logger.Warn(runCtx, "no se pudo publicar el evento de auditoría",
				logger.ErrorField("error", err),
				logger.Int64("evento_id", payload.ID),
			)
		}
	}, 5*time.Second)
}

// NopAuditor descarta todos los eventos. Para pruebas.
type NopAuditor struct{}

func (NopAuditor) Registrar(context.Context, Evento) {}
