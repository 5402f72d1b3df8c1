package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/audit"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/dto"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/repository"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/validator"
	"github.com/BryanHuaPer/viajeros-peru-sub002/model"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var servicioLoggerOnce sync.Once

func initServicioTest() {
	servicioLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// --- fakes con campos función, se configura solo lo que la prueba ejercita ---

type mensajeRepoFake struct {
	crearFn                   func(ctx context.Context, mensaje *model.Mensaje) (int64, error)
	obtenerPorIDFn            func(ctx context.Context, id int64) (*model.Mensaje, error)
	conversacionFn            func(ctx context.Context, usuarioA, usuarioB int64, anuncioID *int64, pagina, limite int) ([]model.Mensaje, int64, error)
	marcarEntregadosFn        func(ctx context.Context, consultante, contraparte int64, anuncioID *int64) error
	marcarLeidosFn            func(ctx context.Context, remitenteID, destinatarioID int64, anuncioID *int64) (int64, error)
	marcarConversacionVistaFn func(ctx context.Context, destinatarioID, remitenteID int64, anuncioID *int64) (int64, error)
	marcarVistoFn             func(ctx context.Context, mensajeID, destinatarioID int64) (bool, error)
	totalNoLeidosFn           func(ctx context.Context, usuarioID int64) (int64, error)
	listaChatsFn              func(ctx context.Context, usuarioID int64) ([]repository.ChatResumen, error)
	ultimosEntreParFn         func(ctx context.Context, usuarioA, usuarioB int64, limite int) ([]model.Mensaje, error)
	estadosEntreFn            func(ctx context.Context, usuarioID, otroUsuarioID int64) ([]repository.EstadoMensaje, error)
}

func (f *mensajeRepoFake) Crear(ctx context.Context, mensaje *model.Mensaje) (int64, error) {
	return f.crearFn(ctx, mensaje)
}

func (f *mensajeRepoFake) ObtenerPorID(ctx context.Context, id int64) (*model.Mensaje, error) {
	return f.obtenerPorIDFn(ctx, id)
}

func (f *mensajeRepoFake) Conversacion(ctx context.Context, usuarioA, usuarioB int64, anuncioID *int64, pagina, limite int) ([]model.Mensaje, int64, error) {
	return f.conversacionFn(ctx, usuarioA, usuarioB, anuncioID, pagina, limite)
}

func (f *mensajeRepoFake) MarcarEntregados(ctx context.Context, consultante, contraparte int64, anuncioID *int64) error {
	if f.marcarEntregadosFn == nil {
		return nil
	}
	return f.marcarEntregadosFn(ctx, consultante, contraparte, anuncioID)
}

func (f *mensajeRepoFake) MarcarLeidos(ctx context.Context, remitenteID, destinatarioID int64, anuncioID *int64) (int64, error) {
	return f.marcarLeidosFn(ctx, remitenteID, destinatarioID, anuncioID)
}

func (f *mensajeRepoFake) MarcarConversacionVista(ctx context.Context, destinatarioID, remitenteID int64, anuncioID *int64) (int64, error) {
	return f.marcarConversacionVistaFn(ctx, destinatarioID, remitenteID, anuncioID)
}

func (f *mensajeRepoFake) MarcarVisto(ctx context.Context, mensajeID, destinatarioID int64) (bool, error) {
	return f.marcarVistoFn(ctx, mensajeID, destinatarioID)
}

func (f *mensajeRepoFake) TotalNoLeidos(ctx context.Context, usuarioID int64) (int64, error) {
	return f.totalNoLeidosFn(ctx, usuarioID)
}

func (f *mensajeRepoFake) ListaChats(ctx context.Context, usuarioID int64) ([]repository.ChatResumen, error) {
	return f.listaChatsFn(ctx, usuarioID)
}

func (f *mensajeRepoFake) UltimosEntrePar(ctx context.Context, usuarioA, usuarioB int64, limite int) ([]model.Mensaje, error) {
	if f.ultimosEntreParFn == nil {
		return nil, nil
	}
	return f.ultimosEntreParFn(ctx, usuarioA, usuarioB, limite)
}

func (f *mensajeRepoFake) EstadosEntre(ctx context.Context, usuarioID, otroUsuarioID int64) ([]repository.EstadoMensaje, error) {
	return f.estadosEntreFn(ctx, usuarioID, otroUsuarioID)
}

type bloqueoRepoFake struct {
	existeEntreFn  func(ctx context.Context, usuarioA, usuarioB int64) (bool, error)
	detalleEntreFn func(ctx context.Context, usuarioA, usuarioB int64) (repository.DetalleBloqueo, error)
	crearFn        func(ctx context.Context, bloqueadorID, bloqueadoID int64) error
	eliminarFn     func(ctx context.Context, bloqueadorID, bloqueadoID int64) error
}

func (f *bloqueoRepoFake) ExisteEntre(ctx context.Context, usuarioA, usuarioB int64) (bool, error) {
	if f.existeEntreFn == nil {
		return false, nil
	}
	return f.existeEntreFn(ctx, usuarioA, usuarioB)
}

func (f *bloqueoRepoFake) DetalleEntre(ctx context.Context, usuarioA, usuarioB int64) (repository.DetalleBloqueo, error) {
	return f.detalleEntreFn(ctx, usuarioA, usuarioB)
}

func (f *bloqueoRepoFake) Crear(ctx context.Context, bloqueadorID, bloqueadoID int64) error {
	return f.crearFn(ctx, bloqueadorID, bloqueadoID)
}

func (f *bloqueoRepoFake) Eliminar(ctx context.Context, bloqueadorID, bloqueadoID int64) error {
	return f.eliminarFn(ctx, bloqueadorID, bloqueadoID)
}

type reporteRepoFake struct {
	crearFn func(ctx context.Context, reporte *model.Reporte) (int64, error)
}

func (f *reporteRepoFake) Crear(ctx context.Context, reporte *model.Reporte) (int64, error) {
	return f.crearFn(ctx, reporte)
}

type notificacionRepoFake struct {
	crearFn func(ctx context.Context, notificacion *model.Notificacion) error
}

func (f *notificacionRepoFake) Crear(ctx context.Context, notificacion *model.Notificacion) error {
	if f.crearFn == nil {
		return nil
	}
	return f.crearFn(ctx, notificacion)
}

type usuarioRepoFake struct {
	obtenerPorIDFn           func(ctx context.Context, id int64) (*model.Usuario, error)
	administradoresActivosFn func(ctx context.Context) ([]model.Usuario, error)
}

func (f *usuarioRepoFake) ObtenerPorID(ctx context.Context, id int64) (*model.Usuario, error) {
	return f.obtenerPorIDFn(ctx, id)
}

func (f *usuarioRepoFake) AdministradoresActivos(ctx context.Context) ([]model.Usuario, error) {
	if f.administradoresActivosFn == nil {
		return nil, nil
	}
	return f.administradoresActivosFn(ctx)
}

type auditorFake struct {
	mu      sync.Mutex
	eventos []audit.Evento
}

func (a *auditorFake) Registrar(_ context.Context, evento audit.Evento) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eventos = append(a.eventos, evento)
}

func (a *auditorFake) registrados() []audit.Evento {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Evento(nil), a.eventos...)
}

type notificadorFake struct {
	mu       sync.Mutex
	llamadas []int64
}

func (n *notificadorFake) NotificarNuevoMensaje(_ context.Context, destinatarioID int64, _ *model.Mensaje) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.llamadas = append(n.llamadas, destinatarioID)
}

// entorno de prueba del servicio de mensajes con fakes intercambiables.
type entornoMensajes struct {
	mensajeRepo      *mensajeRepoFake
	bloqueoRepo      *bloqueoRepoFake
	reporteRepo      *reporteRepoFake
	notificacionRepo *notificacionRepoFake
	usuarioRepo      *usuarioRepoFake
	auditor          *auditorFake
	notificador      *notificadorFake
	caps             repository.Capacidades
}

func nuevoEntorno() *entornoMensajes {
	initServicioTest()
	return &entornoMensajes{
		mensajeRepo:      &mensajeRepoFake{},
		bloqueoRepo:      &bloqueoRepoFake{},
		reporteRepo:      &reporteRepoFake{},
		notificacionRepo: &notificacionRepoFake{},
		usuarioRepo:      &usuarioRepoFake{},
		auditor:          &auditorFake{},
		notificador:      &notificadorFake{},
		caps:             repository.Capacidades{TieneEstado: true},
	}
}

func (e *entornoMensajes) servicio() IMensajeService {
	return NewMensajeService(
		e.mensajeRepo,
		e.bloqueoRepo,
		e.reporteRepo,
		e.notificacionRepo,
		e.usuarioRepo,
		validator.NewValidador(e.auditor),
		e.auditor,
		mail.NewNopMailer(),
		e.notificador,
		e.caps,
	)
}

func codigoNegocio(t *testing.T, err error) *ErrorNegocio {
	t.Helper()
	var en *ErrorNegocio
	require.ErrorAs(t, err, &en)
	return en
}

func TestEnviarActorDistintoDelRemitente(t *testing.T) {
	e := nuevoEntorno()
	svc := e.servicio()

	_, err := svc.Enviar(context.Background(), 99, &dto.EnviarRequest{
		RemitenteID:    1,
		DestinatarioID: 2,
		Contenido:      "hola",
	})

	assert.Equal(t, consts.CodeNoAutorizado, codigoNegocio(t, err).Code)

	eventos := e.auditor.registrados()
	require.Len(t, eventos, 1)
	assert.Equal(t, audit.ResultadoNoAutorizado, eventos[0].Resultado)
	assert.Equal(t, int64(99), eventos[0].ActorID)
}

func TestEnviarContenidoRechazadoViajaIntacto(t *testing.T) {
	e := nuevoEntorno()
	svc := e.servicio()

	_, err := svc.Enviar(context.Background(), 1, &dto.EnviarRequest{
		RemitenteID:    1,
		DestinatarioID: 2,
		Contenido:      "visita bit.ly/oferta",
	})

	var ev *validator.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.NotEmpty(t, ev.Codigo)
}

func TestEnviarBloqueado(t *testing.T) {
	e := nuevoEntorno()
	e.bloqueoRepo.existeEntreFn = func(_ context.Context, usuarioA, usuarioB int64) (bool, error) {
		assert.Equal(t, int64(1), usuarioA)
		assert.Equal(t, int64(2), usuarioB)
		return true, nil
	}
	svc := e.servicio()

	_, err := svc.Enviar(context.Background(), 1, &dto.EnviarRequest{
		RemitenteID:    1,
		DestinatarioID: 2,
		Contenido:      "hola, ¿sigue disponible?",
	})

	en := codigoNegocio(t, err)
	assert.Equal(t, consts.CodeUsuarioBloqueado, en.Code)
	assert.Equal(t, consts.CodigoUsuarioBloqueado, en.Codigo)

	eventos := e.auditor.registrados()
	require.Len(t, eventos, 1)
	assert.Equal(t, audit.ResultadoRechazado, eventos[0].Resultado)
}

func TestEnviarExitoDevuelveMensajeReleido(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.crearFn = func(_ context.Context, mensaje *model.Mensaje) (int64, error) {
		mensaje.ID = 7
		return 7, nil
	}
	e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, id int64) (*model.Mensaje, error) {
		require.Equal(t, int64(7), id)
		return &model.Mensaje{
			ID:              7,
			RemitenteID:     1,
			DestinatarioID:  2,
			Contenido:       "hola, ¿sigue disponible?",
			Estado:          "enviado",
			RemitenteNombre: "Ana Quispe",
		}, nil
	}
	svc := e.servicio()

	mensaje, err := svc.Enviar(context.Background(), 1, &dto.EnviarRequest{
		RemitenteID:    1,
		DestinatarioID: 2,
		Contenido:      "hola, ¿sigue disponible?",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), mensaje.ID)
	assert.Equal(t, "Ana Quispe", mensaje.RemitenteNombre)

	// el aviso en tiempo real sale en el mismo hilo del envío
	assert.Equal(t, []int64{2}, e.notificador.llamadas)

	eventos := e.auditor.registrados()
	require.Len(t, eventos, 1)
	assert.Equal(t, audit.ResultadoExito, eventos[0].Resultado)
	assert.Equal(t, int64(7), eventos[0].ObjetoID)
}

func TestEnviarRelecturaFallidaDevuelveMensajeEnMemoria(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.crearFn = func(_ context.Context, mensaje *model.Mensaje) (int64, error) {
		mensaje.ID = 8
		return 8, nil
	}
	e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
		return nil, errors.New("conexión perdida")
	}
	svc := e.servicio()

	mensaje, err := svc.Enviar(context.Background(), 1, &dto.EnviarRequest{
		RemitenteID:    1,
		DestinatarioID: 2,
		Contenido:      "¿el precio incluye desayuno?",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(8), mensaje.ID)
	assert.Equal(t, int64(2), mensaje.DestinatarioID)
}

func TestEnviarFalloDePersistencia(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.crearFn = func(_ context.Context, _ *model.Mensaje) (int64, error) {
		return 0, errors.New("deadlock")
	}
	svc := e.servicio()

	_, err := svc.Enviar(context.Background(), 1, &dto.EnviarRequest{
		RemitenteID:    1,
		DestinatarioID: 2,
		Contenido:      "hola",
	})

	assert.Equal(t, consts.CodeEnvioFallido, codigoNegocio(t, err).Code)
	assert.Empty(t, e.notificador.llamadas)
}

func TestObtenerConversacionPaginacionYCortesia(t *testing.T) {
	e := nuevoEntorno()
	var entregadosConsultante, entregadosContraparte int64
	e.mensajeRepo.marcarEntregadosFn = func(_ context.Context, consultante, contraparte int64, _ *int64) error {
		entregadosConsultante, entregadosContraparte = consultante, contraparte
		return nil
	}
	e.mensajeRepo.conversacionFn = func(_ context.Context, usuarioA, usuarioB int64, _ *int64, pagina, limite int) ([]model.Mensaje, int64, error) {
		assert.Equal(t, int64(1), usuarioA)
		assert.Equal(t, int64(2), usuarioB)
		assert.Equal(t, 2, pagina)
		assert.Equal(t, 20, limite)
		return []model.Mensaje{{ID: 21}, {ID: 22}}, 45, nil
	}
	svc := e.servicio()

	mensajes, paginacion, err := svc.ObtenerConversacion(context.Background(), &dto.ObtenerConversacionRequest{
		Usuario1: 1,
		Usuario2: 2,
		Pagina:   2,
		Limite:   20,
	})

	require.NoError(t, err)
	assert.Len(t, mensajes, 2)
	assert.Equal(t, int64(45), paginacion.Total)
	assert.Equal(t, int64(3), paginacion.TotalPaginas)

	// usuario1 es quien consulta: sus recibidos avanzan a entregado
	assert.Equal(t, int64(1), entregadosConsultante)
	assert.Equal(t, int64(2), entregadosContraparte)
}

func TestObtenerConversacionCortesiaFallidaNoBloqueaLectura(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.marcarEntregadosFn = func(_ context.Context, _, _ int64, _ *int64) error {
		return errors.New("tabla bloqueada")
	}
	e.mensajeRepo.conversacionFn = func(_ context.Context, _, _ int64, _ *int64, _, _ int) ([]model.Mensaje, int64, error) {
		return []model.Mensaje{{ID: 30}}, 1, nil
	}
	svc := e.servicio()

	mensajes, _, err := svc.ObtenerConversacion(context.Background(), &dto.ObtenerConversacionRequest{
		Usuario1: 1,
		Usuario2: 2,
		Pagina:   1,
		Limite:   20,
	})

	require.NoError(t, err)
	assert.Len(t, mensajes, 1)
}

func TestMarcarLeidosActorDebeSerDestinatario(t *testing.T) {
	e := nuevoEntorno()
	svc := e.servicio()

	err := svc.MarcarLeidos(context.Background(), 5, &dto.MarcarLeidosRequest{
		RemitenteID:    1,
		DestinatarioID: 2,
	})

	assert.Equal(t, consts.CodeNoAutorizado, codigoNegocio(t, err).Code)
}

func TestEstadoMensaje(t *testing.T) {
	t.Run("no_encontrado", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
			return nil, repository.ErrRegistroNoEncontrado
		}
		svc := e.servicio()

		_, err := svc.EstadoMensaje(context.Background(), 1, &dto.ObtenerEstadoMensajeRequest{MensajeID: 5, UsuarioID: 1})
		assert.Equal(t, consts.CodeMensajeNoEncontrado, codigoNegocio(t, err).Code)
	})

	t.Run("no_participante", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
			return &model.Mensaje{ID: 5, RemitenteID: 8, DestinatarioID: 9}, nil
		}
		svc := e.servicio()

		_, err := svc.EstadoMensaje(context.Background(), 1, &dto.ObtenerEstadoMensajeRequest{MensajeID: 5, UsuarioID: 1})
		assert.Equal(t, consts.CodeNoAutorizado, codigoNegocio(t, err).Code)
	})

	t.Run("participante_recibe_estado", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
			return &model.Mensaje{ID: 5, RemitenteID: 1, DestinatarioID: 9, Estado: "entregado"}, nil
		}
		svc := e.servicio()

		estado, err := svc.EstadoMensaje(context.Background(), 1, &dto.ObtenerEstadoMensajeRequest{MensajeID: 5, UsuarioID: 1})
		require.NoError(t, err)
		assert.Equal(t, "entregado", estado)
	})

	t.Run("esquema_antiguo_sintetiza_estado", func(t *testing.T) {
		e := nuevoEntorno()
		e.caps = repository.Capacidades{TieneEstado: false}
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
			return &model.Mensaje{ID: 5, RemitenteID: 1, DestinatarioID: 9, Leido: true}, nil
		}
		svc := e.servicio()

		estado, err := svc.EstadoMensaje(context.Background(), 1, &dto.ObtenerEstadoMensajeRequest{MensajeID: 5, UsuarioID: 1})
		require.NoError(t, err)
		assert.Equal(t, "visto", estado)
	})
}

func TestMarcarVisto(t *testing.T) {
	t.Run("actor_ajeno", func(t *testing.T) {
		e := nuevoEntorno()
		svc := e.servicio()

		_, err := svc.MarcarVisto(context.Background(), 3, &dto.MarcarVistoRequest{MensajeID: 5, UsuarioID: 2})
		assert.Equal(t, consts.CodeNoAutorizado, codigoNegocio(t, err).Code)
	})

	t.Run("no_aplicado_no_es_error", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.marcarVistoFn = func(_ context.Context, mensajeID, destinatarioID int64) (bool, error) {
			assert.Equal(t, int64(5), mensajeID)
			assert.Equal(t, int64(2), destinatarioID)
			return false, nil
		}
		svc := e.servicio()

		aplicado, err := svc.MarcarVisto(context.Background(), 2, &dto.MarcarVistoRequest{MensajeID: 5, UsuarioID: 2})
		require.NoError(t, err)
		assert.False(t, aplicado)
	})
}

func TestTotalNoLeidosSoloPropio(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.totalNoLeidosFn = func(_ context.Context, usuarioID int64) (int64, error) {
		assert.Equal(t, int64(4), usuarioID)
		return 12, nil
	}
	svc := e.servicio()

	_, err := svc.TotalNoLeidos(context.Background(), 4, &dto.ObtenerNoLeidosRequest{UsuarioID: 9})
	assert.Equal(t, consts.CodeNoAutorizado, codigoNegocio(t, err).Code)

	total, err := svc.TotalNoLeidos(context.Background(), 4, &dto.ObtenerNoLeidosRequest{UsuarioID: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func TestReportarMensaje(t *testing.T) {
	mensajeBase := &model.Mensaje{ID: 40, RemitenteID: 6, DestinatarioID: 7, Contenido: "contenido reportado"}

	t.Run("reportador_es_destinatario", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, id int64) (*model.Mensaje, error) {
			require.Equal(t, int64(40), id)
			return mensajeBase, nil
		}
		e.mensajeRepo.ultimosEntreParFn = func(_ context.Context, usuarioA, usuarioB int64, limite int) ([]model.Mensaje, error) {
			assert.Equal(t, int64(7), usuarioA)
			assert.Equal(t, int64(6), usuarioB)
			assert.Equal(t, 5, limite)
			return []model.Mensaje{*mensajeBase}, nil
		}
		var guardado *model.Reporte
		e.reporteRepo.crearFn = func(_ context.Context, reporte *model.Reporte) (int64, error) {
			guardado = reporte
			return 300, nil
		}
		svc := e.servicio()

		reporteID, err := svc.ReportarMensaje(context.Background(), 7, &dto.ReportarMensajeRequest{
			UsuarioReportadorID: 7,
			MensajeID:           40,
			Motivo:              "lenguaje ofensivo",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(300), reporteID)

		require.NotNil(t, guardado)
		assert.Equal(t, int64(7), guardado.ReportadorID)
		assert.Equal(t, int64(6), guardado.ReportadoID)
		assert.Equal(t, model.ReporteTipoMensaje, guardado.Tipo)

		var motivo model.MotivoReporte
		require.NoError(t, json.Unmarshal([]byte(guardado.Motivo), &motivo))
		assert.Equal(t, "lenguaje ofensivo", motivo.Motivo)
		assert.Equal(t, int64(40), motivo.MensajeID)
		require.Len(t, motivo.Contexto, 1)
		assert.Equal(t, "contenido reportado", motivo.Contexto[0].Contenido)
	})

	t.Run("reportador_es_remitente", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
			return mensajeBase, nil
		}
		var guardado *model.Reporte
		e.reporteRepo.crearFn = func(_ context.Context, reporte *model.Reporte) (int64, error) {
			guardado = reporte
			return 301, nil
		}
		svc := e.servicio()

		_, err := svc.ReportarMensaje(context.Background(), 6, &dto.ReportarMensajeRequest{
			UsuarioReportadorID: 6,
			MensajeID:           40,
			Motivo:              "spam",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), guardado.ReportadoID)
	})

	t.Run("no_participante", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
			return mensajeBase, nil
		}
		svc := e.servicio()

		_, err := svc.ReportarMensaje(context.Background(), 99, &dto.ReportarMensajeRequest{
			UsuarioReportadorID: 99,
			MensajeID:           40,
			Motivo:              "spam",
		})

		assert.Equal(t, consts.CodeNoAutorizado, codigoNegocio(t, err).Code)
	})

	t.Run("contexto_fallido_no_impide_reporte", func(t *testing.T) {
		e := nuevoEntorno()
		e.mensajeRepo.obtenerPorIDFn = func(_ context.Context, _ int64) (*model.Mensaje, error) {
			return mensajeBase, nil
		}
		e.mensajeRepo.ultimosEntreParFn = func(_ context.Context, _, _ int64, _ int) ([]model.Mensaje, error) {
			return nil, errors.New("timeout")
		}
		var guardado *model.Reporte
		e.reporteRepo.crearFn = func(_ context.Context, reporte *model.Reporte) (int64, error) {
			guardado = reporte
			return 302, nil
		}
		svc := e.servicio()

		_, err := svc.ReportarMensaje(context.Background(), 7, &dto.ReportarMensajeRequest{
			UsuarioReportadorID: 7,
			MensajeID:           40,
			Motivo:              "spam",
		})

		require.NoError(t, err)
		var motivo model.MotivoReporte
		require.NoError(t, json.Unmarshal([]byte(guardado.Motivo), &motivo))
		assert.Empty(t, motivo.Contexto)
	})
}

func TestEstadosMensajesSoloPropios(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.estadosEntreFn = func(_ context.Context, usuarioID, otroUsuarioID int64) ([]repository.EstadoMensaje, error) {
		assert.Equal(t, int64(1), usuarioID)
		assert.Equal(t, int64(2), otroUsuarioID)
		return []repository.EstadoMensaje{{ID: 10, Estado: "visto"}, {ID: 11, Estado: "enviado"}}, nil
	}
	svc := e.servicio()

	estados, err := svc.EstadosMensajes(context.Background(), 1, &dto.ObtenerEstadosMensajesRequest{
		UsuarioID:     1,
		OtroUsuarioID: 2,
	})

	require.NoError(t, err)
	require.Len(t, estados, 2)
	assert.Equal(t, "visto", estados[0].Estado)
}

func TestMarcarConversacionVista(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.marcarConversacionVistaFn = func(_ context.Context, destinatarioID, remitenteID int64, _ *int64) (int64, error) {
		assert.Equal(t, int64(2), destinatarioID)
		assert.Equal(t, int64(1), remitenteID)
		return 3, nil
	}
	svc := e.servicio()

	filas, err := svc.MarcarConversacionVista(context.Background(), 2, &dto.MarcarConversacionVistaRequest{
		DestinatarioID: 2,
		RemitenteID:    1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), filas)
}

func TestErroresDeAlmacenamientoNoFiltranDetalle(t *testing.T) {
	e := nuevoEntorno()
	e.mensajeRepo.listaChatsFn = func(_ context.Context, _ int64) ([]repository.ChatResumen, error) {
		return nil, errors.New("Error 1045: Access denied for user 'app'@'10.0.0.3'")
	}
	svc := e.servicio()

	_, err := svc.ObtenerChats(context.Background(), 1, &dto.ObtenerChatsRequest{UsuarioID: 1})

	en := codigoNegocio(t, err)
	assert.Equal(t, consts.CodeAlmacenamiento, en.Code)
	assert.NotContains(t, err.Error(), "Access denied")
}

func TestRecortar(t *testing.T) {
	assert.Equal(t, "hola", recortar("hola", 120))
	largo := ""
	for i := 0; i < 130; i++ {
		largo += "ñ"
	}
	recortado := recortar(largo, 120)
	assert.Equal(t, 121, len([]rune(recortado)))
	assert.Equal(t, '…', []rune(recortado)[120])
}
