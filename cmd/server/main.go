package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/audit"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/handler"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/middleware"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/realtime"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/repository"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/router"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/service"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/token"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/validator"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/async"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/database"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/mail"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/mq"
	pkgredis "github.com/BryanHuaPer/viajeros-peru-sub002/pkg/redis"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/util"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Logger
	logCfg := config.DefaultLoggerConfig()
	zl, err := logger.Build(logCfg)
	if err != nil {
		log.Fatalf("inicialización del logger fallida: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer zl.Sync()

	// 2. Generador de IDs para auditoría
	if err := util.InitIDNode(1); err != nil {
		logger.Fatal(ctx, "inicialización del nodo de IDs fallida", logger.ErrorField("error", err))
	}

	// 3. Pool asíncrono para efectos de mejor esfuerzo
	asyncCfg := config.DefaultAsyncConfig()
	if err := async.Init(asyncCfg); err != nil {
		logger.Fatal(ctx, "inicialización del pool asíncrono fallida", logger.ErrorField("error", err))
	}
	defer async.Release()

	// 4. MySQL
	dbCfg := config.DefaultDatabaseConfig()
	db, err := database.Build(dbCfg)
	if err != nil {
		logger.Fatal(ctx, "inicialización de MySQL fallida", logger.ErrorField("error", err))
	}

	// 5. Redis (degradable: sin Redis los caches van directo a MySQL)
	redisCfg := config.DefaultRedisConfig()
	redisClient, err := pkgredis.Build(redisCfg)
	if err != nil {
		logger.Warn(ctx, "Redis no disponible, el servicio degrada a solo MySQL",
			logger.ErrorField("error", err))
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Redis inicializado", logger.String("addr", redisCfg.Addr))
	}

	// 6. JWT
	jwtCfg := config.DefaultJWTConfig()
	util.InitJWT(jwtCfg)

	// 7. Publicador de auditoría (Kafka, opcional)
	kafkaCfg := config.DefaultKafkaConfig()
	var publicador mq.Publicador
	if kafkaCfg.Enabled && len(kafkaCfg.Brokers) > 0 {
		publicador = mq.NewKafkaPublicador(kafkaCfg)
		logger.Info(ctx, "publicador de auditoría inicializado",
			logger.String("topic", kafkaCfg.Topic))
	} else {
		publicador = mq.NewNopPublicador()
	}
	defer publicador.Cerrar()

	// 8. Correo para el fan-out de reportes (opcional)
	mailCfg := config.DefaultMailConfig()
	var mailer mail.Mailer
	if mailCfg.Enabled && mailCfg.Host != "" {
		mailer = mail.NewSMTPMailer(mailCfg)
	} else {
		mailer = mail.NewNopMailer()
	}

	// 9. Capacidades del esquema y políticas
	schemaCfg := config.DefaultSchemaConfig()
	caps := repository.Capacidades{TieneEstado: schemaCfg.TieneEstado}
	policyCfg := config.DefaultPolicyConfig()

	// 10. Ensamblado: repositorios -> colaboradores -> servicios -> handlers
	auditor := audit.NewAuditor(publicador)
	validador := validator.NewValidador(auditor)

	mensajeRepo := repository.NewMensajeRepository(db, redisClient, caps)
	bloqueoRepo := repository.NewBloqueoRepository(db, redisClient)
	reporteRepo := repository.NewReporteRepository(db)
	notificacionRepo := repository.NewNotificacionRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)

	hub := realtime.NewHub()
	defer hub.Apagar()

	mensajeSvc := service.NewMensajeService(
		mensajeRepo, bloqueoRepo, reporteRepo, notificacionRepo, usuarioRepo,
		validador, auditor, mailer, hub, caps,
	)
	bloqueoSvc := service.NewBloqueoService(bloqueoRepo, auditor)

	verifier, err := token.NewVerifier(jwtCfg, policyCfg)
	if err != nil {
		logger.Fatal(ctx, "inicialización del verificador de tokens fallida", logger.ErrorField("error", err))
	}

	mensajesHandler := handler.NewMensajesHandler(verifier, mensajeSvc, bloqueoSvc)
	wsHandler := realtime.NewWSHandler(hub, verifier)

	rateCfg := config.DefaultRateLimitConfig()
	rateLimiter := middleware.NewRateLimiter(redisClient, rateCfg.Rate, rateCfg.Burst)

	engine := router.InitRouter(mensajesHandler, wsHandler, rateLimiter)

	// 11. Servidor HTTP con apagado ordenado
	serverCfg := config.DefaultServerConfig()
	addr := fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        engine,
		ReadTimeout:    serverCfg.ReadTimeout,
		WriteTimeout:   serverCfg.WriteTimeout,
		MaxHeaderBytes: serverCfg.MaxHeaderBytes,
	}

	go func() {
		logger.Info(ctx, "servicio de mensajería escuchando", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "el servidor HTTP terminó con error", logger.ErrorField("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "señal de apagado recibida, cerrando con gracia")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "apagado del servidor HTTP con error", logger.ErrorField("error", err))
	}

	logger.Info(ctx, "servicio detenido")
}
