package async

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

var (
	global   *ants.Pool
	globalMu sync.Mutex
	cfgCopy  config.AsyncConfig
)

// ContextPropagator lo inyecta la capa de negocio para extraer del ctx padre
// los campos que deben viajar a la tarea asíncrona (trace_id, usuario, ip).
var ContextPropagator func(parent context.Context) context.Context

// SetContextPropagator fija el propagador de contexto (llamar en el arranque).
func SetContextPropagator(fn func(context.Context) context.Context) {
	ContextPropagator = fn
}

// ErrNotInitialized indica que el pool aún no fue inicializado.
var ErrNotInitialized = errors.New("async pool not initialized")

// Pool devuelve el pool global (nil si no se inicializó).
func Pool() *ants.Pool { return global }

// ReplaceGlobal fija el pool global.
func ReplaceGlobal(p *ants.Pool) { global = p }

// Build crea una instancia de pool según la configuración.
func Build(cfg config.AsyncConfig) (*ants.Pool, error) {
	opts := []ants.Option{
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithPanicHandler(func(p any) {
			msg := "pánico en tarea asíncrona"
			if logger.L() != nil {
				logger.Error(context.Background(), msg,
					logger.Any("panic", p),
					logger.String("stack", string(debug.Stack())),
				)
				return
			}
		}),
	}
	if cfg.Nonblocking {
		opts = append(opts, ants.WithNonblocking(true))
	}

	return ants.NewPool(cfg.PoolSize, opts...)
}

// Init inicializa el pool global (solo una vez en el arranque del proceso).
func Init(cfg config.AsyncConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil
	}

	p, err := Build(cfg)
	if err != nil {
		return err
	}

	global = p
	cfgCopy = cfg
	return nil
}

// Submit envía una tarea al pool global.
func Submit(task func()) error {
	if global == nil {
		return ErrNotInitialized
	}
	return global.Submit(task)
}

// Release libera el pool esperando a que terminen las tareas en curso.
func Release() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil
	}

	var err error
	if cfgCopy.ReleaseTimeout > 0 {
		err = global.ReleaseTimeout(cfgCopy.ReleaseTimeout)
	} else {
		global.Release()
	}
	global = nil
	return err
}

// RunSafe ejecuta una tarea asíncrona con timeout, recuperación de pánicos y
// propagación de contexto. Pensada para efectos de mejor esfuerzo: si el envío
// al pool falla solo se registra, nunca se propaga al llamador.
func RunSafe(ctx context.Context, task func(ctx context.Context), timeout time.Duration) {
	if task == nil {
		return
	}

	if timeout <= 0 {
		timeout = time.Minute
	}

	baseCtx := context.Background()
	if ContextPropagator != nil && ctx != nil {
		baseCtx = ContextPropagator(ctx)
	}

	runCtx, cancel := context.WithTimeout(baseCtx, timeout)

	wrap := func() {
		defer cancel()
		timer := time.AfterFunc(timeout, func() {
			if runCtx.Err() == context.DeadlineExceeded {
				if logger.L() != nil {
					logger.Warn(runCtx, "timeout de tarea asíncrona",
						logger.Duration("timeout", timeout),
					)
					return
				}
				log.Printf("timeout de tarea asíncrona: %s", timeout)
			}
		})
		defer timer.Stop()
		defer func() {
			if r := recover(); r != nil {
				msg := "pánico en tarea asíncrona"
				if logger.L() != nil {
					logger.Error(runCtx, msg,
						logger.Any("panic", r),
						logger.String("stack", string(debug.Stack())),
					)
					return
				}
			}
		}()

		task(runCtx)
	}

	if err := Submit(wrap); err != nil {
		cancel()
		if logger.L() != nil {
			logger.Error(baseCtx, "no se pudo enviar la tarea al pool",
				logger.ErrorField("error", err),
				logger.Duration("timeout", timeout),
			)
			return
		}
	}
}
