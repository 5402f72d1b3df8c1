package session

import (
	"context"
	"sync"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/util"
)

// Motivos de terminación de la sesión.
const (
	MotivoInactividad   = "inactividad"
	MotivoTokenExpirado = "token_expirado"
	MotivoManual        = "cierre_manual"
)

// Callbacks puntos de enganche de la interfaz de usuario. Todos son
// opcionales; se invocan desde las goroutines del monitor.
type Callbacks struct {
	// AlAvisoInactividad aviso descartable: quedan `restante` hasta el
	// cierre por inactividad. El usuario puede Continuar o Cerrar.
	AlAvisoInactividad func(restante time.Duration)
	// AlCuentaRegresiva modal no descartable de expiración de token con los
	// segundos restantes de la cuenta regresiva. Solo admite cerrar sesión.
	AlCuentaRegresiva func(segundos int)
	// AlTerminar la sesión terminó por el motivo indicado.
	AlTerminar func(motivo string)
}

// Monitor máquina de estados local del cliente con dos temporizadores
// independientes: inactividad y expiración absoluta del token. El segundo
// puede dispararse aunque el usuario esté activo, porque sigue al exp del
// token y no a la actividad.
type Monitor struct {
	cfg      config.SessionConfig
	almacen  AlmacenActividad
	cb       Callbacks
	tokenExp time.Time

	mu              sync.Mutex
	ultimaActividad time.Time
	avisoMostrado   bool
	enCuenta        bool

	done chan struct{}
	una  sync.Once
}

// NewMonitor decodifica el exp del token (sin verificar firma: el cliente no
// tiene el secreto) y restaura la última actividad persistida si existe.
func NewMonitor(cfg config.SessionConfig, tokenString string, almacen AlmacenActividad, cb Callbacks) (*Monitor, error) {
	exp, err := util.DecodeExp(tokenString)
	if err != nil {
		return nil, err
	}

	if almacen == nil {
		almacen = NewAlmacenMemoria()
	}

	ultima := time.Now()
	if guardada, err := almacen.Cargar(); err == nil && !guardada.IsZero() {
		ultima = guardada
	}

	return &Monitor{
		cfg:             cfg,
		almacen:         almacen,
		cb:              cb,
		tokenExp:        exp,
		ultimaActividad: ultima,
		done:            make(chan struct{}),
	}, nil
}

// Iniciar arranca ambos temporizadores. Cada uno corre en su goroutine con la
// granularidad de muestreo configurada y se detiene con Cerrar o con el ctx.
func (m *Monitor) Iniciar(ctx context.Context) {
	go m.bucleInactividad(ctx)
	go m.bucleExpiracion(ctx)
}

// Actividad reinicia el temporizador de inactividad. Se invoca ante los
// eventos de actividad del cliente (puntero, teclado, scroll, toque) y
// persiste la marca de mejor esfuerzo.
func (m *Monitor) Actividad() {
	m.mu.Lock()
	m.ultimaActividad = time.Now()
	m.avisoMostrado = false
	m.mu.Unlock()

	if err := m.almacen.Guardar(time.Now()); err != nil {
		// almacenamiento lleno o no disponible; la sesión sigue
		logger.Debug(context.Background(), "no se pudo persistir la última actividad",
			logger.ErrorField("error", err))
	}
}

// Continuar respuesta al botón "seguir conectado" del aviso de inactividad.
func (m *Monitor) Continuar() {
	m.Actividad()
}

// Cerrar termina la sesión de forma idempotente: detiene ambos
// temporizadores, limpia los artefactos locales y notifica el motivo una
// sola vez.
func (m *Monitor) Cerrar(motivo string) {
	m.una.Do(func() {
		close(m.done)
		if err := m.almacen.Limpiar(); err != nil {
			logger.Debug(context.Background(), "no se pudo limpiar el almacén de sesión",
				logger.ErrorField("error", err))
		}
		if m.cb.AlTerminar != nil {
			m.cb.AlTerminar(motivo)
		}
	})
}

// bucleInactividad muestrea la inactividad acumulada. A falta del tiempo de
// antelación configurado dispara el aviso descartable; agotado el máximo,
// cierra la sesión.
func (m *Monitor) bucleInactividad(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.IntervaloMuestreo)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		transcurrido := time.Since(m.ultimaActividad)
		avisado := m.avisoMostrado
		restante := m.cfg.InactividadMax - transcurrido

		if restante <= 0 {
			m.mu.Unlock()
			m.Cerrar(MotivoInactividad)
			return
		}

		if restante <= m.cfg.AvisoInactividad && !avisado {
			m.avisoMostrado = true
			m.mu.Unlock()
			if m.cb.AlAvisoInactividad != nil {
				m.cb.AlAvisoInactividad(restante)
			}
			continue
		}
		m.mu.Unlock()
	}
}

// bucleExpiracion vigila el exp absoluto del token. Cruzado el umbral,
// arranca la cuenta regresiva no descartable y al llegar a cero cierra la
// sesión. La cuenta no se detiene con actividad, solo con Cerrar.
func (m *Monitor) bucleExpiracion(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.IntervaloMuestreo)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
		}

		if time.Until(m.tokenExp) >= m.cfg.UmbralExpiracion {
			continue
		}

		m.mu.Lock()
		if m.enCuenta {
			m.mu.Unlock()
			return
		}
		m.enCuenta = true
		m.mu.Unlock()

		m.cuentaRegresiva(ctx)
		return
	}
}

func (m *Monitor) cuentaRegresiva(ctx context.Context) {
	segundos := int(m.cfg.CuentaRegresiva / time.Second)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for restante := segundos; restante > 0; restante-- {
		if m.cb.AlCuentaRegresiva != nil {
			m.cb.AlCuentaRegresiva(restante)
		}
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
		}
	}

	m.Cerrar(MotivoTokenExpirado)
}
