package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sesionInitOnce sync.Once

func initSesionTest() {
	sesionInitOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		util.InitJWT(config.DefaultJWTConfig())
	})
}

func tokenConVigencia(t *testing.T, vigencia time.Duration) string {
	t.Helper()
	initSesionTest()
	tok, err := util.GenerateTokenConExpiracion(1, "viajero", "v@example.com", vigencia)
	require.NoError(t, err)
	return tok
}

// configuración rápida para pruebas: muestreo de 10ms y expiración de token
// fuera del horizonte salvo que la prueba diga lo contrario.
func cfgRapida() config.SessionConfig {
	return config.SessionConfig{
		InactividadMax:    80 * time.Millisecond,
		AvisoInactividad:  40 * time.Millisecond,
		UmbralExpiracion:  time.Millisecond,
		CuentaRegresiva:   time.Second,
		IntervaloMuestreo: 10 * time.Millisecond,
	}
}

func esperarMotivo(t *testing.T, motivos <-chan string, limite time.Duration) string {
	t.Helper()
	select {
	case motivo := <-motivos:
		return motivo
	case <-time.After(limite):
		t.Fatal("el monitor no terminó dentro del plazo")
		return ""
	}
}

func TestMonitorCierraPorInactividad(t *testing.T) {
	motivos := make(chan string, 1)
	avisos := make(chan time.Duration, 4)

	m, err := NewMonitor(cfgRapida(), tokenConVigencia(t, 2*time.Hour), NewAlmacenMemoria(), Callbacks{
		AlAvisoInactividad: func(restante time.Duration) { avisos <- restante },
		AlTerminar:         func(motivo string) { motivos <- motivo },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Iniciar(ctx)

	assert.Equal(t, MotivoInactividad, esperarMotivo(t, motivos, 2*time.Second))

	// el aviso descartable llegó antes del cierre, con tiempo restante positivo
	select {
	case restante := <-avisos:
		assert.Positive(t, restante)
	default:
		t.Fatal("no se mostró el aviso de inactividad")
	}
}

func TestMonitorActividadReiniciaElTemporizador(t *testing.T) {
	motivos := make(chan string, 1)

	m, err := NewMonitor(cfgRapida(), tokenConVigencia(t, 2*time.Hour), NewAlmacenMemoria(), Callbacks{
		AlTerminar: func(motivo string) { motivos <- motivo },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Iniciar(ctx)

	// actividad continua durante más del máximo de inactividad
	fin := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(fin) {
		m.Actividad()
		select {
		case motivo := <-motivos:
			t.Fatalf("la sesión terminó (%s) a pesar de la actividad", motivo)
		case <-time.After(20 * time.Millisecond):
		}
	}

	// al cesar la actividad, el cierre llega
	assert.Equal(t, MotivoInactividad, esperarMotivo(t, motivos, 2*time.Second))
}

func TestMonitorCuentaRegresivaPorTokenExpirado(t *testing.T) {
	motivos := make(chan string, 1)
	var mu sync.Mutex
	var ticks []int

	cfg := cfgRapida()
	cfg.InactividadMax = time.Hour // la inactividad no interfiere aquí
	cfg.AvisoInactividad = time.Minute
	cfg.UmbralExpiracion = 2 * time.Hour
	cfg.CuentaRegresiva = 2 * time.Second

	m, err := NewMonitor(cfg, tokenConVigencia(t, time.Hour), NewAlmacenMemoria(), Callbacks{
		AlCuentaRegresiva: func(segundos int) {
			mu.Lock()
			ticks = append(ticks, segundos)
			mu.Unlock()
		},
		AlTerminar: func(motivo string) { motivos <- motivo },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Iniciar(ctx)

	assert.Equal(t, MotivoTokenExpirado, esperarMotivo(t, motivos, 5*time.Second))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	assert.Equal(t, 2, ticks[0])
	assert.Equal(t, 1, ticks[len(ticks)-1])
}

func TestMonitorCerrarEsIdempotente(t *testing.T) {
	var terminaciones int
	m, err := NewMonitor(cfgRapida(), tokenConVigencia(t, 2*time.Hour), NewAlmacenMemoria(), Callbacks{
		AlTerminar: func(string) { terminaciones++ },
	})
	require.NoError(t, err)

	m.Cerrar(MotivoManual)
	m.Cerrar(MotivoInactividad)

	assert.Equal(t, 1, terminaciones)
}

func TestMonitorRestauraActividadPersistida(t *testing.T) {
	initSesionTest()
	almacen := NewAlmacenMemoria()

	// actividad guardada hace más del máximo de inactividad: la sesión
	// restaurada debe cerrarse en el primer muestreo
	require.NoError(t, almacen.Guardar(time.Now().Add(-time.Minute)))

	motivos := make(chan string, 1)
	m, err := NewMonitor(cfgRapida(), tokenConVigencia(t, 2*time.Hour), almacen, Callbacks{
		AlTerminar: func(motivo string) { motivos <- motivo },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Iniciar(ctx)

	assert.Equal(t, MotivoInactividad, esperarMotivo(t, motivos, time.Second))
}

func TestMonitorTokenIlegible(t *testing.T) {
	initSesionTest()
	_, err := NewMonitor(cfgRapida(), "no-es-un-jwt", NewAlmacenMemoria(), Callbacks{})
	assert.Error(t, err)
}

func TestAlmacenArchivo(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "actividad")
	almacen := NewAlmacenArchivo(ruta)

	marca := time.Now().Truncate(time.Millisecond)
	require.NoError(t, almacen.Guardar(marca))

	cargada, err := almacen.Cargar()
	require.NoError(t, err)
	assert.True(t, cargada.Equal(marca))

	require.NoError(t, almacen.Limpiar())
	_, err = almacen.Cargar()
	assert.Error(t, err)

	// limpiar sobre un archivo ya inexistente no es un error
	assert.NoError(t, almacen.Limpiar())
}
