package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// L devuelve el logger global (nil si no se inicializó).
// Uso: logger.L().Info(...) cuando no hace falta pasar el logger explícitamente.
func L() *zap.Logger {
	return global
}

// ReplaceGlobal fija el logger global y sincroniza las instancias globales de zap.
// Debe llamarse una sola vez en el arranque del proceso.
func ReplaceGlobal(l *zap.Logger) {
	global = l
	zap.ReplaceGlobals(l)
}

// Build construye un zap.Logger a partir de la configuración.
// - Por defecto escribe a stdout/stderr (cómodo para docker logs).
// - OutputPaths/ErrorOutputPaths permiten escribir a archivo (sin rotación,
//   la rotación es responsabilidad del sistema externo).
// - Si el nivel configurado es inválido se cae a info.
func Build(cfg config.LoggerConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		// nivel inválido: caer a info en vez de abortar el arranque
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339Nano),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Encoding) == "console" {
		if cfg.EnableColor {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	outSync := buildSyncer(cfg.OutputPaths, zapcore.AddSync(os.Stdout))
	errSync := buildSyncer(cfg.ErrorOutputPaths, zapcore.AddSync(os.Stderr))

	core := zapcore.NewCore(encoder, outSync, level)
	opts := []zap.Option{
		zap.ErrorOutput(errSync),
		zap.AddCaller(),
		zap.AddCallerSkip(1), // saltar esta envoltura para apuntar a la línea de negocio
	}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, opts...), nil
}

// buildSyncer construye el WriteSyncer según los destinos configurados:
// - acepta las palabras clave stdout/stderr;
// - acepta rutas de archivo (sin rotación); si falla la apertura usa fallback.
func buildSyncer(paths []string, fallback zapcore.WriteSyncer) zapcore.WriteSyncer {
	if len(paths) == 0 {
		return fallback
	}
	var syncers []zapcore.WriteSyncer
	for _, p := range paths {
		switch strings.ToLower(p) {
		case "stdout":
			syncers = append(syncers, zapcore.AddSync(os.Stdout))
		case "stderr":
			syncers = append(syncers, zapcore.AddSync(os.Stderr))
		default:
			f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err == nil {
				syncers = append(syncers, zapcore.AddSync(f))
			}
		}
	}
	if len(syncers) == 0 {
		return fallback
	}
	return zapcore.NewMultiWriteSyncer(syncers...)
}

func appendTrace(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}
	if traceID, ok := ctx.Value("trace_id").(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	return fields
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	global.Info(msg, appendTrace(ctx, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	global.Warn(msg, appendTrace(ctx, fields)...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	global.Error(msg, appendTrace(ctx, fields)...)
}

func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	global.Fatal(msg, appendTrace(ctx, fields)...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	global.Debug(msg, appendTrace(ctx, fields)...)
}

// ========== Auxiliares de campos ==========
// Permiten que el código de negocio no importe zap directamente.

// String crea un campo de texto
func String(key, value string) zap.Field {
	return zap.String(key, value)
}

// Int crea un campo entero
func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Int64 crea un campo int64
func Int64(key string, value int64) zap.Field {
	return zap.Int64(key, value)
}

// Bool crea un campo booleano
func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

// Float64 crea un campo float64
func Float64(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// ErrorField crea un campo de error
func ErrorField(key string, err error) zap.Field {
	return zap.Error(err)
}

// Any crea un campo de tipo arbitrario
func Any(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

// Duration crea un campo de duración
func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

// Time crea un campo de tiempo
func Time(key string, value time.Time) zap.Field {
	return zap.Time(key, value)
}
