package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mensajeria_http_requests_total",
		Help: "Total de peticiones HTTP por método, ruta y estado.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mensajeria_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	accionesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mensajeria_acciones_total",
		Help: "Total de acciones de mensajería despachadas por resultado.",
	}, []string{"accion", "resultado"})
)

// PrometheusMiddleware instrumenta cada petición HTTP.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "desconocida"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ContarAccion registra el resultado de una acción despachada. Lo invoca el
// handler de despacho, que es quien conoce la acción.
func ContarAccion(accion, resultado string) {
	accionesTotal.WithLabelValues(accion, resultado).Inc()
}
