package result

import (
	"net/http"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"

	"github.com/gin-gonic/gin"
)

// Contrato del sobre de respuesta:
// - toda respuesta es un objeto JSON con el booleano `exito`;
// - si exito=false siempre hay un `error` legible en castellano;
// - los fallos de autenticación usan HTTP 401; todo lo demás responde 200 y
//   comunica el fallo lógico dentro del cuerpo;
// - los rechazos de validación agregan `codigo` legible por máquina.

// Exito responde 200 con exito:true fusionando los campos de data al nivel
// superior del objeto (el protocolo original no usa un campo contenedor fijo).
func Exito(c *gin.Context, data gin.H) {
	body := gin.H{"exito": true}
	for k, v := range data {
		body[k] = v
	}
	if traceID := c.GetString("trace_id"); traceID != "" {
		body["trace_id"] = traceID
	}
	c.JSON(http.StatusOK, body)
}

// Fallo responde 200 con exito:false y el mensaje asociado al código de negocio.
func Fallo(c *gin.Context, code int32) {
	FalloMensaje(c, consts.GetMessage(code))
}

// FalloMensaje responde 200 con exito:false y un mensaje personalizado.
func FalloMensaje(c *gin.Context, mensaje string) {
	body := gin.H{
		"exito": false,
		"error": mensaje,
	}
	if traceID := c.GetString("trace_id"); traceID != "" {
		body["trace_id"] = traceID
	}
	c.JSON(http.StatusOK, body)
}

// FalloValidacion responde 200 con exito:false, mensaje y código de validación
// legible por máquina.
func FalloValidacion(c *gin.Context, codigo, mensaje string) {
	body := gin.H{
		"exito":  false,
		"error":  mensaje,
		"codigo": codigo,
	}
	if traceID := c.GetString("trace_id"); traceID != "" {
		body["trace_id"] = traceID
	}
	c.JSON(http.StatusOK, body)
}

// NoAutenticado responde 401; único caso que no usa HTTP 200.
func NoAutenticado(c *gin.Context, mensaje string) {
	body := gin.H{
		"exito": false,
		"error": mensaje,
	}
	if traceID := c.GetString("trace_id"); traceID != "" {
		body["trace_id"] = traceID
	}
	c.JSON(http.StatusUnauthorized, body)
}
