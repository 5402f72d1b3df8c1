package service

import (
	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
)

// ErrorNegocio fallo de negocio con el código que viaja al cliente. Codigo es
// el identificador legible por máquina (campo `codigo` de la respuesta)
// cuando la acción lo define; vacío en el resto.
type ErrorNegocio struct {
	Code   int32
	Codigo string
}

func (e *ErrorNegocio) Error() string { return consts.GetMessage(e.Code) }

// NewError crea un fallo de negocio a partir de su código numérico.
func NewError(code int32) error {
	return &ErrorNegocio{Code: code}
}

// ErrBloqueado fallo por bloqueo vigente entre remitente y destinatario.
func ErrBloqueado() error {
	return &ErrorNegocio{Code: consts.CodeUsuarioBloqueado, Codigo: consts.CodigoUsuarioBloqueado}
}
