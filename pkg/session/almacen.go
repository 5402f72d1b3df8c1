package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AlmacenActividad persiste la marca de última actividad para que la
// inactividad se acumule correctamente a través de recargas y navegación.
// La persistencia es de mejor esfuerzo: un almacén lleno o ilegible nunca
// rompe el monitor.
type AlmacenActividad interface {
	Guardar(t time.Time) error
	Cargar() (time.Time, error)
	Limpiar() error
}

// almacenArchivo guarda el timestamp en milisegundos en un archivo plano.
type almacenArchivo struct {
	ruta string
}

// NewAlmacenArchivo crea el almacén sobre la ruta dada.
func NewAlmacenArchivo(ruta string) AlmacenActividad {
	return &almacenArchivo{ruta: ruta}
}

func (a *almacenArchivo) Guardar(t time.Time) error {
	return os.WriteFile(a.ruta, []byte(strconv.FormatInt(t.UnixMilli(), 10)), 0o600)
}

func (a *almacenArchivo) Cargar() (time.Time, error) {
	datos, err := os.ReadFile(a.ruta)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(datos)), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func (a *almacenArchivo) Limpiar() error {
	err := os.Remove(a.ruta)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// almacenMemoria implementación en memoria para pruebas y clientes sin
// sistema de archivos.
type almacenMemoria struct {
	marca time.Time
}

// NewAlmacenMemoria crea un almacén volátil.
func NewAlmacenMemoria() AlmacenActividad {
	return &almacenMemoria{}
}

func (a *almacenMemoria) Guardar(t time.Time) error {
	a.marca = t
	return nil
}

func (a *almacenMemoria) Cargar() (time.Time, error) {
	if a.marca.IsZero() {
		return time.Time{}, os.ErrNotExist
	}
	return a.marca, nil
}

func (a *almacenMemoria) Limpiar() error {
	a.marca = time.Time{}
	return nil
}
