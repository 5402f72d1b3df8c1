package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/audit"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/dto"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/repository"
)

// bloqueoServiceImpl operaciones sobre el registro de bloqueos.
type bloqueoServiceImpl struct {
	bloqueoRepo repository.IBloqueoRepository
	auditor     audit.Auditor
}

// NewBloqueoService crea el servicio de bloqueos.
func NewBloqueoService(bloqueoRepo repository.IBloqueoRepository, auditor audit.Auditor) IBloqueoService {
	return &bloqueoServiceImpl{bloqueoRepo: bloqueoRepo, auditor: auditor}
}

// Verificar el actor debe ser una de las dos partes consultadas.
func (s *bloqueoServiceImpl) Verificar(ctx context.Context, actorID int64, req *dto.VerificarBloqueoRequest) (repository.DetalleBloqueo, error) {
	if actorID != req.Usuario1 && actorID != req.Usuario2 {
		return repository.DetalleBloqueo{}, NewError(consts.CodeNoAutorizado)
	}
	detalle, err := s.bloqueoRepo.DetalleEntre(ctx, req.Usuario1, req.Usuario2)
	if err != nil {
		return repository.DetalleBloqueo{}, errAlmacenamiento(ctx, "verificar bloqueo", err)
	}
	return detalle, nil
}

// Bloquear crea la arista dirigida. Se auditan dos eventos: uno desde la
// perspectiva de quien bloquea y otro desde la del bloqueado.
func (s *bloqueoServiceImpl) Bloquear(ctx context.Context, actorID int64, req *dto.BloquearUsuarioRequest) error {
	if actorID != req.UsuarioBloqueadorID {
		return NewError(consts.CodeNoAutorizado)
	}

	err := s.bloqueoRepo.Crear(ctx, req.UsuarioBloqueadorID, req.UsuarioBloqueadoID)
	if err != nil {
		if errors.Is(err, repository.ErrClaveDuplicada) {
			return NewError(consts.CodeYaBloqueado)
		}
		return errAlmacenamiento(ctx, "bloquear usuario", err)
	}

	s.auditor.Registrar(ctx, audit.Evento{
		Accion:    consts.AccionBloquearUsuario,
		ActorID:   req.UsuarioBloqueadorID,
		ObjetoID:  req.UsuarioBloqueadoID,
		Resultado: audit.ResultadoExito,
		Detalle:   fmt.Sprintf("bloqueó al usuario %d", req.UsuarioBloqueadoID),
	})
	s.auditor.Registrar(ctx, audit.Evento{
		Accion:    consts.AccionBloquearUsuario,
		ActorID:   req.UsuarioBloqueadoID,
		ObjetoID:  req.UsuarioBloqueadorID,
		Resultado: audit.ResultadoExito,
		Detalle:   fmt.Sprintf("fue bloqueado por el usuario %d", req.UsuarioBloqueadorID),
	})
	return nil
}

// Desbloquear elimina la arista dirigida; no toca la dirección inversa.
func (s *bloqueoServiceImpl) Desbloquear(ctx context.Context, actorID int64, req *dto.DesbloquearUsuarioRequest) error {
	if actorID != req.UsuarioBloqueadorID {
		return NewError(consts.CodeNoAutorizado)
	}

	err := s.bloqueoRepo.Eliminar(ctx, req.UsuarioBloqueadorID, req.UsuarioBloqueadoID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistroNoEncontrado) {
			return NewError(consts.CodeBloqueoNoExiste)
		}
		return errAlmacenamiento(ctx, "desbloquear usuario", err)
	}

	s.auditor.Registrar(ctx, audit.Evento{
		Accion:    consts.AccionDesbloquearUsuario,
		ActorID:   req.UsuarioBloqueadorID,
		ObjetoID:  req.UsuarioBloqueadoID,
		Resultado: audit.ResultadoExito,
		Detalle:   fmt.Sprintf("desbloqueó al usuario %d", req.UsuarioBloqueadoID),
	})
	return nil
}
