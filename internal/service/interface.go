package service

import (
	"context"

	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/dto"
	"github.com/BryanHuaPer/viajeros-peru-sub002/internal/repository"
	"github.com/BryanHuaPer/viajeros-peru-sub002/model"
)

// Paginacion metadatos de página devueltos junto a una conversación.
type Paginacion struct {
	Pagina       int   `json:"pagina"`
	Limite       int   `json:"limite"`
	Total        int64 `json:"total"`
	TotalPaginas int64 `json:"total_paginas"`
}

// Notificador entrega avisos en tiempo real a usuarios conectados. La
// implementación vive en internal/realtime; los servicios solo conocen este
// contrato y toda entrega es de mejor esfuerzo.
type Notificador interface {
	NotificarNuevoMensaje(ctx context.Context, destinatarioID int64, mensaje *model.Mensaje)
}

// IMensajeService operaciones de mensajería. El actorID es siempre la
// identidad autenticada del token, nunca un campo del payload: los métodos
// comprueban que el payload hable del propio actor antes de tocar datos.
type IMensajeService interface {
	// Enviar valida, comprueba bloqueos, persiste y relee el mensaje.
	Enviar(ctx context.Context, actorID int64, req *dto.EnviarRequest) (*model.Mensaje, error)
	// ObtenerConversacion página de mensajes entre dos usuarios, con la
	// transición de cortesía a entregado para lo que usuario1 recibió.
	ObtenerConversacion(ctx context.Context, req *dto.ObtenerConversacionRequest) ([]model.Mensaje, Paginacion, error)
	// ObtenerChats lista de chats del actor.
	ObtenerChats(ctx context.Context, actorID int64, req *dto.ObtenerChatsRequest) ([]repository.ChatResumen, error)
	// MarcarLeidos el actor (destinatario) marca vistos los enviados del par.
	MarcarLeidos(ctx context.Context, actorID int64, req *dto.MarcarLeidosRequest) error
	// TotalNoLeidos conteo global de no vistos del actor.
	TotalNoLeidos(ctx context.Context, actorID int64, req *dto.ObtenerNoLeidosRequest) (int64, error)
	// EstadoMensaje estado actual de un mensaje en el que el actor participa.
	EstadoMensaje(ctx context.Context, actorID int64, req *dto.ObtenerEstadoMensajeRequest) (string, error)
	// MarcarVisto avanza un único mensaje a visto; devuelve si se aplicó.
	MarcarVisto(ctx context.Context, actorID int64, req *dto.MarcarVistoRequest) (bool, error)
	// MarcarConversacionVista avanza a visto todo lo pendiente del par.
	MarcarConversacionVista(ctx context.Context, actorID int64, req *dto.MarcarConversacionVistaRequest) (int64, error)
	// EstadosMensajes estados de lo que el actor envió a la contraparte.
	EstadosMensajes(ctx context.Context, actorID int64, req *dto.ObtenerEstadosMensajesRequest) ([]repository.EstadoMensaje, error)
	// ReportarMensaje registra la denuncia y avisa a los administradores.
	ReportarMensaje(ctx context.Context, actorID int64, req *dto.ReportarMensajeRequest) (int64, error)
}

// IBloqueoService operaciones del registro de bloqueos.
type IBloqueoService interface {
	// Verificar detalle del bloqueo entre dos usuarios; el actor debe ser
	// una de las dos partes.
	Verificar(ctx context.Context, actorID int64, req *dto.VerificarBloqueoRequest) (repository.DetalleBloqueo, error)
	// Bloquear crea la arista dirigida actor -> bloqueado.
	Bloquear(ctx context.Context, actorID int64, req *dto.BloquearUsuarioRequest) error
	// Desbloquear elimina la arista dirigida actor -> bloqueado.
	Desbloquear(ctx context.Context, actorID int64, req *dto.DesbloquearUsuarioRequest) error
}
