package mq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/config"

	"github.com/segmentio/kafka-go"
)

// EventoAuditoria mensaje publicado en el topic de auditoría.
// Los consumidores (panel de moderación, alertas) lo leen fuera de este
// servicio; aquí solo se publica con mejor esfuerzo.
type EventoAuditoria struct {
	ID        int64     `json:"id"`
	Accion    string    `json:"accion"`
	ActorID   int64     `json:"actor_id,omitempty"`
	ObjetoID  int64     `json:"objeto_id,omitempty"`
	Resultado string    `json:"resultado"`
	Detalle   string    `json:"detalle,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publicador publica eventos de auditoría. La implementación nunca debe
// bloquear el camino de la petición: el llamador la invoca desde el pool
// asíncrono y los fallos solo se registran.
type Publicador interface {
	Publicar(ctx context.Context, evento EventoAuditoria) error
	Cerrar() error
}

// kafkaPublicador implementación sobre kafka-go.
type kafkaPublicador struct {
	writer *kafka.Writer
}

// NewKafkaPublicador crea el publicador de auditoría sobre Kafka.
func NewKafkaPublicador(cfg config.KafkaConfig) Publicador {
	return &kafkaPublicador{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: cfg.WriteTimeout,
			// RequireOne alcanza para auditoría de mejor esfuerzo
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// Publicar serializa y publica un evento. La key es el actor para mantener
// orden por usuario dentro de la partición.
func (p *kafkaPublicador) Publicar(ctx context.Context, evento EventoAuditoria) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(evento.ActorID, 10)),
		Value: payload,
		Time:  evento.Timestamp,
	})
}

// Cerrar libera el writer.
func (p *kafkaPublicador) Cerrar() error {
	return p.writer.Close()
}

// nopPublicador descarta los eventos (Kafka deshabilitado o pruebas).
type nopPublicador struct{}

// NewNopPublicador crea un publicador que no publica nada.
func NewNopPublicador() Publicador { return nopPublicador{} }

func (nopPublicador) Publicar(context.Context, EventoAuditoria) error { return nil }
func (nopPublicador) Cerrar() error                                   { return nil }
