// Package kafka publica los eventos de traslado en un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/segmentio/kafka-go"
)

var _ transfer.EventPublisher = (*Publisher)(nil)

// MessageWriter lo que el publicador necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher escribe un mensaje JSON por traslado, con la factura como clave.
type Publisher struct {
	w MessageWriter
}

// NewWriter crea el writer para el tópico. Hash por clave mantiene los eventos de una factura en la misma partición.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireAll,
	}
}

// NewPublisher envuelve un writer ya configurado.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

type locationPayload struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type itemPayload struct {
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
	Applied    bool   `json:"applied"`
	Stage      string `json:"stage,omitempty"`
	LineItemID string `json:"line_item_id,omitempty"`
}

// TransferPayload cuerpo JSON del mensaje.
type TransferPayload struct {
	Type          string          `json:"type"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	LedgerID      string          `json:"ledger_id"`
	Source        locationPayload `json:"source"`
	Destination   locationPayload `json:"destination"`
	State         string          `json:"state"`
	AbortedAt     *int            `json:"aborted_at,omitempty"`
	Items         []itemPayload   `json:"items"`
	Actor         string          `json:"actor,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func toLocation(l entity.Location) locationPayload {
	if l == nil {
		return locationPayload{}
	}
	return locationPayload{Kind: string(l.Kind()), ID: l.Ref()}
}

// BuildMessage arma el mensaje de Kafka para un evento.
func BuildMessage(ev transfer.TransferEvent) (kafka.Message, error) {
	p := TransferPayload{
		Type:          ev.Type,
		InvoiceID:     ev.InvoiceID,
		InvoiceNumber: ev.InvoiceNumber,
		LedgerID:      ev.LedgerID,
		Source:        toLocation(ev.Source),
		Destination:   toLocation(ev.Destination),
		State:         string(ev.State),
		Items:         make([]itemPayload, 0, len(ev.Items)),
		Actor:         ev.Actor,
		OccurredAt:    ev.OccurredAt.UTC(),
	}
	if ev.State == transfer.StateAborted {
		at := ev.AbortedAt
		p.AbortedAt = &at
	}
	for _, it := range ev.Items {
		p.Items = append(p.Items, itemPayload{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			Applied:    it.Applied,
			Stage:      string(it.Stage),
			LineItemID: it.LineItemID,
		})
	}
	value, err := json.Marshal(p)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serializar evento %s: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(ev.InvoiceID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
		Time: ev.OccurredAt,
	}, nil
}

// PublishTransfer implementa transfer.EventPublisher.
func (p *Publisher) PublishTransfer(ctx context.Context, ev transfer.TransferEvent) error {
	msg, err := BuildMessage(ev)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar %s de %s: %w", ev.Type, ev.InvoiceID, err)
	}
	return nil
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
