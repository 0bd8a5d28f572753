package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/redis/go-redis/v9"
)

var _ transfer.InvoiceSequence = (*InvoiceSequence)(nil)

// sequenceTTL la clave de un día sobrevive un poco más que el día para tolerar desfases de reloj.
const sequenceTTL = 48 * time.Hour

// InvoiceSequence contador diario compartido entre réplicas (INCR sobre una clave por fecha UTC).
type InvoiceSequence struct {
	client redis.Cmdable
}

// NewInvoiceSequence construye la secuencia.
func NewInvoiceSequence(client redis.Cmdable) *InvoiceSequence {
	return &InvoiceSequence{client: client}
}

// Next devuelve el siguiente valor para day; el primero del día es 1.
func (s *InvoiceSequence) Next(ctx context.Context, day time.Time) (int64, error) {
	k := SequenceKey(day)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr invoice sequence: %w", err)
	}
	return incr.Val(), nil
}

// SequenceKey clave del contador de un día.
func SequenceKey(day time.Time) string {
	return key("transfer", "invoice-seq", day.UTC().Format("20060102"))
}
