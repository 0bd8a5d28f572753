package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InvoiceNumberPrefix prefijo de los números de factura de traslado.
const InvoiceNumberPrefix = "TRF"

// NumberGenerator arma el número de factura: TRF-YYYYMMDD-HHMMSS-<consecutivo>.
type NumberGenerator struct {
	seq InvoiceSequence
	now func() time.Time
}

// NewNumberGenerator construye el generador. Si seq es nil usa un consecutivo local en memoria.
func NewNumberGenerator(seq InvoiceSequence) *NumberGenerator {
	if seq == nil {
		seq = NewLocalSequence()
	}
	return &NumberGenerator{seq: seq, now: time.Now}
}

// Next devuelve el siguiente número.
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	now := g.now().UTC()
	n, err := g.seq.Next(ctx, now)
	if err != nil {
		return "", fmt.Errorf("consecutivo de traslado: %w", err)
	}
	return fmt.Sprintf("%s-%s-%06d", InvoiceNumberPrefix, now.Format("20060102-150405"), n), nil
}

// LocalSequence consecutivo por día dentro del proceso. Suficiente con una sola réplica;
// con varias réplicas usar la secuencia de Redis.
type LocalSequence struct {
	mu  sync.Mutex
	day string
	n   int64
}

// NewLocalSequence construye la secuencia local.
func NewLocalSequence() *LocalSequence {
	return &LocalSequence{}
}

func (s *LocalSequence) Next(_ context.Context, day time.Time) (int64, error) {
	key := day.UTC().Format("20060102")
	s.mu.Lock()
	defer s.mu.Unlock()
	if key != s.day {
		s.day = key
		s.n = 0
	}
	s.n++
	return s.n, nil
}
