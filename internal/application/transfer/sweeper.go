package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/pos-backoffice/pkg/logger"
)

// SweepLockKey clave del lock distribuido del barrido de huérfanos.
const SweepLockKey = "lock:transfer:link-orphans"

// OrphanSweeper ejecuta LinkOrphans periódicamente. Con varias réplicas solo barre la que obtiene el lock.
type OrphanSweeper struct {
	uc       *TransferUseCase
	locker   Locker
	interval time.Duration
	log      *logger.Logger
}

// NewOrphanSweeper construye el barrido. Si locker es nil se usa NoopLocker.
func NewOrphanSweeper(uc *TransferUseCase, locker Locker, interval time.Duration, log *logger.Logger) *OrphanSweeper {
	if locker == nil {
		locker = NoopLocker{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OrphanSweeper{uc: uc, locker: locker, interval: interval, log: log}
}

// SweepOnce intenta tomar el lock y enlazar huérfanos. ran=false si otra réplica tiene el lock.
func (s *OrphanSweeper) SweepOnce(ctx context.Context) (linked int64, ran bool, err error) {
	release, acquired, err := s.locker.TryLock(ctx, SweepLockKey)
	if err != nil {
		return 0, false, err
	}
	if !acquired {
		return 0, false, nil
	}
	defer func() {
		if rerr := release(ctx); rerr != nil {
			s.log.Warn().Err(rerr).Msg("liberar lock del barrido de huérfanos")
		}
	}()

	linked, err = s.uc.LinkOrphans(ctx)
	return linked, true, err
}

// Run barre cada interval hasta que ctx se cancele.
func (s *OrphanSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, ran, err := s.SweepOnce(ctx)
			switch {
			case err != nil:
				s.log.Error().Err(err).Msg("barrido de traslados huérfanos")
			case ran && n > 0:
				s.log.Info().Int64("linked", n).Msg("traslados huérfanos enlazados al libro")
			}
		}
	}
}
