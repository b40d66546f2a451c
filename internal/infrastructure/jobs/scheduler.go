// Package jobs tareas programadas (cron con segundos).
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/stock-manager-api/pkg/logger"
)

// LowStockSweeper crea avisos de stock bajo; devuelve cuántos creó.
type LowStockSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// SweepObserver recibe el resultado de cada barrido (métricas).
type SweepObserver interface {
	LowStockNotified(n int)
}

// Scheduler ejecuta el barrido de stock bajo según una expresión cron con segundos.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  LowStockSweeper
	observer SweepObserver
	timeout  time.Duration
	log      *logger.Logger
}

// NewScheduler construye el planificador. observer puede ser nil.
func NewScheduler(sweeper LowStockSweeper, observer SweepObserver, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper:  sweeper,
		observer: observer,
		timeout:  time.Minute,
		log:      log.Component("jobs"),
	}
}

// Start registra el barrido y arranca el cron. Expresión vacía = deshabilitado.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.log.Info().Msg("barrido de stock bajo deshabilitado")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.runLowStockSweep); err != nil {
		return fmt.Errorf("jobs: expresión cron %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info().Str("cron", spec).Msg("barrido de stock bajo programado")
	return nil
}

// Stop detiene el cron y espera al barrido en curso como mucho hasta que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("barrido en curso no terminó antes del apagado")
	}
}

func (s *Scheduler) runLowStockSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("barrido de stock bajo fallido")
		return
	}
	if s.observer != nil {
		s.observer.LowStockNotified(n)
	}
}
