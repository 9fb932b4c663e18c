package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"

	"cpd/internal/providers"
	"cpd/internal/services"
	"cpd/internal/structures"
	"cpd/internal/tracker/interfaces"
)

// Scheduler drives the periodic refresh sweep and the persistence
// save interval. The sweep is guarded by a compare-and-set flag: when
// a trigger fires while the previous sweep is still running, the new
// run is skipped and logged, never queued.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	refresh  services.RefreshServiceInterface
	metrics  providers.MetricsProviderInterface
	fm       *FileManager
	cron     *gron.Cron
	sweeping atomic.Bool
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	saveInterval := s.config.Persistence.SaveInterval
	refreshInterval := s.config.Refresh.Interval

	s.cron.AddFunc(gron.Every(saveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		start := time.Now()
		err := s.fm.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeScheduler, "Error while persisting data: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Infof(providers.TypeScheduler, "Persisted data to file %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(refreshInterval), s.RunSweep)

	s.cron.Start()
}

// RunSweep executes one guarded sweep over all verified handles.
func (s *Scheduler) RunSweep() {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Warnf(providers.TypeScheduler, "Refresh sweep still running, skipping this trigger")
		return
	}
	defer s.sweeping.Store(false)

	s.logger.Infof(providers.TypeScheduler, "Refresh sweep started")
	ok, failed := s.refresh.SweepAll(context.Background())
	s.metrics.AddRefreshResults(ok, failed)
	s.logger.Infof(providers.TypeScheduler, "Refresh sweep finished: %d ok, %d failed", ok, failed)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.fm.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeScheduler, "Persisting snapshot store to file...")
	err := s.fm.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeScheduler, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, refresh services.RefreshServiceInterface, metrics providers.MetricsProviderInterface, fm *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		refresh: refresh,
		metrics: metrics,
		fm:      fm,
	}
}
