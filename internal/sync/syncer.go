// Package sync keeps the in-memory schedule up to date with its source.
package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/cwarden/agenda/internal/logger"
	"github.com/cwarden/agenda/internal/schedule"
	"github.com/cwarden/agenda/internal/source"
)

// ErrSyncInFlight is returned by Sync when another sync has not finished.
// The request is dropped, not queued.
var ErrSyncInFlight = errors.New("sync already in progress")

// DefaultRefreshRate is used by Run when Options.RefreshRate is zero.
const DefaultRefreshRate = 5 * time.Minute

// State is a published snapshot of the sync result.
type State struct {
	Schedule    *schedule.Schedule
	Unscheduled []schedule.Activity
	// Err is the last failure. The schedule above is then the one from
	// the last successful sync.
	Err      error
	LastSync time.Time
	// Loaded is true once any sync has succeeded.
	Loaded bool
}

// Agenda builds the display projection of the snapshot.
func (s State) Agenda(now time.Time, opts schedule.AgendaOptions) schedule.Agenda {
	return schedule.BuildAgenda(s.Schedule, s.Unscheduled, now, opts)
}

// Options configure a Syncer.
type Options struct {
	RefreshRate time.Duration
	// AutoRefresh enables periodic syncs in Run.
	AutoRefresh bool
	Logger      logger.Logger
}

// Syncer fetches and rebuilds the schedule. At most one sync runs at a time.
type Syncer struct {
	src         source.Source
	log         logger.Logger
	refreshRate time.Duration
	autoRefresh bool
	now         func() time.Time

	inFlight atomic.Bool

	mu    stdsync.RWMutex
	state State

	pubMu   stdsync.Mutex
	updates chan State
	trigger chan struct{}
}

// New creates a Syncer reading from src.
func New(src source.Source, opts Options) *Syncer {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = DefaultRefreshRate
	}
	return &Syncer{
		src:         src,
		log:         opts.Logger,
		refreshRate: opts.RefreshRate,
		autoRefresh: opts.AutoRefresh,
		now:         time.Now,
		state:       State{Schedule: schedule.NewSchedule()},
		updates:     make(chan State, 1),
		trigger:     make(chan struct{}, 1),
	}
}

// State returns the current snapshot.
func (s *Syncer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Updates delivers every published state. Only the newest unread state is
// kept when the reader falls behind.
func (s *Syncer) Updates() <-chan State {
	return s.updates
}

// InFlight reports whether a sync is running.
func (s *Syncer) InFlight() bool {
	return s.inFlight.Load()
}

// Sync fetches the source once and publishes the result. On failure the
// previous schedule is kept and only the error is updated.
func (s *Syncer) Sync(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Info("sync of %s skipped: already in progress", s.src)
		return ErrSyncInFlight
	}
	defer s.inFlight.Store(false)

	data, err := s.src.Fetch(ctx)
	if err != nil {
		s.fail(err)
		return err
	}

	sched, unscheduled := schedule.Build(string(data))

	s.mu.Lock()
	s.state = State{
		Schedule:    sched,
		Unscheduled: unscheduled,
		LastSync:    s.now(),
		Loaded:      true,
	}
	next := s.state
	s.mu.Unlock()

	s.log.Info("synced %s: %d days, %d unscheduled", s.src, sched.Len(), len(unscheduled))
	s.publish(next)
	return nil
}

func (s *Syncer) fail(err error) {
	s.log.Error("sync of %s failed: %v", s.src, err)

	s.mu.Lock()
	s.state.Err = err
	next := s.state
	s.mu.Unlock()

	s.publish(next)
}

// publish replaces any unread state with st.
func (s *Syncer) publish(st State) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	select {
	case <-s.updates:
	default:
	}
	s.updates <- st
}

// Trigger requests a sync from Run without waiting for it.
func (s *Syncer) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run syncs once immediately, then on every trigger, source change and,
// with AutoRefresh, every refresh interval. It returns when ctx is done,
// after any sync it started has finished.
func (s *Syncer) Run(ctx context.Context) error {
	var wg stdsync.WaitGroup
	defer wg.Wait()

	start := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Failures are already published and logged.
			_ = s.Sync(ctx)
		}()
	}

	var tick <-chan time.Time
	if s.autoRefresh {
		ticker := time.NewTicker(s.refreshRate)
		defer ticker.Stop()
		tick = ticker.C
	}

	changes, err := s.src.Watch()
	if err != nil {
		s.log.Warning("watch %s: %v", s.src, err)
	}
	if changes != nil {
		defer s.src.StopWatching()
	}

	start()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			start()
		case <-s.trigger:
			start()
		case ev := <-changes:
			s.log.Info("%s changed", ev.Path)
			start()
		}
	}
}
