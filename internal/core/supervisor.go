package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lumipallolabs/dirwatch/internal/format"
	"github.com/lumipallolabs/dirwatch/internal/logging"
	"github.com/lumipallolabs/dirwatch/internal/sink"
	"github.com/lumipallolabs/dirwatch/internal/stats"
	"github.com/lumipallolabs/dirwatch/internal/watcher"
	"github.com/thejerf/suture/v4"
)

// OpenFunc opens a notification source for a root
type OpenFunc func(root string, opts watcher.Options) (watcher.Source, error)

// Supervisor runs one watch loop per target. A target that fails stops on its
// own and is never restarted; the others keep running.
type Supervisor struct {
	targets []Target
	sink    sink.Sink
	stats   *stats.Counters

	// Open creates the notification source for each target
	Open OpenFunc

	mu      sync.Mutex
	running int
	errs    []error
	cancel  context.CancelFunc
}

// NewSupervisor creates a supervisor for targets writing to out. A nil
// counters value disables statistics.
func NewSupervisor(targets []Target, out sink.Sink, counters *stats.Counters) *Supervisor {
	if counters == nil {
		counters = stats.New(nil)
	}
	return &Supervisor{
		targets: targets,
		sink:    out,
		stats:   counters,
		Open:    watcher.Open,
	}
}

// Run watches every target until ctx is done or all targets have failed. It
// returns the joined errors of the failed targets, or nil if none failed.
func (s *Supervisor) Run(ctx context.Context) error {
	if len(s.targets) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.running = len(s.targets)
	s.errs = nil
	s.cancel = cancel
	s.mu.Unlock()

	sup := suture.New("dirwatch", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Debug.Printf("supervisor: %v", e)
		},
	})
	for _, t := range s.targets {
		sup.Add(&watchService{target: t, sup: s})
	}

	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Debug.Printf("supervisor stopped: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}

// watch runs a single target to completion
func (s *Supervisor) watch(ctx context.Context, t Target) error {
	f := format.New(t.Format)
	s.write(f.Spawn(t.Root))

	src, err := s.Open(t.Root, watcher.Options{Recursive: t.Recursive})
	if err != nil {
		s.write(f.Failure(t.Root, "OpenError", err))
		return err
	}
	defer src.Close()

	s.stats.Started(t.Root)
	defer s.stats.Stopped(t.Root)
	logging.Watch.Printf("watching %s (recursive=%v, buffer=%d)", t.Root, t.Recursive, t.bufferSize())

	err = NewLoop(t, src, s.sink, s.stats).Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	s.write(f.Failure(t.Root, "ReadError", err))
	return err
}

// finish records the outcome of a target. When the last target is done the
// supervisor stops.
func (s *Supervisor) finish(t Target, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		logging.Watch.Printf("%s stopped: %v", t.Root, err)
		s.errs = append(s.errs, err)
	}
	s.running--
	if s.running == 0 && s.cancel != nil {
		s.cancel()
	}
}

func (s *Supervisor) write(block format.Block) {
	if block.Empty() {
		return
	}
	if err := s.sink.Write(sink.Entry{Path: block.Path, Lines: block.Lines}); err != nil {
		logging.Debug.Printf("write: %v", err)
	}
}

// watchService adapts one target to suture.Service
type watchService struct {
	target Target
	sup    *Supervisor
}

func (w *watchService) Serve(ctx context.Context) error {
	err := w.sup.watch(ctx, w.target)
	w.sup.finish(w.target, err)
	return noRestart(err)
}

func (w *watchService) String() string {
	return fmt.Sprintf("watch %s", w.target.Root)
}

// noRestart wraps err (which may be nil) so that suture never restarts the
// service that returned it.
func noRestart(err error) error {
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return &noRestartErr{err}
}

type noRestartErr struct {
	err error
}

func (e *noRestartErr) Error() string {
	return e.err.Error()
}

func (e *noRestartErr) Unwrap() error {
	return e.err
}

func (e *noRestartErr) Is(target error) bool {
	return target == suture.ErrDoNotRestart
}
