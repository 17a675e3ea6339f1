package ecs

import (
	"context"
	"path/filepath"
	"reflect"
	"runtime"
	"time"

	"github.com/rotisserie/eris"
)

type namedSystem struct {
	name   string
	phase  Phase
	system System
}

// Scheduler holds the startup and update system lists and runs them against a
// World one at a time, in registration order, on the calling goroutine.
type Scheduler struct {
	// registered keys every system by name across both phases.
	registered *SimpleCache[string, namedSystem]
	startup    []namedSystem
	update     []namedSystem

	startupRan    bool
	currentSystem *string
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		registered: FactoryNewCache[string, namedSystem](0),
	}
}

// AddSystem appends system to phase. An empty name is replaced by the
// function's name. Names are unique across phases.
func (s *Scheduler) AddSystem(phase Phase, name string, system System) error {
	if system == nil {
		return eris.Errorf("system %q is nil", name)
	}
	if phase != Startup && phase != Update {
		return eris.Errorf("unknown phase %d", phase)
	}
	if name == "" {
		name = filepath.Base(runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name())
	}
	if _, exists := s.registered.GetIndex(name); exists {
		return DuplicateSystemError{Name: name}
	}
	entry := namedSystem{name: name, phase: phase, system: system}
	if _, err := s.registered.Register(name, entry); err != nil {
		return err
	}
	switch phase {
	case Startup:
		s.startup = append(s.startup, entry)
	case Update:
		s.update = append(s.update, entry)
	}
	return nil
}

// RunStartup runs the startup systems. It can succeed at most once; a failed
// startup is not retried.
func (s *Scheduler) RunStartup(ctx context.Context, w *World) error {
	if s.startupRan {
		return StartupAlreadyRanError{}
	}
	s.startupRan = true
	return s.runPhase(ctx, w, Startup, s.startup)
}

// RunUpdate runs the update systems once. Call it once per tick. The startup
// phase runs first if it has not run yet.
func (s *Scheduler) RunUpdate(ctx context.Context, w *World) error {
	if !s.startupRan {
		if err := s.RunStartup(ctx, w); err != nil {
			return err
		}
	}
	return s.runPhase(ctx, w, Update, s.update)
}

func (s *Scheduler) StartupRan() bool {
	return s.startupRan
}

func (s *Scheduler) runPhase(ctx context.Context, w *World, phase Phase, systems []namedSystem) error {
	phaseStart := time.Now()
	for _, entry := range systems {
		name := entry.name
		s.currentSystem = &name

		sysLogger := w.Logger().With().Str("system", name).Str("phase", phase.String()).Logger()
		sysCtx := sysLogger.WithContext(ctx)

		start := time.Now()
		held := w.locks
		err := s.runSystem(sysCtx, w, entry)
		if w.locks > held {
			sysLogger.Warn().Int("leaked_locks", w.locks-held).Msg("system left the world locked")
			w.unlockTo(held)
		}
		if err == nil {
			err = w.TakeDeferredError()
		}
		w.Metrics().EmitTickStat(start, name)
		if err != nil {
			s.currentSystem = nil
			sysLogger.Error().Err(err).Msg("system failed")
			return eris.Wrapf(err, "system %q failed", name)
		}
	}
	s.currentSystem = nil
	w.Metrics().EmitTickStat(phaseStart, "all_systems")
	w.Logger().Debug().Str("phase", phase.String()).Int("systems", len(systems)).
		Dur("elapsed", time.Since(phaseStart)).Msg("phase complete")
	return nil
}

func (s *Scheduler) runSystem(ctx context.Context, w *World, entry namedSystem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = SystemPanicError{System: entry.name, Value: r}
		}
	}()
	return entry.system(ctx, w)
}

// SystemNames returns the names registered to phase in run order.
func (s *Scheduler) SystemNames(phase Phase) []string {
	var systems []namedSystem
	switch phase {
	case Startup:
		systems = s.startup
	case Update:
		systems = s.update
	}
	names := make([]string, len(systems))
	for i, entry := range systems {
		names[i] = entry.name
	}
	return names
}

func (s *Scheduler) CurrentSystem() string {
	if s.currentSystem == nil {
		return "no_system"
	}
	return *s.currentSystem
}
