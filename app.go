package ecs

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// App drives a World with a Scheduler: startup once, then one update phase per
// tick at Config.TickRate, each followed by the optional frame hook.
type App struct {
	config    Config
	world     *World
	scheduler *Scheduler
	frame     FrameFunc
	tick      uint64

	// err holds the first builder failure, surfaced by Step and Run.
	err error
}

func NewApp(cfg Config, opts ...WorldOption) (*App, error) {
	w, err := NewWorld(cfg, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create world")
	}
	return &App{
		config:    cfg,
		world:     w,
		scheduler: NewScheduler(),
	}, nil
}

// AddSystem registers sys and returns the App for chaining. A registration
// failure is reported by the next Step or Run.
func (a *App) AddSystem(phase Phase, name string, sys System) *App {
	if a.err != nil {
		return a
	}
	if err := a.scheduler.AddSystem(phase, name, sys); err != nil {
		a.err = err
	}
	return a
}

// OnFrame sets the hook run after every update phase.
func (a *App) OnFrame(f FrameFunc) *App {
	a.frame = f
	return a
}

func (a *App) World() *World {
	return a.world
}

func (a *App) Scheduler() *Scheduler {
	return a.scheduler
}

// Tick returns the number of completed update phases.
func (a *App) Tick() uint64 {
	return a.tick
}

// Step runs startup if it has not run yet, then one update phase and the frame hook.
func (a *App) Step(ctx context.Context) error {
	if a.err != nil {
		return a.err
	}
	if !a.scheduler.StartupRan() {
		if err := a.scheduler.RunStartup(ctx, a.world); err != nil {
			return err
		}
	}
	if err := a.scheduler.RunUpdate(ctx, a.world); err != nil {
		return eris.Wrapf(err, "tick %d", a.tick)
	}
	if a.frame != nil {
		if err := a.frame(ctx, a.world, a.tick); err != nil {
			return eris.Wrapf(err, "frame hook failed at tick %d", a.tick)
		}
	}
	a.tick++
	a.world.Metrics().EmitWorldStats(a.world)
	return nil
}

// Run steps the App once per tick until ctx is done, a step fails, or
// Config.MaxTicks updates have run. Cancellation is not an error.
func (a *App) Run(ctx context.Context) error {
	if a.err != nil {
		return a.err
	}
	logger := a.world.Logger()
	logger.Info().Str("title", a.config.Title).Int("tick_rate", a.config.TickRate).Msg("app starting")
	LogSystems(logger, a.scheduler, zerolog.DebugLevel)

	if !a.scheduler.StartupRan() {
		if err := a.scheduler.RunStartup(ctx, a.world); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(a.config.TickRate))
	defer ticker.Stop()
	for a.config.MaxTicks == 0 || a.tick < a.config.MaxTicks {
		select {
		case <-ctx.Done():
			logger.Info().Uint64("tick", a.tick).Msg("app stopped")
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			if err := a.Step(ctx); err != nil {
				logger.Error().Err(err).Uint64("tick", a.tick).Msg("tick failed")
				return err
			}
		}
	}
	logger.Info().Uint64("tick", a.tick).Msg("max ticks reached")
	return nil
}

// Close flushes the metrics client.
func (a *App) Close() error {
	return a.world.Metrics().Close()
}
