// Command simplegame runs a small headless simulation on the ecs runtime:
// startup spawns a field of moving particles and a player, update systems move
// them and recycle the ones that leave the arena.
//
// Profiling:
//
//	go build ./cmd/simplegame
//	./simplegame --profile=cpu --ticks=600
//	go tool pprof -http=":8000" ./simplegame cpu.pprof
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/jarenm1/ecs"
)

const arenaSize = 100.0

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Player struct {
	Name string
}

type components struct {
	position ecs.AccessibleComponent[Position]
	velocity ecs.AccessibleComponent[Velocity]
	player   ecs.AccessibleComponent[Player]
}

func main() {
	var (
		configPath  = pflag.String("config", "", "KEY=VALUE config file applied before the environment")
		profileMode = pflag.String("profile", "", "write a profile to the working directory: cpu or mem")
		ticks       = pflag.Uint64("ticks", 0, "stop after this many ticks (overrides ECS_MAX_TICKS)")
		particles   = pflag.Int("particles", 1000, "number of particles spawned at startup")
	)
	pflag.Parse()

	if err := run(*configPath, *profileMode, *ticks, *particles); err != nil {
		fmt.Fprintf(os.Stderr, "simplegame: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, profileMode string, ticks uint64, particles int) error {
	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return eris.Errorf("unknown profile mode %q", profileMode)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if ticks > 0 {
		cfg.MaxTicks = ticks
	}
	if cfg.Title == ecs.DefaultTitle {
		cfg.Title = "simplegame"
	}

	app, err := ecs.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	w := app.World()
	comps := components{
		position: ecs.FactoryNewComponent[Position](w),
		velocity: ecs.FactoryNewComponent[Velocity](w),
		player:   ecs.FactoryNewComponent[Player](w),
	}

	app.AddSystem(ecs.Startup, "spawn_world", spawnWorld(comps, particles)).
		AddSystem(ecs.Update, "move", move(comps)).
		AddSystem(ecs.Update, "recycle", recycle(comps)).
		OnFrame(report(comps))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		return err
	}

	ecs.LogComponents(w.Logger(), w, zerolog.InfoLevel)
	stats, err := w.Stats().JSON()
	if err != nil {
		return err
	}
	fmt.Println(string(stats))
	return nil
}

func loadConfig(path string) (ecs.Config, error) {
	if path == "" {
		return ecs.LoadConfig()
	}
	return ecs.LoadConfigFile(path)
}

func randomParticle(comps components) []any {
	return []any{
		comps.position.Value(Position{X: rand.Float64() * arenaSize, Y: rand.Float64() * arenaSize}),
		comps.velocity.Value(Velocity{X: rand.Float64()*2 - 1, Y: rand.Float64()*2 - 1}),
	}
}

func spawnWorld(comps components, particles int) ecs.System {
	return func(ctx context.Context, w *ecs.World) error {
		logger := zerolog.Ctx(ctx)
		for range particles {
			if _, err := w.Spawn(randomParticle(comps)...); err != nil {
				return err
			}
		}
		player, err := w.Spawn(
			comps.position.Value(Position{X: arenaSize / 2, Y: arenaSize / 2}),
			comps.player.Value(Player{Name: "player one"}),
		)
		if err != nil {
			return err
		}
		ecs.LogEntity(logger, zerolog.InfoLevel, w, player)
		logger.Info().Int("particles", particles).Msg("world spawned")
		return nil
	}
}

func move(comps components) ecs.System {
	query := ecs.NewQuery(comps.position.ID(), comps.velocity.ID())
	return func(_ context.Context, w *ecs.World) error {
		cursor := w.Cursor(query)
		for cursor.Next() {
			pos := comps.position.GetFromCursor(cursor)
			vel := comps.velocity.GetFromCursor(cursor)
			pos.X += vel.X
			pos.Y += vel.Y
		}
		return nil
	}
}

// recycle replaces particles that left the arena. The player is never moved.
func recycle(comps components) ecs.System {
	query := ecs.NewQuery(comps.position.ID()).Without(comps.player.ID())
	return func(_ context.Context, w *ecs.World) error {
		cursor := w.Cursor(query)
		for cursor.Next() {
			pos := comps.position.GetFromCursor(cursor)
			if pos.X >= 0 && pos.X <= arenaSize && pos.Y >= 0 && pos.Y <= arenaSize {
				continue
			}
			if err := w.EnqueueDespawn(cursor.Entity()); err != nil {
				cursor.Reset()
				return err
			}
			if err := w.EnqueueSpawn(randomParticle(comps)...); err != nil {
				cursor.Reset()
				return err
			}
		}
		return nil
	}
}

func report(comps components) ecs.FrameFunc {
	query := ecs.NewQuery(comps.position.ID(), comps.player.ID())
	return func(_ context.Context, w *ecs.World, tick uint64) error {
		if tick%uint64(w.Config().TickRate) != 0 {
			return nil
		}
		cursor := w.Cursor(query)
		for cursor.Next() {
			pos := comps.position.GetFromCursor(cursor)
			player := comps.player.GetFromCursor(cursor)
			w.Logger().Info().Uint64("tick", tick).Str("player", player.Name).
				Float64("x", pos.X).Float64("y", pos.Y).Int("entities", w.Len()).Msg("frame")
		}
		return nil
	}
}
