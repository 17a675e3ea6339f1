package ecs

import (
	"github.com/rs/zerolog"
)

func loadComponentIntoArrayLogger(desc ComponentDescriptor, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Uint32("component_id", uint32(desc.ID))
	dictLogger = dictLogger.Str("component_name", desc.Name())
	return arrayLogger.Dict(dictLogger)
}

func loadComponentsToEvent(event *zerolog.Event, w *World) *zerolog.Event {
	event.Int("total_components", w.components.Len())
	arrayLogger := zerolog.Arr()
	for desc := range w.components.Descriptors() {
		arrayLogger = loadComponentIntoArrayLogger(desc, arrayLogger)
	}
	return event.Array("components", arrayLogger)
}

func loadSystemsToEvent(event *zerolog.Event, s *Scheduler) *zerolog.Event {
	for _, phase := range []Phase{Startup, Update} {
		names := s.SystemNames(phase)
		arrayLogger := zerolog.Arr()
		for _, name := range names {
			arrayLogger = arrayLogger.Str(name)
		}
		event.Array(phase.String()+"_systems", arrayLogger)
	}
	return event
}

// LogComponents logs every component type registered in w.
func LogComponents(logger *zerolog.Logger, w *World, level zerolog.Level) {
	loadComponentsToEvent(logger.WithLevel(level), w).Send()
}

// LogSystems logs the systems of s by phase, in run order.
func LogSystems(logger *zerolog.Logger, s *Scheduler, level zerolog.Level) {
	loadSystemsToEvent(logger.WithLevel(level), s).Send()
}

// LogEntity logs e with its archetype and component types. Dead entities are
// logged with alive=false only.
func LogEntity(logger *zerolog.Logger, level zerolog.Level, w *World, e Entity) {
	event := logger.WithLevel(level).Stringer("entity", e)
	loc, err := w.Location(e)
	if err != nil {
		event.Bool("alive", false).Send()
		return
	}
	arrayLogger := zerolog.Arr()
	for _, id := range w.archetypes.location(e).arch.types {
		arrayLogger = loadComponentIntoArrayLogger(w.components.mustDescribe(id), arrayLogger)
	}
	event.Bool("alive", true).
		Uint32("archetype_id", uint32(loc.Archetype)).
		Int("row", loc.Row).
		Array("components", arrayLogger).
		Send()
}

// LogWorld logs the components of w and the systems of s in one event.
func LogWorld(logger *zerolog.Logger, w *World, s *Scheduler, level zerolog.Level) {
	event := loadComponentsToEvent(logger.WithLevel(level), w)
	loadSystemsToEvent(event, s).Send()
}
