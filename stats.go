package ecs

import (
	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

type ArchetypeStats struct {
	ID         ArchetypeID `json:"id"`
	Components []string    `json:"components"`
	Entities   int         `json:"entities"`
}

// Stats is a point-in-time summary of a World, suitable for logs and dumps.
type Stats struct {
	WorldID    string           `json:"world_id"`
	Entities   int              `json:"entities"`
	Components []string         `json:"components"`
	Archetypes []ArchetypeStats `json:"archetypes"`
}

func (w *World) Stats() Stats {
	descs := iter_util.Collect(w.components.Descriptors())
	stats := Stats{
		WorldID:    w.config.WorldID,
		Entities:   w.Len(),
		Components: make([]string, len(descs)),
		Archetypes: make([]ArchetypeStats, 0, w.archetypes.Len()),
	}
	for i, desc := range descs {
		stats.Components[i] = desc.Name()
	}
	for _, arch := range w.archetypes.asSlice {
		names := make([]string, 0, len(arch.types))
		for _, desc := range arch.descriptors() {
			names = append(names, desc.Name())
		}
		stats.Archetypes = append(stats.Archetypes, ArchetypeStats{
			ID:         arch.id,
			Components: names,
			Entities:   arch.Len(),
		})
	}
	return stats
}

func (s Stats) JSON() ([]byte, error) {
	bz, err := json.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "failed to marshal world stats")
	}
	return bz, nil
}
