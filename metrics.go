package ecs

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Metrics wraps the statsd client a World reports through. Without a
// configured address every emit is a no-op.
type Metrics struct {
	client ddstatsd.ClientInterface
	logger zerolog.Logger
}

func newMetrics(cfg Config, client ddstatsd.ClientInterface, logger zerolog.Logger) (*Metrics, error) {
	if client == nil {
		if cfg.StatsdAddress == "" {
			client = &ddstatsd.NoOpClient{}
		} else {
			opts := []ddstatsd.Option{
				ddstatsd.WithNamespace("ecs."),
			}
			if tags := cfg.Tags(); len(tags) > 0 {
				opts = append(opts, ddstatsd.WithTags(tags))
			}
			var err error
			client, err = ddstatsd.New(cfg.StatsdAddress, opts...)
			if err != nil {
				return nil, eris.Wrapf(err, "failed to create statsd client for %s", cfg.StatsdAddress)
			}
		}
	}
	return &Metrics{client: client, logger: logger}, nil
}

func (m *Metrics) Client() ddstatsd.ClientInterface {
	return m.client
}

// EmitTickStat reports the time since start under the tick metric, tagged with stage.
func (m *Metrics) EmitTickStat(start time.Time, stage string) {
	if err := m.client.Timing("tick", time.Since(start), []string{"stage:" + stage}, 1); err != nil {
		m.logger.Warn().Err(err).Msg("failed to emit tick stat")
	}
}

// EmitWorldStats reports entity and archetype gauges for w.
func (m *Metrics) EmitWorldStats(w *World) {
	if err := m.client.Gauge("entities", float64(w.Len()), nil, 1); err != nil {
		m.logger.Warn().Err(err).Msg("failed to emit entity gauge")
	}
	if err := m.client.Gauge("archetypes", float64(w.archetypes.Len()), nil, 1); err != nil {
		m.logger.Warn().Err(err).Msg("failed to emit archetype gauge")
	}
}

func (m *Metrics) Close() error {
	return m.client.Close()
}
