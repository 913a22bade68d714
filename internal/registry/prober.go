package registry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultProbeInterval is how often the background prober sweeps providers.
const DefaultProbeInterval = 30 * time.Second

// DefaultProbeTimeout bounds a single probe when the provider declares no
// latency bound. Without it a zero bound would expire the probe context
// immediately and fail every sweep.
const DefaultProbeTimeout = 10 * time.Second

// Prober periodically health-checks every registered provider. A successful
// probe marks an unavailable provider live again; a failed probe counts
// toward the consecutive-failure threshold like any other failed call.
type Prober struct {
	registry *Registry
	interval time.Duration
	logger   *logrus.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewProber creates a prober for the given registry.
func NewProber(registry *Registry, interval time.Duration, logger *logrus.Logger) *Prober {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Prober{
		registry: registry,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the probe loop. It returns immediately; probes run until
// Stop is called.
func (p *Prober) Start() {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Sweep(context.Background())
			case <-p.stop:
				return
			}
		}
	}()
}

// Stop terminates the probe loop and waits for it to finish.
func (p *Prober) Stop() {
	close(p.stop)
	<-p.done
}

// Sweep probes every provider once, bounded by each provider's declared
// latency bound.
func (p *Prober) Sweep(ctx context.Context) {
	for id, e := range p.registry.entries {
		bound := e.descriptor.LatencyBound
		if bound <= 0 {
			bound = DefaultProbeTimeout
		}
		probeCtx, cancel := context.WithTimeout(ctx, bound)
		err := e.provider.HealthCheck(probeCtx)
		cancel()

		e.noteProbe(err)
		p.registry.ReportOutcome(id, err == nil)

		if err != nil {
			p.logger.WithError(err).WithField("provider", id).Warn("Health probe failed")
		} else {
			p.logger.WithField("provider", id).Debug("Health probe passed")
		}
	}
}
