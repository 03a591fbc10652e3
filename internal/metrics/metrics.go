// Package metrics emits fire-and-forget counters and timers to a statsd
// agent. Emission failures are swallowed so an absent agent never affects a
// request.
package metrics

import (
	"log/slog"
	"time"

	"github.com/cactus/go-statsd-client/v4/statsd"
)

type Emitter interface {
	// Count increments the <name>.count counter by one.
	Count(name string)
	// Timing records d under <name>.duration in milliseconds.
	Timing(name string, d time.Duration)
}

type statsdEmitter struct {
	client statsd.Statter
}

// NewStatsd connects a UDP statsd emitter. On failure it logs and falls back
// to a noop emitter rather than aborting startup.
func NewStatsd(address, prefix string) Emitter {
	client, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
		Address: address,
		Prefix:  prefix,
	})
	if err != nil {
		slog.Warn("statsd unavailable, metrics disabled", "address", address, "error", err)
		return NewNoop()
	}
	return &statsdEmitter{client: client}
}

// NewNoop returns an emitter that discards everything.
func NewNoop() Emitter {
	client, _ := statsd.NewNoopClient()
	return &statsdEmitter{client: client}
}

func (e *statsdEmitter) Count(name string) {
	_ = e.client.Inc(name+".count", 1, 1.0)
}

func (e *statsdEmitter) Timing(name string, d time.Duration) {
	_ = e.client.TimingDuration(name+".duration", d, 1.0)
}

// Since records the elapsed time from start under name. Meant for defer:
//
//	defer metrics.Since(m, "db.find_user", time.Now())
func Since(e Emitter, name string, start time.Time) {
	e.Timing(name, time.Since(start))
}
