// Package connectivity tracks last-known reachability of the remote store.
// A single process-wide observer probes periodically; components that hit
// the store can flip it offline eagerly when a call fails, and the next
// probe flips it back once the store answers again.
package connectivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fleetrent/fleetrent/internal/logger"
)

// Pinger is the probe the observer runs against the remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Observer holds the online flag and its probe loop lifecycle.
type Observer struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	online   atomic.Bool
}

// NewObserver creates an observer that assumes online until the first probe
// or reported failure says otherwise.
func NewObserver(pinger Pinger, interval time.Duration) *Observer {
	o := &Observer{
		pinger:   pinger,
		interval: interval,
		timeout:  5 * time.Second,
	}
	o.online.Store(true)
	return o
}

// Online reports last-known reachability.
func (o *Observer) Online() bool {
	return o.online.Load()
}

// MarkOffline flips the flag immediately after an observed remote failure.
// The probe loop restores it once the store responds again.
func (o *Observer) MarkOffline() {
	if o.online.Swap(false) {
		logger.WithComponent("connectivity").Warn("remote store marked offline")
	}
}

// Start runs the probe loop until ctx is canceled. Returns a channel that is
// closed when the loop has stopped.
func (o *Observer) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	log := logger.WithComponent("connectivity")
	log.Debugf("starting connectivity probe with interval: %v", o.interval)

	ticker := time.NewTicker(o.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()

		o.probe(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Debug("connectivity probe stopped")
				return
			case <-ticker.C:
				o.probe(ctx)
			}
		}
	}()
	return done
}

func (o *Observer) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	err := o.pinger.Ping(probeCtx)
	was := o.online.Swap(err == nil)
	log := logger.WithComponent("connectivity")

	switch {
	case err != nil && was:
		log.Warnf("remote store went offline: %v", err)
	case err == nil && !was:
		log.Info("remote store back online")
	case err != nil:
		log.Debugf("remote store still offline: %v", err)
	}
}
