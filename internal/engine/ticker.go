package engine

import (
	"sync"
	"time"
)

// Ticker is the engine's only source of time. Start begins periodic
// onTick callbacks until Stop; restarting an already running ticker
// replaces the previous schedule. Tests drive the engine by calling
// Engine.Tick directly instead of waiting on a real clock.
type Ticker interface {
	Start(onTick func())
	Stop()
}

// IntervalTicker fires onTick on a fixed wall-clock cadence.
type IntervalTicker struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewIntervalTicker returns a ticker firing every interval; a
// non-positive interval falls back to one second.
func NewIntervalTicker(interval time.Duration) *IntervalTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &IntervalTicker{interval: interval}
}

func (t *IntervalTicker) Start(onTick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				onTick()
			case <-stop:
				return
			}
		}
	}()
}

// Stop cancels the periodic callback; calling it when idle is a no-op.
func (t *IntervalTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
