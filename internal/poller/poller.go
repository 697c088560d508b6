// Package poller drives continuous detection: a fixed-interval,
// self-rescheduling loop with two states (idle, running). Each cycle
// completes before the next is scheduled, so classifier invocations never
// overlap.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/elbara99/ai-counter-cafeteria/internal/camera"
	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

// DefaultInterval is the wait between detection cycles.
const DefaultInterval = 500 * time.Millisecond

// Pipeline is the slice of the detection pipeline the poller needs.
type Pipeline interface {
	Detect(src camera.FrameSource) ([]domain.Detection, error)
}

// Callback receives the (possibly empty) result of each cycle. It runs on
// the poller goroutine and must not call back into the Poller.
type Callback func(detections []domain.Detection)

// Poller owns the detection loop. Start is a no-op when already running or
// when the readiness check fails; Stop cancels the pending wait and
// guarantees no further callback, including for a cycle already in flight.
type Poller struct {
	pipeline Pipeline
	source   camera.FrameSource
	ready    func() bool
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New builds an idle poller. ready gates Start; interval <= 0 falls back to
// DefaultInterval.
func New(pipeline Pipeline, source camera.FrameSource, ready func() bool, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		pipeline: pipeline,
		source:   source,
		ready:    ready,
		interval: interval,
	}
}

// Start moves the poller to running and begins the loop. Returns false (and
// does nothing) when already running or when the readiness check fails.
func (p *Poller) Start(cb Callback) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return false
	}
	if p.ready != nil && !p.ready() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel

	go p.loop(ctx, cb)
	return true
}

// Stop returns the poller to idle. After Stop returns, the callback will not
// be invoked again; a cycle still in flight has its result discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.cancel()
	p.running = false
	p.cancel = nil
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// loop runs cycle → callback → wait, scheduling each cycle only after the
// previous one completed.
func (p *Poller) loop(ctx context.Context, cb Callback) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		detections, err := p.pipeline.Detect(p.source)
		if err != nil {
			// Only readiness violations propagate out of the
			// pipeline; the loop cannot make progress without a
			// model, so it shuts itself down.
			log.Printf("stopping detection: %v", err)
			p.Stop()
			return
		}

		// The stop check and the callback share the poller mutex: once
		// Stop has returned, a cycle that was in flight observes the
		// cancellation here and discards its result.
		p.mu.Lock()
		if ctx.Err() != nil {
			p.mu.Unlock()
			return
		}
		cb(detections)
		p.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.interval)

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}
