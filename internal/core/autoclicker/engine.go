package autoclicker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const eventBufferSize = 64

// Engine runs the press/release cycle on its own goroutine while started.
type Engine struct {
	sink   Sink
	logger Logger
	jitter *Jitter
	sleep  func(time.Duration)

	mu         sync.Mutex
	params     Params
	running    bool
	generation uint64

	// held maps a worker generation to the strategy of its pressed button.
	heldMu sync.Mutex
	held   map[uint64]Strategy

	clicks  atomic.Uint64
	dropped atomic.Uint64
	events  chan Event
	workers sync.WaitGroup
}

func NewEngine(params Params, sink Sink, logger Logger) (*Engine, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		sink:   sink,
		logger: logger,
		jitter: newTimeSeededJitter(),
		sleep:  time.Sleep,
		params: params,
		held:   make(map[uint64]Strategy),
		events: make(chan Event, eventBufferSize),
	}, nil
}

// Events delivers running-state changes and click notifications. Sends never
// block; events are dropped when the buffer is full.
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.logger.Debug("Click engine already running")
		return
	}
	e.running = true
	e.generation++
	e.publish(Event{Kind: EventRunningChanged, Running: true})

	e.workers.Add(1)
	go e.run(e.generation)
	e.logger.Info("Click engine started")
}

func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		e.logger.Debug("Click engine already stopped")
		return
	}
	e.running = false
	e.publish(Event{Kind: EventRunningChanged, Running: false})
	e.logger.Info("Click engine stopped", "clicks", e.clicks.Load())
}

func (e *Engine) Toggle() {
	if e.IsRunning() {
		e.Stop()
		return
	}
	e.Start()
}

func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Wait blocks until every worker has returned or the timeout elapses.
func (e *Engine) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.workers.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (e *Engine) Clicks() uint64 {
	return e.clicks.Load()
}

// DroppedEvents counts events discarded because nobody drained Events.
func (e *Engine) DroppedEvents() uint64 {
	return e.dropped.Load()
}

func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *Engine) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.params = params
	e.mu.Unlock()
	return nil
}

func (e *Engine) SetInterval(ms int) error {
	if err := checkTiming("interval", ms); err != nil {
		return err
	}
	e.mu.Lock()
	e.params.Interval = ms
	e.mu.Unlock()
	return nil
}

func (e *Engine) SetPressDuration(ms int) error {
	if err := checkTiming("press duration", ms); err != nil {
		return err
	}
	e.mu.Lock()
	e.params.PressDuration = ms
	e.mu.Unlock()
	return nil
}

func (e *Engine) SetJitterRange(ms int) error {
	if err := checkTiming("jitter range", ms); err != nil {
		return err
	}
	e.mu.Lock()
	e.params.JitterRange = ms
	e.mu.Unlock()
	return nil
}

func (e *Engine) SetStrategy(strategy Strategy) error {
	switch strategy {
	case StrategyInjectGlobal, StrategyPostToWindow:
	default:
		return fmt.Errorf("unknown strategy %d", int(strategy))
	}
	e.mu.Lock()
	e.params.Strategy = strategy
	e.mu.Unlock()
	return nil
}

func (e *Engine) Interval() int {
	return e.Params().Interval
}

func (e *Engine) PressDuration() int {
	return e.Params().PressDuration
}

func (e *Engine) JitterRange() int {
	return e.Params().JitterRange
}

func (e *Engine) Strategy() Strategy {
	return e.Params().Strategy
}

// snapshot returns the parameters for the next cycle, or false once the worker
// of this generation should exit.
func (e *Engine) snapshot(generation uint64) (Params, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.generation != generation {
		return Params{}, false
	}
	return e.params, true
}

func (e *Engine) run(generation uint64) {
	defer e.workers.Done()
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.Error("Click worker panicked", "panic", recovered)
			e.abort(generation)
			e.releaseAfterPanic(generation)
		}
	}()

	for {
		params, ok := e.snapshot(generation)
		if !ok {
			return
		}

		e.press(generation, params.Strategy)
		e.sleep(phaseDuration(params.PressDuration, e.jitter.Sample(params.JitterRange)))
		e.release(generation)

		clicks := e.clicks.Add(1)
		e.publishClicked(clicks)

		e.sleep(phaseDuration(params.Interval, e.jitter.Sample(params.JitterRange)))
	}
}

// Release emits ButtonUp for every press a worker still holds and reports
// whether any was pending. Workers skip their own release for those presses.
func (e *Engine) Release() bool {
	e.heldMu.Lock()
	pending := make([]Strategy, 0, len(e.held))
	for generation, strategy := range e.held {
		pending = append(pending, strategy)
		delete(e.held, generation)
	}
	e.heldMu.Unlock()

	for _, strategy := range pending {
		e.emit(strategy, ButtonUp)
	}
	return len(pending) > 0
}

func (e *Engine) press(generation uint64, strategy Strategy) {
	// Recorded before emitting so a press that fails halfway is still lifted.
	e.heldMu.Lock()
	e.held[generation] = strategy
	e.heldMu.Unlock()
	e.emit(strategy, ButtonDown)
}

func (e *Engine) release(generation uint64) {
	e.heldMu.Lock()
	strategy, ok := e.held[generation]
	delete(e.held, generation)
	e.heldMu.Unlock()
	if ok {
		e.emit(strategy, ButtonUp)
	}
}

func (e *Engine) releaseAfterPanic(generation uint64) {
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.Error("Failed to release button after panic", "panic", recovered)
		}
	}()
	e.release(generation)
}

// abort stops the engine on behalf of a failed worker.
func (e *Engine) abort(generation uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.generation != generation {
		return
	}
	e.running = false
	e.publish(Event{Kind: EventRunningChanged, Running: false})
}

func (e *Engine) emit(strategy Strategy, transition Transition) {
	err := e.sink.Emit(strategy, transition)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoTarget):
		e.logger.Debug("Skipped click phase", "transition", transition.String(), "reason", err)
	default:
		e.logger.Warn("Failed to emit click", "transition", transition.String(), "strategy", strategy.String(), "err", err)
	}
}

func (e *Engine) publishClicked(clicks uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publish(Event{Kind: EventClicked, Clicks: clicks})
}

// publish must be called with e.mu held so event order follows state order.
func (e *Engine) publish(event Event) {
	event.Clicks = max(event.Clicks, e.clicks.Load())
	select {
	case e.events <- event:
	default:
		e.dropped.Add(1)
	}
}
