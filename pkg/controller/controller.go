// Package controller owns the capture schedule: it runs one capture cycle
// per tick, forces cycles on demand, and keeps the persisted RunState
// current. All commands are safe for concurrent use; cycles themselves
// never run concurrently.
package controller

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/root4loot/goutils/log"

	"github.com/andsko/pagelapse/pkg/capture"
	"github.com/andsko/pagelapse/pkg/state"
)

// DefaultTargets is the fixed capture list. One entry is drawn uniformly
// at random per cycle; repeats are allowed.
var DefaultTargets = []string{
	"https://www.example.com/",
	"https://www.wikipedia.org/",
	"https://news.ycombinator.com/",
	"https://go.dev/",
}

// Config tunes the controller. Zero values fall back to the defaults.
type Config struct {
	Interval            time.Duration // time between cycles
	Targets             []string      // capture list, one picked per cycle
	SkipSimilar         bool          // skip saving near-identical captures
	SimilarityThreshold int           // ssdeep score treated as duplicate
}

func (c *Config) defaults() {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if len(c.Targets) == 0 {
		c.Targets = DefaultTargets
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = 96
	}
}

// Capturer runs one screenshot capture. Satisfied by *capture.Capturer.
type Capturer interface {
	Capture(ctx context.Context, url string) (*capture.Result, error)
}

// Controller drives the periodic capture schedule.
type Controller struct {
	cfg      Config
	capturer Capturer
	sink     Sink
	store    *state.Store

	// mu guards runState and cancel. cycleMu serializes cycles; a tick
	// that cannot take it is skipped rather than queued.
	mu       sync.Mutex
	cycleMu  sync.Mutex
	runState state.RunState
	cancel   context.CancelFunc

	prev *capture.Result
}

// New creates a Controller. When store is non-nil the persisted RunState
// is loaded so statistics continue across restarts; a load failure is
// logged and the controller starts from zero.
func New(capturer Capturer, sink Sink, store *state.Store, cfg Config) *Controller {
	cfg.defaults()

	c := &Controller{
		cfg:      cfg,
		capturer: capturer,
		sink:     sink,
		store:    store,
	}

	if store != nil {
		rs, err := store.Load(context.Background())
		if err != nil {
			log.Warnf("Could not load persisted run state: %v", err)
		} else {
			c.runState = rs
		}
	}

	return c
}

// Start begins the periodic schedule and runs one cycle immediately.
// It is idempotent: it reports false, without side effects, when the
// schedule is already active.
func (c *Controller) Start() bool {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		log.Debug("Start requested but schedule is already active")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.runState.Running = true
	rs := c.runState
	c.mu.Unlock()

	c.persist(rs)
	log.Infof("Capture schedule started (every %v)", c.cfg.Interval)

	go c.loop(ctx)
	return true
}

// Stop cancels the periodic schedule. It is idempotent: stopping a
// stopped controller reports false and is otherwise a no-op.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		log.Debug("Stop requested but schedule is not active")
		return false
	}

	c.cancel()
	c.cancel = nil
	c.runState.Running = false
	rs := c.runState
	c.mu.Unlock()

	c.persist(rs)
	log.Info("Capture schedule stopped")
	return true
}

// Shutdown halts the schedule without clearing the persisted running
// flag, so a restarted daemon resumes where it left off.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Resume restarts the schedule when the persisted state says capturing
// was running at last shutdown.
func (c *Controller) Resume() {
	c.mu.Lock()
	resume := c.runState.Running && c.cancel == nil
	total := c.runState.TotalCount
	c.mu.Unlock()

	if resume {
		log.Infof("Resuming capture schedule (%d captures so far)", total)
		c.Start()
	}
}

// Status returns a copy of the current RunState.
func (c *Controller) Status() state.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runState
}

// RunNow forces one cycle outside the normal schedule, independent of
// running state. It returns the saved filename (empty when the save was
// skipped as a duplicate) and the cycle's error as the acknowledgment.
func (c *Controller) RunNow() (string, error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()
	return c.runCycle(context.Background())
}

// loop runs one cycle immediately, then one per tick, until ctx is
// cancelled.
func (c *Controller) loop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	c.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick runs one cycle unless the previous one is still in flight, in
// which case the tick is skipped.
func (c *Controller) tick(ctx context.Context) {
	if !c.cycleMu.TryLock() {
		log.Debug("Previous cycle still in flight, skipping this tick")
		return
	}
	defer c.cycleMu.Unlock()

	if _, err := c.runCycle(ctx); err != nil {
		log.Errorf("Capture cycle failed: %v", err)
	}
}

// runCycle performs one full select/capture/save/update sequence. Callers
// must hold cycleMu.
func (c *Controller) runCycle(ctx context.Context) (string, error) {
	id := uuid.NewString()[:8]
	target := c.cfg.Targets[rand.Intn(len(c.cfg.Targets))]
	log.Debugf("[%s] Capturing %s", id, target)

	result, err := c.capturer.Capture(ctx, target)
	if err != nil {
		return "", err
	}

	filename := result.Filename()
	saved := ""

	if c.cfg.SkipSimilar && result.SimilarTo(c.prev, c.cfg.SimilarityThreshold) {
		log.Infof("[%s] Capture of %s is near-identical to the previous one, not saving", id, target)
	} else {
		if err := c.sink.Offer(result.Image, filename); err != nil {
			return "", &PersistError{Filename: filename, Err: err}
		}
		c.prev = result
		saved = filename
		log.Resultf("[%s] Saved %s", id, filename)
	}

	c.mu.Lock()
	c.runState.TotalCount++
	c.runState.LastRunAt = time.Now().UTC()
	rs := c.runState
	c.mu.Unlock()

	// A stats persistence failure never fails the cycle.
	if c.store != nil {
		if err := c.store.Save(ctx, rs); err != nil {
			log.Warnf("[%s] %v", id, &StatsUpdateError{Err: err})
		}
	}

	return saved, nil
}

func (c *Controller) persist(rs state.RunState) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(context.Background(), rs); err != nil {
		log.Warnf("Could not persist run state: %v", err)
	}
}
