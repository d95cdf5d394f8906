// Package abortflag implements the scheduler's two user signals (spec
// §4.3 "Abort and skip"): a close-once broadcast flag for full abort,
// and a plain boolean for skip-current-input. Adapted from
// pipelined-audio/internal/semaphore's channel-based primitive — a
// counting semaphore has no role in a single-threaded scheduler, but
// its "a primitive sized to exactly one job" idiom carries over
// directly to a broadcast flag.
package abortflag

import (
	"sync"
	"time"
)

// Flag is a one-shot broadcast signal: Set closes it exactly once,
// Done returns a channel that is closed when that happens, and
// IsSet reports the current state without blocking.
type Flag struct {
	once sync.Once
	ch   chan struct{}
	mu   sync.Mutex
	set  bool
}

// New returns a ready-to-use Flag.
func New() *Flag {
	return &Flag{ch: make(chan struct{})}
}

// Set raises the flag, closing Done's channel. Safe to call more than
// once or from multiple goroutines; only the first call has effect.
func (f *Flag) Set() {
	f.once.Do(func() {
		f.mu.Lock()
		f.set = true
		f.mu.Unlock()
		close(f.ch)
	})
}

// Done returns a channel closed when Set is called.
func (f *Flag) Done() <-chan struct{} { return f.ch }

// IsSet reports whether Set has been called, without blocking.
func (f *Flag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

// Skip is the lighter "skip current input" signal (spec §4.3): unlike
// Flag it can be raised and cleared repeatedly, once per input.
type Skip struct {
	mu  sync.Mutex
	set bool
}

// Request raises the skip signal.
func (s *Skip) Request() {
	s.mu.Lock()
	s.set = true
	s.mu.Unlock()
}

// Consume reports whether skip was requested and clears it, so the
// scheduler's next sentinel refill sees the request exactly once.
func (s *Skip) Consume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		s.set = false
		return true
	}
	return false
}

// HardAbortWindow is how soon a second user signal must follow the
// first to escalate from a skip into a full abort (spec §4.3's
// "second abort within 1 second = hard abort").
const HardAbortWindow = time.Second

// CtrlC turns a single repeated user signal (e.g. SIGINT) into the
// skip-then-hard-abort policy: the first Press requests Skip; a second
// Press arriving within HardAbortWindow of the first raises Abort
// instead. Pressing again after the window resets and requests another
// Skip. The signal handler that wires an OS signal to Press is left to
// the caller; CtrlC only owns the escalation timing.
type CtrlC struct {
	Skip  *Skip
	Abort *Flag

	mu        sync.Mutex
	lastPress time.Time
	armed     bool
}

// NewCtrlC returns a CtrlC escalating onto the given Skip and Flag.
func NewCtrlC(skip *Skip, abort *Flag) *CtrlC {
	return &CtrlC{Skip: skip, Abort: abort}
}

// Press registers one user signal, applying the escalation policy.
func (c *CtrlC) Press() {
	now := time.Now()

	c.mu.Lock()
	hard := c.armed && now.Sub(c.lastPress) <= HardAbortWindow
	c.lastPress = now
	c.armed = !hard
	c.mu.Unlock()

	if hard {
		c.Abort.Set()
		return
	}
	c.Skip.Request()
}
