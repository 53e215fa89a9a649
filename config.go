package dict

import "log/slog"

// Config defines configurable Dict options.
type Config struct {
	policy      Policy
	sizeHint    int
	gate        *ResizeGate
	memoryLimit int
	logger      *slog.Logger
}

// WithPolicy replaces the default tuning constants. New panics if the
// policy does not pass Policy.Validate.
func WithPolicy(p Policy) func(*Config) {
	return func(c *Config) {
		c.policy = p
	}
}

// WithPresize configures new Dict instance with a primary table large
// enough to hold sizeHint entries without growing. If sizeHint is zero or
// negative, the value is ignored and the first insertion allocates the
// initial table.
func WithPresize(sizeHint int) func(*Config) {
	return func(c *Config) {
		c.sizeHint = sizeHint
	}
}

// WithResizeGate makes the dict consult g before starting a new growth.
// The same gate may be shared by every dict owned by one goroutine, so a
// host can suspend growth for all of them at once.
func WithResizeGate(g *ResizeGate) func(*Config) {
	return func(c *Config) {
		c.gate = g
	}
}

// WithMemoryLimit caps the bytes the dict may hold in entries and slot
// arrays. Allocations beyond the cap fail with ErrOutOfMemory. Zero or a
// negative value means unlimited.
func WithMemoryLimit(bytes int) func(*Config) {
	return func(c *Config) {
		c.memoryLimit = bytes
	}
}

// WithLogger sets a logger for rehash lifecycle events. A nil logger (the
// default) keeps the dict silent.
func WithLogger(l *slog.Logger) func(*Config) {
	return func(c *Config) {
		c.logger = l
	}
}

// ResizeGate is an administrative switch over automatic growth. Closing it
// stops new growths from starting unless the fill ratio passes
// Policy.ForceResizeRatio; a rehash already in progress always continues.
// The zero value is open.
type ResizeGate struct {
	disabled bool
}

// NewResizeGate returns an open gate.
func NewResizeGate() *ResizeGate {
	return &ResizeGate{}
}

// Enable lets growths start again.
func (g *ResizeGate) Enable() { g.disabled = false }

// Disable suspends starting new growths, e.g. while the host wants to
// avoid large copy bursts.
func (g *ResizeGate) Disable() { g.disabled = true }

// Enabled reports whether growths may start.
func (g *ResizeGate) Enabled() bool { return !g.disabled }
