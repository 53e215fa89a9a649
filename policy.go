package dict

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// Default policy values.
const (
	// defaultInitialSize is the smallest slot array a dict ever allocates.
	defaultInitialSize = 4
	// defaultResizeRatio is the used/size ratio above which an insertion
	// starts a growth.
	defaultResizeRatio = 1.0
	// defaultForceResizeRatio starts a growth even when the resize gate is
	// closed, bounding chain length.
	defaultForceResizeRatio = 5.0
	// defaultMinFillPercent is the fill below which NeedsResize reports a
	// shrink is worthwhile.
	defaultMinFillPercent = 10.0
	// defaultEmptyVisits caps consecutive empty buckets one rehash step
	// may skip.
	defaultEmptyVisits = 10
	// defaultRehashBatch is the number of steps RehashFor runs between
	// clock checks.
	defaultRehashBatch = 100
	// defaultSampleSteps bounds SomeKeys to count*defaultSampleSteps
	// bucket visits.
	defaultSampleSteps = 10
	// defaultFairSampleSize is the sample FairRandomKey draws from.
	defaultFairSampleSize = 15
)

// Policy gathers the tunable constants of the resize and sampling logic.
type Policy struct {
	InitialSize      uint64  `json:"initial_size"`
	ResizeRatio      float64 `json:"resize_ratio"`
	ForceResizeRatio float64 `json:"force_resize_ratio"`
	MinFillPercent   float64 `json:"min_fill_percent"`
	EmptyVisits      int     `json:"empty_visits"`
	RehashBatch      int     `json:"rehash_batch"`
	SampleSteps      int     `json:"sample_steps"`
	FairSampleSize   int     `json:"fair_sample_size"`
}

// DefaultPolicy returns the policy a Dict uses unless WithPolicy is given.
func DefaultPolicy() Policy {
	return Policy{
		InitialSize:      defaultInitialSize,
		ResizeRatio:      defaultResizeRatio,
		ForceResizeRatio: defaultForceResizeRatio,
		MinFillPercent:   defaultMinFillPercent,
		EmptyVisits:      defaultEmptyVisits,
		RehashBatch:      defaultRehashBatch,
		SampleSteps:      defaultSampleSteps,
		FairSampleSize:   defaultFairSampleSize,
	}
}

// Validate checks every field and returns an error wrapping
// ErrInvalidPolicy for the first bad one.
func (p Policy) Validate() error {
	switch {
	case p.InitialSize < defaultInitialSize || !isPowerOfTwo(p.InitialSize):
		return fmt.Errorf("%w: initial_size %d must be a power of two >= %d",
			ErrInvalidPolicy, p.InitialSize, defaultInitialSize)
	case !(p.ResizeRatio > 0):
		return fmt.Errorf("%w: resize_ratio %v must be positive", ErrInvalidPolicy, p.ResizeRatio)
	case p.ForceResizeRatio < p.ResizeRatio:
		return fmt.Errorf("%w: force_resize_ratio %v is below resize_ratio %v",
			ErrInvalidPolicy, p.ForceResizeRatio, p.ResizeRatio)
	case p.MinFillPercent < 0 || p.MinFillPercent >= 100:
		return fmt.Errorf("%w: min_fill_percent %v must be in [0, 100)", ErrInvalidPolicy, p.MinFillPercent)
	case p.EmptyVisits < 1:
		return fmt.Errorf("%w: empty_visits %d must be >= 1", ErrInvalidPolicy, p.EmptyVisits)
	case p.RehashBatch < 1:
		return fmt.Errorf("%w: rehash_batch %d must be >= 1", ErrInvalidPolicy, p.RehashBatch)
	case p.SampleSteps < 1:
		return fmt.Errorf("%w: sample_steps %d must be >= 1", ErrInvalidPolicy, p.SampleSteps)
	case p.FairSampleSize < 1:
		return fmt.Errorf("%w: fair_sample_size %d must be >= 1", ErrInvalidPolicy, p.FairSampleSize)
	}
	return nil
}

// ParsePolicy reads a policy from HuJSON (JSON with comments and trailing
// commas). Fields that are absent keep their DefaultPolicy value; unknown
// fields are rejected.
//
// Example:
//
//	{
//		// grow late, the host is memory bound
//		"resize_ratio": 2,
//		"empty_visits": 20,
//	}
func ParsePolicy(data []byte) (Policy, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Policy{}, fmt.Errorf("%w: invalid JSONC: %w", ErrInvalidPolicy, err)
	}

	p := DefaultPolicy()
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("%w: invalid JSON: %w", ErrInvalidPolicy, err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
