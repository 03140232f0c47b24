package arbiter

import (
	"fmt"
	"time"
)

// Config shapes how busy the simulated arbiter is.
type Config struct {
	// MinGap and MaxGap bound the time between a request and the slot it
	// is granted, drawn uniformly.
	MinGap time.Duration `toml:"min_gap" env:"MIN_GAP"`
	MaxGap time.Duration `toml:"max_gap" env:"MAX_GAP"`

	// BlockProbability is the chance a request is refused outright.
	BlockProbability float64 `toml:"block_probability" env:"BLOCK_PROBABILITY"`

	// CancelProbability is the chance a granted slot is taken back before
	// it starts.
	CancelProbability float64 `toml:"cancel_probability" env:"CANCEL_PROBABILITY"`

	// ExtendFailProbability is the chance an extension is refused.
	ExtendFailProbability float64 `toml:"extend_fail_probability" env:"EXTEND_FAIL_PROBABILITY"`

	Seed int64 `toml:"seed" env:"SEED"`
}

// MaxSlotLength is the longest slot that can be requested at once.
const MaxSlotLength = 100 * time.Millisecond

// MinSlotLength is the shortest slot that can be requested.
const MinSlotLength = 100 * time.Microsecond

// DefaultConfig returns an arbiter that grants a slot 1 to 10 ms after it
// was asked and never refuses.
func DefaultConfig() Config {
	return Config{
		MinGap: time.Millisecond,
		MaxGap: 10 * time.Millisecond,
		Seed:   1,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.MinGap <= 0 || c.MaxGap < c.MinGap {
		return fmt.Errorf("arbiter: gap range [%s, %s] is invalid",
			c.MinGap, c.MaxGap)
	}

	for name, p := range map[string]float64{
		"block":       c.BlockProbability,
		"cancel":      c.CancelProbability,
		"extend fail": c.ExtendFailProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("arbiter: %s probability %v outside [0, 1]",
				name, p)
		}
	}

	return nil
}
