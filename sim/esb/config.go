package esb

import (
	"fmt"
	"time"
)

// Config describes the air interface and the peer at the other end.
type Config struct {
	// Airtime covers one packet, the turnaround and the acknowledgement.
	Airtime time.Duration `toml:"airtime" env:"AIRTIME"`

	// RetransmitDelay separates two automatic retransmissions.
	RetransmitDelay time.Duration `toml:"retransmit_delay" env:"RETRANSMIT_DELAY"`

	// LossProbability is the chance that one attempt goes unacknowledged.
	LossProbability float64 `toml:"loss_probability" env:"LOSS_PROBABILITY"`

	// RxInterval is the time between two packets the peer sends while the
	// driver listens. Zero keeps the peer silent.
	RxInterval time.Duration `toml:"rx_interval" env:"RX_INTERVAL"`

	// FIFODepth is the number of packets each of the TX and RX FIFOs holds.
	FIFODepth int `toml:"fifo_depth" env:"FIFO_DEPTH"`

	Seed int64 `toml:"seed" env:"SEED"`
}

// DefaultConfig returns a 2 Mbps link to a peer that answers every packet
// and sends one every 2 ms.
func DefaultConfig() Config {
	return Config{
		Airtime:         160 * time.Microsecond,
		RetransmitDelay: 250 * time.Microsecond,
		LossProbability: 0,
		RxInterval:      2 * time.Millisecond,
		FIFODepth:       3,
		Seed:            1,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	switch {
	case c.Airtime <= 0:
		return fmt.Errorf("esb: airtime %s must be positive", c.Airtime)
	case c.RetransmitDelay < 0:
		return fmt.Errorf("esb: negative retransmit delay %s", c.RetransmitDelay)
	case c.LossProbability < 0 || c.LossProbability > 1:
		return fmt.Errorf("esb: loss probability %v outside [0, 1]",
			c.LossProbability)
	case c.RxInterval < 0:
		return fmt.Errorf("esb: negative rx interval %s", c.RxInterval)
	case c.FIFODepth < 1:
		return fmt.Errorf("esb: fifo depth %d must be at least 1", c.FIFODepth)
	}

	return nil
}
