package timeslot

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the timing and link parameters of a Link.
type Config struct {
	// SlotLength is the length of every lease requested.
	SlotLength time.Duration `toml:"slot_length" env:"SLOT_LENGTH"`

	// ExtensionLength is how much each extension adds.
	ExtensionLength time.Duration `toml:"extension_length" env:"EXTENSION_LENGTH"`

	// SafetyMargin is kept free at the end of the slot.
	SafetyMargin time.Duration `toml:"safety_margin" env:"SAFETY_MARGIN"`

	// ExtendMargin is how long before the end of the slot an extension is
	// asked for.
	ExtendMargin time.Duration `toml:"extend_margin" env:"EXTEND_MARGIN"`

	// ExtendSlack is the processing time lost between the end of the slot
	// and the re-armed timer after an extension.
	ExtendSlack time.Duration `toml:"extend_slack" env:"EXTEND_SLACK"`

	// RequestTimeout bounds how long the arbiter may take to place an
	// earliest-available lease.
	RequestTimeout time.Duration `toml:"request_timeout" env:"REQUEST_TIMEOUT"`

	// MaxTxAttempts is the number of slots a head packet gets before it is
	// dropped.
	MaxTxAttempts int `toml:"max_tx_attempts" env:"MAX_TX_ATTEMPTS"`

	// QueueCapacity is the number of packets the transmit queue holds.
	QueueCapacity int `toml:"queue_capacity" env:"QUEUE_CAPACITY"`

	Link    LinkConfig `toml:"link" envPrefix:"LINK_"`
	Address Addressing `toml:"address" envPrefix:"ADDRESS_"`
}

// DefaultConfig returns the parameters the link is tuned for: 5 ms slots
// extended 5 ms at a time, on a 2 Mbps dynamic-payload link.
func DefaultConfig() Config {
	return Config{
		SlotLength:      5000 * time.Microsecond,
		ExtensionLength: 5000 * time.Microsecond,
		SafetyMargin:    700 * time.Microsecond,
		ExtendMargin:    2000 * time.Microsecond,
		ExtendSlack:     25 * time.Microsecond,
		RequestTimeout:  500 * time.Millisecond,
		MaxTxAttempts:   10,
		// A 512-byte FIFO of 40-byte packet slots.
		QueueCapacity: 12,
		Link: LinkConfig{
			PayloadLength:    2,
			Protocol:         ProtocolDynamicPayload,
			BitrateKbps:      2000,
			Mode:             ModePTX,
			RetransmitCount:  3,
			SelectiveAutoAck: false,
		},
		Address: Addressing{
			Channel:  2,
			Base0:    []byte{0xE7, 0xE7, 0xE7, 0xE7},
			Base1:    []byte{0xC2, 0xC2, 0xC2, 0xC2},
			Prefixes: []byte{0xE7, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6, 0xC7, 0xC8},
		},
	}
}

// Validate checks that the deadlines fit inside a slot and an extension.
func (c Config) Validate() error {
	var errs []error

	if c.SlotLength <= 0 {
		errs = append(errs, fmt.Errorf("slot length %s must be positive",
			c.SlotLength))
	}

	if c.SafetyMargin <= 0 || c.SafetyMargin >= c.SlotLength {
		errs = append(errs, fmt.Errorf(
			"safety margin %s must be inside the slot length %s",
			c.SafetyMargin, c.SlotLength))
	}

	if c.ExtendMargin <= c.SafetyMargin || c.ExtendMargin >= c.SlotLength {
		errs = append(errs, fmt.Errorf(
			"extend margin %s must fall between the safety margin %s "+
				"and the slot length %s",
			c.ExtendMargin, c.SafetyMargin, c.SlotLength))
	}

	if c.ExtensionLength <= c.ExtendSlack {
		errs = append(errs, fmt.Errorf(
			"extension length %s must exceed the extend slack %s",
			c.ExtensionLength, c.ExtendSlack))
	}

	if c.ExtensionLength >= ExtendCeiling {
		errs = append(errs, fmt.Errorf(
			"extension length %s must be below the %s ceiling",
			c.ExtensionLength, ExtendCeiling))
	}

	if c.MaxTxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max tx attempts %d must be at least 1",
			c.MaxTxAttempts))
	}

	if c.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("queue capacity %d must be at least 1",
			c.QueueCapacity))
	}

	if len(c.Address.Base0) != 4 || len(c.Address.Base1) != 4 {
		errs = append(errs, errors.New("base addresses must be 4 bytes"))
	}

	if len(c.Address.Prefixes) == 0 || len(c.Address.Prefixes) > 8 {
		errs = append(errs, fmt.Errorf("%d address prefixes, want 1 to 8",
			len(c.Address.Prefixes)))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("timeslot: invalid config: %w", err)
	}

	return nil
}
