package timeslot

import "fmt"

// MaxPayloadLength is the largest packet the link driver can carry.
const MaxPayloadLength = 32

// Payload is one packet. Its contents are opaque to the link.
type Payload struct {
	Pipe  uint8
	NoAck bool
	Data  []byte
}

// Len returns the number of data bytes.
func (p Payload) Len() int {
	return len(p.Data)
}

// LinkEvent is an outcome reported by the link driver.
type LinkEvent int

// Link driver events.
const (
	LinkEventTxSuccess LinkEvent = iota
	LinkEventTxFailed
	LinkEventRxReceived
)

func (e LinkEvent) String() string {
	switch e {
	case LinkEventTxSuccess:
		return "TxSuccess"
	case LinkEventTxFailed:
		return "TxFailed"
	case LinkEventRxReceived:
		return "RxReceived"
	default:
		return fmt.Sprintf("LinkEvent(%d)", int(e))
	}
}

// LinkEventHandler receives link driver events. The driver calls it from its
// radio interrupt entry point.
type LinkEventHandler func(evt LinkEvent)

// Protocol selects the packet format of the link driver.
type Protocol string

// Protocols.
const (
	ProtocolFixedPayload   Protocol = "fixed"
	ProtocolDynamicPayload Protocol = "dpl"
)

// Mode is the role of the node on the link.
type Mode string

// Modes.
const (
	ModePTX Mode = "ptx"
	ModePRX Mode = "prx"
)

// LinkConfig is handed to LinkDriver.Init.
type LinkConfig struct {
	PayloadLength    int              `toml:"payload_length"`
	Protocol         Protocol         `toml:"protocol"`
	BitrateKbps      int              `toml:"bitrate_kbps" env:"BITRATE_KBPS"`
	Mode             Mode             `toml:"mode"`
	RetransmitCount  int              `toml:"retransmit_count" env:"RETRANSMIT_COUNT"`
	SelectiveAutoAck bool             `toml:"selective_auto_ack"`
	RadioIRQPriority int              `toml:"radio_irq_priority"`
	TxPipe           uint8            `toml:"tx_pipe"`
	EventHandler     LinkEventHandler `toml:"-"`
}

// Addressing is the over-the-air address set of the link.
type Addressing struct {
	Channel  uint8  `toml:"channel" env:"CHANNEL"`
	Base0    []byte `toml:"base_address_0"`
	Base1    []byte `toml:"base_address_1"`
	Prefixes []byte `toml:"prefixes"`
}

// LinkDriver is the packet protocol that frames, acknowledges and
// retransmits once told to receive or transmit.
type LinkDriver interface {
	Init(cfg LinkConfig) error
	SetAddressing(addr Addressing) error
	StartRx() error
	StopRx() error
	WriteTxPayload(p Payload) error
	FlushTx() error
	FlushRx() error
	Disable() error
	IsIdle() bool

	// ReadRxPayload returns the oldest received packet, or ErrRxEmpty.
	ReadRxPayload() (Payload, error)

	// HandleRadioIRQ is the driver's radio interrupt entry point.
	HandleRadioIRQ()
}

// Radio is the power domain of the transceiver.
type Radio interface {
	// PowerCycle turns the radio off and on, resetting its registers.
	PowerCycle()

	// ForceDisable aborts any radio activity immediately.
	ForceDisable()
}
