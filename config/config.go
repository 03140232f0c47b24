// Package config loads the parameters of a slotlink run.
//
// Values are layered. The defaults come first, a TOML file overrides them,
// and environment variables prefixed with SLOTLINK_ override both. An
// optional dotenv file is loaded into the environment before the variables
// are read; it never replaces a variable that is already set.
package config

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sarchlab/slotlink/sim/arbiter"
	"github.com/sarchlab/slotlink/sim/esb"
	"github.com/sarchlab/slotlink/timeslot"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "SLOTLINK_"

// File is everything a run can be configured with.
type File struct {
	LogLevel string          `toml:"log_level" env:"LOG_LEVEL"`
	Link     timeslot.Config `toml:"timeslot"`
	Sim      SimConfig       `toml:"sim" envPrefix:"SIM_"`
	Monitor  MonitorConfig   `toml:"monitor" envPrefix:"MONITOR_"`
}

// SimConfig drives the simulated platform and the traffic the application
// offers to the link.
type SimConfig struct {
	// Duration is how much virtual time a run covers.
	Duration time.Duration `toml:"duration" env:"DURATION"`

	// SendInterval separates two packets handed to Send. Zero sends
	// nothing.
	SendInterval time.Duration `toml:"send_interval" env:"SEND_INTERVAL"`

	PayloadSize int `toml:"payload_size" env:"PAYLOAD_SIZE"`

	// TracePath names the SQLite file slot traces go to. Empty disables
	// tracing.
	TracePath string `toml:"trace_path" env:"TRACE_PATH"`

	Arbiter arbiter.Config `toml:"arbiter" envPrefix:"ARBITER_"`
	Radio   esb.Config     `toml:"radio" envPrefix:"RADIO_"`
}

// MonitorConfig controls the HTTP monitor.
type MonitorConfig struct {
	Enabled     bool `toml:"enabled" env:"ENABLED"`
	Port        int  `toml:"port" env:"PORT"`
	OpenBrowser bool `toml:"open_browser" env:"OPEN_BROWSER"`
}

// Default returns the configuration of a one-second run with a packet
// offered every 3 ms, against an arbiter that refuses one extension in
// twenty.
func Default() File {
	arb := arbiter.DefaultConfig()
	arb.ExtendFailProbability = 0.05

	return File{
		LogLevel: zerolog.InfoLevel.String(),
		Link:     timeslot.DefaultConfig(),
		Sim: SimConfig{
			Duration:     time.Second,
			SendInterval: 3 * time.Millisecond,
			PayloadSize:  2,
			Arbiter:      arb,
			Radio:        esb.DefaultConfig(),
		},
	}
}

// Load builds the configuration from the defaults, the TOML file at path
// and the environment. Either path may be empty.
func Load(path, envFile string) (File, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return File{}, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return File{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return File{}, err
	}

	if err := cfg.Validate(); err != nil {
		return File{}, err
	}

	return cfg, nil
}

func decodeFile(path string, cfg *File) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		return fmt.Errorf("load config %s: unknown keys %s",
			path, strings.Join(keys, ", "))
	}

	return nil
}

// ParseEnv overrides target with the SLOTLINK_ environment variables.
func ParseEnv(target *File) error {
	if err := env.ParseWithOptions(target, env.Options{
		Prefix: EnvPrefix,
	}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// Validate checks every section.
func (f File) Validate() error {
	var errs []error

	if _, err := zerolog.ParseLevel(f.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}

	errs = append(errs,
		f.Link.Validate(),
		f.Sim.Validate(),
		f.Sim.Arbiter.Validate(),
		f.Sim.Radio.Validate(),
	)

	if f.Monitor.Port < 0 || f.Monitor.Port > 65535 {
		errs = append(errs, fmt.Errorf("monitor port %d out of range",
			f.Monitor.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Validate checks the run parameters.
func (s SimConfig) Validate() error {
	switch {
	case s.Duration <= 0:
		return fmt.Errorf("sim duration %s must be positive", s.Duration)
	case s.SendInterval < 0:
		return fmt.Errorf("negative send interval %s", s.SendInterval)
	case s.PayloadSize < 1 || s.PayloadSize > timeslot.MaxPayloadLength:
		return fmt.Errorf("payload size %d outside [1, %d]",
			s.PayloadSize, timeslot.MaxPayloadLength)
	}

	return nil
}

// Level returns the parsed log level, falling back to info.
func (f File) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(f.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	return lvl
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg File) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}
