package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/sensor"
)

var ErrInvalidConfig = errors.New("invalid config")

// Validate checks configuration correctness against the values that will
// be in effect after Normalize. It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	// ------------------------------------------------------------
	// NODE
	// ------------------------------------------------------------

	if cfg.Node.Address != 0 && !proto.ValidNodeAddress(proto.Address(cfg.Node.Address)) {
		return fmt.Errorf("%w: node.address %d: %v", ErrInvalidConfig, cfg.Node.Address, proto.ErrInvalidAddress)
	}
	if err := proto.ValidateChannel(cfg.Node.ChannelOrDefault()); err != nil {
		return fmt.Errorf("%w: node.channel: %v", ErrInvalidConfig, err)
	}

	// ------------------------------------------------------------
	// TIMING
	// ------------------------------------------------------------

	t := cfg.Timing
	for _, d := range []struct {
		key string
		v   time.Duration
	}{
		{"timing.tick", t.Tick},
		{"timing.window", t.Window},
		{"timing.refresh", t.Refresh},
		{"timing.watchdog", t.Watchdog},
	} {
		if d.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, d.key, d.v)
		}
	}

	tick := orDuration(t.Tick, DefaultTick)
	if w := orDuration(t.Window, DefaultWindow); w <= tick {
		return fmt.Errorf("%w: timing.window %v must exceed timing.tick %v", ErrInvalidConfig, w, tick)
	}
	if !cfg.Node.LowPower {
		if r := orDuration(t.Refresh, DefaultRefresh); r <= tick {
			return fmt.Errorf("%w: timing.refresh %v must exceed timing.tick %v", ErrInvalidConfig, r, tick)
		}
	}

	// ------------------------------------------------------------
	// SENSORS
	// ------------------------------------------------------------

	s := cfg.Sensors
	if s.ProbeResolution != 0 && (s.ProbeResolution < 9 || s.ProbeResolution > 12) {
		return fmt.Errorf("%w: sensors.probe_resolution must be 9..12 bits, got %d", ErrInvalidConfig, s.ProbeResolution)
	}
	if s.CalibrationAddress > MaxCalibrationAddress {
		return fmt.Errorf("%w: sensors.calibration_address %d beyond %d", ErrInvalidConfig, s.CalibrationAddress, MaxCalibrationAddress)
	}
	if s.CalibrationDefault == sensor.Unprogrammed {
		return fmt.Errorf("%w: sensors.calibration_default 0x%02X reads as an erased cell", ErrInvalidConfig, s.CalibrationDefault)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
		}
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}

	return nil
}

func orDuration(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}
