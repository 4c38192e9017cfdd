// Package config loads the node configuration from YAML.
//
// The pipeline is Load, ApplyEnv, Validate, Normalize. Validate never
// mutates; Normalize fills defaults and must run after Validate.
package config

import "time"

type Config struct {
	Node    NodeConfig    `yaml:"node"`
	Timing  TimingConfig  `yaml:"timing"`
	Sensors SensorsConfig `yaml:"sensors"`
	Log     LogConfig     `yaml:"log"`
}

// ---- NODE ----

type NodeConfig struct {
	Address  uint8  `yaml:"address"`
	Channel  *uint8 `yaml:"channel"` // nil => 76
	LowPower bool   `yaml:"low_power"`

	// BatterySensor exposes the battery as sensor 3. Nil means true.
	BatterySensor *bool `yaml:"battery_sensor"`
}

// ---- TIMING ----

type TimingConfig struct {
	Tick        time.Duration `yaml:"tick"`
	Window      time.Duration `yaml:"window"`
	Refresh     time.Duration `yaml:"refresh"`
	Watchdog    time.Duration `yaml:"watchdog"`
	SleepCycles uint32        `yaml:"sleep_cycles"`
}

// ---- SENSORS ----

type SensorsConfig struct {
	TemperatureOffset  uint8  `yaml:"temperature_offset"`
	CalibrationAddress uint16 `yaml:"calibration_address"`
	CalibrationDefault uint8  `yaml:"calibration_default"`
	ProbeResolution    uint8  `yaml:"probe_resolution"`
	BatteryConstant    uint32 `yaml:"battery_constant"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`

	// File, when set, receives the log with size-based rotation.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

const (
	DefaultAddress     = 2
	DefaultChannel     = 76
	DefaultTick        = 10 * time.Millisecond
	DefaultWindow      = 3 * time.Second
	DefaultRefresh     = 60 * time.Second
	DefaultWatchdog    = 8 * time.Second
	DefaultSleepCycles = 8

	DefaultTemperatureOffset  = 19
	DefaultCalibrationAddress = 1
	DefaultCalibration        = 128
	DefaultProbeResolution    = 10
	DefaultBatteryConstant    = 56265

	DefaultLogLevel   = "info"
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3

	// MaxCalibrationAddress is the last byte of a 1 KiB EEPROM.
	MaxCalibrationAddress = 1023
)

// Default returns a normalized configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

// BatteryEnabled reports whether the battery sensor is exposed.
func (n NodeConfig) BatteryEnabled() bool {
	return n.BatterySensor == nil || *n.BatterySensor
}

// ChannelOrDefault returns the configured radio channel.
func (n NodeConfig) ChannelOrDefault() uint8 {
	if n.Channel == nil {
		return DefaultChannel
	}
	return *n.Channel
}

// WindowTicks is the responsiveness window in fast ticks.
func (t TimingConfig) WindowTicks() uint32 {
	return ticks(t.Window, t.Tick)
}

// RefreshTicks is the always-on probe refresh period in fast ticks.
func (t TimingConfig) RefreshTicks() uint32 {
	return ticks(t.Refresh, t.Tick)
}

// SleepDuration is the nominal length of one duty-cycle sleep.
func (t TimingConfig) SleepDuration() time.Duration {
	return time.Duration(t.SleepCycles) * t.Watchdog
}

func ticks(d, tick time.Duration) uint32 {
	if tick <= 0 {
		return 0
	}
	return uint32(d / tick)
}
