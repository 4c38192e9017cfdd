package config

// Normalize fills every unset field with its default.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	n := &cfg.Node
	if n.Address == 0 {
		n.Address = DefaultAddress
	}
	if n.Channel == nil {
		ch := uint8(DefaultChannel)
		n.Channel = &ch
	}
	if n.BatterySensor == nil {
		on := true
		n.BatterySensor = &on
	}

	t := &cfg.Timing
	t.Tick = orDuration(t.Tick, DefaultTick)
	t.Window = orDuration(t.Window, DefaultWindow)
	t.Refresh = orDuration(t.Refresh, DefaultRefresh)
	t.Watchdog = orDuration(t.Watchdog, DefaultWatchdog)
	if t.SleepCycles == 0 {
		t.SleepCycles = DefaultSleepCycles
	}

	s := &cfg.Sensors
	if s.TemperatureOffset == 0 {
		s.TemperatureOffset = DefaultTemperatureOffset
	}
	if s.CalibrationAddress == 0 {
		s.CalibrationAddress = DefaultCalibrationAddress
	}
	if s.CalibrationDefault == 0 {
		s.CalibrationDefault = DefaultCalibration
	}
	if s.ProbeResolution == 0 {
		s.ProbeResolution = DefaultProbeResolution
	}
	if s.BatteryConstant == 0 {
		s.BatteryConstant = DefaultBatteryConstant
	}

	l := &cfg.Log
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if l.File != "" {
		if l.MaxSizeMB == 0 {
			l.MaxSizeMB = DefaultMaxSizeMB
		}
		if l.MaxBackups == 0 {
			l.MaxBackups = DefaultMaxBackups
		}
	}
}
