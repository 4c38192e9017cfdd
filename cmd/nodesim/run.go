package main

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ystepanoff/nrfnode"
	"github.com/ystepanoff/nrfnode/sensor"
)

func newRunCommand(a *app) *cobra.Command {
	var (
		f         simFlags
		pollEvery time.Duration
		runFor    time.Duration
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the node and polls its probe periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.start(f)
			if err != nil {
				return err
			}
			defer s.close()

			log := a.log.WithField("node", a.cfg.Node.Address)
			log.WithFields(logrus.Fields{
				"speed":     f.speed,
				"low_power": a.cfg.Node.LowPower,
				"sleep":     a.cfg.Timing.SleepDuration(),
			}).Info("simulation running")

			var deadline <-chan time.Time
			if runFor > 0 {
				deadline = time.After(runFor)
			}
			var polls <-chan time.Time
			if pollEvery > 0 {
				ticker := time.NewTicker(pollEvery)
				defer ticker.Stop()
				polls = ticker.C
			}

			for {
				select {
				case <-a.ctx.Done():
					return nil
				case <-deadline:
					return nil
				case <-polls:
					pollProbe(a, s, log)
				}
			}
		},
	}

	addSimFlags(runCmd, &f, 1)
	runCmd.Flags().DurationVar(&pollEvery, "poll-every", 5*time.Second, "Wall-clock interval between probe polls (0 disables polling)")
	runCmd.Flags().DurationVar(&runFor, "for", 0, "Stop after this wall-clock duration (0 runs until interrupted)")
	return runCmd
}

func pollProbe(a *app, s *session, log logrus.FieldLogger) {
	addr := s.node.Address()
	res, err := s.coord.Request(a.ctx, addr, nrfnode.CmdRead, 2, nil)
	if errors.Is(err, nrfnode.ErrTimeout) {
		log.Warn("probe poll unanswered, node asleep")
		return
	}
	if err != nil {
		log.WithError(err).Error("probe poll failed")
		return
	}

	data := res.Payload()
	fields := logrus.Fields{"probe_c": probeCelsius(data)}
	if len(data) == 3 {
		fields["battery_v"] = batteryVolts(data[2])
	} else if a.cfg.Node.BatteryEnabled() {
		if bat, err := s.coord.Request(a.ctx, addr, nrfnode.CmdRead, 3, nil); err == nil && len(bat.Payload()) > 0 {
			fields["battery_v"] = batteryVolts(bat.Payload()[0])
		}
	}
	log.WithFields(fields).Info("probe polled")
}

func addSimFlags(cmd *cobra.Command, f *simFlags, speed float64) {
	cmd.Flags().Float64Var(&f.speed, "speed", speed, "Simulation speed relative to real time")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Coordinator reply timeout (0 selects the default)")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 21.5, "Probe temperature in degC")
	cmd.Flags().Uint32Var(&f.supplyMV, "supply", 3700, "Supply voltage in mV")
}

// probeCelsius decodes the little-endian 1/16 degC probe reading.
func probeCelsius(data []byte) float64 {
	if len(data) < 2 {
		return 0
	}
	return float64(int16(uint16(data[0])|uint16(data[1])<<8)) / 16
}

// batteryVolts undoes the on-node scaling: the byte is volts times 50.
func batteryVolts(b byte) float64 {
	return float64(b) / 50
}

// probeType reports whether code is the probe's type code on either
// variant.
func probeType(code byte) bool {
	return code&^sensor.LowPowerFlag == sensor.TypeProbe
}
