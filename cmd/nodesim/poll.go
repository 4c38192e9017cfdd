package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/sensor"
)

func newPollCommand(a *app) *cobra.Command {
	var (
		f       simFlags
		cmdName string
		data    []uint
	)

	pollCmd := &cobra.Command{
		Use:   "poll <sensor>",
		Short: "Boots the node and sends it one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				return fmt.Errorf("sensor index: %w", err)
			}
			c, err := protocol.ParseCommand(cmdName)
			if err != nil {
				return err
			}
			payload := make([]byte, 0, len(data))
			for _, d := range data {
				if d > 0xFF {
					return fmt.Errorf("data byte %d out of range", d)
				}
				payload = append(payload, byte(d))
			}

			s, err := a.start(f)
			if err != nil {
				return err
			}
			defer s.close()

			res, err := s.coord.Request(a.ctx, s.node.Address(), c, uint8(idx), payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res == nil {
				fmt.Fprintf(out, "%s sensor %d: sent\n", c, idx)
				return nil
			}
			fmt.Fprintf(out, "%s sensor %d: %v\n", res.Cmd, res.Sensor, res.Payload())
			if d, ok := s.node.Sensors.Descriptor(uint8(idx)); ok && c == protocol.CmdRead {
				describe(out, d, res.Payload())
			}
			return nil
		},
	}

	addSimFlags(pollCmd, &f, 50)
	pollCmd.Flags().StringVar(&cmdName, "cmd", "read", "Command: read, write, cal-read or cal-write")
	pollCmd.Flags().UintSliceVar(&data, "data", nil, "Request data bytes")
	return pollCmd
}

func newPresentCommand(a *app) *cobra.Command {
	var f simFlags

	presentCmd := &cobra.Command{
		Use:   "present",
		Short: "Boots the node and asks for its sensor list",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.start(f)
			if err != nil {
				return err
			}
			defer s.close()

			pres, err := s.coord.Present(a.ctx, s.node.Address())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "node %d: %d sensors\n", s.node.Address(), pres.Count)
			for i := 0; i < int(pres.Count) && i < protocol.MaxSensors; i++ {
				code := pres.Types[i]
				note := ""
				if probeType(code) && code&sensor.LowPowerFlag != 0 {
					note = " (duty-cycled, replies may lag one sleep)"
				}
				fmt.Fprintf(out, "  %d: type %d%s\n", i, code, note)
			}
			return nil
		},
	}

	addSimFlags(presentCmd, &f, 50)
	return presentCmd
}
