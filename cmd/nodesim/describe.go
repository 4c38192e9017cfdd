package main

import (
	"fmt"
	"io"

	"github.com/ystepanoff/nrfnode/sensor"
)

// describe prints a read reply in engineering units where the node leaves
// the conversion to the poller.
func describe(out io.Writer, d sensor.Descriptor, data []byte) {
	switch d.Kind {
	case sensor.KindProbe:
		fmt.Fprintf(out, "  probe: %.2f degC\n", probeCelsius(data))
		if len(data) == 3 {
			fmt.Fprintf(out, "  battery: %.2f V\n", batteryVolts(data[2]))
		}
	case sensor.KindBattery:
		if len(data) > 0 {
			fmt.Fprintf(out, "  battery: %.2f V\n", batteryVolts(data[0]))
		}
	case sensor.KindOutput:
		if len(data) > 0 {
			fmt.Fprintf(out, "  output: %v\n", data[0] != 0)
		}
	}
}
