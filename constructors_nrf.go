//go:build tinygo || baremetal

// This file is built only for embedded targets (using real radio hardware).
package nrfnode

import (
	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/nrfnode/config"
	"github.com/ystepanoff/nrfnode/driver/nrf"
)

// NewNode assembles a node on the given board hardware with the on-chip
// radio.
func NewNode(cfg *config.Config, hw Hardware, log logrus.FieldLogger) (*Node, error) {
	return assemble(cfg, hw, nrf.New(), log)
}
