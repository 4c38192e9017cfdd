package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ystepanoff/nrfnode"
	"github.com/ystepanoff/nrfnode/driver/stub"
	"github.com/ystepanoff/nrfnode/sim"
	"github.com/ystepanoff/nrfnode/transport"
)

// session is a running simulated node with a coordinator linked to it.
type session struct {
	node  *nrfnode.SimNode
	coord *transport.Coordinator

	cancel context.CancelFunc
	done   chan error
	stop   chan struct{}
}

type simFlags struct {
	speed       float64
	timeout     time.Duration
	temperature float64
	supplyMV    uint32
}

// start boots a node from the loaded configuration and runs it in the
// background at the requested pace.
func (a *app) start(f simFlags) (*session, error) {
	if f.speed <= 0 {
		return nil, fmt.Errorf("speed must be positive, got %v", f.speed)
	}
	ctx, cancel := context.WithCancel(a.ctx)

	node, err := nrfnode.NewSimNode(a.cfg, sim.Options{Speed: f.speed, Done: ctx.Done()}, a.log)
	if err != nil {
		cancel()
		return nil, err
	}
	node.Probe.SetTemperature(int16(f.temperature * 16))
	node.Platform.SetSupply(f.supplyMV)
	node.Boot()

	s := &session{
		node:   node,
		cancel: cancel,
		done:   make(chan error, 1),
		stop:   make(chan struct{}),
	}
	go func() { s.done <- node.Run(ctx) }()

	coordDriver := stub.New()
	s.coord = transport.NewCoordinatorWithDriver(coordDriver, f.timeout, a.log)
	if err := s.coord.Initialise(a.cfg.Node.ChannelOrDefault()); err != nil {
		s.close()
		return nil, err
	}
	stub.Connect(node.Radio, coordDriver, s.stop)
	return s, nil
}

func (s *session) close() {
	s.cancel()
	<-s.done
	close(s.stop)
}
