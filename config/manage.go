// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"os/signal"
)

// Manager is anything with a lifecycle the server starts and stops as
// a unit: the transport listener, the observability projection, and
// so on.
type Manager interface {
	fmt.Stringer
	Start()
	Shutdown()
}

// Store is the observability projection manager (component K): the
// rest of the server only writes to it and never reads from it, and it
// is never the source of truth for match state.
type Store interface {
	Manager

	RecordPhase(matchID string, phase string, round, miniPhase int) error
	RecordScore(matchID string, seat int, score int) error
	RecordOutcome(matchID string, winner int, finishedUnixS int64) error
}

// Register adds m to the set of managers started and stopped together
// with the server. It must be called before Start.
func (c *Conf) Register(m Manager) {
	if c.run {
		panic(fmt.Sprintf("late register: %#v", m))
	}

	if s, ok := m.(Store); ok {
		c.Store = s
	}

	c.man = append(c.man, m)
}

// Start starts every registered manager and blocks until an interrupt
// signal or Ctx cancellation requests a shutdown, at which point every
// manager is stopped in reverse registration order.
func (c *Conf) Start() {
	for _, m := range c.man {
		c.Debug.Printf("starting %s", m)
		go m.Start()
	}
	c.run = true

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	select {
	case <-intr:
		c.Debug.Println("caught interrupt")
	case <-c.Ctx.Done():
		c.Debug.Println("requested shutdown")
	}

	c.Debug.Println("waiting for managers to shut down...")
	for i := len(c.man) - 1; i >= 0; i-- {
		m := c.man[i]
		c.Debug.Printf("shutting %s down", m)
		m.Shutdown()
	}
	c.Debug.Println("shut down")
}
