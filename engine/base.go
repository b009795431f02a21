// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"

	"triviador"
)

// runBase drives the Base Handler (spec §4.E.1): each seat, in turn,
// picks a starting country.
func (m *Match) runBase(ctx context.Context) error {
	m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseBase, Round: 0, MiniPhase: 0})
	m.State.SetAvailable(triviador.NewAvailableAreas(triviador.AllCountries...))
	m.State.SetCmdHint(nil)
	if err := m.broadcast(); err != nil {
		return err
	}
	if err := m.barrier(ctx); err != nil {
		return err
	}

	for _, seat := range triviador.Seats {
		m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseBase, Round: 0, MiniPhase: 1})
		m.State.SetRoundInfo(triviador.RoundInfo{MiniPhaseNum: int(seat), ActingSeat: seat})
		m.State.SetActiveSeat(seat)

		available := m.State.AvailableSnapshot()
		if m.isHuman(seat) {
			m.State.SetCmdHint(&triviador.CmdHint{
				Kind:      triviador.HintSelect,
				Available: available,
				TimeoutS:  int(m.Timeouts.Select.Seconds()),
			})
		} else {
			m.State.SetCmdHint(nil)
		}
		m.Hub.DrainAll([]triviador.Seat{seat})
		if err := m.broadcast(); err != nil {
			return err
		}
		if err := m.barrier(ctx); err != nil {
			return err
		}

		country, err := m.selectArea(ctx, seat, available)
		if err != nil {
			return err
		}
		if err := m.State.ApplyBaseSelection(seat, country); err != nil {
			return err
		}

		m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseBase, Round: 0, MiniPhase: 3})
		m.State.SetCmdHint(nil)
		if err := m.broadcast(); err != nil {
			return err
		}
		if err := m.barrier(ctx); err != nil {
			return err
		}
	}
	return nil
}
