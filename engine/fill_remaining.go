// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"

	"triviador"
)

// runFillRemaining drives the Fill-Remaining Handler (spec §4.E.3):
// while any country is still unowned, all three seats contest a
// numeric tip and the winner claims one unowned country.
func (m *Match) runFillRemaining(ctx context.Context) error {
	round := 0
	for {
		unowned := m.State.UnoccupiedCountries()
		if len(unowned) == 0 {
			return nil
		}
		round++

		m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseFillRemaining, Round: round, MiniPhase: 0})
		m.State.SetCmdHint(nil)
		if err := m.broadcast(); err != nil {
			return err
		}
		if err := m.barrier(ctx); err != nil {
			return err
		}

		winner, err := m.runTip(ctx, triviador.Seats[:])
		if err != nil {
			return err
		}

		available := triviador.NewAvailableAreas(m.State.UnoccupiedCountries()...)
		m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseFillRemaining, Round: round, MiniPhase: 4})
		m.State.SetRoundInfo(triviador.RoundInfo{MiniPhaseNum: 1, ActingSeat: winner})
		m.State.SetActiveSeat(winner)
		m.State.SetAvailable(available)
		if m.isHuman(winner) {
			m.State.SetCmdHint(&triviador.CmdHint{Kind: triviador.HintSelect, Available: available, TimeoutS: int(m.Timeouts.Select.Seconds())})
		} else {
			m.State.SetCmdHint(nil)
		}
		m.Hub.DrainAll([]triviador.Seat{winner})
		if err := m.broadcast(); err != nil {
			return err
		}
		if err := m.barrier(ctx); err != nil {
			return err
		}

		country, err := m.selectArea(ctx, winner, available)
		if err != nil {
			return err
		}
		if err := m.State.ApplyOccupation(winner, country, triviador.TierT200); err != nil {
			return err
		}

		m.State.SetCmdHint(nil)
		if err := m.broadcast(); err != nil {
			return err
		}
		if err := m.barrier(ctx); err != nil {
			return err
		}
		m.State.ClearSelection()
	}
}
