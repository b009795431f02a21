// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"

	"triviador"
)

const areaConquestRounds = 5

// runAreaConquest drives the Area-Conquest Handler (spec §4.E.2): 5
// rounds, each seat in war-order claims a bordering unowned country by
// winning a trivia question against the clock.
func (m *Match) runAreaConquest(ctx context.Context) error {
	for r := 1; r <= areaConquestRounds; r++ {
		m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseAreaConquest, Round: r, MiniPhase: 0})
		war := m.newWarOrder(1)
		m.State.SetWarOrder(war)
		m.State.SetCmdHint(nil)
		if err := m.broadcast(); err != nil {
			return err
		}
		if err := m.barrier(ctx); err != nil {
			return err
		}

		miniPhase := 0
		for _, seat := range war.Block(1) {
			miniPhase++
			if err := m.runAreaConquestMiniPhase(ctx, r, miniPhase, seat); err != nil {
				return err
			}
		}

		m.State.ClearSelection()
	}
	return nil
}

func (m *Match) runAreaConquestMiniPhase(ctx context.Context, round, miniPhase int, seat triviador.Seat) error {
	available := neighbourAvailable(m.State, seat)
	if len(available) == 0 {
		available = triviador.NewAvailableAreas(m.State.UnoccupiedCountries()...)
	}

	m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseAreaConquest, Round: round, MiniPhase: 1})
	m.State.SetRoundInfo(triviador.RoundInfo{MiniPhaseNum: miniPhase, ActingSeat: seat})
	m.State.SetActiveSeat(seat)
	m.State.SetAvailable(available)
	if m.isHuman(seat) {
		m.State.SetCmdHint(&triviador.CmdHint{Kind: triviador.HintSelect, Available: available, TimeoutS: int(m.Timeouts.Select.Seconds())})
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
	m.State.RecordSelection(seat, country)
	available.Remove(country)
	m.State.SetAvailable(available)

	m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseAreaConquest, Round: round, MiniPhase: 3})
	m.State.SetCmdHint(nil)
	if err := m.broadcast(); err != nil {
		return err
	}
	if err := m.barrier(ctx); err != nil {
		return err
	}

	correct, err := m.runQuestion(ctx, []triviador.Seat{seat})
	if err != nil {
		return err
	}
	if correct[seat] {
		if err := m.State.ApplyOccupation(seat, country, triviador.TierT200); err != nil {
			return err
		}
	} else {
		m.State.ReleaseArea(country)
		available[country] = struct{}{}
		m.State.SetAvailable(available)
	}

	if err := m.broadcast(); err != nil {
		return err
	}
	return m.barrier(ctx)
}

// neighbourAvailable returns the unowned countries bordering seat's
// current territory.
func neighbourAvailable(state *triviador.MatchState, seat triviador.Seat) triviador.AvailableAreas {
	out := triviador.NewAvailableAreas()
	for n := range neighboursOfOwned(state, seat) {
		if state.AreaOwner(n) == 0 {
			out[n] = struct{}{}
		}
	}
	return out
}
