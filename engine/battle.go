// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"

	"triviador"
)

const battleRounds = 6

// runBattle drives the Battle Handler (spec §4.E.4): 6 rounds where
// each seat, in war order, attacks one bordering enemy country.
func (m *Match) runBattle(ctx context.Context) error {
	for r := 1; r <= battleRounds; r++ {
		m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseBattle, Round: r, MiniPhase: 0})
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
		for _, attacker := range war.Block(1) {
			miniPhase++
			if err := m.runBattleMiniPhase(ctx, r, miniPhase, attacker); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Match) runBattleMiniPhase(ctx context.Context, round, miniPhase int, attacker triviador.Seat) error {
	available := attackableAreas(m.State, attacker)
	if len(available) == 0 {
		return nil // no legal target this turn; attacker's mini-phase is a no-op
	}

	m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseBattle, Round: round, MiniPhase: 1})
	m.State.SetRoundInfo(triviador.RoundInfo{MiniPhaseNum: miniPhase, ActingSeat: attacker})
	m.State.SetActiveSeat(attacker)
	m.State.SetAvailable(available)
	if m.isHuman(attacker) {
		m.State.SetCmdHint(&triviador.CmdHint{Kind: triviador.HintSelect, Available: available, TimeoutS: int(m.Timeouts.Select.Seconds())})
	} else {
		m.State.SetCmdHint(nil)
	}
	m.Hub.DrainAll([]triviador.Seat{attacker})
	if err := m.broadcast(); err != nil {
		return err
	}
	if err := m.barrier(ctx); err != nil {
		return err
	}

	target, err := m.selectArea(ctx, attacker, available)
	if err != nil {
		return err
	}
	defender := m.State.AreaOwner(target)
	m.State.RecordSelection(attacker, target)

	m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseBattle, Round: round, MiniPhase: 3})
	ri := m.State.RoundInfoSnapshot()
	ri.AttackedSeat = defender
	m.State.SetRoundInfo(ri)
	m.State.SetCmdHint(nil)
	if err := m.broadcast(); err != nil {
		return err
	}
	if err := m.barrier(ctx); err != nil {
		return err
	}

	correct, err := m.runQuestion(ctx, []triviador.Seat{attacker, defender})
	if err != nil {
		return err
	}

	captured := false
	switch {
	case correct[attacker] && !correct[defender]:
		captured = true
	case correct[attacker] && correct[defender]:
		winner, err := m.runTip(ctx, []triviador.Seat{attacker, defender})
		if err != nil {
			return err
		}
		captured = winner == attacker
	}

	if captured {
		if base, ok := m.State.Base(defender); ok && base.Country == target {
			// a won attack on a base destroys one tower; the base
			// country itself stays with the defender.
			eliminated, err := m.State.DestroyTower(defender)
			if err != nil {
				return err
			}
			if eliminated {
				m.State.EliminateSeat(defender)
			}
		} else if err := m.State.CaptureArea(attacker, target, triviador.TierT200); err != nil {
			return err
		}
	}
	m.State.ClearSelection()

	m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseBattle, Round: round, MiniPhase: 21})
	if err := m.broadcast(); err != nil {
		return err
	}
	return m.barrier(ctx)
}

// attackableAreas returns enemy-owned countries bordering attacker's
// own territory.
func attackableAreas(state *triviador.MatchState, attacker triviador.Seat) triviador.AvailableAreas {
	out := triviador.NewAvailableAreas()
	for n := range neighboursOfOwned(state, attacker) {
		owner := state.AreaOwner(n)
		if owner != 0 && owner != attacker {
			out[n] = struct{}{}
		}
	}
	return out
}
