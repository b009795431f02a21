// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"triviador"
	"triviador/codec"
	"triviador/session"
)

// runTip drives the Tip Handler (spec §4.E.6): participants
// concurrently submit a numeric guess; closest to the truth wins, ties
// broken by earliest reply. This is the engine's sole concurrent
// fan-out/join point (spec §5).
func (m *Match) runTip(ctx context.Context, participants []triviador.Seat) (triviador.Seat, error) {
	tq, err := m.Trivia.NextTipQuestion(ctx)
	if err != nil {
		return 0, &triviador.Error{Kind: triviador.KindInternal, Reason: "tip provider: " + err.Error()}
	}

	partSet := make(map[triviador.Seat]bool, len(participants))
	for _, p := range participants {
		partSet[p] = true
	}

	tqDoc := &codec.TipQuestion{ID: tq.ID, Prompt: tq.Prompt}
	err = m.pushPerSeat(func(seat triviador.Seat, doc codec.Document) codec.Document {
		doc.TipQuestion = tqDoc
		if partSet[seat] && m.isHuman(seat) {
			doc.CmdHint = &codec.Hint{Kind: triviador.HintTip, TimeoutS: int(m.Timeouts.Tip.Seconds())}
		}
		return doc
	})
	if err != nil {
		return 0, err
	}
	m.Hub.DrainAll(participants)
	if err := m.barrier(ctx); err != nil {
		return 0, err
	}

	replies := make([]tipReply, len(participants))
	var wg sync.WaitGroup
	for i, seat := range participants {
		wg.Add(1)
		go func(i int, seat triviador.Seat) {
			defer wg.Done()
			start := time.Now()
			v, err := m.answerTip(ctx, seat, tq.Truth)
			replies[i] = tipReply{seat: seat, value: v, elapsed: time.Since(start), err: err}
		}(i, seat)
	}
	wg.Wait()

	tips := make(map[triviador.Seat]int, len(participants))
	var best *tipReply
	for i := range replies {
		r := replies[i]
		if r.err != nil {
			return 0, r.err
		}
		tips[r.seat] = r.value
		if best == nil || closerTip(r, *best, tq.Truth) {
			best = &replies[i]
		}
	}
	winner := best.seat

	if err := m.pushPerSeat(func(seat triviador.Seat, doc codec.Document) codec.Document {
		doc.TipResult = &codec.TipResult{Truth: tq.Truth, Tips: tips, Winner: winner}
		return doc
	}); err != nil {
		return 0, err
	}
	if err := m.barrier(ctx); err != nil {
		return 0, err
	}

	return winner, nil
}

type tipReply struct {
	seat    triviador.Seat
	value   int
	elapsed time.Duration
	err     error
}

func closerTip(a, b tipReply, truth int) bool {
	da, db := abs(a.value-truth), abs(b.value-truth)
	if da != db {
		return da < db
	}
	return a.elapsed < b.elapsed
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// randomTipGuess substitutes a bot-style spread-random guess when a
// human seat times out or replies with the wrong command kind (spec
// §4.H: "substitute a default ... and continue").
func randomTipGuess(rng *rand.Rand, truth int) int {
	spread := truth/2 + 5
	delta := rng.Intn(2*spread+1) - spread
	guess := truth + delta
	if guess < 0 {
		guess = 0
	}
	return guess
}

// randomTipGuess is randomTipGuess with access to rng serialized by
// rngMu. answerTip runs as one goroutine per Tip participant (spec
// §5's sole concurrency hotspot), and *rand.Rand is not safe for
// concurrent use.
func (m *Match) randomTipGuess(truth int) int {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return randomTipGuess(m.rng, truth)
}

// answerTip collects one participant's numeric guess, substituting a
// randomised local guess on Timeout or a malformed reply (spec §4.H:
// "substitute a default ... and continue").
func (m *Match) answerTip(ctx context.Context, seat triviador.Seat, truth int) (int, error) {
	if m.Kinds[seat] == triviador.Bot {
		return m.Bots[seat].AnswerTip(ctx, truth), nil
	}

	cmd, err := m.Hub.Sessions[seat].RecvCommand(ctx, m.Timeouts.Tip)
	if err != nil {
		if err == session.ErrDisconnected {
			return 0, &triviador.Error{Kind: triviador.KindDisconnected, Seat: seat, Reason: "tip prompt"}
		}
		return m.randomTipGuess(truth), nil
	}
	if cmd.Kind != triviador.CmdTipAnswer {
		return m.randomTipGuess(truth), nil
	}
	return cmd.Tip, nil
}
