// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"

	"triviador"
	"triviador/codec"
	"triviador/session"
)

// runQuestion drives the Question Handler (spec §4.E.5): a 4-option
// trivia prompt answered by one or two participants, with the result
// revealed to every seat. It reports which participants answered
// correctly; mode-specific scoring is applied by the caller.
func (m *Match) runQuestion(ctx context.Context, participants []triviador.Seat) (map[triviador.Seat]bool, error) {
	q, err := m.Trivia.NextQuestion(ctx)
	if err != nil {
		return nil, &triviador.Error{Kind: triviador.KindInternal, Reason: "question provider: " + err.Error()}
	}

	partSet := make(map[triviador.Seat]bool, len(participants))
	for _, p := range participants {
		partSet[p] = true
	}

	triple := m.State.CurrentTriple()
	triple.MiniPhase = 4
	m.State.SetTriple(triple)

	qDoc := &codec.Question{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
	err = m.pushPerSeat(func(seat triviador.Seat, doc codec.Document) codec.Document {
		doc.Question = qDoc
		if partSet[seat] && m.isHuman(seat) {
			doc.CmdHint = &codec.Hint{Kind: triviador.HintAnswer, TimeoutS: int(m.Timeouts.Answer.Seconds())}
		}
		return doc
	})
	if err != nil {
		return nil, err
	}
	m.Hub.DrainAll(participants)
	if err := m.barrier(ctx); err != nil {
		return nil, err
	}

	correct := make(map[triviador.Seat]bool, len(participants))
	for _, p := range participants {
		ans, err := m.answerQuestion(ctx, p)
		if err != nil {
			return nil, err
		}
		correct[p] = ans == q.Good
	}

	triple.MiniPhase = 5
	m.State.SetTriple(triple)
	if err := m.broadcast(); err != nil {
		return nil, err
	}
	if err := m.barrier(ctx); err != nil {
		return nil, err
	}

	triple.MiniPhase = 6
	m.State.SetTriple(triple)
	var winners []triviador.Seat
	for _, p := range participants {
		if correct[p] {
			winners = append(winners, p)
		}
	}
	err = m.pushPerSeat(func(seat triviador.Seat, doc codec.Document) codec.Document {
		doc.QuestionResult = &codec.QuestionResult{Good: q.Good, Winners: winners}
		return doc
	})
	if err != nil {
		return nil, err
	}
	if err := m.barrier(ctx); err != nil {
		return nil, err
	}

	return correct, nil
}

// answerQuestion collects one participant's answer, substituting a
// recorded non-answer (never correct) on Timeout or a malformed reply.
func (m *Match) answerQuestion(ctx context.Context, seat triviador.Seat) (int, error) {
	if m.Kinds[seat] == triviador.Bot {
		return m.Bots[seat].AnswerQuestion(ctx), nil
	}

	cmd, err := m.Hub.Sessions[seat].RecvCommand(ctx, m.Timeouts.Answer)
	if err != nil {
		if err == session.ErrDisconnected {
			return 0, &triviador.Error{Kind: triviador.KindDisconnected, Seat: seat, Reason: "answer prompt"}
		}
		return 0, nil
	}
	if cmd.Kind != triviador.CmdQuestionAnswer || cmd.Answer < 1 || cmd.Answer > 4 {
		return 0, nil
	}
	return cmd.Answer, nil
}
