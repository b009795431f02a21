// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"triviador"
	"triviador/session"
)

type fakeProvider struct {
	n int
}

func (f *fakeProvider) NextQuestion(ctx context.Context) (triviador.Question, error) {
	f.n++
	return triviador.Question{
		ID:      "q",
		Prompt:  "which county?",
		Options: [4]string{"A", "B", "C", "D"},
		Good:    1 + f.n%4,
	}, nil
}

func (f *fakeProvider) NextTipQuestion(ctx context.Context) (triviador.TipQuestion, error) {
	return triviador.TipQuestion{ID: "t", Prompt: "how many?", Truth: 50}, nil
}

func allBotMatch() *Match {
	kinds := map[triviador.Seat]triviador.SeatKind{
		triviador.Seat1: triviador.Bot,
		triviador.Seat2: triviador.Bot,
		triviador.Seat3: triviador.Bot,
	}
	hub := session.NewHub(kinds)
	bots := map[triviador.Seat]BotDriver{
		triviador.Seat1: newTestBot(1),
		triviador.Seat2: newTestBot(2),
		triviador.Seat3: newTestBot(3),
	}
	m := New("classic19", kinds, hub, bots, &fakeProvider{}, rand.New(rand.NewSource(7)), nil)
	m.Timeouts = Timeouts{Select: time.Second, Answer: time.Second, Tip: time.Second, Barrier: 2 * time.Second}
	return m
}

// testBot wraps bot.Driver-equivalent behaviour without importing the
// bot package, keeping this test independent of its RNG internals.
type testBot struct {
	rng *rand.Rand
}

func newTestBot(seed int64) *testBot { return &testBot{rng: rand.New(rand.NewSource(seed))} }

func (b *testBot) SelectArea(ctx context.Context, available triviador.AvailableAreas) triviador.Country {
	choices := available.Countries()
	return choices[b.rng.Intn(len(choices))]
}

func (b *testBot) AnswerQuestion(ctx context.Context) int { return b.rng.Intn(4) + 1 }

func (b *testBot) AnswerTip(ctx context.Context, truth int) int {
	return truth + b.rng.Intn(21) - 10
}

func TestAllBotMatchRunsToCompletion(t *testing.T) {
	m := allBotMatch()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if m.State.CurrentTriple().Phase != triviador.PhaseEnd {
		t.Fatalf("match ended in phase %v, want PhaseEnd", m.State.CurrentTriple().Phase)
	}
	if err := m.State.Validate(); err != nil {
		t.Fatalf("invariants violated at end of match: %v", err)
	}
	if len(m.State.UnoccupiedCountries()) != 0 {
		t.Fatalf("%d countries still unowned at end of match", len(m.State.UnoccupiedCountries()))
	}

	total := 0
	for _, s := range triviador.Seats {
		total += m.State.Score(s)
	}
	if total <= 0 {
		t.Fatalf("total score at end of match = %d, want > 0", total)
	}
}
