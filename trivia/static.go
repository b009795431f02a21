// SPDX-License-Identifier: AGPL-3.0-or-later

// Package trivia provides a minimal built-in triviador.QuestionProvider
// so the server has something to ask without a real question bank
// wired up. The bank itself is explicitly out of scope (spec's
// Non-goals) — this is scaffolding, not a content pipeline.
package trivia

import (
	"context"
	"math/rand"

	"triviador"
)

// Static cycles through a fixed, in-memory set of questions and tip
// prompts in pseudo-random order.
type Static struct {
	rng       *rand.Rand
	questions []triviador.Question
	tips      []triviador.TipQuestion
}

// NewStatic builds a Static provider from the built-in sample bank.
func NewStatic(src rand.Source) *Static {
	return &Static{
		rng:       rand.New(src),
		questions: sampleQuestions,
		tips:      sampleTips,
	}
}

func (s *Static) NextQuestion(ctx context.Context) (triviador.Question, error) {
	return s.questions[s.rng.Intn(len(s.questions))], nil
}

func (s *Static) NextTipQuestion(ctx context.Context) (triviador.TipQuestion, error) {
	return s.tips[s.rng.Intn(len(s.tips))], nil
}

var sampleQuestions = []triviador.Question{
	{ID: "q1", Prompt: "Which river is the longest in Europe?", Options: [4]string{"Danube", "Volga", "Rhine", "Elbe"}, Good: 2},
	{ID: "q2", Prompt: "What is the capital of Hungary?", Options: [4]string{"Vienna", "Bratislava", "Budapest", "Zagreb"}, Good: 3},
	{ID: "q3", Prompt: "Which sea borders Croatia?", Options: [4]string{"Adriatic", "Aegean", "Baltic", "Black"}, Good: 1},
	{ID: "q4", Prompt: "What mountain range separates Europe and Asia?", Options: [4]string{"Alps", "Carpathians", "Urals", "Pyrenees"}, Good: 3},
	{ID: "q5", Prompt: "Which country has the most neighbours in Central Europe?", Options: [4]string{"Austria", "Germany", "Poland", "Slovakia"}, Good: 2},
}

var sampleTips = []triviador.TipQuestion{
	{ID: "t1", Prompt: "How many countries border Germany?", Truth: 9},
	{ID: "t2", Prompt: "How many official languages does Switzerland have?", Truth: 4},
	{ID: "t3", Prompt: "In what year did Slovakia become independent?", Truth: 1993},
}
