// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bot synthesises seat replies for non-human seats: uniformly
// random legal area selection and randomised trivia/tip answers with a
// simulated thinking delay, so a bot seat satisfies the same recv/push
// contract a human client would (spec §4.G).
//
// Grounded on go-kgp's random agent (bot.rand), which plays the same
// Request interface as a network client but always returns
// board.Random(side) instead of reading from a connection.
package bot

import (
	"context"
	"math/rand"
	"time"

	"triviador"
)

// Driver generates a bot seat's replies. minDelay/maxDelay bound the
// simulated thinking time before an answer is produced.
type Driver struct {
	rng      *rand.Rand
	minDelay time.Duration
	maxDelay time.Duration
}

// New creates a Driver seeded from src, thinking between minDelay and
// maxDelay before every answer.
func New(src rand.Source, minDelay, maxDelay time.Duration) *Driver {
	return &Driver{rng: rand.New(src), minDelay: minDelay, maxDelay: maxDelay}
}

func (d *Driver) think(ctx context.Context) {
	span := d.maxDelay - d.minDelay
	delay := d.minDelay
	if span > 0 {
		delay += time.Duration(d.rng.Int63n(int64(span)))
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// SelectArea picks uniformly at random among the legally available
// countries. Panics if available is empty: callers must never prompt a
// bot with no legal choice (spec §4.A invariant on available sets).
func (d *Driver) SelectArea(ctx context.Context, available triviador.AvailableAreas) triviador.Country {
	d.think(ctx)
	choices := available.Countries()
	if len(choices) == 0 {
		panic("bot: SelectArea called with no available countries")
	}
	return choices[d.rng.Intn(len(choices))]
}

// AnswerQuestion returns a uniformly random option in 1..=4.
func (d *Driver) AnswerQuestion(ctx context.Context) int {
	d.think(ctx)
	return d.rng.Intn(4) + 1
}

// AnswerTip returns a plausible numeric guess centred loosely around
// truth, since a bot has no real estimate to offer; the spread is wide
// enough that bots rarely win a tip contest against an engaged human.
func (d *Driver) AnswerTip(ctx context.Context, truth int) int {
	d.think(ctx)
	spread := truth/2 + 5
	delta := d.rng.Intn(2*spread+1) - spread
	guess := truth + delta
	if guess < 0 {
		guess = 0
	}
	return guess
}
