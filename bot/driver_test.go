// SPDX-License-Identifier: AGPL-3.0-or-later

package bot

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"triviador"
)

func TestSelectAreaAlwaysLegal(t *testing.T) {
	d := New(rand.NewSource(1), 0, time.Millisecond)
	available := triviador.NewAvailableAreas(triviador.Pest, triviador.Vas, triviador.Borsod)

	for i := 0; i < 50; i++ {
		c := d.SelectArea(context.Background(), available)
		if !available.Contains(c) {
			t.Fatalf("SelectArea() = %v, not in available set %v", c, available)
		}
	}
}

func TestAnswerQuestionInRange(t *testing.T) {
	d := New(rand.NewSource(2), 0, time.Millisecond)
	for i := 0; i < 50; i++ {
		a := d.AnswerQuestion(context.Background())
		if a < 1 || a > 4 {
			t.Fatalf("AnswerQuestion() = %d, want in 1..=4", a)
		}
	}
}

func TestAnswerTipNonNegative(t *testing.T) {
	d := New(rand.NewSource(3), 0, time.Millisecond)
	for i := 0; i < 50; i++ {
		if tip := d.AnswerTip(context.Background(), 10); tip < 0 {
			t.Fatalf("AnswerTip() = %d, want >= 0", tip)
		}
	}
}
