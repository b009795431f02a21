// SPDX-License-Identifier: AGPL-3.0-or-later

package triviador

import "context"

// Question is a multi-choice trivia prompt with exactly four options.
// Good is the 1-based index of the correct option; it is never sent to
// the client ahead of the reveal.
type Question struct {
	ID      string
	Prompt  string
	Options [4]string
	Good    int
}

// TipQuestion is a numeric-tip prompt ("how many... ?"); Truth is the
// value contestants are scored against and, like Question.Good, is
// withheld from the client until the reveal.
type TipQuestion struct {
	ID     string
	Prompt string
	Truth  int
}

// QuestionProvider is the opaque external trivia bank the core consumes
// on demand. Implementations may be backed by a database, a remote
// service, or (in tests) a fixed or deterministic-random sequence.
type QuestionProvider interface {
	NextQuestion(ctx context.Context) (Question, error)
	NextTipQuestion(ctx context.Context) (TipQuestion, error)
}
