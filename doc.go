// SPDX-License-Identifier: AGPL-3.0-or-later

// Package triviador implements the core of a stateful, three-seat
// territorial-trivia match server: the map and match-state model and
// the types shared by the wire codec (package codec), the session
// multiplexer, the phase handlers and the bot driver.
//
// The HTTP front-end, account storage and the trivia question bank are
// external collaborators; this package only describes the shape the
// question bank must satisfy (QuestionProvider) and the state the core
// produces for a client.
package triviador

import (
	"io"
	"log"
)

// Debug is a logger that discards output unless redirected by the
// embedding command (see config.Conf.Debug).
var Debug = log.New(io.Discard, "[debug] ", log.Ltime|log.Lshortfile|log.Lmicroseconds)
