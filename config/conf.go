// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"io"
	"log"
	"time"
)

// Internal representation, shaped exactly like the TOML file on disk.
type conf struct {
	Debug  bool `toml:"debug"`
	Server struct {
		ListenAddr string `toml:"listen_addr"`
		WebSocket  bool   `toml:"websocket"`
	} `toml:"server"`
	Match struct {
		Map           string `toml:"map"`
		SelectS       uint   `toml:"select_timeout"`
		AnswerS       uint   `toml:"answer_timeout"`
		TipS          uint   `toml:"tip_timeout"`
		BarrierS      uint   `toml:"barrier_timeout"`
		BotMinDelayMs uint   `toml:"bot_min_delay_ms"`
		BotMaxDelayMs uint   `toml:"bot_max_delay_ms"`
	} `toml:"match"`
	Trivia struct {
		Source string `toml:"source"`
	} `toml:"trivia"`
	Database struct {
		File string `toml:"file"`
	} `toml:"database"`
}

// Conf is the public configuration object threaded through every
// component once the server is wired together (component I).
type Conf struct {
	Log   *log.Logger
	Debug *log.Logger
	Ctx   context.Context
	Kill  context.CancelFunc

	// Transport configuration
	ListenAddr string // Address the WebSocket transport listens on
	WebSocket  bool   // Is the WebSocket transport enabled

	// Match configuration
	Map            string        // Country/area map to deal matches with
	SelectTimeout  time.Duration // §4.H: area/base selection deadline
	AnswerTimeout  time.Duration // §4.H: trivia answer deadline
	TipTimeout     time.Duration // §4.H: tip collection deadline
	BarrierTimeout time.Duration // §4.H: WaitForAllReady deadline
	BotMinDelay    time.Duration // simulated bot think-time, lower bound
	BotMaxDelay    time.Duration // simulated bot think-time, upper bound

	// Trivia source configuration
	TriviaSource string // name/path identifying the question provider

	// Database configuration
	Database string // File to store the observability projection in
	Store    Store

	// Internal state
	man []Manager // List of system managers
	run bool      // Running flag
}

// Configuration object used by default, before any TOML file or flag
// override is applied.
var defaultConfig = Conf{
	Log:   log.Default(),
	Debug: log.New(io.Discard, "[debug] ", log.Ltime|log.Lshortfile|log.Lmicroseconds),

	ListenAddr: ":4680",
	WebSocket:  true,

	Map:            "classic19",
	SelectTimeout:  90 * time.Second,
	AnswerTimeout:  20 * time.Second,
	TipTimeout:     15 * time.Second,
	BarrierTimeout: 120 * time.Second,
	BotMinDelay:    300 * time.Millisecond,
	BotMaxDelay:    2 * time.Second,

	TriviaSource: "",

	Database: "triviador.db",
}
