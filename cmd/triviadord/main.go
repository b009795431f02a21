// SPDX-License-Identifier: AGPL-3.0-or-later

// Command triviadord wires configuration, the observability
// projection, the session hub, the WebSocket transport and the match
// engine together and runs a single match to completion.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"triviador"
	"triviador/bot"
	"triviador/config"
	"triviador/engine"
	"triviador/session"
	"triviador/store"
	"triviador/trivia"
	"triviador/transport/ws"
)

func main() {
	log.SetFlags(0)

	var configPath string
	var seats string
	var dump bool

	cmd := &cobra.Command{
		Use:           "triviadord",
		Short:         "Runs a three-seat territorial-trivia match server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			if dump {
				return c.Dump(os.Stdout)
			}

			kinds, err := parseSeats(seats)
			if err != nil {
				return err
			}

			return run(c, kinds)
		},
	}

	var fs *pflag.FlagSet = cmd.Flags()
	fs.StringVar(&configPath, "conf", "", "path to a TOML configuration file")
	fs.StringVar(&seats, "seats", "human,bot,bot",
		"comma-separated kind (human|bot) for seat 1, 2 and 3")
	fs.BoolVar(&dump, "dump-config", false, "print the effective configuration and exit")

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func parseSeats(s string) (map[triviador.Seat]triviador.SeatKind, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("--seats: expected 3 comma-separated entries, got %d", len(parts))
	}

	kinds := make(map[triviador.Seat]triviador.SeatKind, 3)
	for i, seat := range triviador.Seats {
		switch strings.ToLower(strings.TrimSpace(parts[i])) {
		case "human":
			kinds[seat] = triviador.Human
		case "bot":
			kinds[seat] = triviador.Bot
		default:
			return nil, fmt.Errorf("--seats: %q must be 'human' or 'bot'", parts[i])
		}
	}
	return kinds, nil
}

func run(c *config.Conf, kinds map[triviador.Seat]triviador.SeatKind) error {
	var db *store.DB
	if c.Database != "" {
		var err error
		db, err = store.Open(c.Database, c.Debug)
		if err != nil {
			return fmt.Errorf("opening observability projection: %w", err)
		}
		c.Register(db)
	}

	hub := session.NewHub(kinds)

	bots := make(map[triviador.Seat]engine.BotDriver, 3)
	for _, seat := range triviador.Seats {
		if kinds[seat] == triviador.Bot {
			bots[seat] = bot.New(rand.NewSource(time.Now().UnixNano()+int64(seat)), c.BotMinDelay, c.BotMaxDelay)
		}
	}

	provider := trivia.NewStatic(rand.NewSource(time.Now().UnixNano()))
	match := engine.New(c.Map, kinds, hub, bots, provider, rand.New(rand.NewSource(time.Now().UnixNano())), c.Log)
	if db != nil {
		match.Recorder = db
	}
	match.Timeouts = engine.Timeouts{
		Select:  c.SelectTimeout,
		Answer:  c.AnswerTimeout,
		Tip:     c.TipTimeout,
		Barrier: c.BarrierTimeout,
	}

	if c.WebSocket {
		adapter := ws.New(hub, c.Log)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", adapter.Handler())
		srv := &http.Server{Addr: c.ListenAddr, Handler: mux}
		c.Register(&httpManager{srv: srv, log: c.Log})
	}

	var matchErr error
	go func() {
		defer c.Kill()
		matchErr = match.Run(c.Ctx)
		if matchErr != nil {
			c.Log.Printf("match ended with error: %s", matchErr)
		} else {
			c.Log.Println("match completed")
		}
	}()

	c.Start()
	return matchErr
}

// httpManager adapts the WebSocket listener to config.Manager so it
// starts and stops alongside every other registered component.
type httpManager struct {
	srv *http.Server
	log *log.Logger
}

func (m *httpManager) String() string { return "websocket listener" }

func (m *httpManager) Start() {
	m.log.Printf("listening on %s", m.srv.Addr)
	if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		m.log.Printf("websocket listener: %s", err)
	}
}

func (m *httpManager) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.srv.Shutdown(ctx); err != nil {
		m.log.Printf("websocket shutdown: %s", err)
	}
}
