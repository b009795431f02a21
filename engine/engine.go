// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine drives a single match from Setup through End: the six
// phase handlers (Base, Area-Conquest, Fill-Remaining, Battle,
// Question, Tip) and the top-level orchestrator that sequences them,
// builds war orders, and holds the ready barrier between every
// broadcast (spec §4.E/§4.F).
//
// The control-flow shape — an explicit linear sequence of phase steps,
// a dbg logger captured once at the top, goto-free early returns on
// fatal error — follows go-kgp's game.Play, generalised from a single
// two-player move loop to a three-seat multi-phase state machine.
package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"triviador"
	"triviador/codec"
	"triviador/session"
)

// Timeouts holds the wall-clock deadlines named in spec §4.H.
type Timeouts struct {
	Select  time.Duration
	Answer  time.Duration
	Tip     time.Duration
	Barrier time.Duration
}

// DefaultTimeouts returns the deadlines spec §4.H names explicitly.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Select:  90 * time.Second,
		Answer:  20 * time.Second,
		Tip:     15 * time.Second,
		Barrier: 120 * time.Second,
	}
}

// BotDriver is the subset of bot.Driver the engine depends on; kept as
// an interface so tests can supply a deterministic stand-in.
type BotDriver interface {
	SelectArea(ctx context.Context, available triviador.AvailableAreas) triviador.Country
	AnswerQuestion(ctx context.Context) int
	AnswerTip(ctx context.Context, truth int) int
}

// Recorder is the narrow slice of config.Store the engine depends on. It
// is optional: a nil Match.Recorder simply means nothing is projected
// (spec §9 observability is write-only and best-effort).
type Recorder interface {
	RecordPhase(matchID string, phase string, round, miniPhase int) error
	RecordScore(matchID string, seat int, score int) error
	RecordOutcome(matchID string, winner int, finishedUnixS int64) error
}

// Match wires one match's state, session hub, bot drivers and question
// bank together and drives it through the top-level phase sequence.
type Match struct {
	ID       string
	MapName  string
	State    *triviador.MatchState
	Hub      *session.Hub
	Kinds    map[triviador.Seat]triviador.SeatKind
	Bots     map[triviador.Seat]BotDriver
	Trivia   triviador.QuestionProvider
	Recorder Recorder
	Timeouts

	// rngMu guards rng: the Tip Handler fans out one goroutine per
	// participant (spec §5's sole concurrency hotspot), and *rand.Rand
	// is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
	log   *log.Logger
}

// New creates a Match ready to Run. log may be nil, in which case
// diagnostics are discarded.
func New(mapName string, kinds map[triviador.Seat]triviador.SeatKind, hub *session.Hub,
	bots map[triviador.Seat]BotDriver, trivia triviador.QuestionProvider,
	rng *rand.Rand, logger *log.Logger) *Match {
	if logger == nil {
		logger = triviador.Debug
	}
	return &Match{
		ID:       fmt.Sprintf("%s-%d", mapName, rng.Int63()),
		MapName:  mapName,
		State:    triviador.NewMatchState(mapName, kinds),
		Hub:      hub,
		Kinds:    kinds,
		Bots:     bots,
		Trivia:   trivia,
		Timeouts: DefaultTimeouts(),
		rng:      rng,
		log:      logger,
	}
}

// Run drives Setup → Base → AreaConquest → FillRemaining → Battle →
// End. Any handler-level fatal error aborts the match immediately.
func (m *Match) Run(ctx context.Context) error {
	dbg := m.log.Printf

	dbg("match: starting base phase")
	if err := m.runBase(ctx); err != nil {
		return err
	}

	dbg("match: starting area-conquest phase")
	if err := m.runAreaConquest(ctx); err != nil {
		return err
	}

	dbg("match: starting fill-remaining phase")
	if err := m.runFillRemaining(ctx); err != nil {
		return err
	}

	dbg("match: starting battle phase")
	if err := m.runBattle(ctx); err != nil {
		return err
	}

	dbg("match: end")
	m.State.SetTriple(triviador.Triple{Phase: triviador.PhaseEnd})
	m.State.SetCmdHint(nil)
	if err := m.broadcast(); err != nil {
		return err
	}
	if err := m.barrier(ctx); err != nil {
		return err
	}

	m.recordOutcome()
	return nil
}

func (m *Match) snapshotDoc() codec.Document {
	return codec.FromSnapshot(m.MapName, m.State.Snapshot())
}

// recordPhase best-effort projects the current phase triple (spec §9).
func (m *Match) recordPhase() {
	if m.Recorder == nil {
		return
	}
	t := m.State.CurrentTriple()
	m.Recorder.RecordPhase(m.ID, t.Phase.String(), t.Round, t.MiniPhase)
}

// recordOutcome best-effort projects each seat's final score and the
// winning seat, determined by highest score (ties keep the lowest
// seat number, an arbitrary but deterministic tie-break).
func (m *Match) recordOutcome() {
	if m.Recorder == nil {
		return
	}
	winner := triviador.Seat1
	best := -1
	for _, s := range triviador.Seats {
		score := m.State.Score(s)
		m.Recorder.RecordScore(m.ID, int(s), score)
		if score > best {
			best = score
			winner = s
		}
	}
	m.Recorder.RecordOutcome(m.ID, int(winner), time.Now().Unix())
}

// broadcast pushes the current state, identically, to every seat.
func (m *Match) broadcast() error {
	m.recordPhase()
	frame := codec.Serialize(m.snapshotDoc())
	return m.Hub.SendToAll(triviador.Seats[:], frame)
}

// pushPerSeat lets the caller vary the document per seat (used by the
// Question and Tip handlers, where only participants get a cmd_hint).
func (m *Match) pushPerSeat(build func(seat triviador.Seat, doc codec.Document) codec.Document) error {
	base := m.snapshotDoc()
	var firstErr error
	for _, s := range triviador.Seats {
		frame := codec.Serialize(build(s, base))
		if err := m.Hub.Sessions[s].PushXML(frame); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Match) barrier(ctx context.Context) error {
	return m.Hub.WaitForAllReady(ctx, triviador.Seats[:], m.Timeouts.Barrier)
}

func (m *Match) isHuman(seat triviador.Seat) bool {
	return m.Kinds[seat] == triviador.Human
}

func randomCountry(rng *rand.Rand, available triviador.AvailableAreas) triviador.Country {
	choices := available.Countries()
	if len(choices) == 0 {
		return triviador.NoCountry
	}
	return choices[rng.Intn(len(choices))]
}

// randomCountry is randomCountry with access to rng serialized by
// rngMu, safe to call from any goroutine.
func (m *Match) randomCountry(available triviador.AvailableAreas) triviador.Country {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return randomCountry(m.rng, available)
}

// newWarOrder is triviador.NewWarOrder with access to rng serialized
// by rngMu.
func (m *Match) newWarOrder(rounds int) triviador.WarOrder {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return triviador.NewWarOrder(m.rng, rounds)
}

// selectArea prompts seat for a country from available, substituting a
// uniformly random legal choice on Invalid/Timeout (spec §4.E.1/.2/.3).
func (m *Match) selectArea(ctx context.Context, seat triviador.Seat, available triviador.AvailableAreas) (triviador.Country, error) {
	if m.Kinds[seat] == triviador.Bot {
		return m.Bots[seat].SelectArea(ctx, available), nil
	}

	cmd, err := m.Hub.Sessions[seat].RecvCommand(ctx, m.Timeouts.Select)
	if err != nil {
		if err == session.ErrDisconnected {
			return triviador.NoCountry, &triviador.Error{Kind: triviador.KindDisconnected, Seat: seat, Reason: "select prompt"}
		}
		return m.randomCountry(available), nil
	}
	if cmd.Kind != triviador.CmdSelectArea || !available.Contains(cmd.Country) {
		return m.randomCountry(available), nil
	}
	return cmd.Country, nil
}

// neighboursOfOwned returns the union of neighbours of every country
// seat owns.
func neighboursOfOwned(state *triviador.MatchState, seat triviador.Seat) map[triviador.Country]struct{} {
	out := make(map[triviador.Country]struct{})
	for _, c := range state.Owned(seat) {
		for _, n := range triviador.Neighbours(c) {
			out[n] = struct{}{}
		}
	}
	return out
}
