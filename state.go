// SPDX-License-Identifier: AGPL-3.0-or-later

package triviador

import "sync"

// Phase names the top-level state of a match (spec §3, "phase_triple").
type Phase uint8

const (
	PhaseSetup         Phase = 11
	PhaseBase          Phase = 1
	PhaseAreaConquest  Phase = 2
	PhaseFillRemaining Phase = 3
	PhaseBattle        Phase = 4
	PhaseEnd           Phase = 5
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhaseBase:
		return "Base"
	case PhaseAreaConquest:
		return "AreaConquest"
	case PhaseFillRemaining:
		return "FillRemaining"
	case PhaseBattle:
		return "Battle"
	case PhaseEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// Triple is the (state, round, mini_phase) counter mirrored on every
// state document. Mutators take the new triple by value; nothing on the
// wire path increments a raw integer in place.
type Triple struct {
	Phase     Phase
	Round     int
	MiniPhase int
}

// RoundInfo is the per-mini-phase bookkeeping pushed alongside the
// phase triple.
type RoundInfo struct {
	MiniPhaseNum int
	ActingSeat   Seat
	AttackedSeat Seat // 0 if not applicable
}

// HintKind names what the next prompt asks a seat to do.
type HintKind uint8

const (
	HintNone HintKind = iota
	HintSelect
	HintAnswer
	HintTip
)

// CmdHint tells a client what input the server expects next.
type CmdHint struct {
	Kind      HintKind
	Available AvailableAreas // only meaningful for HintSelect
	TimeoutS  int
}

// MatchState is the single in-memory authoritative document for one
// match (spec §3/§4.B; Design Notes §9 rejects any secondary mirror —
// reads always serve from this structure, guarded by mu). It is mutated
// only by the phase handlers and the orchestrator, each holding the
// exclusive write lock for the duration of one atomic transition.
type MatchState struct {
	mu sync.RWMutex

	MapName string
	Triple  Triple

	Kinds  map[Seat]SeatKind
	Scores map[Seat]int
	Bases  map[Seat]Base
	Areas  map[Country]Area

	Selection  Selection
	Available  AvailableAreas
	RoundInfo  RoundInfo
	WarOrder   WarOrder
	ActiveSeat Seat
	CmdHint    *CmdHint

	Disconnected map[Seat]bool
}

// NewMatchState creates a fresh match state for the given seat kinds.
// Every country starts Unoccupied; invariant "every country appears in
// areas exactly once" holds immediately.
func NewMatchState(mapName string, kinds map[Seat]SeatKind) *MatchState {
	areas := make(map[Country]Area, len(AllCountries))
	for _, c := range AllCountries {
		areas[c] = Area{}
	}

	k := make(map[Seat]SeatKind, 3)
	for _, s := range Seats {
		k[s] = kinds[s]
	}

	return &MatchState{
		MapName:      mapName,
		Triple:       Triple{Phase: PhaseSetup},
		Kinds:        k,
		Scores:       map[Seat]int{Seat1: 0, Seat2: 0, Seat3: 0},
		Bases:        make(map[Seat]Base, 3),
		Areas:        areas,
		Selection:    make(Selection),
		Disconnected: make(map[Seat]bool, 3),
	}
}

// Snapshot is an independent, deep-copied view of a MatchState, safe to
// hand to the wire codec without holding any lock on the original.
type Snapshot struct {
	MapName string
	Triple  Triple

	Kinds  map[Seat]SeatKind
	Scores map[Seat]int
	Bases  map[Seat]Base
	Areas  map[Country]Area

	Selection Selection
	Available AvailableAreas
	RoundInfo RoundInfo
	WarOrder  WarOrder

	ActiveSeat Seat
	CmdHint    *CmdHint
}

// Snapshot clones the state under a read lock and releases the lock
// before returning, so the codec can serialise without blocking writers.
func (m *MatchState) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	areas := make(map[Country]Area, len(m.Areas))
	for k, v := range m.Areas {
		areas[k] = v
	}
	bases := make(map[Seat]Base, len(m.Bases))
	for k, v := range m.Bases {
		bases[k] = v
	}
	scores := make(map[Seat]int, len(m.Scores))
	for k, v := range m.Scores {
		scores[k] = v
	}
	kinds := make(map[Seat]SeatKind, len(m.Kinds))
	for k, v := range m.Kinds {
		kinds[k] = v
	}

	var hint *CmdHint
	if m.CmdHint != nil {
		h := *m.CmdHint
		h.Available = m.CmdHint.Available.Clone()
		hint = &h
	}

	order := make(WarOrder, len(m.WarOrder))
	copy(order, m.WarOrder)

	return Snapshot{
		MapName:    m.MapName,
		Triple:     m.Triple,
		Kinds:      kinds,
		Scores:     scores,
		Bases:      bases,
		Areas:      areas,
		Selection:  m.Selection.Clone(),
		Available:  m.Available.Clone(),
		RoundInfo:  m.RoundInfo,
		WarOrder:   order,
		ActiveSeat: m.ActiveSeat,
		CmdHint:    hint,
	}
}

// SetTriple advances the phase triple. Transitions are always set as a
// whole value, never by incrementing a raw field on the wire path.
func (m *MatchState) SetTriple(t Triple) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Triple = t
}

// SetAvailable replaces the available-areas set for the current
// prompt. The set is cloned on entry, so the caller is free to go on
// mutating its own copy (e.g. Remove after a selection) without
// reaching into the stored state outside its lock.
func (m *MatchState) SetAvailable(a AvailableAreas) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Available = a.Clone()
}

// SetCmdHint replaces the command hint announced to the client. The
// hint's Available set, if any, is cloned on entry so the caller
// remains free to mutate its own copy afterwards.
func (m *MatchState) SetCmdHint(h *CmdHint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h != nil {
		clone := *h
		clone.Available = h.Available.Clone()
		h = &clone
	}
	m.CmdHint = h
}

// SetActiveSeat records which seat is currently being prompted.
func (m *MatchState) SetActiveSeat(s Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActiveSeat = s
}

// SetRoundInfo replaces the round_info block.
func (m *MatchState) SetRoundInfo(ri RoundInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RoundInfo = ri
}

// SetWarOrder installs the turn order for the upcoming phase.
func (m *MatchState) SetWarOrder(w WarOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarOrder = w
}

// MarkDisconnected flags a seat as gone. The orchestrator is responsible
// for tearing the match down afterwards; this only records the fact in
// Disconnected. Snapshot does not copy that map, so the wire document's
// connected-seat flags do not reflect it.
func (m *MatchState) MarkDisconnected(s Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Disconnected[s] = true
}

// ApplyBaseSelection commits seat's base pick: it must currently be
// available, and the seat must not already own a base. On success the
// country becomes Owned{seat, TierBase}, is removed from Available, and
// the seat gains 1000 points. On failure the state is left untouched.
func (m *MatchState) ApplyBaseSelection(seat Seat, c Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, already := m.Bases[seat]; already {
		return invalidMove(seat, "seat already has a base")
	}
	if !m.Available.Contains(c) {
		return invalidMove(seat, "country not available for base selection")
	}
	if !m.Areas[c].Unoccupied() {
		return invalidMove(seat, "country already owned")
	}

	m.Bases[seat] = Base{Country: c}
	m.Areas[c] = Area{Owner: seat, Tier: TierBase}
	m.Available.Remove(c)
	m.Scores[seat] += TierBase.Points()
	return nil
}

// ApplyOccupation commits seat's claim on country c at the given tier;
// c must currently be unoccupied. The seat's score increases by the
// tier's point value.
func (m *MatchState) ApplyOccupation(seat Seat, c Country, tier Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Areas[c].Unoccupied() {
		return invalidMove(seat, "country already owned")
	}

	m.Areas[c] = Area{Owner: seat, Tier: tier}
	m.Scores[seat] += tier.Points()
	return nil
}

// Base returns seat's base, if it has picked one yet.
func (m *MatchState) Base(seat Seat) (Base, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.Bases[seat]
	return b, ok
}

// CaptureArea transfers c from its current owner to attacker, setting
// the given tier and crediting attacker's score. c must currently be
// owned by a seat other than attacker; capturing an unoccupied country
// or one attacker already owns is an InvalidMove.
func (m *MatchState) CaptureArea(attacker Seat, c Country, tier Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.Areas[c]
	if cur.Owner == 0 || cur.Owner == attacker {
		return invalidMove(attacker, "country not capturable")
	}
	m.Areas[c] = Area{Owner: attacker, Tier: tier}
	m.Scores[attacker] += tier.Points()
	return nil
}

// ReleaseArea returns c to the unoccupied pool, e.g. when a conquest
// question is lost and the country returns to the available set.
func (m *MatchState) ReleaseArea(c Country) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Areas[c] = Area{}
}

// AddScore adjusts a seat's score by delta (may be negative).
func (m *MatchState) AddScore(seat Seat, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scores[seat] += delta
}

// RecordSelection stores seat's choice for the current mini-phase.
// Selection never holds more than one entry per seat: a second call for
// the same seat before ClearSelection overwrites the first.
func (m *MatchState) RecordSelection(seat Seat, c Country) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Selection[seat] = c
}

// ClearSelection empties the selection map at the end of a mini-phase.
func (m *MatchState) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Selection = make(Selection)
}

// DestroyTower records a hit on seat's base. It returns true once the
// third tower falls, at which point the caller (the Battle handler)
// must eliminate the seat via EliminateSeat.
func (m *MatchState) DestroyTower(seat Seat) (eliminated bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.Bases[seat]
	if !ok {
		return false, internalError("destroying tower of seat without a base")
	}
	b.TowersDestroyed++
	m.Bases[seat] = b
	return b.Eliminated(), nil
}

// EliminateSeat releases every area still owned by seat back to
// Unoccupied at tier T200, per spec §4.E.4 ("their remaining areas
// become unowned at tier T200").
//
// NOTE: the source is ambiguous about whether eliminated areas should
// be immediately re-claimable or seeded back in at a non-zero tier; we
// release them Unoccupied, consistent with Fill-Remaining's definition
// of "still-unowned".
func (m *MatchState) EliminateSeat(seat Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c, a := range m.Areas {
		if a.Owner == seat {
			m.Areas[c] = Area{Tier: TierT200}
		}
	}
}

// UnoccupiedCountries returns every country with no current owner.
func (m *MatchState) UnoccupiedCountries() []Country {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Country
	for _, c := range AllCountries {
		if m.Areas[c].Unoccupied() {
			out = append(out, c)
		}
	}
	return out
}

// Owned returns the countries currently owned by seat.
func (m *MatchState) Owned(seat Seat) []Country {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Country
	for _, c := range AllCountries {
		if m.Areas[c].Owner == seat {
			out = append(out, c)
		}
	}
	return out
}

// RoundInfoSnapshot returns a copy of the current round_info block.
func (m *MatchState) RoundInfoSnapshot() RoundInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RoundInfo
}

// CurrentTriple returns the current phase triple.
func (m *MatchState) CurrentTriple() Triple {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Triple
}

// AvailableSnapshot returns an independent copy of the current
// available-areas set.
func (m *MatchState) AvailableSnapshot() AvailableAreas {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Available.Clone()
}

// AreaOwner returns the current owner of c (0 if unoccupied).
func (m *MatchState) AreaOwner(c Country) Seat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Areas[c].Owner
}

// Score returns seat's current score.
func (m *MatchState) Score(seat Seat) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Scores[seat]
}

// Validate checks every invariant listed in spec §3. The engine's tests
// call it; the orchestrator does not. It never mutates the state.
func (m *MatchState) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validateLocked()
}

func (m *MatchState) validateLocked() error {
	if len(m.Areas) != len(AllCountries) {
		return internalError("area table does not cover every country exactly once")
	}
	for seat, base := range m.Bases {
		a, ok := m.Areas[base.Country]
		if !ok || a.Owner != seat || a.Tier != TierBase {
			return internalError("base/area mismatch for " + seat.String())
		}
	}
	seen := make(map[Seat]bool, len(m.Selection))
	for s := range m.Selection {
		if seen[s] {
			return internalError("duplicate selection entry for " + s.String())
		}
		seen[s] = true
	}
	if len(m.WarOrder)%3 != 0 {
		return internalError("war order length not a multiple of 3")
	}
	for i := 0; i+3 <= len(m.WarOrder); i += 3 {
		block := m.WarOrder[i : i+3]
		count := map[Seat]int{}
		for _, s := range block {
			count[s]++
		}
		for _, s := range Seats {
			if count[s] != 1 {
				return internalError("war order block does not permute all seats exactly once")
			}
		}
	}
	return nil
}
