// SPDX-License-Identifier: AGPL-3.0-or-later

package codec

import (
	"fmt"
	"strconv"
	"strings"

	"triviador"
)

// Hint is the wire form of triviador.CmdHint.
type Hint struct {
	Kind      triviador.HintKind
	Available string // packed AvailableAreas, empty if Kind != HintSelect
	TimeoutS  int
}

// Question is the wire payload for an in-flight trivia prompt. The
// correct option is withheld until QuestionResult.
type Question struct {
	ID      string
	Prompt  string
	Options [4]string
}

// QuestionResult reveals the outcome of a resolved Question.
type QuestionResult struct {
	Good    int
	Winners []triviador.Seat
}

// TipQuestion is the wire payload for an in-flight numeric-tip prompt.
type TipQuestion struct {
	ID     string
	Prompt string
}

// TipResult reveals the outcome of a resolved tip contest.
type TipResult struct {
	Truth  int
	Tips   map[triviador.Seat]int
	Winner triviador.Seat
}

// Document is the composite state document described in spec §4.C: the
// match state, an optional command hint, and at most one phase-specific
// payload.
type Document struct {
	MapName string
	Triple  triviador.Triple

	RoundInfo      triviador.RoundInfo
	ConnectedSeats map[triviador.Seat]bool
	ChatEnabled    map[triviador.Seat]bool // legacy per-seat chat toggle, carried for wire compatibility only

	Scores    map[triviador.Seat]int
	Bases     map[triviador.Seat]triviador.Base
	Areas     map[triviador.Country]triviador.Area
	Selection triviador.Selection
	Available triviador.AvailableAreas

	UsedHelps     map[triviador.Seat]int // legacy help-token counters; this implementation never grants helps, always 0
	FillRound     int                     // Fill-Remaining round counter slot; FromSnapshot leaves it 0
	RoomType      int                     // legacy matchmaking room classifier, opaque to the core
	ShieldMission bool                    // legacy event-mode flag, always false outside that mode

	WarOrder triviador.WarOrder

	CmdHint *Hint

	Question       *Question
	QuestionResult *QuestionResult
	TipQuestion    *TipQuestion
	TipResult      *TipResult
}

// FromSnapshot builds the match-state portion of a Document from a
// triviador.Snapshot, including the command hint and its packed
// availability. Phase-specific payloads are filled in separately by the
// caller (the orchestrator knows which payload, if any, accompanies this
// push).
func FromSnapshot(mapName string, snap triviador.Snapshot) Document {
	conn := make(map[triviador.Seat]bool, len(triviador.Seats))
	chat := make(map[triviador.Seat]bool, len(triviador.Seats))
	helps := make(map[triviador.Seat]int, len(triviador.Seats))
	for _, s := range triviador.Seats {
		conn[s] = true
		chat[s] = true
		helps[s] = 0
	}

	doc := Document{
		MapName:        mapName,
		Triple:         snap.Triple,
		RoundInfo:      snap.RoundInfo,
		ConnectedSeats: conn,
		ChatEnabled:    chat,
		Scores:         snap.Scores,
		Bases:          snap.Bases,
		Areas:          snap.Areas,
		Selection:      snap.Selection,
		Available:      snap.Available,
		UsedHelps:      helps,
		WarOrder:       snap.WarOrder,
	}
	if snap.CmdHint != nil {
		doc.CmdHint = &Hint{
			Kind:      snap.CmdHint.Kind,
			Available: PackAvailable(snap.CmdHint.Available),
			TimeoutS:  snap.CmdHint.TimeoutS,
		}
	}
	return doc
}

func packBoolTriple(m map[triviador.Seat]bool) string {
	parts := make([]string, len(triviador.Seats))
	for i, s := range triviador.Seats {
		if m[s] {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, ",")
}

func parseBoolTriple(s string) (map[triviador.Seat]bool, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(triviador.Seats) {
		return nil, fmt.Errorf("codec: bool triple must have %d entries, got %d", len(triviador.Seats), len(parts))
	}
	out := make(map[triviador.Seat]bool, len(parts))
	for i, seat := range triviador.Seats {
		out[seat] = parts[i] == "1"
	}
	return out, nil
}

func packIntTriple(m map[triviador.Seat]int) string {
	parts := make([]string, len(triviador.Seats))
	for i, s := range triviador.Seats {
		parts[i] = strconv.Itoa(m[s])
	}
	return strings.Join(parts, ",")
}

func parseIntTriple(s string) (map[triviador.Seat]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(triviador.Seats) {
		return nil, fmt.Errorf("codec: int triple must have %d entries, got %d", len(triviador.Seats), len(parts))
	}
	out := make(map[triviador.Seat]int, len(parts))
	for i, seat := range triviador.Seats {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, fmt.Errorf("codec: int triple entry %d: %w", i, err)
		}
		out[seat] = v
	}
	return out, nil
}

// fieldCount is the number of pipe-separated fields in the serialised
// match-state line, spec §4.C(1).
const fieldCount = 15

// Serialize renders doc as the single hierarchical text frame described
// in spec §4.C: a pipe-delimited match-state line, followed by one line
// for the command hint (empty if absent), followed by one tagged line
// per present phase-specific payload.
func Serialize(doc Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s|%s|%d,%d", doc.MapName, FormatTriple(doc.Triple), doc.RoundInfo.MiniPhaseNum, doc.RoundInfo.ActingSeat)
	fmt.Fprintf(&b, ",%d", doc.RoundInfo.AttackedSeat)
	fmt.Fprintf(&b, "|%s|%s", packBoolTriple(doc.ConnectedSeats), packBoolTriple(doc.ChatEnabled))
	fmt.Fprintf(&b, "|%s|%s|%s|%s|%s",
		PackScores(doc.Scores), PackSelection(doc.Selection), PackBases(doc.Bases),
		PackAreas(doc.Areas), PackAvailable(doc.Available))
	fmt.Fprintf(&b, "|%s|%d|%d|%t|%s",
		packIntTriple(doc.UsedHelps), doc.FillRound, doc.RoomType, doc.ShieldMission, PackWarOrder(doc.WarOrder))

	b.WriteString("\n")
	if doc.CmdHint != nil {
		fmt.Fprintf(&b, "HINT|%d|%s|%d", doc.CmdHint.Kind, doc.CmdHint.Available, doc.CmdHint.TimeoutS)
	}

	switch {
	case doc.Question != nil:
		fmt.Fprintf(&b, "\nQUESTION|%s|%s|%s|%s|%s",
			doc.Question.ID, doc.Question.Prompt,
			doc.Question.Options[0], doc.Question.Options[1], doc.Question.Options[2])
		fmt.Fprintf(&b, "|%s", doc.Question.Options[3])
	case doc.QuestionResult != nil:
		winners := make([]string, len(doc.QuestionResult.Winners))
		for i, s := range doc.QuestionResult.Winners {
			winners[i] = strconv.Itoa(int(s))
		}
		fmt.Fprintf(&b, "\nQUESTIONRESULT|%d|%s", doc.QuestionResult.Good, strings.Join(winners, ","))
	case doc.TipQuestion != nil:
		fmt.Fprintf(&b, "\nTIPQUESTION|%s|%s", doc.TipQuestion.ID, doc.TipQuestion.Prompt)
	case doc.TipResult != nil:
		tips := make([]string, len(triviador.Seats))
		for i, s := range triviador.Seats {
			tips[i] = strconv.Itoa(doc.TipResult.Tips[s])
		}
		fmt.Fprintf(&b, "\nTIPRESULT|%d|%s|%d", doc.TipResult.Truth, strings.Join(tips, ","), doc.TipResult.Winner)
	}

	return b.String()
}

// Parse is the inverse of Serialize.
func Parse(frame string) (Document, error) {
	lines := strings.SplitN(frame, "\n", 3)
	if len(lines) == 0 {
		return Document{}, fmt.Errorf("codec: empty frame")
	}

	fields := strings.Split(lines[0], "|")
	if len(fields) != fieldCount {
		return Document{}, fmt.Errorf("codec: match-state line must have %d fields, got %d", fieldCount, len(fields))
	}

	triple, err := ParseTriple(fields[1])
	if err != nil {
		return Document{}, err
	}
	ri := strings.Split(fields[2], ",")
	if len(ri) != 3 {
		return Document{}, fmt.Errorf("codec: round_info must have 3 fields, got %d", len(ri))
	}
	mpn, err := strconv.Atoi(ri[0])
	if err != nil {
		return Document{}, fmt.Errorf("codec: round_info.mini_phase_num: %w", err)
	}
	acting, err := strconv.Atoi(ri[1])
	if err != nil {
		return Document{}, fmt.Errorf("codec: round_info.acting_seat: %w", err)
	}
	attacked, err := strconv.Atoi(ri[2])
	if err != nil {
		return Document{}, fmt.Errorf("codec: round_info.attacked_seat: %w", err)
	}

	conn, err := parseBoolTriple(fields[3])
	if err != nil {
		return Document{}, err
	}
	chat, err := parseBoolTriple(fields[4])
	if err != nil {
		return Document{}, err
	}
	scores, err := ParseScores(fields[5])
	if err != nil {
		return Document{}, err
	}
	sel, err := ParseSelection(fields[6])
	if err != nil {
		return Document{}, err
	}
	bases, err := ParseBases(fields[7])
	if err != nil {
		return Document{}, err
	}
	areas, err := ParseAreas(fields[8])
	if err != nil {
		return Document{}, err
	}
	avail, err := ParseAvailable(fields[9])
	if err != nil {
		return Document{}, err
	}
	helps, err := parseIntTriple(fields[10])
	if err != nil {
		return Document{}, err
	}
	fillRound, err := strconv.Atoi(fields[11])
	if err != nil {
		return Document{}, fmt.Errorf("codec: fill_round: %w", err)
	}
	roomType, err := strconv.Atoi(fields[12])
	if err != nil {
		return Document{}, fmt.Errorf("codec: room_type: %w", err)
	}
	shield, err := strconv.ParseBool(fields[13])
	if err != nil {
		return Document{}, fmt.Errorf("codec: shield_mission: %w", err)
	}
	warOrder, err := ParseWarOrder(fields[14])
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		Triple: triple,
		RoundInfo: triviador.RoundInfo{
			MiniPhaseNum: mpn,
			ActingSeat:   triviador.Seat(acting),
			AttackedSeat: triviador.Seat(attacked),
		},
		ConnectedSeats: conn,
		ChatEnabled:    chat,
		Scores:         scores,
		Selection:      sel,
		Bases:          bases,
		Areas:          areas,
		Available:      avail,
		UsedHelps:      helps,
		FillRound:      fillRound,
		RoomType:       roomType,
		ShieldMission:  shield,
		WarOrder:       warOrder,
	}
	doc.MapName = fields[0]

	if len(lines) >= 2 && lines[1] != "" {
		hf := strings.Split(lines[1], "|")
		if len(hf) != 4 || hf[0] != "HINT" {
			return Document{}, fmt.Errorf("codec: malformed hint line")
		}
		kind, err := strconv.Atoi(hf[1])
		if err != nil {
			return Document{}, fmt.Errorf("codec: hint kind: %w", err)
		}
		timeout, err := strconv.Atoi(hf[3])
		if err != nil {
			return Document{}, fmt.Errorf("codec: hint timeout: %w", err)
		}
		doc.CmdHint = &Hint{Kind: triviador.HintKind(kind), Available: hf[2], TimeoutS: timeout}
	}

	if len(lines) == 3 && lines[2] != "" {
		pf := strings.SplitN(lines[2], "|", 2)
		if len(pf) != 2 {
			return Document{}, fmt.Errorf("codec: malformed payload line")
		}
		rest := strings.Split(pf[1], "|")
		switch pf[0] {
		case "QUESTION":
			if len(rest) != 6 {
				return Document{}, fmt.Errorf("codec: QUESTION payload must have 6 fields, got %d", len(rest))
			}
			doc.Question = &Question{
				ID:      rest[0],
				Prompt:  rest[1],
				Options: [4]string{rest[2], rest[3], rest[4], rest[5]},
			}
		case "QUESTIONRESULT":
			if len(rest) != 2 {
				return Document{}, fmt.Errorf("codec: QUESTIONRESULT payload must have 2 fields, got %d", len(rest))
			}
			good, err := strconv.Atoi(rest[0])
			if err != nil {
				return Document{}, fmt.Errorf("codec: QUESTIONRESULT.good: %w", err)
			}
			var winners []triviador.Seat
			if rest[1] != "" {
				for _, w := range strings.Split(rest[1], ",") {
					v, err := strconv.Atoi(w)
					if err != nil {
						return Document{}, fmt.Errorf("codec: QUESTIONRESULT winner: %w", err)
					}
					winners = append(winners, triviador.Seat(v))
				}
			}
			doc.QuestionResult = &QuestionResult{Good: good, Winners: winners}
		case "TIPQUESTION":
			if len(rest) != 2 {
				return Document{}, fmt.Errorf("codec: TIPQUESTION payload must have 2 fields, got %d", len(rest))
			}
			doc.TipQuestion = &TipQuestion{ID: rest[0], Prompt: rest[1]}
		case "TIPRESULT":
			if len(rest) != 3 {
				return Document{}, fmt.Errorf("codec: TIPRESULT payload must have 3 fields, got %d", len(rest))
			}
			truth, err := strconv.Atoi(rest[0])
			if err != nil {
				return Document{}, fmt.Errorf("codec: TIPRESULT.truth: %w", err)
			}
			tipVals := strings.Split(rest[1], ",")
			if len(tipVals) != len(triviador.Seats) {
				return Document{}, fmt.Errorf("codec: TIPRESULT.tips must have %d entries, got %d", len(triviador.Seats), len(tipVals))
			}
			tips := make(map[triviador.Seat]int, len(triviador.Seats))
			for i, seat := range triviador.Seats {
				v, err := strconv.Atoi(tipVals[i])
				if err != nil {
					return Document{}, fmt.Errorf("codec: TIPRESULT.tips entry %d: %w", i, err)
				}
				tips[seat] = v
			}
			winner, err := strconv.Atoi(rest[2])
			if err != nil {
				return Document{}, fmt.Errorf("codec: TIPRESULT.winner: %w", err)
			}
			doc.TipResult = &TipResult{Truth: truth, Tips: tips, Winner: triviador.Seat(winner)}
		default:
			return Document{}, fmt.Errorf("codec: unknown payload tag %q", pf[0])
		}
	}

	return doc, nil
}
