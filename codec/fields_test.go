// SPDX-License-Identifier: AGPL-3.0-or-later

package codec

import (
	"math/rand"
	"reflect"
	"testing"

	"triviador"
)

func TestAreaRoundTrip(t *testing.T) {
	cases := []triviador.Area{
		{},
		{Owner: triviador.Seat1, Tier: triviador.TierBase, Fortress: true},
		{Owner: triviador.Seat2, Tier: triviador.TierT200, Fortress: false},
		{Owner: triviador.Seat3, Tier: triviador.TierT400, Fortress: true},
	}
	for _, a := range cases {
		got := UnpackArea(PackArea(a))
		if got != a {
			t.Errorf("PackArea/UnpackArea(%+v) round-trip = %+v", a, got)
		}
	}
}

func TestBaseRoundTrip(t *testing.T) {
	cases := []triviador.Base{
		{},
		{Country: triviador.Pest, TowersDestroyed: 0},
		{Country: triviador.Vas, TowersDestroyed: 3},
	}
	for _, b := range cases {
		got := UnpackBase(PackBase(b))
		if got != b {
			t.Errorf("PackBase/UnpackBase(%+v) round-trip = %+v", b, got)
		}
	}
}

func TestAreasRoundTrip(t *testing.T) {
	areas := make(map[triviador.Country]triviador.Area, len(triviador.AllCountries))
	for i, c := range triviador.AllCountries {
		areas[c] = triviador.Area{
			Owner:    triviador.Seat(i%3 + 1),
			Tier:     triviador.Tier(i % 5),
			Fortress: i%2 == 0,
		}
	}

	packed := PackAreas(areas)
	got, err := ParseAreas(packed)
	if err != nil {
		t.Fatalf("ParseAreas: %v", err)
	}
	if !reflect.DeepEqual(got, areas) {
		t.Errorf("areas round-trip mismatch:\n got  %+v\n want %+v", got, areas)
	}
}

func TestBasesRoundTrip(t *testing.T) {
	bases := map[triviador.Seat]triviador.Base{
		triviador.Seat1: {Country: triviador.Pest, TowersDestroyed: 1},
		triviador.Seat2: {Country: triviador.Baranya, TowersDestroyed: 2},
		triviador.Seat3: {Country: triviador.Vas, TowersDestroyed: 3},
	}
	packed := PackBases(bases)
	got, err := ParseBases(packed)
	if err != nil {
		t.Fatalf("ParseBases: %v", err)
	}
	if !reflect.DeepEqual(got, bases) {
		t.Errorf("bases round-trip mismatch:\n got  %+v\n want %+v", got, bases)
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	sel := triviador.Selection{
		triviador.Seat1: triviador.Pest,
		triviador.Seat3: triviador.Zala,
	}
	packed := PackSelection(sel)
	got, err := ParseSelection(packed)
	if err != nil {
		t.Fatalf("ParseSelection: %v", err)
	}
	if !reflect.DeepEqual(got, sel) {
		t.Errorf("selection round-trip mismatch:\n got  %+v\n want %+v", got, sel)
	}
}

func TestAvailableRoundTrip(t *testing.T) {
	avail := triviador.NewAvailableAreas(triviador.Pest, triviador.Vas, triviador.Borsod, triviador.Bekes)
	packed := PackAvailable(avail)
	if len(packed) != 6 {
		t.Fatalf("PackAvailable produced %d hex digits, want 6", len(packed))
	}
	got, err := ParseAvailable(packed)
	if err != nil {
		t.Fatalf("ParseAvailable: %v", err)
	}
	if !reflect.DeepEqual(got, avail) {
		t.Errorf("available round-trip mismatch:\n got  %+v\n want %+v", got, avail)
	}
}

func TestTripleRoundTrip(t *testing.T) {
	cases := []triviador.Triple{
		{Phase: triviador.PhaseSetup, Round: 0, MiniPhase: 0},
		{Phase: triviador.PhaseAreaConquest, Round: 5, MiniPhase: 3},
		{Phase: triviador.PhaseEnd, Round: 0, MiniPhase: 0},
	}
	for _, tr := range cases {
		got, err := ParseTriple(FormatTriple(tr))
		if err != nil {
			t.Fatalf("ParseTriple: %v", err)
		}
		if got != tr {
			t.Errorf("triple round-trip mismatch: got %+v, want %+v", got, tr)
		}
	}
}

func TestWarOrderRoundTrip(t *testing.T) {
	order := triviador.NewWarOrder(rand.New(rand.NewSource(1)), 5)
	packed := PackWarOrder(order)
	got, err := ParseWarOrder(packed)
	if err != nil {
		t.Fatalf("ParseWarOrder: %v", err)
	}
	if !reflect.DeepEqual(got, order) {
		t.Errorf("war order round-trip mismatch:\n got  %v\n want %v", got, order)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	snap := triviador.Snapshot{
		Triple:    triviador.Triple{Phase: triviador.PhaseAreaConquest, Round: 2, MiniPhase: 1},
		RoundInfo: triviador.RoundInfo{MiniPhaseNum: 4, ActingSeat: triviador.Seat2},
		Scores:    map[triviador.Seat]int{triviador.Seat1: 1000, triviador.Seat2: 1200, triviador.Seat3: 400},
		Bases: map[triviador.Seat]triviador.Base{
			triviador.Seat1: {Country: triviador.Pest},
			triviador.Seat2: {Country: triviador.Vas, TowersDestroyed: 1},
		},
		Areas:     map[triviador.Country]triviador.Area{},
		Selection: triviador.Selection{triviador.Seat2: triviador.Borsod},
		Available: triviador.NewAvailableAreas(triviador.Borsod, triviador.Bekes),
		WarOrder:  triviador.NewWarOrder(rand.New(rand.NewSource(2)), 5),
		CmdHint: &triviador.CmdHint{
			Kind:      triviador.HintSelect,
			Available: triviador.NewAvailableAreas(triviador.Borsod, triviador.Bekes),
			TimeoutS:  90,
		},
	}
	for _, c := range triviador.AllCountries {
		snap.Areas[c] = triviador.Area{}
	}

	doc := FromSnapshot("classic19", snap)
	doc.Question = &Question{ID: "q1", Prompt: "Which county?", Options: [4]string{"A", "B", "C", "D"}}

	frame := Serialize(doc)
	got, err := Parse(frame)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got.MapName != doc.MapName || got.Triple != doc.Triple {
		t.Errorf("document round-trip mismatch on map/triple: got %+v", got)
	}
	if !reflect.DeepEqual(got.Scores, doc.Scores) {
		t.Errorf("scores round-trip mismatch:\n got  %+v\n want %+v", got.Scores, doc.Scores)
	}
	if !reflect.DeepEqual(got.Question, doc.Question) {
		t.Errorf("question round-trip mismatch:\n got  %+v\n want %+v", got.Question, doc.Question)
	}
}
