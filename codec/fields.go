// SPDX-License-Identifier: AGPL-3.0-or-later

// Package codec serialises and parses the composite match-state
// document and its hex-packed fields (spec §4.C). Every Pack/Parse pair
// round-trips for all legal values; ParseX never mutates its input.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"triviador"
)

// PackArea packs a single area into one byte: low nibble = owner,
// next 3 bits = tier code, top bit = fortress flag.
func PackArea(a triviador.Area) byte {
	var fortress byte
	if a.Fortress {
		fortress = 1
	}
	return byte(a.Owner)&0x0F | byte(a.Tier)&0x07<<4 | fortress<<7
}

// UnpackArea is the inverse of PackArea.
func UnpackArea(b byte) triviador.Area {
	return triviador.Area{
		Owner:    triviador.Seat(b & 0x0F),
		Tier:     triviador.Tier((b >> 4) & 0x07),
		Fortress: b&0x80 != 0,
	}
}

// PackAreas renders the area table as 19 two-hex-digit bytes,
// concatenated in AllCountries order.
func PackAreas(areas map[triviador.Country]triviador.Area) string {
	var b strings.Builder
	for _, c := range triviador.AllCountries {
		fmt.Fprintf(&b, "%02X", PackArea(areas[c]))
	}
	return b.String()
}

// ParseAreas is the inverse of PackAreas.
func ParseAreas(s string) (map[triviador.Country]triviador.Area, error) {
	want := len(triviador.AllCountries)
	if len(s) != want*2 {
		return nil, fmt.Errorf("codec: areas field must be %d hex digits, got %d", want*2, len(s))
	}
	out := make(map[triviador.Country]triviador.Area, want)
	for i, c := range triviador.AllCountries {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("codec: areas field byte %d: %w", i, err)
		}
		out[c] = UnpackArea(byte(v))
	}
	return out, nil
}

// PackBase packs a single base into one byte: low 6 bits = country id,
// top 2 bits = towers_destroyed.
func PackBase(b triviador.Base) byte {
	return byte(b.Country)&0x3F | b.TowersDestroyed&0x03<<6
}

// UnpackBase is the inverse of PackBase.
func UnpackBase(b byte) triviador.Base {
	return triviador.Base{
		Country:         triviador.Country(b & 0x3F),
		TowersDestroyed: (b >> 6) & 0x03,
	}
}

// PackBases renders the 3 seats' bases as 3 two-hex-digit bytes,
// positionally indexed by seat. A seat with no base yet packs as 0x00.
func PackBases(bases map[triviador.Seat]triviador.Base) string {
	var b strings.Builder
	for _, s := range triviador.Seats {
		fmt.Fprintf(&b, "%02X", PackBase(bases[s]))
	}
	return b.String()
}

// ParseBases is the inverse of PackBases.
func ParseBases(s string) (map[triviador.Seat]triviador.Base, error) {
	want := len(triviador.Seats)
	if len(s) != want*2 {
		return nil, fmt.Errorf("codec: bases field must be %d hex digits, got %d", want*2, len(s))
	}
	out := make(map[triviador.Seat]triviador.Base, want)
	for i, seat := range triviador.Seats {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("codec: bases field byte %d: %w", i, err)
		}
		base := UnpackBase(byte(v))
		if base.Country == triviador.NoCountry && base.TowersDestroyed == 0 {
			continue // seat has not picked a base yet
		}
		out[seat] = base
	}
	return out, nil
}

// PackSelection renders the per-seat mini-phase selection as 3
// two-hex-digit bytes, each a country id (0 if the seat has not chosen
// yet), positionally indexed by seat.
func PackSelection(sel triviador.Selection) string {
	var b strings.Builder
	for _, s := range triviador.Seats {
		fmt.Fprintf(&b, "%02X", byte(sel[s]))
	}
	return b.String()
}

// ParseSelection is the inverse of PackSelection.
func ParseSelection(s string) (triviador.Selection, error) {
	want := len(triviador.Seats)
	if len(s) != want*2 {
		return nil, fmt.Errorf("codec: selection field must be %d hex digits, got %d", want*2, len(s))
	}
	out := make(triviador.Selection, want)
	for i, seat := range triviador.Seats {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("codec: selection field byte %d: %w", i, err)
		}
		if c := triviador.Country(v); c != triviador.NoCountry {
			out[seat] = c
		}
	}
	return out, nil
}

// PackAvailable renders the available-areas set as a 24-bit bitmap (bit
// c-1 set iff country c is available), written as 6 uppercase hex
// digits.
func PackAvailable(a triviador.AvailableAreas) string {
	var bitmap uint32
	for c := range a {
		if c == triviador.NoCountry {
			continue
		}
		bitmap |= 1 << uint(c-1)
	}
	return fmt.Sprintf("%06X", bitmap)
}

// ParseAvailable is the inverse of PackAvailable.
func ParseAvailable(s string) (triviador.AvailableAreas, error) {
	if len(s) != 6 {
		return nil, fmt.Errorf("codec: available field must be 6 hex digits, got %d", len(s))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("codec: available field: %w", err)
	}
	out := make(triviador.AvailableAreas)
	for _, c := range triviador.AllCountries {
		if v&(1<<uint(c-1)) != 0 {
			out[c] = struct{}{}
		}
	}
	return out, nil
}

// FormatTriple renders the phase triple as decimal "s,r,p".
func FormatTriple(t triviador.Triple) string {
	return fmt.Sprintf("%d,%d,%d", t.Phase, t.Round, t.MiniPhase)
}

// ParseTriple is the inverse of FormatTriple.
func ParseTriple(s string) (triviador.Triple, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return triviador.Triple{}, fmt.Errorf("codec: phase triple must have 3 comma-separated fields, got %d", len(parts))
	}
	phase, err := strconv.Atoi(parts[0])
	if err != nil {
		return triviador.Triple{}, fmt.Errorf("codec: phase triple state: %w", err)
	}
	round, err := strconv.Atoi(parts[1])
	if err != nil {
		return triviador.Triple{}, fmt.Errorf("codec: phase triple round: %w", err)
	}
	mini, err := strconv.Atoi(parts[2])
	if err != nil {
		return triviador.Triple{}, fmt.Errorf("codec: phase triple mini_phase: %w", err)
	}
	return triviador.Triple{Phase: triviador.Phase(phase), Round: round, MiniPhase: mini}, nil
}

// PackWarOrder renders a war order as comma-joined seat numbers.
func PackWarOrder(w triviador.WarOrder) string {
	parts := make([]string, len(w))
	for i, s := range w {
		parts[i] = strconv.Itoa(int(s))
	}
	return strings.Join(parts, ",")
}

// ParseWarOrder is the inverse of PackWarOrder.
func ParseWarOrder(s string) (triviador.WarOrder, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make(triviador.WarOrder, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("codec: war order entry %d: %w", i, err)
		}
		out[i] = triviador.Seat(v)
	}
	return out, nil
}

// PackScores renders the three seats' scores as comma-joined decimal
// integers, positionally indexed by seat.
func PackScores(scores map[triviador.Seat]int) string {
	parts := make([]string, len(triviador.Seats))
	for i, s := range triviador.Seats {
		parts[i] = strconv.Itoa(scores[s])
	}
	return strings.Join(parts, ",")
}

// ParseScores is the inverse of PackScores.
func ParseScores(s string) (map[triviador.Seat]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(triviador.Seats) {
		return nil, fmt.Errorf("codec: scores field must have %d entries, got %d", len(triviador.Seats), len(parts))
	}
	out := make(map[triviador.Seat]int, len(parts))
	for i, seat := range triviador.Seats {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, fmt.Errorf("codec: score %d: %w", i, err)
		}
		out[seat] = v
	}
	return out, nil
}
