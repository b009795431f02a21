// SPDX-License-Identifier: AGPL-3.0-or-later

package triviador

import "fmt"

// Country is one of the 19 fixed map regions. The zero value, NoCountry,
// encodes "no response" on the wire.
type Country uint8

const (
	NoCountry Country = iota
	Pest
	Nograd
	Heves
	JaszNagykunSzolnok
	BacsKiskun
	Fejer
	KomaromEsztergom
	Borsod
	HajduBihar
	Bekes
	Csongrad
	Tolna
	Somogy
	Veszprem
	GyorMosonSopron
	SzabolcsSzatmarBereg
	Baranya
	Zala
	Vas

	countryCount = iota - 1 // number of real countries, excludes NoCountry
)

func (c Country) String() string {
	if n, ok := countryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Country(%d)", c)
}

var countryNames = map[Country]string{
	NoCountry:             "NoResponse",
	Pest:                  "Pest",
	Nograd:                "Nograd",
	Heves:                 "Heves",
	JaszNagykunSzolnok:    "JaszNagykunSzolnok",
	BacsKiskun:            "BacsKiskun",
	Fejer:                 "Fejer",
	KomaromEsztergom:      "KomaromEsztergom",
	Borsod:                "Borsod",
	HajduBihar:            "HajduBihar",
	Bekes:                 "Bekes",
	Csongrad:              "Csongrad",
	Tolna:                 "Tolna",
	Somogy:                "Somogy",
	Veszprem:              "Veszprem",
	GyorMosonSopron:       "GyorMosonSopron",
	SzabolcsSzatmarBereg:  "SzabolcsSzatmarBereg",
	Baranya:               "Baranya",
	Zala:                  "Zala",
	Vas:                   "Vas",
}

// AllCountries lists every real country (excludes NoCountry), ordered by id.
var AllCountries = func() []Country {
	cs := make([]Country, 0, countryCount)
	for c := Country(1); int(c) <= countryCount; c++ {
		cs = append(cs, c)
	}
	return cs
}()

// neighbourTable is the reference map's undirected adjacency graph.
var neighbourTable = map[Country][]Country{
	Pest:                 {Nograd, Heves, JaszNagykunSzolnok, BacsKiskun, Fejer, KomaromEsztergom},
	Nograd:               {Pest, Heves, Borsod},
	Heves:                {Pest, Nograd, Borsod, JaszNagykunSzolnok},
	JaszNagykunSzolnok:   {Pest, Heves, Borsod, HajduBihar, Bekes, Csongrad, BacsKiskun},
	BacsKiskun:           {Tolna, Somogy, Fejer, Pest, JaszNagykunSzolnok, Csongrad, Baranya},
	Fejer:                {KomaromEsztergom, Pest, BacsKiskun, Tolna, Somogy, Veszprem},
	KomaromEsztergom:     {Pest, Fejer, Veszprem, GyorMosonSopron},
	Borsod:               {SzabolcsSzatmarBereg, HajduBihar, JaszNagykunSzolnok, Heves, Nograd},
	HajduBihar:           {SzabolcsSzatmarBereg, Bekes, JaszNagykunSzolnok, Borsod},
	Bekes:                {HajduBihar, Csongrad, JaszNagykunSzolnok},
	Csongrad:             {JaszNagykunSzolnok, Bekes, BacsKiskun},
	Tolna:                {Fejer, BacsKiskun, Baranya, Somogy},
	Somogy:               {Veszprem, Fejer, Tolna, Baranya, Zala, BacsKiskun},
	Veszprem:             {GyorMosonSopron, KomaromEsztergom, Fejer, Somogy, Zala, Vas},
	GyorMosonSopron:      {KomaromEsztergom, Veszprem, Vas},
	SzabolcsSzatmarBereg: {Borsod, HajduBihar},
	Baranya:              {Tolna, BacsKiskun, Somogy},
	Zala:                 {Vas, Veszprem, Somogy},
	Vas:                  {GyorMosonSopron, Veszprem, Zala},
}

// Neighbours returns the set of countries adjacent to c. The returned
// slice is a copy; callers may mutate it freely.
func Neighbours(c Country) []Country {
	ns := neighbourTable[c]
	out := make([]Country, len(ns))
	copy(out, ns)
	return out
}

// IsNeighbour reports whether a and b share a border.
func IsNeighbour(a, b Country) bool {
	for _, n := range neighbourTable[a] {
		if n == b {
			return true
		}
	}
	return false
}
