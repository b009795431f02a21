// SPDX-License-Identifier: AGPL-3.0-or-later

package codec

import (
	"strconv"
	"strings"

	"triviador"
)

// FormatCommand renders a Command as a single wire line, pipe-delimited
// like the document fields (spec §6's channel envelope, simplified:
// bit-exact historical framing is explicitly out of scope).
func FormatCommand(c triviador.Command) string {
	switch c.Kind {
	case triviador.CmdReady:
		return "READY"
	case triviador.CmdSelectArea:
		return "SELECT|" + strconv.Itoa(int(c.Country))
	case triviador.CmdQuestionAnswer:
		return "ANSWER|" + strconv.Itoa(c.Answer)
	case triviador.CmdTipAnswer:
		return "TIP|" + strconv.Itoa(c.Tip)
	case triviador.CmdExitRoom:
		return "EXITROOM"
	case triviador.CmdCloseGame:
		return "CLOSEGAME"
	default:
		return "UNKNOWN"
	}
}

// ParseCommand is the inverse of FormatCommand. An unrecognised verb or
// a malformed argument yields a KindMalformed *triviador.Error (spec
// §7: respond R=2 and drop without advancing state).
func ParseCommand(line string) (triviador.Command, error) {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) == 0 || parts[0] == "" {
		return triviador.Command{}, triviador.Malformed("empty command")
	}

	switch parts[0] {
	case "READY":
		return triviador.Ready(), nil
	case "SELECT":
		if len(parts) != 2 {
			return triviador.Command{}, triviador.Malformed("SELECT: wrong arity")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return triviador.Command{}, triviador.Malformed("SELECT: " + err.Error())
		}
		return triviador.SelectArea(triviador.Country(n)), nil
	case "ANSWER":
		if len(parts) != 2 {
			return triviador.Command{}, triviador.Malformed("ANSWER: wrong arity")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return triviador.Command{}, triviador.Malformed("ANSWER: " + err.Error())
		}
		return triviador.QuestionAnswer(n), nil
	case "TIP":
		if len(parts) != 2 {
			return triviador.Command{}, triviador.Malformed("TIP: wrong arity")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return triviador.Command{}, triviador.Malformed("TIP: " + err.Error())
		}
		return triviador.TipAnswer(n), nil
	case "EXITROOM":
		return triviador.Command{Kind: triviador.CmdExitRoom}, nil
	case "CLOSEGAME":
		return triviador.Command{Kind: triviador.CmdCloseGame}, nil
	default:
		return triviador.Command{}, triviador.Malformed("unknown command verb " + parts[0])
	}
}
