// SPDX-License-Identifier: AGPL-3.0-or-later

package triviador

// CommandKind enumerates the inbound commands a seat's CmdIn channel can
// carry (spec §6, "Command kinds (inbound, enumerated)").
type CommandKind uint8

const (
	CmdLogin CommandKind = iota
	CmdChangeWaitHall
	CmdEnterLobby
	CmdAddFriendlyRoom
	CmdJoinFriendlyRoom
	CmdStartMatch
	CmdReady
	CmdSelectArea
	CmdQuestionAnswer
	CmdTipAnswer
	CmdExitRoom
	CmdCloseGame
	CmdExternalData
)

// Command is a single typed command received on a seat's CmdIn channel.
// Only the fields relevant to Kind are meaningful; the comment on each
// field names the kind that uses it.
type Command struct {
	Kind CommandKind

	Country Country // CmdSelectArea
	Answer  int     // CmdQuestionAnswer, 1..=4
	Tip     int     // CmdTipAnswer
	IDs     []int   // CmdExternalData
}

// SelectArea builds a CmdSelectArea command.
func SelectArea(c Country) Command { return Command{Kind: CmdSelectArea, Country: c} }

// QuestionAnswer builds a CmdQuestionAnswer command.
func QuestionAnswer(a int) Command { return Command{Kind: CmdQuestionAnswer, Answer: a} }

// TipAnswer builds a CmdTipAnswer command.
func TipAnswer(n int) Command { return Command{Kind: CmdTipAnswer, Tip: n} }

// Ready builds a CmdReady command.
func Ready() Command { return Command{Kind: CmdReady} }
