// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Parse a configuration from r, layered on top of the built-in
// defaults so a TOML file only needs to mention the fields it wants
// to override.
func load(r io.Reader) (*Conf, error) {
	var data conf
	md, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return nil, err
	}

	c := defaultConfig

	if data.Debug {
		c.Debug.SetOutput(os.Stderr)
	}
	if data.Server.ListenAddr != "" {
		c.ListenAddr = data.Server.ListenAddr
	}
	if md.IsDefined("server", "websocket") {
		c.WebSocket = data.Server.WebSocket
	}
	if data.Match.Map != "" {
		c.Map = data.Match.Map
	}
	if data.Match.SelectS > 0 {
		c.SelectTimeout = time.Duration(data.Match.SelectS) * time.Second
	}
	if data.Match.AnswerS > 0 {
		c.AnswerTimeout = time.Duration(data.Match.AnswerS) * time.Second
	}
	if data.Match.TipS > 0 {
		c.TipTimeout = time.Duration(data.Match.TipS) * time.Second
	}
	if data.Match.BarrierS > 0 {
		c.BarrierTimeout = time.Duration(data.Match.BarrierS) * time.Second
	}
	if data.Match.BotMinDelayMs > 0 {
		c.BotMinDelay = time.Duration(data.Match.BotMinDelayMs) * time.Millisecond
	}
	if data.Match.BotMaxDelayMs > 0 {
		c.BotMaxDelay = time.Duration(data.Match.BotMaxDelayMs) * time.Millisecond
	}
	if data.Trivia.Source != "" {
		c.TriviaSource = data.Trivia.Source
	}
	if data.Database.File != "" {
		c.Database = data.Database.File
	}

	return &c, nil
}

// Load reads the TOML configuration file at path, falling back to the
// built-in defaults if path is empty or does not exist.
func Load(path string) (c *Conf, err error) {
	if path == "" {
		cp := defaultConfig
		c = &cp
	} else {
		file, ferr := os.Open(path)
		if ferr != nil {
			if os.IsNotExist(ferr) {
				cp := defaultConfig
				c = &cp
			} else {
				return nil, ferr
			}
		} else {
			defer file.Close()
			c, err = load(file)
			if err != nil {
				return nil, err
			}
		}
	}

	c.Ctx, c.Kill = context.WithCancel(context.Background())
	return c, nil
}

// Dump serialises the configuration into wr in the same shape Load
// expects to read back.
func (c *Conf) Dump(wr io.Writer) error {
	var data conf

	data.Debug = c.Debug.Writer() != io.Discard
	data.Server.ListenAddr = c.ListenAddr
	data.Server.WebSocket = c.WebSocket
	data.Match.Map = c.Map
	data.Match.SelectS = uint(c.SelectTimeout / time.Second)
	data.Match.AnswerS = uint(c.AnswerTimeout / time.Second)
	data.Match.TipS = uint(c.TipTimeout / time.Second)
	data.Match.BarrierS = uint(c.BarrierTimeout / time.Second)
	data.Match.BotMinDelayMs = uint(c.BotMinDelay / time.Millisecond)
	data.Match.BotMaxDelayMs = uint(c.BotMaxDelay / time.Millisecond)
	data.Trivia.Source = c.TriviaSource
	data.Database.File = c.Database

	return toml.NewEncoder(wr).Encode(data)
}
