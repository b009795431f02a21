// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store implements the optional write-through observability
// projection (spec §9): phase transitions, per-seat scores and match
// outcomes are appended to a local SQLite file for offline inspection.
// It is never read from at runtime — MatchState.Snapshot always serves
// live reads — so a missing or unreachable database degrades logging,
// not gameplay.
package store

import (
	"database/sql"
	"embed"
	"io/fs"
	"log"
	"path"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/*.sql
var sqlDir embed.FS

// DB is a SQLite-backed Store manager (component K). It satisfies
// config.Store and is registered with config.Register like any other
// manager.
type DB struct {
	log *log.Logger

	read  *sql.DB
	write *sql.DB

	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt

	stop chan struct{}
}

// Open creates or migrates the SQLite file at path and returns a
// ready-to-register DB manager.
func Open(path string, logger *log.Logger) (*DB, error) {
	if logger == nil {
		logger = log.Default()
	}

	read, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	db := &DB{
		log:      logger,
		read:     read,
		write:    write,
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		stop:     make(chan struct{}),
	}

	for _, pragma := range []string{
		"journal_mode = WAL",
		"synchronous = normal",
		"temp_store = memory",
		"foreign_keys = on",
	} {
		if _, err := db.write.Exec("PRAGMA " + pragma + ";"); err != nil {
			return nil, err
		}
	}

	if err := db.loadStatements(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) loadStatements() error {
	entries, err := sqlDir.ReadDir("sql")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sqlDir, "sql/"+entry.Name())
		if err != nil {
			return err
		}

		switch {
		case strings.HasPrefix(base, "create-"):
			if _, err := db.write.Exec(string(data)); err != nil {
				return err
			}
			db.log.Printf("store: applied schema %s", base)
		case strings.HasPrefix(base, "delete-"):
			name := strings.TrimSuffix(base, ".sql")
			db.commands[name], err = db.write.Prepare(string(data))
		default:
			name := strings.TrimSuffix(base, ".sql")
			db.commands[name], err = db.write.Prepare(string(data))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RecordPhase appends a phase-transition row (spec §9 observability).
func (db *DB) RecordPhase(matchID string, phase string, round, miniPhase int) error {
	_, err := db.commands["insert-phase"].Exec(matchID, phase, round, miniPhase)
	if err != nil {
		db.log.Print("store: RecordPhase: ", err)
	}
	return err
}

// RecordScore appends a per-seat score snapshot.
func (db *DB) RecordScore(matchID string, seat int, score int) error {
	_, err := db.commands["insert-score"].Exec(matchID, seat, score)
	if err != nil {
		db.log.Print("store: RecordScore: ", err)
	}
	return err
}

// RecordOutcome upserts the final winner and completion time for a
// finished match.
func (db *DB) RecordOutcome(matchID string, winner int, finishedUnixS int64) error {
	_, err := db.commands["insert-outcome"].Exec(matchID, winner, finishedUnixS)
	if err != nil {
		db.log.Print("store: RecordOutcome: ", err)
	}
	return err
}

// Start runs the periodic retention sweep until Shutdown is called.
func (db *DB) Start() {
	tick := time.NewTicker(24 * time.Hour)
	defer tick.Stop()
	for {
		select {
		case <-db.stop:
			return
		case <-tick.C:
			if cmd, ok := db.commands["delete-old-phases"]; ok {
				if res, err := cmd.Exec(); err != nil {
					db.log.Print("store: retention sweep: ", err)
				} else if n, err := res.RowsAffected(); err == nil {
					db.log.Printf("store: pruned %d stale phase rows", n)
				}
			}
			if _, err := db.write.Exec("PRAGMA optimize;"); err != nil {
				db.log.Print("store: optimize: ", err)
			}
		}
	}
}

// Shutdown stops the retention sweep and closes both connections.
func (db *DB) Shutdown() {
	close(db.stop)
	if _, err := db.write.Exec("PRAGMA optimize;"); err != nil {
		db.log.Print("store: optimize on shutdown: ", err)
	}
	if err := db.write.Close(); err != nil {
		db.log.Print("store: close write: ", err)
	}
	if err := db.read.Close(); err != nil {
		db.log.Print("store: close read: ", err)
	}
}

func (*DB) String() string { return "observability projection" }
