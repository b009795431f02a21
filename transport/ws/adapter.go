// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ws supplies one concrete, optional realisation of the
// abstract session boundary (spec §6) over a WebSocket connection. It
// is not the only way to satisfy that boundary, and the engine never
// imports it — it only ever talks to *session.Session.
package ws

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"triviador"
	"triviador/codec"
	"triviador/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Adapter pumps a *session.Session's outbound documents and inbound
// commands over a single WebSocket connection.
type Adapter struct {
	Hub *session.Hub
	Log *log.Logger
}

// New creates an Adapter bound to hub. A nil logger falls back to
// log.Default.
func New(hub *session.Hub, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{Hub: hub, Log: logger}
}

// Handler upgrades an HTTP request to a WebSocket and serves the seat
// named by the "seat" query parameter (1, 2 or 3) until the connection
// closes. One goroutine pumps outbound documents, the calling
// goroutine pumps inbound commands; both tear the seat down on error.
func (a *Adapter) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seatNum, err := strconv.Atoi(r.URL.Query().Get("seat"))
		if err != nil || seatNum < 1 || seatNum > 3 {
			http.Error(w, "missing or invalid seat", http.StatusBadRequest)
			return
		}
		seat := triviador.Seat(seatNum)

		sess, ok := a.Hub.Sessions[seat]
		if !ok {
			http.Error(w, "unknown seat", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.Log.Printf("ws: upgrade failed for seat %s: %s", seat, err)
			return
		}
		a.Log.Printf("ws: seat %s connected from %s", seat, r.RemoteAddr)

		a.serve(conn, sess)
	}
}

func (a *Adapter) serve(conn *websocket.Conn, sess *session.Session) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go a.pumpOut(ctx, conn, sess, done)
	a.pumpIn(conn, sess)
	cancel()
	<-done
}

// pumpOut relays queued outbound documents to the wire until the
// session is torn down.
func (a *Adapter) pumpOut(ctx context.Context, conn *websocket.Conn, sess *session.Session, done chan<- struct{}) {
	defer close(done)
	for {
		doc, err := sess.Listen(ctx)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(doc)); err != nil {
			sess.MarkDisconnected()
			return
		}
	}
}

// pumpIn relays inbound wire frames into the session's command queue
// until the connection errors out or closes.
func (a *Adapter) pumpIn(conn *websocket.Conn, sess *session.Session) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			sess.MarkDisconnected()
			return
		}

		cmd, err := codec.ParseCommand(string(raw))
		if err != nil {
			// Malformed: drop and keep listening, per spec §7.
			a.Log.Printf("ws: seat %s sent malformed frame: %s", sess.Seat, err)
			continue
		}
		sess.Enqueue(cmd)
	}
}
