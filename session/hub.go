// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"triviador"
)

// Hub groups the three seats of one match and implements the
// broadcast/barrier half of the multiplexer contract (spec §4.D):
// send_to_all and wait_for_all_ready.
type Hub struct {
	Sessions map[triviador.Seat]*Session
}

// NewHub builds a Hub from freshly created sessions for each seat kind.
func NewHub(kinds map[triviador.Seat]triviador.SeatKind) *Hub {
	sessions := make(map[triviador.Seat]*Session, len(triviador.Seats))
	for _, s := range triviador.Seats {
		sessions[s] = New(s, kinds[s])
	}
	return &Hub{Sessions: sessions}
}

// SendToAll enqueues doc to every named seat's XmlOut queue. Per spec
// §4.D this enqueues to all seats before returning even if one push
// fails, so a subsequent wait_for_all_ready observes acknowledgments
// from the same frame; the first error encountered, if any, is
// returned after every seat has been attempted.
func (h *Hub) SendToAll(seats []triviador.Seat, doc string) error {
	var firstErr error
	for _, seat := range seats {
		if err := h.Sessions[seat].PushXML(doc); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WaitForAllReady blocks until every human seat in seats has sent
// Ready, or deadline elapses for any one of them. Bot seats are
// satisfied immediately. On timeout or disconnection, the absent
// seat's Session is marked Disconnected and the first such error is
// returned (match-fatal per spec §4.D).
func (h *Hub) WaitForAllReady(ctx context.Context, seats []triviador.Seat, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, seat := range seats {
		sess := h.Sessions[seat]
		wg.Add(1)
		go func(sess *Session) {
			defer wg.Done()
			if err := sess.WaitReady(ctx, deadline); err != nil {
				sess.MarkDisconnected()
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(sess)
	}
	wg.Wait()
	return firstErr
}

// DrainAll clears stale CmdIn entries for every named seat; phase
// handlers call this before issuing a new prompt (spec §4.D/§4.E).
func (h *Hub) DrainAll(seats []triviador.Seat) {
	for _, seat := range seats {
		h.Sessions[seat].Drain()
	}
}

// Disconnect tears down every seat in the hub, used on match teardown.
func (h *Hub) Disconnect() {
	for _, sess := range h.Sessions {
		sess.MarkDisconnected()
	}
}
