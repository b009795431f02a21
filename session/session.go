// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the per-seat channel multiplexer: a push
// queue for outbound state documents and a command queue for inbound
// client commands, plus the ready barrier the orchestrator synchronises
// on between phase transitions (spec §4.D).
//
// The design mirrors the request/response channel pairing in go-kgp's
// proto.client (a per-connection req/resp map keyed by request id),
// generalised to a FIFO multi-item queue instead of a single
// outstanding request, since a seat's Listen channel must never drop a
// queued document.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"triviador"
)

// maxQueue bounds the outbound push queue (spec §5, "suggested: 16").
// A push that would exceed the bound is a protocol violation: the
// client isn't draining, so the seat is marked Disconnected.
const maxQueue = 16

var (
	// ErrDisconnected is returned once a seat has been torn down, by
	// backpressure, transport failure, or an expired context.
	ErrDisconnected = errors.New("session: seat disconnected")
	// ErrTimeout is returned by RecvCommand and WaitReady when their
	// deadline elapses with nothing to report.
	ErrTimeout = errors.New("session: deadline exceeded")
)

// Session is one seat's half of the multiplexer: an outbound XmlOut
// push queue and an inbound CmdIn command queue, independently
// synchronised, with no lock shared across seats.
type Session struct {
	Seat triviador.Seat
	Kind triviador.SeatKind

	mu       sync.Mutex
	outQueue []string
	outWake  chan struct{}

	cmdQueue []triviador.Command
	cmdWake  chan struct{}

	readyCh chan struct{}

	disconnected bool
}

// New creates a Session for seat. Bot seats satisfy the ready barrier
// immediately (see WaitReady) and discard every push (see PushXML),
// but still carry a Session so the orchestrator can treat every seat
// uniformly.
func New(seat triviador.Seat, kind triviador.SeatKind) *Session {
	return &Session{
		Seat:    seat,
		Kind:    kind,
		outWake: make(chan struct{}, 1),
		cmdWake: make(chan struct{}, 1),
		readyCh: make(chan struct{}, 1),
	}
}

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// PushXML enqueues a serialised state document for delivery to the
// next Listen call. Per spec §4.D this is FIFO with a single receiver
// and never drops a frame; exceeding maxQueue instead marks the seat
// Disconnected. A bot seat has no client to read its queue, so pushes
// to it are discarded.
func (s *Session) PushXML(doc string) error {
	if s.Kind == triviador.Bot {
		return nil
	}
	s.mu.Lock()
	if s.disconnected {
		s.mu.Unlock()
		return ErrDisconnected
	}
	if len(s.outQueue) >= maxQueue {
		s.disconnected = true
		s.mu.Unlock()
		return ErrDisconnected
	}
	s.outQueue = append(s.outQueue, doc)
	s.mu.Unlock()
	wake(s.outWake)
	return nil
}

// Listen blocks until a document is queued or ctx is done. It is meant
// to be called by a single held HTTP request at a time; concurrent
// callers would race over which one dequeues a given frame.
func (s *Session) Listen(ctx context.Context) (string, error) {
	for {
		s.mu.Lock()
		if len(s.outQueue) > 0 {
			doc := s.outQueue[0]
			s.outQueue = s.outQueue[1:]
			s.mu.Unlock()
			return doc, nil
		}
		disc := s.disconnected
		s.mu.Unlock()
		if disc {
			return "", ErrDisconnected
		}

		select {
		case <-ctx.Done():
			return "", ErrDisconnected
		case <-s.outWake:
		}
	}
}

// Enqueue delivers an inbound command. A Ready command coalesces with
// any already-pending Ready (spec §4.D: "a newer Ready supersedes an
// older pending Ready"); every other kind queues behind prior commands.
func (s *Session) Enqueue(cmd triviador.Command) {
	if cmd.Kind == triviador.CmdReady {
		wake(s.readyCh)
		return
	}
	s.mu.Lock()
	s.cmdQueue = append(s.cmdQueue, cmd)
	s.mu.Unlock()
	wake(s.cmdWake)
}

// Drain discards any commands queued before the current prompt. Phase
// handlers call this at the start of each prompt so that RecvCommand
// never returns a stale reply left over from an earlier mini-phase
// (spec §4.D).
func (s *Session) Drain() {
	s.mu.Lock()
	s.cmdQueue = nil
	s.mu.Unlock()
	select {
	case <-s.cmdWake:
	default:
	}
}

// RecvCommand blocks up to deadline for the next non-Ready command.
// It never returns a Ready; bar Barrier handling lives in WaitReady.
func (s *Session) RecvCommand(ctx context.Context, deadline time.Duration) (triviador.Command, error) {
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if len(s.cmdQueue) > 0 {
			cmd := s.cmdQueue[0]
			s.cmdQueue = s.cmdQueue[1:]
			s.mu.Unlock()
			return cmd, nil
		}
		disc := s.disconnected
		s.mu.Unlock()
		if disc {
			return triviador.Command{}, ErrDisconnected
		}

		select {
		case <-ctx.Done():
			return triviador.Command{}, ErrDisconnected
		case <-timer.C:
			return triviador.Command{}, ErrTimeout
		case <-s.cmdWake:
		}
	}
}

// WaitReady blocks until a Ready command arrives, up to deadline. Bot
// seats satisfy the barrier immediately without touching readyCh.
func (s *Session) WaitReady(ctx context.Context, deadline time.Duration) error {
	if s.Kind == triviador.Bot {
		return nil
	}

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ErrDisconnected
	case <-timer.C:
		return ErrTimeout
	}
}

// MarkDisconnected tears the session down: pending and future Listen
// and RecvCommand calls return ErrDisconnected once their queue is
// empty; items queued before the teardown are still returned first.
func (s *Session) MarkDisconnected() {
	s.mu.Lock()
	already := s.disconnected
	s.disconnected = true
	s.mu.Unlock()
	if !already {
		wake(s.outWake)
		wake(s.cmdWake)
	}
}

// Disconnected reports whether the seat has been torn down.
func (s *Session) Disconnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnected
}
