// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"testing"
	"time"

	"triviador"
)

func TestPushXMLFIFONoDrop(t *testing.T) {
	s := New(triviador.Seat1, triviador.Human)
	if err := s.PushXML("a"); err != nil {
		t.Fatalf("PushXML(a): %v", err)
	}
	if err := s.PushXML("b"); err != nil {
		t.Fatalf("PushXML(b): %v", err)
	}

	ctx := context.Background()
	got, err := s.Listen(ctx)
	if err != nil || got != "a" {
		t.Fatalf("Listen() = %q, %v, want \"a\", nil", got, err)
	}
	got, err = s.Listen(ctx)
	if err != nil || got != "b" {
		t.Fatalf("Listen() = %q, %v, want \"b\", nil", got, err)
	}
}

func TestPushXMLBackpressureDisconnects(t *testing.T) {
	s := New(triviador.Seat1, triviador.Human)
	for i := 0; i < maxQueue; i++ {
		if err := s.PushXML("x"); err != nil {
			t.Fatalf("PushXML #%d: %v", i, err)
		}
	}
	if err := s.PushXML("overflow"); err != ErrDisconnected {
		t.Fatalf("PushXML past bound = %v, want ErrDisconnected", err)
	}
	if !s.Disconnected() {
		t.Fatal("session not marked disconnected after overflow")
	}
}

func TestRecvCommandTimeout(t *testing.T) {
	s := New(triviador.Seat1, triviador.Human)
	_, err := s.RecvCommand(context.Background(), 10*time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("RecvCommand() = %v, want ErrTimeout", err)
	}
}

func TestRecvCommandReturnsQueued(t *testing.T) {
	s := New(triviador.Seat1, triviador.Human)
	s.Enqueue(triviador.SelectArea(triviador.Pest))
	cmd, err := s.RecvCommand(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("RecvCommand: %v", err)
	}
	if cmd.Kind != triviador.CmdSelectArea || cmd.Country != triviador.Pest {
		t.Fatalf("RecvCommand() = %+v, want SelectArea(Pest)", cmd)
	}
}

func TestReadyCoalesces(t *testing.T) {
	s := New(triviador.Seat1, triviador.Human)
	s.Enqueue(triviador.Ready())
	s.Enqueue(triviador.Ready())

	if err := s.WaitReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	// a second wait with no further Ready must time out, proving the
	// two enqueued Readys coalesced into a single pending signal.
	if err := s.WaitReady(context.Background(), 10*time.Millisecond); err != ErrTimeout {
		t.Fatalf("WaitReady() second call = %v, want ErrTimeout", err)
	}
}

func TestBotSatisfiesReadyImmediately(t *testing.T) {
	s := New(triviador.Seat2, triviador.Bot)
	if err := s.WaitReady(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("WaitReady for bot seat: %v", err)
	}
}

func TestDrainDiscardsStaleCommands(t *testing.T) {
	s := New(triviador.Seat1, triviador.Human)
	s.Enqueue(triviador.SelectArea(triviador.Pest))
	s.Drain()
	_, err := s.RecvCommand(context.Background(), 10*time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("RecvCommand after Drain = %v, want ErrTimeout", err)
	}
}

func TestHubWaitForAllReadyTimesOutDisconnectsSeat(t *testing.T) {
	h := NewHub(map[triviador.Seat]triviador.SeatKind{
		triviador.Seat1: triviador.Human,
		triviador.Seat2: triviador.Bot,
		triviador.Seat3: triviador.Human,
	})
	h.Sessions[triviador.Seat1].Enqueue(triviador.Ready())
	// Seat3 never sends Ready.

	err := h.WaitForAllReady(context.Background(), triviador.Seats[:], 20*time.Millisecond)
	if err == nil {
		t.Fatal("WaitForAllReady() = nil, want timeout error")
	}
	if !h.Sessions[triviador.Seat3].Disconnected() {
		t.Fatal("seat3 not marked disconnected after barrier timeout")
	}
}

func TestHubSendToAllReachesEverySeat(t *testing.T) {
	h := NewHub(map[triviador.Seat]triviador.SeatKind{
		triviador.Seat1: triviador.Human,
		triviador.Seat2: triviador.Human,
		triviador.Seat3: triviador.Human,
	})
	if err := h.SendToAll(triviador.Seats[:], "frame"); err != nil {
		t.Fatalf("SendToAll: %v", err)
	}
	for _, seat := range triviador.Seats {
		got, err := h.Sessions[seat].Listen(context.Background())
		if err != nil || got != "frame" {
			t.Errorf("seat %s Listen() = %q, %v", seat, got, err)
		}
	}
}
