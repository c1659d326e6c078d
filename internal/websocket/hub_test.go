// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/metrics"
	"github.com/tomtom215/ankibridge/internal/models"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
	goleak.VerifyTestMain(m)
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("RunWithContext = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return hub
}

func createTestClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("client channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestHub_NotifyReachesClients(t *testing.T) {
	hub := startHub(t)
	a, b := createTestClient(hub, 4), createTestClient(hub, 4)
	hub.Register <- a
	hub.Register <- b

	hub.Notify(context.Background(), models.Notification{
		Kind:    models.NotificationNoteAdded,
		Message: "Card added",
		NoteID:  42,
	})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != models.NotificationNoteAdded {
			t.Errorf("type = %q, want %q", msg.Type, models.NotificationNoteAdded)
		}
		n, ok := msg.Data.(models.Notification)
		if !ok || n.NoteID != 42 || n.Message != "Card added" {
			t.Errorf("data = %#v", msg.Data)
		}
	}
}

func TestHub_BroadcastBrowse(t *testing.T) {
	hub := startHub(t)
	c := createTestClient(hub, 4)
	hub.Register <- c

	if err := hub.BroadcastBrowse(context.Background(), "deck:x", "anki://x-callback-url/browser?search=deck%3Ax"); err != nil {
		t.Fatalf("BroadcastBrowse: %v", err)
	}
	msg := receive(t, c)
	data, ok := msg.Data.(BrowseData)
	if msg.Type != MessageTypeGUIBrowse || !ok || data.Query != "deck:x" {
		t.Errorf("msg = %#v", msg)
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := startHub(t)
	slow := createTestClient(hub, 0)
	hub.Register <- slow

	hub.BroadcastJSON("x", nil)

	deadline := time.After(2 * time.Second)
	for hub.GetClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("slow client was not dropped")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client channel should be closed")
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := createTestClient(hub, 1)
	hub.Register <- c
	hub.Unregister <- c

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send was not closed")
	}
	// Unregistering twice is harmless.
	hub.Unregister <- c
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	c := createTestClient(hub, 1)
	hub.Register <- c
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if _, ok := <-c.send; ok {
		t.Error("client channel should be closed on shutdown")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("clients = %d after shutdown", hub.GetClientCount())
	}

	// A departing client must not block once the hub is gone.
	finished := make(chan struct{})
	go func() {
		hub.unregister(c)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("unregister blocked after shutdown")
	}
}

func TestHub_FullBufferDropsAndCounts(t *testing.T) {
	hub := NewHub() // not running, so the buffer fills
	before := testutil.ToFloat64(metrics.WSMessagesDropped)

	for i := 0; i < cap(hub.broadcast)+3; i++ {
		hub.BroadcastJSON("x", i)
	}

	if got := testutil.ToFloat64(metrics.WSMessagesDropped) - before; got != 3 {
		t.Errorf("dropped = %v, want 3", got)
	}
}

func TestGetShutdownReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := getShutdownReason(ctx); r != ShutdownReasonContextCanceled {
		t.Errorf("reason = %s", r)
	}

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if r := getShutdownReason(ctx); r != ShutdownReasonContextDeadline {
		t.Errorf("reason = %s", r)
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"pong","data":null}` {
		t.Errorf("json = %s", data)
	}
}
