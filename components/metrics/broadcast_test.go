package metrics

import (
	"context"
	"testing"
	"time"
)

func TestBroadcastHookFansOutEvents(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()

	want := RefreshEvent{Reason: "sync", At: Day(2025, time.October, 7)}
	if err := hook.DatasetRefreshed(context.Background(), want); err != nil {
		t.Fatalf("DatasetRefreshed returned error: %v", err)
	}

	select {
	case got := <-events:
		if got.Reason != want.Reason || !got.At.Equal(want.At) {
			t.Fatalf("expected %#v, got %#v", want, got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestBroadcastHookDropsWhenSubscriberFull(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()

	for i := 0; i < 20; i++ {
		if err := hook.DatasetRefreshed(context.Background(), RefreshEvent{Reason: "sync"}); err != nil {
			t.Fatalf("DatasetRefreshed returned error: %v", err)
		}
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	cancel()

	if _, ok := <-events; ok {
		t.Fatal("expected channel closed after cancel")
	}
	if err := hook.DatasetRefreshed(context.Background(), RefreshEvent{Reason: "sync"}); err != nil {
		t.Fatalf("DatasetRefreshed returned error: %v", err)
	}
}
