//go:build !integration

package events_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"mangopay-card-gateway/internal/domain/model"
	"mangopay-card-gateway/internal/domain/ports/adapter"
	"mangopay-card-gateway/internal/infra/adapters/events"
)

func newDispatcher() *events.Dispatcher {
	l := zerolog.Nop()
	return events.NewDispatcher(&l)
}

func TestDispatcher_Dispatch(t *testing.T) {
	d := newDispatcher()
	var seen []string

	d.Subscribe(adapter.EventRegistrationValidated, func(_ context.Context, e adapter.RegistrationEvent) {
		seen = append(seen, "first:"+e.Session.SessionID)
	})
	d.Subscribe(adapter.EventRegistrationValidated, func(_ context.Context, e adapter.RegistrationEvent) {
		seen = append(seen, "second:"+e.Session.SessionID)
	})
	d.Subscribe(adapter.EventRegistrationError, func(_ context.Context, e adapter.RegistrationEvent) {
		seen = append(seen, "error")
	})

	d.Dispatch(context.Background(), adapter.RegistrationEvent{
		Name:    adapter.EventRegistrationValidated,
		Session: &model.RegistrationSession{SessionID: "s1"},
	})

	if len(seen) != 2 {
		t.Fatalf("expected 2 listener calls, got %d", len(seen))
	}
	if seen[0] != "first:s1" || seen[1] != "second:s1" {
		t.Errorf("listeners called out of order: %v", seen)
	}
}

func TestDispatcher_RecoversListenerPanic(t *testing.T) {
	d := newDispatcher()
	called := false

	d.Subscribe(adapter.EventRegistrationError, func(context.Context, adapter.RegistrationEvent) {
		panic("listener bug")
	})
	d.Subscribe(adapter.EventRegistrationError, func(context.Context, adapter.RegistrationEvent) {
		called = true
	})

	d.Dispatch(context.Background(), adapter.RegistrationEvent{
		Name:    adapter.EventRegistrationError,
		Session: &model.RegistrationSession{SessionID: "s1"},
	})

	if !called {
		t.Error("a panicking listener must not block later listeners")
	}
}
