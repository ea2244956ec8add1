package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tenantsync/platform/logger"
)

type testEvent struct{ BaseEvent }

func (testEvent) EventName() string { return "test.event" }

type otherEvent struct{ BaseEvent }

func (otherEvent) EventName() string { return "test.other" }

func TestPublishDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var wg sync.WaitGroup
	wg.Add(2)
	handler := HandlerFunc(func(ctx context.Context, e Event) error {
		wg.Done()
		return nil
	})
	bus.Subscribe(testEvent{}.EventName(), handler)
	bus.Subscribe(testEvent{}.EventName(), handler)

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers were not invoked")
	}
}

func TestPublishSkipsOtherEventNames(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	called := make(chan struct{}, 1)
	bus.Subscribe(testEvent{}.EventName(), HandlerFunc(func(ctx context.Context, e Event) error {
		called <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), otherEvent{BaseEvent: NewBaseEvent()})

	select {
	case <-called:
		t.Fatal("handler for another event name must not run")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	failure := errors.New("handler broke")
	bus.Subscribe(testEvent{}.EventName(), HandlerFunc(func(ctx context.Context, e Event) error {
		return failure
	}))
	bus.Subscribe(testEvent{}.EventName(), HandlerFunc(func(ctx context.Context, e Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want wrapped handler error", err)
	}
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	panicked := make(chan struct{})
	bus.Subscribe(testEvent{}.EventName(), HandlerFunc(func(ctx context.Context, e Event) error {
		close(panicked)
		panic("boom")
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})

	select {
	case <-panicked:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
	// Give the recover a moment; the test fails by crashing if it escapes.
	time.Sleep(50 * time.Millisecond)
}
