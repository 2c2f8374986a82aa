package bus

import (
	"errors"
	"testing"
	"time"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	done := make(chan struct{})
	_, err := b.Subscribe("test.event", func(e Event) error {
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("test.event", "tester", 123)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("handler not called")
	}
}

func TestPublishAggregatesHandlerErrors(t *testing.T) {
	b := New()
	err1 := errors.New("first")
	err2 := errors.New("second")
	_, _ = b.Subscribe("ev", func(e Event) error { return err1 })
	_, _ = b.Subscribe("ev", func(e Event) error { return err2 })

	err := b.Publish(NewEvent("ev", "tester", nil))
	if !errors.Is(err, err1) || !errors.Is(err, err2) {
		t.Fatalf("expected both errors joined, got %v", err)
	}
}

func TestPublishAsyncReturnsErrorChannel(t *testing.T) {
	b := New()
	handlerErr := errors.New("fail")
	_, err := b.Subscribe("x", func(e Event) error { return handlerErr })
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	ch := b.PublishAsync(NewEvent("x", "src", nil))
	if e := <-ch; !errors.Is(e, handlerErr) {
		t.Fatalf("expected handler error, got %v", e)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("ev", func(e Event) error { count++; return nil })
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	if err = b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsub: %v", err)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active after cancel")
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
}

func TestCancelDuringPublish(t *testing.T) {
	b := New()
	sub, err := b.Subscribe("ev", func(e Event) error { return nil })
	if err != nil {
		t.Fatalf("sub: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = b.Publish(NewEvent("ev", "src", i))
		}
	}()

	if err = sub.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	<-done
	if sub.IsActive() {
		t.Fatal("subscription active after cancel")
	}
}

func TestEventTypeIsolation(t *testing.T) {
	b := New()
	countA := 0
	countB := 0
	_, _ = b.Subscribe("a", func(e Event) error { countA++; return nil })
	_, _ = b.Subscribe("b", func(e Event) error { countB++; return nil })
	_ = b.Publish(NewEvent("a", "src", nil))
	if countA != 1 || countB != 0 {
		t.Fatalf("type isolation failed: %d %d", countA, countB)
	}
}
