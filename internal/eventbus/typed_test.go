package eventbus

import "testing"

type progress struct {
	step  int
	label string
}

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[progress]()
	ch := bus.Subscribe()
	bus.Publish(progress{step: 1, label: "built"})
	v := <-ch
	if v.step != 1 || v.label != "built" {
		t.Fatalf("unexpected event %+v", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after Unsubscribe")
	}
}

func TestTypedBusFanOut(t *testing.T) {
	bus := NewTyped[int]()
	a, b := bus.Subscribe(), bus.Subscribe()
	bus.Publish(7)
	if <-a != 7 || <-b != 7 {
		t.Fatalf("event not delivered to every subscriber")
	}
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTypedSize[int](2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if got := bus.Dropped(); got != 3 {
		t.Fatalf("expected 3 dropped, got %d", got)
	}
	if <-ch != 0 || <-ch != 1 {
		t.Fatalf("expected the first events to be kept")
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Publish(1)
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("expected subscription to closed bus to be closed")
	}
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
