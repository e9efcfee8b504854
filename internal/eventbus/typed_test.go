package eventbus

import "testing"

func TestTypedBusDeliversInOrder(t *testing.T) {
	bus := NewTyped[string]()
	ch := bus.Subscribe()
	bus.Publish("duty-built")
	bus.Publish("roster-published")
	if v := <-ch; v != "duty-built" {
		t.Fatalf("first event = %q", v)
	}
	if v := <-ch; v != "roster-published" {
		t.Fatalf("second event = %q", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("channel still open after unsubscribe")
	}
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.Subscribe()
	for i := 0; i < subscriberBuffer+3; i++ {
		bus.Publish(i)
	}
	if got := bus.Dropped(); got != 3 {
		t.Fatalf("dropped = %d", got)
	}
	// The buffered prefix is still delivered in order.
	for i := 0; i < subscriberBuffer; i++ {
		if v := <-ch; v != i {
			t.Fatalf("event %d = %d", i, v)
		}
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("ch1 still open")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("ch2 still open")
	}
	// Subscribe and Unsubscribe stay safe on a closed bus.
	ch3 := bus.Subscribe()
	if _, ok := <-ch3; ok {
		t.Fatalf("ch3 should be closed immediately")
	}
	bus.Unsubscribe(ch3)
}
