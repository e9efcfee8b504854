package eventbus

// Event is an arbitrary value carried on the bus.
type Event interface{}

// EventBus is a minimal publish/subscribe contract.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the untyped bus handed across module boundaries. It is a TypedBus
// carrying bare Events.
type Bus struct {
	inner TypedBus[Event]
}

// New creates an empty Bus.
func New() *Bus { return &Bus{} }

func (b *Bus) Publish(e Event)              { b.inner.Publish(e) }
func (b *Bus) Subscribe() <-chan Event      { return b.inner.Subscribe() }
func (b *Bus) Unsubscribe(sub <-chan Event) { b.inner.Unsubscribe(sub) }
func (b *Bus) Close()                       { b.inner.Close() }
