package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversMatchingEvents(t *testing.T) {
	bus := NewBus(4)
	mine, cancelMine := bus.Subscribe(ForClient("client-a"))
	defer cancelMine()
	other, cancelOther := bus.Subscribe(ForClient("client-b"))
	defer cancelOther()

	ctx := context.Background()
	bus.Publish(ctx, Event{Name: CartUpdated, Scope: "client-a"})
	bus.Publish(ctx, Event{Name: ProductsUpdated})

	assert.Equal(t, Event{Name: CartUpdated, Scope: "client-a"}, <-mine)
	assert.Equal(t, Event{Name: ProductsUpdated}, <-mine)
	assert.Equal(t, Event{Name: ProductsUpdated}, <-other)
	assert.Len(t, other, 0)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus(1)
	ch, cancel := bus.Subscribe(nil)
	defer cancel()

	ctx := context.Background()
	bus.Publish(ctx, Event{Name: ProductsUpdated})
	bus.Publish(ctx, Event{Name: ProductsUpdated})
	assert.Len(t, ch, 1)
}

func TestCancelClosesChannel(t *testing.T) {
	bus := NewBus(1)
	ch, cancel := bus.Subscribe(nil)
	require.Equal(t, 1, bus.Subscribers())
	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers())
}

func TestCloseEndsSubscriptions(t *testing.T) {
	bus := NewBus(1)
	a, cancelA := bus.Subscribe(nil)
	b, _ := bus.Subscribe(ForClient("client-a"))

	bus.Close()
	cancelA()

	_, open := <-a
	assert.False(t, open)
	_, open = <-b
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers())

	bus.Publish(context.Background(), Event{Name: ProductsUpdated})
	late, cancelLate := bus.Subscribe(nil)
	defer cancelLate()
	_, open = <-late
	assert.False(t, open)
}

type recordingPublisher struct {
	channel  string
	payloads [][]byte
}

func (r *recordingPublisher) Publish(_ context.Context, channel string, payload any) error {
	r.channel = channel
	r.payloads = append(r.payloads, payload.([]byte))
	return nil
}

func TestRedisBridgePublishesLocallyAndRemotely(t *testing.T) {
	bus := NewBus(4)
	ch, cancel := bus.Subscribe(nil)
	defer cancel()
	pub := &recordingPublisher{}
	bridge := NewRedisBridge(bus, pub, "wb:events", "node-1", nil)

	bridge.Publish(context.Background(), Event{Name: CartUpdated, Scope: "c"})

	assert.Equal(t, Event{Name: CartUpdated, Scope: "c"}, <-ch)
	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "wb:events", pub.channel)

	var env envelope
	require.NoError(t, json.Unmarshal(pub.payloads[0], &env))
	assert.Equal(t, "node-1", env.Origin)
}

func TestRedisBridgeRelayIgnoresOwnOrigin(t *testing.T) {
	bus := NewBus(4)
	ch, cancel := bus.Subscribe(nil)
	defer cancel()
	bridge := NewRedisBridge(bus, &recordingPublisher{}, "wb:events", "node-1", nil)

	own, _ := json.Marshal(envelope{Origin: "node-1", Event: Event{Name: ProductsUpdated}})
	remote, _ := json.Marshal(envelope{Origin: "node-2", Event: Event{Name: CartUpdated, Scope: "x"}})

	ctx := context.Background()
	bridge.relay(ctx, own)
	bridge.relay(ctx, []byte("garbage"))
	bridge.relay(ctx, remote)

	assert.Equal(t, Event{Name: CartUpdated, Scope: "x"}, <-ch)
	assert.Len(t, ch, 0)
}
