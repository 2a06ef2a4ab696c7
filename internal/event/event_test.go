package event_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vectorious/lilbot/internal/event"
)

type namedEvent string

func (e namedEvent) Name() string { return string(e) }

func TestBus_PublishSubscribe(t *testing.T) {
	tests := map[string]struct {
		published []event.Event
		subs      map[string][]string // subscriber -> event names
		want      map[string][]event.Event
	}{
		"single subscriber receives only its event": {
			published: []event.Event{namedEvent("e1"), namedEvent("e2")},
			subs:      map[string][]string{"s1": {"e1"}},
			want:      map[string][]event.Event{"s1": {namedEvent("e1")}},
		},

		"every published instance is delivered": {
			published: []event.Event{namedEvent("e1"), namedEvent("e1")},
			subs:      map[string][]string{"s1": {"e1"}},
			want:      map[string][]event.Event{"s1": {namedEvent("e1"), namedEvent("e1")}},
		},

		"an event fans out to all subscribers": {
			published: []event.Event{namedEvent("e1")},
			subs:      map[string][]string{"s1": {"e1"}, "s2": {"e1"}},
			want: map[string][]event.Event{
				"s1": {namedEvent("e1")},
				"s2": {namedEvent("e1")},
			},
		},

		"subscriptions to different events are independent": {
			published: []event.Event{namedEvent("e1"), namedEvent("e2"), namedEvent("e3")},
			subs:      map[string][]string{"s1": {"e1", "e3"}, "s2": {"e2"}},
			want: map[string][]event.Event{
				"s1": {namedEvent("e1"), namedEvent("e3")},
				"s2": {namedEvent("e2")},
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var mu sync.Mutex
			received := make(map[string][]event.Event)

			b := event.NewBus()
			for sub, names := range tt.subs {
				sub := sub
				for _, n := range names {
					b.Subscribe(n, func(_ context.Context, e event.Event) error {
						mu.Lock()
						received[sub] = append(received[sub], e)
						mu.Unlock()
						return nil
					})
				}
			}

			for _, e := range tt.published {
				b.Publish(context.Background(), e)
			}
			b.Stop()

			for sub, want := range tt.want {
				assert.ElementsMatch(t, want, received[sub], "subscriber %s", sub)
			}
		})
	}
}

func TestBus_HandlerPanicDoesNotPropagate(t *testing.T) {
	b := event.NewBus()

	var delivered bool
	b.Subscribe("e1", func(context.Context, event.Event) error {
		panic("boom")
	})
	b.Subscribe("e1", func(context.Context, event.Event) error {
		delivered = true
		return nil
	})

	assert.NotPanics(t, func() {
		b.Publish(context.Background(), namedEvent("e1"))
		b.Stop()
	})
	assert.True(t, delivered, "other handlers still run")
}

func TestBus_HandlerErrorIsSwallowed(t *testing.T) {
	b := event.NewBus()
	b.Subscribe("e1", func(context.Context, event.Event) error {
		return fmt.Errorf("handler failed")
	})

	b.Publish(context.Background(), namedEvent("e1"))
	b.Stop()
}
