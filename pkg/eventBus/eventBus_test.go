package eventBus

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereumfollowprotocol/efp-sidecar/internal/tests"
	"github.com/ethereumfollowprotocol/efp-sidecar/pkg/eventBus/eventBusTypes"
	"github.com/stretchr/testify/assert"
)

func Test_EventBus(t *testing.T) {
	l := tests.GetLogger()

	t.Run("Should deliver until the consumer unsubscribes", func(t *testing.T) {
		eb := NewEventBus(l)
		consumer := &eventBusTypes.Consumer{
			Id:      "testConsumer",
			Channel: make(chan *eventBusTypes.Event, 1000),
			Context: context.Background(),
		}

		receivedCount := atomic.Uint64{}
		wg := sync.WaitGroup{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range consumer.Channel {
				data := event.Data.(*eventBusTypes.FollowingChangedData)
				assert.Equal(t, int64(43802), data.ListId.Int64())
				if receivedCount.Add(1) == 3 {
					eb.Unsubscribe(consumer)
					return
				}
			}
		}()
		eb.Subscribe(consumer)

		for i := 0; i < 3; i++ {
			eb.Publish(&eventBusTypes.Event{
				Name: eventBusTypes.Event_FollowingChanged,
				Data: &eventBusTypes.FollowingChangedData{ListId: big.NewInt(43802)},
			})
		}
		wg.Wait()

		assert.Equal(t, uint64(3), receivedCount.Load())
		assert.Equal(t, 0, eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_FollowingChanged}))
	})
	t.Run("Should drop events for a full consumer without blocking", func(t *testing.T) {
		eb := NewEventBus(l)
		eb.Subscribe(&eventBusTypes.Consumer{Id: "full", Channel: make(chan *eventBusTypes.Event, 1)})
		eb.Subscribe(&eventBusTypes.Consumer{Id: "nil"})

		assert.Equal(t, 1, eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_FollowingLoaded}))
		assert.Equal(t, 0, eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_FollowingLoaded}))
	})
}
