package eventBusTypes

import (
	"context"
	"math/big"
	"slices"
	"sync"
)

type EventName string

const (
	// Event_FollowingLoaded is published once when a watched list is first read.
	Event_FollowingLoaded EventName = "following_loaded"
	// Event_FollowingChanged is published whenever the following set root moves.
	Event_FollowingChanged EventName = "following_changed"
)

type Event struct {
	Name EventName
	Data any
}

type ConsumerId string

type Consumer struct {
	Id      ConsumerId
	Context context.Context
	Channel chan *Event
}

type ConsumerList struct {
	mu        sync.Mutex
	consumers []*Consumer
}

func NewConsumerList() *ConsumerList {
	return &ConsumerList{
		consumers: make([]*Consumer, 0),
	}
}

func (cl *ConsumerList) Add(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.consumers = append(cl.consumers, consumer)
}

func (cl *ConsumerList) Remove(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.consumers = slices.DeleteFunc(cl.consumers, func(c *Consumer) bool {
		return c.Id == consumer.Id
	})
}

func (cl *ConsumerList) GetAll() []*Consumer {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return slices.Clone(cl.consumers)
}

type IEventBus interface {
	Subscribe(consumer *Consumer)
	Unsubscribe(consumer *Consumer)
	Publish(event *Event) int
}

type FollowingChangedData struct {
	ListId  *big.Int
	Added   []string
	Removed []string
	Count   int
	Root    string
}
