package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const consumerGroupPrefix = "svc-lessons."

// Transport carries events from publishers (the outbox forwarder or the event
// bus) to the router's handlers.
type Transport struct {
	Publisher     message.Publisher
	NewSubscriber func(handlerName string) (message.Subscriber, error)
}

func NewRedisTransport(rdb *redis.Client, logger watermill.LoggerAdapter) (Transport, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		return Transport{}, fmt.Errorf("creating redis publisher: %w", err)
	}

	return Transport{
		Publisher: publisher,
		NewSubscriber: func(handlerName string) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        rdb,
				ConsumerGroup: consumerGroupPrefix + handlerName,
			}, logger)
		},
	}, nil
}

// NewGoChannelTransport keeps events inside the process. Events published
// while no handler is subscribed are dropped.
func NewGoChannelTransport(logger watermill.LoggerAdapter) Transport {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)

	return Transport{
		Publisher: pubSub,
		NewSubscriber: func(string) (message.Subscriber, error) {
			return pubSub, nil
		},
	}
}
