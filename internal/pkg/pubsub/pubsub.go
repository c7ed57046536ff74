package pubsub

import (
	"context"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/kollektive-hackathon/flowkit/internal/pkg/utils"
)

// Publishable is a message that knows its topic.
type Publishable interface {
	GetEventTopicName() string
}

type Publisher interface {
	Publish(ctx context.Context, message Publishable) error
}

type Client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

var _ Publisher = (*Client)(nil)

func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("pub sub needs a project id")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "pub sub client")
	}
	log.Info().Msgf("Pub sub initialized for project %s", projectID)
	return &Client{client: client, topics: make(map[string]*pubsub.Topic)}, nil
}

func (c *Client) Subscribe(ctx context.Context, subscriptionHandler SubscriptionHandler) error {
	sub := c.client.Subscription(subscriptionHandler.SubscriptionId)
	err := sub.Receive(ctx, subscriptionHandler.Handler)
	if err != nil {
		log.Error().Err(err).Msgf("Subscriber error for sub id %s", subscriptionHandler.SubscriptionId)
	}
	return err
}

// Publish sends message to its topic and waits until the server acknowledged it.
func (c *Client) Publish(ctx context.Context, message Publishable) error {
	t, err := c.getTopic(ctx, message.GetEventTopicName())
	if err != nil {
		return err
	}

	result := t.Publish(ctx, &pubsub.Message{Data: encodeMessage(message)})
	if _, err := result.Get(ctx); err != nil {
		log.Warn().Err(err).Msgf("Failed to publish message for %s", message.GetEventTopicName())
		return errors.Wrapf(err, "publish to %s", message.GetEventTopicName())
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	for _, t := range c.topics {
		t.Stop()
	}
	c.mu.Unlock()
	return c.client.Close()
}

func (c *Client) getTopic(ctx context.Context, topicName string) (*pubsub.Topic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.topics[topicName]; ok {
		return t, nil
	}

	t := c.client.Topic(topicName)
	exists, err := t.Exists(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "check topic %s", topicName)
	}
	if !exists {
		log.Info().Msgf("Topic %s does not exist. Creating new", topicName)
		if t, err = c.client.CreateTopic(ctx, topicName); err != nil {
			return nil, errors.Wrapf(err, "create topic %s", topicName)
		}
	}
	c.topics[topicName] = t
	return t, nil
}

func encodeMessage(message any) []byte {
	switch m := message.(type) {
	case string:
		return []byte(m)
	default:
		return utils.JsonEncode(message)
	}
}
