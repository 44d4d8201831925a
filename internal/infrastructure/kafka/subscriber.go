package kafka

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/segmentio/kafka-go"
)

type KafkaSubscriber struct {
	brokers []string
}

func NewKafkaSubscriber(brokers []string) *KafkaSubscriber {
	return &KafkaSubscriber{brokers: brokers}
}

// Subscribe streams the messages of topic until ctx is done. The channel is
// closed when reading stops.
func (k *KafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, <-chan error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	out := make(chan domain.Message)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		defer reader.Close()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					errc <- err
				}
				return
			}
			select {
			case out <- domain.Message{Key: m.Key, Value: m.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc
}
