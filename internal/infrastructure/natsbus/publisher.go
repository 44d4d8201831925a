package natsbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/nats-io/nats.go"
)

const keyHeader = "Payment-Key"

type NatsPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("payment-relay"),
		nats.ReconnectWait(3*time.Second),
		nats.MaxReconnects(-1),
		nats.PingInterval(10*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err.Error())
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NatsPublisher{conn: conn, subject: subject}, nil
}

// Publish sends msgs on the configured subject, carrying the message key
// in a header, and waits for the server to acknowledge the batch.
func (p *NatsPublisher) Publish(ctx context.Context, msgs ...domain.Message) error {
	for _, m := range msgs {
		msg := nats.NewMsg(p.subject)
		msg.Header.Set(keyHeader, string(m.Key))
		msg.Data = m.Value
		if err := p.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("publish %s: %w", p.subject, err)
		}
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}
