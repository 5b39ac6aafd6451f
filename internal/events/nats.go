package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Header names set on every published message.
const (
	HeaderEventID     = "Sitekeep-Event-Id"
	HeaderPublishedAt = "Sitekeep-Published-At"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_events_published_total",
		Help: "Events published to NATS by topic and result.",
	}, []string{"topic", "result"})

	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitekeep_events_dropped_total",
		Help: "Received events dropped because the subscriber channel was full.",
	})
)

func connect(url, name string, opts []nats.Option) (*nats.Conn, error) {
	all := append([]nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}, opts...)
	nc, err := nats.Connect(url, all...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// NATSPublisher publishes JSON events on subjects named after the topic.
// Each message carries an event ID and publish time in its headers.
type NATSPublisher struct {
	conn *nats.Conn
	now  func() time.Time
}

func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	nc, err := connect(url, "sitekeep-publisher", opts)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc, now: time.Now}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", topic, err)
	}

	msg := nats.NewMsg(topic)
	msg.Header.Set(HeaderEventID, uuid.NewString())
	msg.Header.Set(HeaderPublishedAt, p.now().UTC().Format(time.RFC3339Nano))
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		publishedTotal.WithLabelValues(topic, "error").Inc()
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	publishedTotal.WithLabelValues(topic, "ok").Inc()
	return nil
}

// Flush waits until the server has processed every published message.
func (p *NATSPublisher) Flush() error {
	return p.conn.Flush()
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
