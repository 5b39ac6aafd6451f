package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers events on the returned channel. Call the returned
	// cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}

// Message is one received event. ID and PublishedAt are empty for messages
// sent without the sitekeep headers.
type Message struct {
	Topic       string
	ID          string
	PublishedAt time.Time
	Data        []byte
}

func decodeMessage(msg *nats.Msg) Message {
	m := Message{Topic: msg.Subject, Data: msg.Data}
	if msg.Header != nil {
		m.ID = msg.Header.Get(HeaderEventID)
		if ts, err := time.Parse(time.RFC3339Nano, msg.Header.Get(HeaderPublishedAt)); err == nil {
			m.PublishedAt = ts
		}
	}
	return m
}

// subscriptionBuffer is the channel capacity of one subscription. Messages
// arriving while it is full are dropped.
const subscriptionBuffer = 64

// NATSSubscriber subscribes to events from NATS subjects and reconnects
// forever.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects to NATS. Extra options (disconnect and
// reconnect handlers, for example) are applied after the defaults.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	nc, err := connect(url, "sitekeep-subscriber", opts)
	if err != nil {
		return nil, err
	}
	return &NATSSubscriber{conn: nc}, nil
}

type subscription struct {
	mu     sync.Mutex
	ch     chan Message
	closed bool
	once   sync.Once
	sub    *nats.Subscription
}

func (s *subscription) deliver(msg *nats.Msg) {
	m := decodeMessage(msg)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- m:
	default:
		droppedTotal.Inc()
	}
}

// cancel unsubscribes, discards pending messages and closes the channel.
// It is safe to call more than once.
func (s *subscription) cancel() {
	s.once.Do(func() {
		if s.sub != nil {
			_ = s.sub.Unsubscribe()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		for {
			select {
			case <-s.ch:
			default:
				close(s.ch)
				return
			}
		}
	})
}

// Subscribe returns a channel of events on topic. NATS wildcards such as
// TopicAll are supported.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan Message, func(), error) {
	sub := &subscription{ch: make(chan Message, subscriptionBuffer)}

	ns, err := s.conn.Subscribe(topic, sub.deliver)
	if err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	sub.sub = ns

	// Register the interest on the server before returning, so events
	// published right after Subscribe are not missed.
	if err := s.conn.Flush(); err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}
	return sub.ch, sub.cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
