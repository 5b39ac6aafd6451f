package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = &NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicSettingSet, SettingSet{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestPublishers_ImplementPublisher(t *testing.T) {
	var _ Publisher = (*NoopPublisher)(nil)
	var _ Publisher = (*NATSPublisher)(nil)
}

// rawSubscribe subscribes with a plain NATS connection so headers can be
// inspected directly.
func rawSubscribe(t *testing.T, url, subject string) chan *nats.Msg {
	t.Helper()
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(nc.Close)

	ch := make(chan *nats.Msg, 8)
	if _, err := nc.ChanSubscribe(subject, ch); err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return ch
}

func TestNATSPublisher_PayloadAndHeaders(t *testing.T) {
	url := startTestNATS(t)
	ch := rawSubscribe(t, url, TopicAll)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	events := []struct {
		topic string
		event any
	}{
		{TopicSettingSet, SettingSet{Setting: &model.Setting{Domain: "design", Key: "theme", Value: json.RawMessage(`"dark"`)}}},
		{TopicContentUpserted, ContentUpserted{Content: &model.ContentRecord{PageKey: "home", Title: "Welcome"}}},
		{TopicPostDeleted, PostDeleted{Domain: model.PostDomainBlog, Slug: "hello"}},
	}
	for _, e := range events {
		if err := pub.Publish(context.Background(), e.topic, e.event); err != nil {
			t.Fatalf("Publish(%s): %v", e.topic, err)
		}
	}
	pub.Flush()

	ids := make(map[string]bool)
	for i, e := range events {
		select {
		case msg := <-ch:
			if msg.Subject != e.topic {
				t.Errorf("message %d: subject %q, want %q", i, msg.Subject, e.topic)
			}
			want, _ := json.Marshal(e.event)
			if string(msg.Data) != string(want) {
				t.Errorf("message %d: data %s, want %s", i, msg.Data, want)
			}
			id := msg.Header.Get(HeaderEventID)
			if id == "" || ids[id] {
				t.Errorf("message %d: missing or repeated event ID %q", i, id)
			}
			ids[id] = true
			if _, err := time.Parse(time.RFC3339Nano, msg.Header.Get(HeaderPublishedAt)); err != nil {
				t.Errorf("message %d: bad publish time header: %v", i, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	url := startTestNATS(t)
	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, TopicContentDeleted, ContentDeleted{PageKey: "home"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNATSPublisher_UnencodableEvent(t *testing.T) {
	url := startTestNATS(t)
	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(context.Background(), TopicSettingSet, make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestNATSPublisher_PublishAfterClose(t *testing.T) {
	url := startTestNATS(t)
	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.Publish(context.Background(), TopicContentDeleted, ContentDeleted{PageKey: "home"}); err == nil {
		t.Error("expected error publishing after close")
	}
}

func TestNewNATSPublisher_BadURL(t *testing.T) {
	if _, err := NewNATSPublisher("nats://127.0.0.1:1", nats.Timeout(200*time.Millisecond), nats.RetryOnFailedConnect(false)); err == nil {
		t.Fatal("expected connection error")
	}
}
