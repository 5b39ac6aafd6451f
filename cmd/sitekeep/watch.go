package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alfredjeanlab/sitekeep/internal/events"
	"github.com/alfredjeanlab/sitekeep/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream change events from the server",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.NATSURL == "" {
			return fmt.Errorf("SITEKEEP_NATS_URL is required to watch events")
		}
		topic, _ := cmd.Flags().GetString("topic")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats: disconnected", zap.Error(err))
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		return watchEvents(ctx, sub, topic, os.Stdout)
	},
}

// watchEvents prints every message on topic until ctx is done or the
// subscription closes.
func watchEvents(ctx context.Context, sub events.Subscriber, topic string, w io.Writer) error {
	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if jsonOutput {
				fmt.Fprintf(w, `{"topic":%q,"id":%q,"data":%s}`+"\n", msg.Topic, msg.ID, compactJSON(msg.Data))
				continue
			}
			fmt.Fprintln(w, formatEvent(msg))
		}
	}
}

func compactJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		b, _ := json.Marshal(string(data))
		return string(b)
	}
	return buf.String()
}

// formatEvent renders one event as "<action> <subject>".
func formatEvent(msg events.Message) string {
	action := strings.TrimPrefix(msg.Topic, "sitekeep.")
	var subject string
	switch msg.Topic {
	case events.TopicSettingSet:
		var e events.SettingSet
		if json.Unmarshal(msg.Data, &e) == nil && e.Setting != nil {
			subject = fmt.Sprintf("%s/%s = %s", e.Setting.Domain, e.Setting.Key, e.Setting.Value)
		}
	case events.TopicSettingDeleted:
		var e events.SettingDeleted
		if json.Unmarshal(msg.Data, &e) == nil {
			subject = e.Domain + "/" + e.Key
		}
	case events.TopicContentUpserted:
		var e events.ContentUpserted
		if json.Unmarshal(msg.Data, &e) == nil && e.Content != nil {
			subject = e.Content.PageKey
		}
	case events.TopicContentDeleted:
		var e events.ContentDeleted
		if json.Unmarshal(msg.Data, &e) == nil {
			subject = e.PageKey
		}
	case events.TopicPostUpserted:
		var e events.PostUpserted
		if json.Unmarshal(msg.Data, &e) == nil && e.Post != nil {
			subject = fmt.Sprintf("%s/%s (%s)", e.Post.Domain, e.Post.Slug, e.Post.Status)
		}
	case events.TopicPostDeleted:
		var e events.PostDeleted
		if json.Unmarshal(msg.Data, &e) == nil {
			subject = fmt.Sprintf("%s/%s", e.Domain, e.Slug)
		}
	}
	if subject == "" {
		subject = ui.RenderMuted(string(msg.Data))
	}
	return ui.RenderAccent(action) + " " + subject
}

func init() {
	watchCmd.Flags().String("topic", events.TopicAll, "NATS subject to watch")
}
