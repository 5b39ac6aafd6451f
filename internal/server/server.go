// Package server exposes the remote content store over HTTP/JSON.
package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/events"
	"github.com/alfredjeanlab/sitekeep/internal/logging"
	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/store"
)

// ContentServer serves settings, page content and posts from a store.
type ContentServer struct {
	store     store.Store
	publisher events.Publisher
	log       *zap.Logger
}

// NewContentServer returns a server backed by s. A nil publisher disables
// change events.
func NewContentServer(s store.Store, p events.Publisher, logger *zap.Logger) *ContentServer {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	return &ContentServer{store: s, publisher: p, log: logging.OrNop(logger)}
}

// publish sends a change event. Failures are logged and never reach the
// caller.
func (s *ContentServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.log.Warn("failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}

// writeStoreError maps a store or validation error to an HTTP response.
func (s *ContentServer) writeStoreError(w http.ResponseWriter, err error, what, action string) {
	var ve *model.ValidationError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	default:
		s.log.Error("store operation failed", zap.String("resource", what), zap.String("action", action), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to "+action+" "+what)
	}
}
