package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Alwanly/forkauthority-polls/internal/metrics"
	"github.com/Alwanly/forkauthority-polls/internal/viewpoll"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const defaultHeartbeat = 15 * time.Second

type presenter interface {
	Start(ctx context.Context)
	Stop()
	Observe(owner context.Context, fn func(viewpoll.State)) func()
}

// stream writes presenter states to one event-stream client until a write
// fails or ctx is done.
type stream struct {
	presenter presenter
	clock     clockwork.Clock
	heartbeat time.Duration
	log       *logger.CanonicalLogger
	metrics   *metrics.Metrics
}

func (s *stream) run(ctx context.Context, w *bufio.Writer) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.metrics != nil {
		s.metrics.StreamClients.Inc()
		defer s.metrics.StreamClients.Dec()
	}

	states := make(chan viewpoll.State)
	s.presenter.Observe(ctx, func(st viewpoll.State) {
		select {
		case states <- st:
		case <-ctx.Done():
		}
	})
	s.presenter.Start(ctx)
	defer s.presenter.Stop()

	heartbeat := s.heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := s.clock.NewTicker(heartbeat)
	defer ticker.Stop()

	s.log.Debug("stream opened")
	defer s.log.Debug("stream closed")

	if err := writeComment(w, "connected"); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-states:
			if err := writeEvent(w, "state", st); err != nil {
				s.log.Debug("stream write failed", zap.Error(err))
				return
			}
		case <-ticker.Chan():
			if err := writeComment(w, "ping"); err != nil {
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

func writeComment(w *bufio.Writer, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return err
	}
	return w.Flush()
}
