package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Alwanly/forkauthority-polls/internal/metrics"
	"github.com/Alwanly/forkauthority-polls/internal/models"
	"github.com/Alwanly/forkauthority-polls/internal/polleditor"
	"github.com/Alwanly/forkauthority-polls/internal/viewpoll"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frames splits an event stream into its blank-line separated frames.
func frames(r io.Reader) <-chan string {
	out := make(chan string, 16)
	go func() {
		defer close(out)
		br := bufio.NewReader(r)
		var frame strings.Builder
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\n" {
				out <- frame.String()
				frame.Reset()
				continue
			}
			frame.WriteString(line)
		}
	}()
	return out
}

func nextFrame(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case f, ok := <-ch:
		require.True(t, ok, "stream ended")
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}
	return ""
}

func stateNames(t *testing.T, frame string) []string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(frame), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "event: state", lines[0])

	var payload struct {
		Status string              `json:"status"`
		Data   []models.Restaurant `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &payload))
	require.Equal(t, "content", payload.Status)

	names := make([]string, len(payload.Data))
	for i, r := range payload.Data {
		names[i] = r.Name
	}
	return names
}

func TestStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := docstore.NewMemoryStore()
	editor := polleditor.New(store)
	id, err := editor.CreatePoll(ctx, "Lunch", []string{"Tacos", "Ramen"})
	require.NoError(t, err)

	p := viewpoll.New(store, editor)
	p.SetDocumentID(id)

	clock := clockwork.NewFakeClock()
	m := metrics.New()
	s := &stream{
		presenter: p,
		clock:     clock,
		heartbeat: 10 * time.Second,
		log:       logger.NewNop(),
		metrics:   m,
	}

	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(ctx, bufio.NewWriter(pw))
		pw.Close()
	}()
	out := frames(pr)

	assert.Equal(t, ": connected\n", nextFrame(t, out))
	assert.Equal(t, []string{"Tacos", "Ramen"}, stateNames(t, nextFrame(t, out)))
	assert.True(t, p.Subscribed())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamClients))

	require.NoError(t, p.Vote(polleditor.WithVoter(ctx, "u1"), models.VoteFor, 1))
	assert.Equal(t, []string{"Ramen", "Tacos"}, stateNames(t, nextFrame(t, out)))

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(10 * time.Second)
	assert.Equal(t, ": ping\n", nextFrame(t, out))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
	assert.False(t, p.Subscribed())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StreamClients))
}

func TestStream_StopsWhenClientGoes(t *testing.T) {
	store := docstore.NewMemoryStore()
	p := viewpoll.New(store, polleditor.New(store))
	p.SetDocumentID("missing")

	clock := clockwork.NewFakeClock()
	s := &stream{presenter: p, clock: clock, heartbeat: time.Second, log: logger.NewNop()}

	pr, pw := io.Pipe()
	require.NoError(t, pr.Close())

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(context.Background(), bufio.NewWriter(pw))
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
	assert.False(t, p.Subscribed())
}
