package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCanonicalLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := New(zap.New(core)).Component("viewpoll")

	log.WithPollID("poll-42").WithError(errors.New("boom")).Warn("subscription failed")
	log.WithPath("polls/poll-42").Debug("subscribed")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "viewpoll", entries[0].LoggerName)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "poll-42", fields[FieldPollID])
	assert.Equal(t, "boom", fields["error"])

	assert.Equal(t, "polls/poll-42", entries[1].ContextMap()[FieldDocumentPath])
}

func TestLogContext_Accumulates(t *testing.T) {
	lc := NewLogContext()
	ctx := WithLogContext(context.Background(), lc)

	AddToContext(ctx, String(FieldOperation, "vote"), Int("position", 2))
	AddToContext(context.Background(), String("dropped", "x"))

	fields := lc.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, FieldOperation, fields[0].Key)
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	ctx := WithCorrelationID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetCorrelationID(ctx))
}
