package pubsub

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(endpoint)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return RedisConfig{Host: host, Port: port}
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m, ok := <-ch:
		require.True(t, ok, "message channel closed")
		return m
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestRedisPubSub_PublishSubscribe(t *testing.T) {
	cfg := setupRedis(t)
	ctx := context.Background()
	log := logger.NewNop()

	sub, err := NewRedisPubSub(ctx, cfg, log)
	require.NoError(t, err)
	defer sub.Close()
	pub, err := NewRedisPubSub(ctx, cfg, log)
	require.NoError(t, err)
	defer pub.Close()

	msgs, err := sub.Subscribe(ctx, "document-updates")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, "document-updates", `{"path":"polls/42","etag":"e1"}`))

	m := receive(t, msgs)
	assert.Equal(t, "document-updates", m.Channel)
	assert.Equal(t, `{"path":"polls/42","etag":"e1"}`, m.Payload)
}

func TestRedisPubSub_ConnectFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, err := NewRedisPubSub(context.Background(), RedisConfig{Host: "127.0.0.1", Port: 1}, logger.NewNop())
	assert.Error(t, err)
}
