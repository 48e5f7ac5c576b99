package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Alwanly/forkauthority-polls/pkg/database"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/poll"
	"github.com/Alwanly/forkauthority-polls/pkg/pubsub/pubsubtest"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(path)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestSQLStore(t *testing.T, db *gorm.DB, opts ...Option) *SQLStore {
	t.Helper()
	s := NewSQLStore(db, opts...)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) listenerCounter {
		db := openDB(t, filepath.Join(t.TempDir(), "docs.db"))
		return newTestSQLStore(t, db)
	})
}

func TestSQLStore_NotifierReachesOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")
	broker := pubsubtest.NewMemoryBroker()

	writerNotifier := broker.Client()
	readerNotifier := broker.Client()
	defer writerNotifier.Close()
	defer readerNotifier.Close()

	writer := newTestSQLStore(t, openDB(t, path), WithNotifier(writerNotifier))
	reader := newTestSQLStore(t, openDB(t, path), WithNotifier(readerNotifier), WithLogger(logger.NewNop()))

	ctx := context.Background()
	l, events := collect()
	reg, err := reader.Listen(ctx, "polls/p1", l)
	require.NoError(t, err)
	defer reg.Remove()
	nextEvent(t, events)

	require.NoError(t, writer.Set(ctx, "polls/p1", testDoc{Title: "remote"}))

	ev := nextEvent(t, events)
	require.NoError(t, ev.err)
	var doc testDoc
	require.NoError(t, ev.snap.DataTo(&doc))
	require.Equal(t, "remote", doc.Title)
}

func TestSQLStore_PollerFallbackReachesOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")
	clock := clockwork.NewFakeClock()

	writer := newTestSQLStore(t, openDB(t, path))
	reader := newTestSQLStore(t, openDB(t, path),
		WithPoller(poll.NewPoller(logger.NewNop(), clock), time.Second))

	ctx := context.Background()
	l, events := collect()
	reg, err := reader.Listen(ctx, "polls/p1", l)
	require.NoError(t, err)
	defer reg.Remove()
	nextEvent(t, events)

	require.NoError(t, writer.Set(ctx, "polls/p1", testDoc{Title: "polled"}))
	noEvent(t, events)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	ev := nextEvent(t, events)
	require.NoError(t, ev.err)
	require.True(t, ev.snap.Exists())

	// nothing changed since: the next sync must not deliver a duplicate
	clock.Advance(time.Second)
	noEvent(t, events)
}
