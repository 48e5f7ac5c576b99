package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alwanly/forkauthority-polls/internal/models"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/poll"
	"github.com/Alwanly/forkauthority-polls/pkg/pubsub"
	"github.com/Alwanly/forkauthority-polls/pkg/retry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdatesChannel carries a models.DocumentChange for every write.
const UpdatesChannel = "document-updates"

// SQLStore persists documents through gorm. Listeners in this process are
// notified directly on write; listeners in other processes sharing the same
// database learn about changes through the notifier and, as a fallback, a
// periodic sync driven by the poller.
type SQLStore struct {
	db           *gorm.DB
	hub          *hub
	notifier     pubsub.PubSub
	poller       poll.Poller
	syncInterval time.Duration
	retryCfg     retry.Config
	logger       *logger.CanonicalLogger
	cancel       context.CancelFunc
	consumeDone  chan struct{}
}

type Option func(*SQLStore)

func WithNotifier(ps pubsub.PubSub) Option {
	return func(s *SQLStore) {
		s.notifier = ps
	}
}

func WithPoller(p poll.Poller, interval time.Duration) Option {
	return func(s *SQLStore) {
		s.poller = p
		s.syncInterval = interval
	}
}

func WithLogger(log *logger.CanonicalLogger) Option {
	return func(s *SQLStore) {
		s.logger = log
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(s *SQLStore) {
		s.retryCfg = cfg
	}
}

func DefaultRetryConfig() retry.Config {
	return retry.Config{
		MaxRetries:     5,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     200 * time.Millisecond,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

func NewSQLStore(db *gorm.DB, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:       db,
		hub:      newHub(),
		retryCfg: DefaultRetryConfig(),
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Component("docstore")
	return s
}

// Start subscribes to change notifications and starts the fallback sync.
func (s *SQLStore) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.notifier != nil {
		msgs, err := s.notifier.Subscribe(runCtx, UpdatesChannel)
		if err != nil {
			cancel()
			return fmt.Errorf("failed to subscribe to %s: %w", UpdatesChannel, err)
		}
		s.consumeDone = make(chan struct{})
		go s.consume(runCtx, msgs)
	}

	if s.poller != nil {
		s.poller.RegisterFetchFunc("document-sync", func(ctx context.Context) error {
			s.hub.notifyAll()
			return nil
		}, poll.PollerConfig{Interval: s.syncInterval})
		if err := s.poller.Start(runCtx); err != nil {
			cancel()
			return fmt.Errorf("failed to start document sync: %w", err)
		}
	}
	return nil
}

// Close stops background work. The notifier is owned by the caller.
func (s *SQLStore) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.poller != nil {
		_ = s.poller.Stop()
	}
	if s.consumeDone != nil {
		<-s.consumeDone
	}
	return nil
}

func (s *SQLStore) consume(ctx context.Context, msgs <-chan pubsub.Message) {
	defer close(s.consumeDone)
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				s.logger.Info("document update channel closed")
				return
			}
			var change models.DocumentChange
			if err := json.Unmarshal([]byte(m.Payload), &change); err != nil {
				s.logger.WithError(err).Error("invalid document update notification")
				continue
			}
			s.logger.Debug("document update received",
				logger.String(logger.FieldDocumentPath, change.Path),
				logger.String(logger.FieldETag, change.ETag),
			)
			s.hub.notify(change.Path)
		}
	}
}

func (s *SQLStore) Get(ctx context.Context, path string) (*Snapshot, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, err
	}
	return s.get(s.db.WithContext(ctx), path)
}

func (s *SQLStore) get(db *gorm.DB, path string) (*Snapshot, error) {
	var doc models.Document
	if err := db.Where("path = ?", path).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return missingSnapshot(path), nil
		}
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return newSnapshot(path, []byte(doc.Data), doc.ETag, doc.UpdatedAt), nil
}

func (s *SQLStore) Set(ctx context.Context, path string, v any) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	doc := models.Document{
		Path:       path,
		Collection: collection,
		DocID:      id,
		Data:       string(data),
		ETag:       newETag(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "etag", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}

	s.publishChange(ctx, path, doc.ETag)
	return nil
}

// Update runs fn against the current document and stores the result only if
// nobody else wrote the document in the meantime, retrying on conflict.
func (s *SQLStore) Update(ctx context.Context, path string, fn UpdateFunc) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}

	var etag string
	var written bool
	err := retry.WithExponentialBackoff(ctx, s.retryCfg, func(ctx context.Context) error {
		var err error
		etag, written, err = s.tryUpdate(ctx, path, fn)
		if errors.Is(err, ErrConflict) {
			s.logger.Debug("document update conflict, retrying", logger.String(logger.FieldDocumentPath, path))
			return err
		}
		return retry.Permanent(err)
	})
	if err != nil {
		return err
	}

	if written {
		s.publishChange(ctx, path, etag)
	}
	return nil
}

func (s *SQLStore) tryUpdate(ctx context.Context, path string, fn UpdateFunc) (string, bool, error) {
	collection, id, _ := SplitPath(path)
	var etag string
	var written bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.get(tx, path)
		if err != nil {
			return err
		}
		out, err := fn(current)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to encode document %s: %w", path, err)
		}

		etag = newETag()
		if !current.Exists() {
			err := tx.Create(&models.Document{
				Path:       path,
				Collection: collection,
				DocID:      id,
				Data:       string(data),
				ETag:       etag,
			}).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			if err != nil {
				return fmt.Errorf("failed to create document %s: %w", path, err)
			}
			written = true
			return nil
		}

		result := tx.Model(&models.Document{}).
			Where("path = ? AND etag = ?", path, current.ETag()).
			Updates(map[string]interface{}{
				"data":       string(data),
				"etag":       etag,
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update document %s: %w", path, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict
		}
		written = true
		return nil
	})
	return etag, written, err
}

func (s *SQLStore) Delete(ctx context.Context, path string) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Delete(&models.Document{}, "path = ?", path)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document %s: %w", path, result.Error)
	}
	if result.RowsAffected > 0 {
		s.publishChange(ctx, path, "")
	}
	return nil
}

func (s *SQLStore) Listen(ctx context.Context, path string, l Listener) (ListenerRegistration, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("nil listener for %s", path)
	}
	return s.hub.add(ctx, path, s.Get, l), nil
}

// Listeners reports the number of active registrations.
func (s *SQLStore) Listeners() int {
	return s.hub.count()
}

// publishChange wakes local listeners and tells other processes about the write.
func (s *SQLStore) publishChange(ctx context.Context, path, etag string) {
	s.hub.notify(path)
	if s.notifier == nil {
		return
	}

	payload, err := json.Marshal(models.DocumentChange{
		Path:          path,
		ETag:          etag,
		CorrelationID: logger.GetCorrelationID(ctx),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to marshal document update notification")
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.notifier.Publish(pubCtx, UpdatesChannel, string(payload)); err != nil {
		s.logger.WithError(err).Error("failed to publish document update",
			logger.String(logger.FieldDocumentPath, path))
	}
}
