// Package viewpoll presents one poll document as a Loading/Content/Error
// signal and forwards vote actions to an editor.
package viewpoll

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Alwanly/forkauthority-polls/internal/metrics"
	"github.com/Alwanly/forkauthority-polls/internal/models"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/lce"
	"github.com/Alwanly/forkauthority-polls/pkg/livedata"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrNilSnapshot  = errors.New("snapshot is null")
	ErrNoDocumentID = errors.New("document id is not set")
)

// State is what observers of a poll receive.
type State = lce.State[[]models.Restaurant]

// Editor applies user actions to poll documents.
type Editor interface {
	Vote(ctx context.Context, voteType models.VoteType, documentID string, position int) error
	AddRestaurant(ctx context.Context, documentID, name string) error
}

type Option func(*ViewPoll)

func WithLogger(log *logger.CanonicalLogger) Option {
	return func(v *ViewPoll) {
		v.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *ViewPoll) {
		v.metrics = m
	}
}

type ViewPoll struct {
	store   docstore.Store
	editor  Editor
	log     *logger.CanonicalLogger
	metrics *metrics.Metrics
	state   *livedata.LiveData[State]

	mu           sync.Mutex
	documentID   string
	registration docstore.ListenerRegistration
	cancel       context.CancelFunc
	generation   uint64
}

func New(store docstore.Store, editor Editor, opts ...Option) *ViewPoll {
	v := &ViewPoll{
		store:  store,
		editor: editor,
		log:    logger.NewNop(),
		state:  livedata.New[State](),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = v.log.Component("viewpoll")
	return v
}

// SetDocumentID selects the poll the next Start subscribes to. An empty id
// means no poll.
func (v *ViewPoll) SetDocumentID(id string) {
	v.mu.Lock()
	v.documentID = id
	v.mu.Unlock()
}

func (v *ViewPoll) DocumentID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.documentID
}

// Start subscribes to the poll document. The subscription lasts until Stop,
// the next Start, or until ctx is done. Without a document id it only logs.
func (v *ViewPoll) Start(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.documentID == "" {
		v.log.Error("cannot subscribe to poll", zap.Error(ErrNoDocumentID))
		return
	}

	path, err := docstore.Doc(models.PollsCollection, v.documentID)
	if err != nil {
		v.log.WithPollID(v.documentID).Error("cannot subscribe to poll", zap.Error(err))
		return
	}

	v.releaseLocked()
	v.generation++
	gen := v.generation

	subCtx, cancel := context.WithCancel(ctx)
	reg, err := v.store.Listen(subCtx, path, func(snap *docstore.Snapshot, err error) {
		v.onSnapshot(gen, snap, err)
	})
	if err != nil {
		cancel()
		v.log.WithPath(path).Error("failed to listen on poll", zap.Error(err))
		return
	}
	v.registration = reg
	v.cancel = cancel
	context.AfterFunc(subCtx, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if gen == v.generation {
			v.releaseLocked()
		}
	})
	if v.metrics != nil {
		v.metrics.ActiveSubscriptions.Inc()
	}
	v.log.WithPath(path).Debug("subscribed to poll")
}

// Stop releases the subscription, if any.
func (v *ViewPoll) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.releaseLocked()
}

func (v *ViewPoll) releaseLocked() {
	if v.registration == nil {
		return
	}
	v.registration.Remove()
	v.cancel()
	v.registration = nil
	v.cancel = nil
	v.generation++
	if v.metrics != nil {
		v.metrics.ActiveSubscriptions.Dec()
	}
}

// Subscribed reports whether a subscription is open.
func (v *ViewPoll) Subscribed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registration != nil
}

func (v *ViewPoll) onSnapshot(gen uint64, snap *docstore.Snapshot, err error) {
	state, ok := Transform(snap, err)
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	// events from a released registration may still be in flight
	if gen != v.generation {
		return
	}
	v.publishLocked(state)
}

func (v *ViewPoll) publishLocked(state State) {
	if state.IsError() {
		v.log.WithPollID(v.documentID).Warn("poll subscription error", zap.Error(state.Err))
	}
	if v.metrics != nil {
		v.metrics.StatesPublished.WithLabelValues(state.Kind.String()).Inc()
	}
	v.state.Set(state)
}

// Transform maps one listener event to the state to publish. It returns false
// when the event publishes nothing, which is the case for a document that
// does not exist.
func Transform(snap *docstore.Snapshot, err error) (State, bool) {
	if err != nil {
		return lce.Error[[]models.Restaurant](err), true
	}
	if snap == nil {
		return lce.Error[[]models.Restaurant](ErrNilSnapshot), true
	}
	if !snap.Exists() {
		return State{}, false
	}

	var poll models.Poll
	if err := snap.DataTo(&poll); err != nil {
		return lce.Error[[]models.Restaurant](fmt.Errorf("failed to decode poll %s: %w", snap.ID(), err)), true
	}
	return Render(poll), true
}

// Render is the Content state for a decoded poll.
func Render(poll models.Poll) State {
	return lce.Content(models.SortByVotes(poll.RestaurantsOrEmpty()))
}

// Observe delivers the latest state, if any, and every later one to fn until
// owner is done or the returned func is called.
func (v *ViewPoll) Observe(owner context.Context, fn func(State)) func() {
	return v.state.Observe(owner, fn)
}

// State returns the latest published state, or Loading before the first one.
func (v *ViewPoll) State() State {
	s, ok := v.state.Value()
	if !ok {
		return lce.Loading[[]models.Restaurant]()
	}
	return s
}

// Vote casts voteType on the item at position in the current ordering.
func (v *ViewPoll) Vote(ctx context.Context, voteType models.VoteType, position int) error {
	id := v.DocumentID()
	if id == "" {
		return ErrNoDocumentID
	}

	err := v.editor.Vote(ctx, voteType, id, position)
	if v.metrics != nil {
		v.metrics.VotesTotal.WithLabelValues(string(voteType), metrics.Result(err)).Inc()
	}
	return err
}

// AddVotableRestaurant adds an item to the poll. The document id is handed to
// the editor even when it is empty.
func (v *ViewPoll) AddVotableRestaurant(ctx context.Context, name string) error {
	err := v.editor.AddRestaurant(ctx, v.DocumentID(), name)
	if v.metrics != nil {
		v.metrics.RestaurantsAdded.WithLabelValues(metrics.Result(err)).Inc()
	}
	return err
}
