// Package polleditor applies user actions to poll documents.
package polleditor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alwanly/forkauthority-polls/internal/models"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrNoDocumentID        = errors.New("document id is required")
	ErrPollNotFound        = errors.New("poll not found")
	ErrInvalidPosition     = errors.New("position is out of range")
	ErrInvalidVoteType     = errors.New("invalid vote type")
	ErrDuplicateRestaurant = errors.New("restaurant already exists")
	ErrEmptyName           = errors.New("name is required")
	ErrNoVoter             = errors.New("voter is required")
)

type voterKey struct{}

// WithVoter returns a context carrying the id of the user acting on a poll.
func WithVoter(ctx context.Context, voterID string) context.Context {
	return context.WithValue(ctx, voterKey{}, voterID)
}

func VoterFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(voterKey{}).(string)
	return id, ok && id != ""
}

type Option func(*Editor)

func WithLogger(log *logger.CanonicalLogger) Option {
	return func(e *Editor) {
		e.log = log
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(e *Editor) {
		e.clock = clock
	}
}

type Editor struct {
	store docstore.Store
	log   *logger.CanonicalLogger
	clock clockwork.Clock
}

func New(store docstore.Store, opts ...Option) *Editor {
	e := &Editor{
		store: store,
		log:   logger.NewNop(),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Component("polleditor")
	return e
}

// CreatePoll stores a new poll with the given restaurants and returns its id.
func (e *Editor) CreatePoll(ctx context.Context, title string, names []string) (string, error) {
	poll := models.Poll{
		Title:       strings.TrimSpace(title),
		Restaurants: []models.Restaurant{},
		CreatedAt:   e.clock.Now().UTC(),
	}
	for _, name := range names {
		r, err := newRestaurant(poll.Restaurants, name)
		if err != nil {
			return "", err
		}
		poll.Restaurants = append(poll.Restaurants, r)
	}

	id := uuid.Must(uuid.NewV7()).String()
	path, err := docstore.Doc(models.PollsCollection, id)
	if err != nil {
		return "", err
	}
	if err := e.store.Set(ctx, path, poll); err != nil {
		return "", fmt.Errorf("failed to create poll: %w", err)
	}

	e.log.WithPollID(id).Info("poll created",
		logger.String(logger.FieldPollName, poll.Title),
		logger.Int("restaurants", len(poll.Restaurants)),
	)
	return id, nil
}

// Vote sets the caller's vote on the restaurant at position, counted in the
// order polls are displayed (highest total first). Casting the vote the
// caller already holds withdraws it.
func (e *Editor) Vote(ctx context.Context, voteType models.VoteType, documentID string, position int) error {
	if !voteType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVoteType, voteType)
	}
	voter, ok := VoterFromContext(ctx)
	if !ok {
		return ErrNoVoter
	}
	path, err := pollPath(documentID)
	if err != nil {
		return err
	}

	var restaurantName string
	var withdrawn bool
	err = e.store.Update(ctx, path, func(current *docstore.Snapshot) (any, error) {
		poll, err := decodePoll(current)
		if err != nil {
			return nil, err
		}

		sorted := models.SortByVotes(poll.Restaurants)
		if position < 0 || position >= len(sorted) {
			return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPosition, position, len(sorted))
		}
		target := sorted[position].ID

		for i := range poll.Restaurants {
			r := &poll.Restaurants[i]
			if r.ID != target {
				continue
			}
			if r.Votes == nil {
				r.Votes = map[string]models.VoteType{}
			}
			restaurantName = r.Name
			withdrawn = r.Votes[voter] == voteType
			if withdrawn {
				delete(r.Votes, voter)
			} else {
				r.Votes[voter] = voteType
			}
			break
		}
		return poll, nil
	})
	if err != nil {
		return err
	}

	e.log.WithPollID(documentID).Info("vote recorded",
		logger.String(logger.FieldVoterID, voter),
		logger.String(logger.FieldVoteType, string(voteType)),
		logger.String("restaurant", restaurantName),
		logger.Bool("withdrawn", withdrawn),
	)
	return nil
}

// AddRestaurant appends a votable restaurant to the poll.
func (e *Editor) AddRestaurant(ctx context.Context, documentID, name string) error {
	path, err := pollPath(documentID)
	if err != nil {
		return err
	}

	var added models.Restaurant
	err = e.store.Update(ctx, path, func(current *docstore.Snapshot) (any, error) {
		poll, err := decodePoll(current)
		if err != nil {
			return nil, err
		}
		added, err = newRestaurant(poll.Restaurants, name)
		if err != nil {
			return nil, err
		}
		poll.Restaurants = append(poll.Restaurants, added)
		return poll, nil
	})
	if err != nil {
		return err
	}

	e.log.WithPollID(documentID).Info("restaurant added", logger.String("restaurant", added.Name))
	return nil
}

func (e *Editor) DeletePoll(ctx context.Context, documentID string) error {
	path, err := pollPath(documentID)
	if err != nil {
		return err
	}
	snap, err := e.store.Get(ctx, path)
	if err != nil {
		return err
	}
	if !snap.Exists() {
		return ErrPollNotFound
	}
	if err := e.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	e.log.WithPollID(documentID).Info("poll deleted")
	return nil
}

func pollPath(documentID string) (string, error) {
	if documentID == "" {
		return "", ErrNoDocumentID
	}
	return docstore.Doc(models.PollsCollection, documentID)
}

func decodePoll(snap *docstore.Snapshot) (*models.Poll, error) {
	if !snap.Exists() {
		return nil, ErrPollNotFound
	}
	var poll models.Poll
	if err := snap.DataTo(&poll); err != nil {
		return nil, fmt.Errorf("failed to decode poll %s: %w", snap.ID(), err)
	}
	return &poll, nil
}

func newRestaurant(existing []models.Restaurant, name string) (models.Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Restaurant{}, ErrEmptyName
	}
	for _, r := range existing {
		if strings.EqualFold(r.Name, name) {
			return models.Restaurant{}, fmt.Errorf("%w: %s", ErrDuplicateRestaurant, name)
		}
	}
	return models.Restaurant{
		ID:    uuid.NewString(),
		Name:  name,
		Votes: map[string]models.VoteType{},
	}, nil
}

