package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Alwanly/forkauthority-polls/internal/metrics"
	"github.com/Alwanly/forkauthority-polls/internal/models"
	"github.com/Alwanly/forkauthority-polls/internal/polleditor"
	"github.com/Alwanly/forkauthority-polls/internal/server/polls/dto"
	"github.com/Alwanly/forkauthority-polls/internal/viewpoll"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/lce"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/wrapper"
	"go.uber.org/zap"
)

type UseCase struct {
	Store   docstore.Store
	Editor  *polleditor.Editor
	Metrics *metrics.Metrics
	Logger  *logger.CanonicalLogger
}

type UseCaseInterface interface {
	CreatePoll(ctx context.Context, req *dto.CreatePollRequest) wrapper.JSONResult
	DeletePoll(ctx context.Context, id string) wrapper.JSONResult
	GetPoll(ctx context.Context, id, ifNoneMatch string) wrapper.JSONResult
	Vote(ctx context.Context, id string, req *dto.VoteRequest) wrapper.JSONResult
	AddRestaurant(ctx context.Context, id string, req *dto.AddRestaurantRequest) wrapper.JSONResult
	Presenter(id string) *viewpoll.ViewPoll
}

var _ UseCaseInterface = (*UseCase)(nil)

func NewUseCase(uc UseCase) *UseCase {
	if uc.Logger == nil {
		uc.Logger = logger.NewNop()
	}
	if uc.Editor == nil {
		uc.Editor = polleditor.New(uc.Store, polleditor.WithLogger(uc.Logger))
	}
	return &uc
}

// Presenter returns a presenter for one poll. It is not started.
func (uc *UseCase) Presenter(id string) *viewpoll.ViewPoll {
	opts := []viewpoll.Option{viewpoll.WithLogger(uc.Logger)}
	if uc.Metrics != nil {
		opts = append(opts, viewpoll.WithMetrics(uc.Metrics))
	}
	v := viewpoll.New(uc.Store, uc.Editor, opts...)
	v.SetDocumentID(id)
	return v
}

func (uc *UseCase) CreatePoll(ctx context.Context, req *dto.CreatePollRequest) wrapper.JSONResult {
	id, err := uc.Editor.CreatePoll(ctx, req.Title, req.Restaurants)
	if err != nil {
		return uc.failed(ctx, err)
	}
	logger.AddToContext(ctx, zap.String(logger.FieldPollID, id))
	return wrapper.ResponseCreated(dto.CreatePollResponse{ID: id})
}

func (uc *UseCase) DeletePoll(ctx context.Context, id string) wrapper.JSONResult {
	if err := uc.Editor.DeletePoll(ctx, id); err != nil {
		return uc.failed(ctx, err)
	}
	return wrapper.ResponseSuccess(http.StatusOK, nil)
}

// GetPoll reads the poll once and renders it the way the presenter would.
func (uc *UseCase) GetPoll(ctx context.Context, id, ifNoneMatch string) wrapper.JSONResult {
	path, err := docstore.Doc(models.PollsCollection, id)
	if err != nil {
		return uc.failed(ctx, err)
	}
	snap, err := uc.Store.Get(ctx, path)
	if err != nil {
		return uc.failed(ctx, err)
	}
	if !snap.Exists() {
		return uc.failed(ctx, polleditor.ErrPollNotFound)
	}
	if ifNoneMatch != "" && ifNoneMatch == snap.ETag() {
		return wrapper.ResponseNotModified()
	}

	res := dto.GetPollResponse{
		ID:        id,
		ETag:      snap.ETag(),
		UpdatedAt: snap.UpdateTime(),
	}
	var poll models.Poll
	if err := snap.DataTo(&poll); err != nil {
		res.State = lce.Error[[]models.Restaurant](err)
		uc.Logger.WithPollID(id).Warn("failed to decode poll", zap.Error(err))
	} else {
		res.Title = poll.Title
		res.State = viewpoll.Render(poll)
	}
	logger.AddToContext(ctx, zap.String(logger.FieldStateKind, res.State.Kind.String()))

	return wrapper.ResponseSuccess(http.StatusOK, res)
}

func (uc *UseCase) Vote(ctx context.Context, id string, req *dto.VoteRequest) wrapper.JSONResult {
	voteType, err := models.ParseVoteType(req.VoteType)
	if err != nil {
		return uc.failed(ctx, fmt.Errorf("%w: %q", polleditor.ErrInvalidVoteType, req.VoteType))
	}
	logger.AddToContext(ctx, zap.String(logger.FieldVoteType, req.VoteType))

	if err := uc.Presenter(id).Vote(ctx, voteType, *req.Position); err != nil {
		return uc.failed(ctx, err)
	}
	return wrapper.ResponseSuccess(http.StatusOK, nil)
}

func (uc *UseCase) AddRestaurant(ctx context.Context, id string, req *dto.AddRestaurantRequest) wrapper.JSONResult {
	if err := uc.Presenter(id).AddVotableRestaurant(ctx, req.Name); err != nil {
		return uc.failed(ctx, err)
	}
	return wrapper.ResponseCreated(nil)
}

func (uc *UseCase) failed(ctx context.Context, err error) wrapper.JSONResult {
	code := StatusFor(err)
	logger.AddToContext(ctx, zap.Error(err))
	if code >= http.StatusInternalServerError {
		uc.Logger.Error("poll request failed", zap.Error(err))
		return wrapper.ResponseFailed(code, "internal server error", nil)
	}
	return wrapper.ResponseFailed(code, err.Error(), nil)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, polleditor.ErrPollNotFound):
		return http.StatusNotFound
	case errors.Is(err, polleditor.ErrDuplicateRestaurant):
		return http.StatusConflict
	case errors.Is(err, polleditor.ErrNoVoter):
		return http.StatusUnauthorized
	case errors.Is(err, polleditor.ErrNoDocumentID),
		errors.Is(err, viewpoll.ErrNoDocumentID),
		errors.Is(err, polleditor.ErrInvalidPosition),
		errors.Is(err, polleditor.ErrInvalidVoteType),
		errors.Is(err, polleditor.ErrEmptyName),
		errors.Is(err, docstore.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
