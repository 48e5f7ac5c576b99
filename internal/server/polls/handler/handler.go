package handler

import (
	"bufio"
	"context"

	"github.com/Alwanly/forkauthority-polls/internal/config"
	"github.com/Alwanly/forkauthority-polls/internal/models"
	"github.com/Alwanly/forkauthority-polls/internal/polleditor"
	"github.com/Alwanly/forkauthority-polls/internal/server/polls/dto"
	"github.com/Alwanly/forkauthority-polls/internal/server/polls/usecase"
	"github.com/Alwanly/forkauthority-polls/pkg/deps"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/middleware"
	"github.com/Alwanly/forkauthority-polls/pkg/validator"
	"github.com/Alwanly/forkauthority-polls/pkg/wrapper"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type Handler struct {
	Logger     *logger.CanonicalLogger
	UseCase    usecase.UseCaseInterface
	Config     *config.ServerConfig
	Middleware *middleware.AuthMiddleware
	Clock      clockwork.Clock
	ctx        context.Context
	deps       deps.App
}

func NewHandler(d deps.App, cfg *config.ServerConfig) *Handler {
	uc := usecase.NewUseCase(usecase.UseCase{
		Store:   d.Store,
		Editor:  polleditor.New(d.Store, polleditor.WithLogger(d.Logger)),
		Metrics: d.Metrics,
		Logger:  d.Logger,
	})

	h := &Handler{
		Logger:     d.Logger,
		UseCase:    uc,
		Config:     cfg,
		Middleware: d.Middleware,
		Clock:      clockwork.NewRealClock(),
		ctx:        d.Context,
		deps:       d,
	}
	if h.ctx == nil {
		h.ctx = context.Background()
	}

	// Health check endpoint (no auth required)
	d.Fiber.Get("/health", h.health)

	if d.Metrics != nil {
		d.Fiber.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	// Admin-protected endpoints
	d.Fiber.Post("/polls", d.Middleware.BasicAuthAdmin(), h.createPoll)
	d.Fiber.Delete("/polls/:id", d.Middleware.BasicAuthAdmin(), h.deletePoll)

	// Public read endpoints
	d.Fiber.Get("/polls/:id", h.getPoll)
	d.Fiber.Get("/polls/:id/stream", h.stream)

	// Voter endpoints
	voterAuth := middleware.VoterTokenAuth(d.Logger)
	d.Fiber.Post("/polls/:id/votes", voterAuth, h.vote)
	d.Fiber.Post("/polls/:id/restaurants", voterAuth, h.addRestaurant)

	return h
}

// health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// createPoll godoc
// @Summary      Create a poll
// @Description  Create a poll with an optional initial list of restaurants (admin only)
// @Tags         polls
// @Accept       json
// @Produce      json
// @Param        request body dto.CreatePollRequest true "Poll details"
// @Success      201 {object} wrapper.JSONResult{data=dto.CreatePollResponse} "Poll created"
// @Failure      400 {object} wrapper.JSONResult "Invalid request body or validation error"
// @Failure      409 {object} wrapper.JSONResult "Duplicate restaurant names"
// @Failure      500 {object} wrapper.JSONResult "Internal server error"
// @Router       /polls [post]
// @Security     BasicAuth
func (h *Handler) createPoll(c *fiber.Ctx) error {
	logger.AddToContext(c.UserContext(), logger.String(logger.FieldOperation, "create_poll"))

	req := new(dto.CreatePollRequest)
	if res, ok := parseAndValidate(c, req); !ok {
		return c.Status(res.Code).JSON(res)
	}

	res := h.UseCase.CreatePoll(c.UserContext(), req)
	return c.Status(res.Code).JSON(res)
}

// deletePoll godoc
// @Summary      Delete a poll
// @Tags         polls
// @Produce      json
// @Param        id path string true "Poll ID"
// @Success      200 {object} wrapper.JSONResult "Poll deleted"
// @Failure      404 {object} wrapper.JSONResult "Poll not found"
// @Failure      500 {object} wrapper.JSONResult "Internal server error"
// @Router       /polls/{id} [delete]
// @Security     BasicAuth
func (h *Handler) deletePoll(c *fiber.Ctx) error {
	logger.AddToContext(c.UserContext(), logger.String(logger.FieldOperation, "delete_poll"))

	res := h.UseCase.DeletePoll(c.UserContext(), c.Params("id"))
	return c.Status(res.Code).JSON(res)
}

// getPoll godoc
// @Summary      Get the current state of a poll
// @Description  Returns the poll's restaurants ordered by vote total, highest first, wrapped in a loading/content/error state
// @Tags         polls
// @Produce      json
// @Param        id path string true "Poll ID"
// @Param        If-None-Match header string false "ETag for conditional requests"
// @Success      200 {object} wrapper.JSONResult{data=dto.GetPollResponse} "Current state"
// @Success      304 "Not modified"
// @Failure      404 {object} wrapper.JSONResult "Poll not found"
// @Failure      500 {object} wrapper.JSONResult "Internal server error"
// @Router       /polls/{id} [get]
func (h *Handler) getPoll(c *fiber.Ctx) error {
	logger.AddToContext(c.UserContext(), logger.String(logger.FieldOperation, "get_poll"))

	res := h.UseCase.GetPoll(c.UserContext(), c.Params("id"), c.Get(fiber.HeaderIfNoneMatch))
	if res.Code == fiber.StatusNotModified {
		return c.SendStatus(fiber.StatusNotModified)
	}
	if data, ok := res.Data.(dto.GetPollResponse); ok && data.ETag != "" {
		c.Set(fiber.HeaderETag, data.ETag)
	}
	return c.Status(res.Code).JSON(res)
}

// stream godoc
// @Summary      Stream poll state
// @Description  Server-sent events. Each "state" event carries the latest loading/content/error state of the poll as JSON; comment lines are sent as keep-alives.
// @Tags         polls
// @Produce      text/event-stream
// @Param        id path string true "Poll ID"
// @Success      200 {string} string "event stream"
// @Failure      400 {object} wrapper.JSONResult "Invalid poll id"
// @Router       /polls/{id}/stream [get]
func (h *Handler) stream(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := docstore.Doc(models.PollsCollection, id); err != nil {
		res := wrapper.ResponseFailed(fiber.StatusBadRequest, err.Error(), nil)
		return c.Status(res.Code).JSON(res)
	}
	logger.AddToContext(c.UserContext(),
		logger.String(logger.FieldOperation, "stream_poll"),
		logger.String(logger.FieldPollID, id),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	presenter := h.UseCase.Presenter(id)
	s := &stream{
		presenter: presenter,
		clock:     h.Clock,
		heartbeat: h.Config.Heartbeat,
		log:       h.Logger.WithPollID(id),
		metrics:   h.deps.Metrics,
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(h.ctx)
		defer cancel()
		s.run(ctx, w)
	})
	return nil
}

// vote godoc
// @Summary      Vote on a restaurant
// @Description  Cast a vote on the restaurant at the given position of the displayed list. Casting the vote already held withdraws it.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        id path string true "Poll ID"
// @Param        Authorization header string true "Bearer <voter uuid>"
// @Param        request body dto.VoteRequest true "Vote"
// @Success      200 {object} wrapper.JSONResult "Vote recorded"
// @Failure      400 {object} wrapper.JSONResult "Invalid vote type or position"
// @Failure      401 {object} wrapper.JSONResult "Missing or invalid voter token"
// @Failure      404 {object} wrapper.JSONResult "Poll not found"
// @Failure      500 {object} wrapper.JSONResult "Internal server error"
// @Router       /polls/{id}/votes [post]
func (h *Handler) vote(c *fiber.Ctx) error {
	logger.AddToContext(c.UserContext(), logger.String(logger.FieldOperation, "vote"))

	req := new(dto.VoteRequest)
	if res, ok := parseAndValidate(c, req); !ok {
		return c.Status(res.Code).JSON(res)
	}

	res := h.UseCase.Vote(voterContext(c), c.Params("id"), req)
	return c.Status(res.Code).JSON(res)
}

// addRestaurant godoc
// @Summary      Add a restaurant
// @Tags         polls
// @Accept       json
// @Produce      json
// @Param        id path string true "Poll ID"
// @Param        Authorization header string true "Bearer <voter uuid>"
// @Param        request body dto.AddRestaurantRequest true "Restaurant"
// @Success      201 {object} wrapper.JSONResult "Restaurant added"
// @Failure      400 {object} wrapper.JSONResult "Invalid request body"
// @Failure      404 {object} wrapper.JSONResult "Poll not found"
// @Failure      409 {object} wrapper.JSONResult "Restaurant already exists"
// @Failure      500 {object} wrapper.JSONResult "Internal server error"
// @Router       /polls/{id}/restaurants [post]
func (h *Handler) addRestaurant(c *fiber.Ctx) error {
	logger.AddToContext(c.UserContext(), logger.String(logger.FieldOperation, "add_restaurant"))

	req := new(dto.AddRestaurantRequest)
	if res, ok := parseAndValidate(c, req); !ok {
		return c.Status(res.Code).JSON(res)
	}

	res := h.UseCase.AddRestaurant(voterContext(c), c.Params("id"), req)
	return c.Status(res.Code).JSON(res)
}

// parseAndValidate fills req from the body. When it returns false the
// result is the 400 response to send.
func parseAndValidate(c *fiber.Ctx, req interface{}) (wrapper.JSONResult, bool) {
	if err := c.BodyParser(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return wrapper.ResponseFailed(fiber.StatusBadRequest, "invalid request body", nil), false
	}

	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return wrapper.ResponseFailed(fiber.StatusBadRequest, "validation failed", validator.TranslateError(err)), false
	}
	return wrapper.JSONResult{}, true
}

func voterContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if id, ok := c.Locals(middleware.VoterIDContextKey).(string); ok {
		ctx = polleditor.WithVoter(ctx, id)
	}
	return ctx
}
