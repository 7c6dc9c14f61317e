package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
	"github.com/kore-signet/blaseball-highlights-server/internal/service"
)

// Pinger reports storage liveness for the health endpoint.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RequestValidator адаптирует go-playground/validator под echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// HighlightHandler обрабатывает HTTP запросы Highlights Server.
type HighlightHandler struct {
	service service.HighlightService
	db      Pinger
	logger  *zap.Logger
}

// NewHighlightHandler создает новый HighlightHandler.
func NewHighlightHandler(s service.HighlightService, db Pinger, logger *zap.Logger) *HighlightHandler {
	return &HighlightHandler{
		service: s,
		db:      db,
		logger:  logger.Named("HighlightHandler"),
	}
}

// RegisterRoutes регистрирует маршруты Highlights Server.
func (h *HighlightHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/submit", h.submit)
	e.GET("/story", h.getStory)
	e.GET("/health", h.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// submit принимает создание и редактирование истории одним эндпоинтом.
func (h *HighlightHandler) submit(c echo.Context) error {
	log := h.logger.With(zap.String("handler", "submit"))

	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to bind submit request", zap.Error(err))
		requestFailuresTotal.WithLabelValues("bad_request").Inc()
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Submit request failed validation", zap.Error(err))
		requestFailuresTotal.WithLabelValues("bad_request").Inc()
		return respondError(c, http.StatusBadRequest, "missing or malformed parameter")
	}

	events, err := eventsFromPayload(req.Events)
	if err != nil {
		log.Warn("Submit request carries malformed event id", zap.Error(err))
		requestFailuresTotal.WithLabelValues("bad_request").Inc()
		return respondError(c, http.StatusBadRequest, "missing or malformed parameter")
	}

	// Явный выбор варианта запроса до какой-либо работы с хранилищем
	var caller service.Caller = service.Anonymous{}
	if req.User != nil {
		caller = service.Authenticated{UserID: req.User.UserID, UserToken: req.User.UserToken}
	}

	if req.Story.StoryID != "" {
		return h.update(c, log, caller, req.Story.StoryID, events)
	}
	return h.create(c, log, caller, req.Story, events)
}

func (h *HighlightHandler) create(c echo.Context, log *zap.Logger, caller service.Caller, payload StoryPayload, events []models.StoryEvent) error {
	gameID, err := uuid.Parse(payload.GameID)
	if err != nil {
		log.Warn("Submit request carries malformed game id", zap.Error(err))
		requestFailuresTotal.WithLabelValues("bad_request").Inc()
		return respondError(c, http.StatusBadRequest, "missing or malformed parameter")
	}

	story := models.Story{
		GameID: gameID,
		Title:  payload.Title,
	}
	result, err := h.service.CreateStory(c.Request().Context(), caller, story, events)
	if err != nil {
		return h.handleServiceError(c, log, err)
	}

	storiesCreatedTotal.Inc()
	resp := SubmitResponse{Status: http.StatusOK, StoryID: result.StoryID}
	if result.Identity != nil {
		identitiesMintedTotal.Inc()
		resp.UserID = result.Identity.UserID
		resp.UserToken = result.Identity.UserToken
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HighlightHandler) update(c echo.Context, log *zap.Logger, caller service.Caller, storyID string, events []models.StoryEvent) error {
	if err := h.service.UpdateStory(c.Request().Context(), caller, storyID, events); err != nil {
		return h.handleServiceError(c, log.With(zap.String("storyID", storyID)), err)
	}
	storiesUpdatedTotal.Inc()
	return c.JSON(http.StatusOK, SubmitResponse{Status: http.StatusOK})
}

// getStory возвращает историю со всеми событиями.
func (h *HighlightHandler) getStory(c echo.Context) error {
	log := h.logger.With(zap.String("handler", "getStory"))

	storyID := c.QueryParam("id")
	if storyID == "" {
		requestFailuresTotal.WithLabelValues("bad_request").Inc()
		return respondError(c, http.StatusBadRequest, "missing story id")
	}

	detail, err := h.service.GetStory(c.Request().Context(), storyID)
	if err != nil {
		return h.handleServiceError(c, log.With(zap.String("storyID", storyID)), err)
	}

	storiesReadTotal.Inc()
	return c.JSON(http.StatusOK, StoryResponse{
		Status: http.StatusOK,
		Story:  detail.Story,
		Events: detail.Events,
	})
}

func (h *HighlightHandler) health(c echo.Context) error {
	if err := h.db.Ping(c.Request().Context()); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// eventsFromPayload парсит идентификаторы событий и нормализует visual.
func eventsFromPayload(payload []EventPayload) ([]models.StoryEvent, error) {
	events := make([]models.StoryEvent, 0, len(payload))
	for _, p := range payload {
		id, err := uuid.Parse(p.BlaseballEventID)
		if err != nil {
			return nil, err
		}
		visual := p.Visual
		if len(visual) == 0 {
			visual = []byte("null")
		}
		events = append(events, models.StoryEvent{
			BlaseballEventID: id,
			Description:      p.Description,
			Visual:           visual,
		})
	}
	return events, nil
}
