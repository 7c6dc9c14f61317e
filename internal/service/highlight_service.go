package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
	"github.com/kore-signet/blaseball-highlights-server/internal/repository"
	"github.com/kore-signet/blaseball-highlights-server/internal/token"
)

// CreateResult is the outcome of a successful story creation.
type CreateResult struct {
	StoryID string
	// Identity is non-nil only when the caller was anonymous and a fresh
	// identity was minted; it is the one time the secret token leaves
	// the service.
	Identity *models.User
}

// StoryDetail is a story with its full event list.
type StoryDetail struct {
	Story  models.Story
	Events []models.StoryEvent
}

// HighlightService owns story and event persistence. Each method is one
// atomic unit of work: либо всё, либо ничего.
type HighlightService interface {
	// CreateStory allocates a fresh story id, resolves the caller's
	// identity (verify-or-mint) and inserts the story with all supplied
	// events. An Authenticated caller that fails verification gets
	// models.ErrInvalidIdentity with nothing persisted.
	CreateStory(ctx context.Context, caller Caller, story models.Story, events []models.StoryEvent) (*CreateResult, error)

	// UpdateStory upserts events on an existing story. The caller must
	// be Authenticated, own the story and pass token verification;
	// otherwise models.ErrUnauthorized. Unknown story ids yield
	// models.ErrStoryNotFound. Replaying the same update is idempotent.
	UpdateStory(ctx context.Context, caller Caller, storyID string, events []models.StoryEvent) error

	// GetStory returns a story plus its events. No identity involved;
	// the result never carries a user token.
	GetStory(ctx context.Context, storyID string) (*StoryDetail, error)
}

type highlightServiceImpl struct {
	stories  repository.StoryRepository
	events   repository.EventRepository
	identity IdentityService
	tx       TxManager
	logger   *zap.Logger
}

// NewHighlightService creates a new instance of HighlightService.
func NewHighlightService(
	stories repository.StoryRepository,
	events repository.EventRepository,
	identity IdentityService,
	tx TxManager,
	logger *zap.Logger,
) HighlightService {
	return &highlightServiceImpl{
		stories:  stories,
		events:   events,
		identity: identity,
		tx:       tx,
		logger:   logger.Named("HighlightService"),
	}
}

func (s *highlightServiceImpl) CreateStory(ctx context.Context, caller Caller, story models.Story, events []models.StoryEvent) (*CreateResult, error) {
	log := s.logger.With(zap.Stringer("gameID", story.GameID))
	log.Info("CreateStory called", zap.Int("events", len(events)))

	result := &CreateResult{}
	err := s.tx.WithTx(ctx, func(querier repository.DBTX) error {
		// 1. Разрешаем identity до каких-либо вставок
		var owner string
		switch c := caller.(type) {
		case Authenticated:
			ok, err := s.identity.Verify(ctx, querier, c.UserID, c.UserToken)
			if err != nil {
				return fmt.Errorf("error verifying identity: %w", err)
			}
			if !ok {
				log.Warn("Story creation with unverifiable identity", zap.String("userID", c.UserID))
				return models.ErrInvalidIdentity
			}
			owner = c.UserID
		case Anonymous:
			user, err := s.identity.Allocate(ctx, querier)
			if err != nil {
				return fmt.Errorf("error allocating identity: %w", err)
			}
			owner = user.UserID
			result.Identity = user
		default:
			return models.ErrInvalidIdentity
		}

		// 2. Вставка story со свежим id, с повтором при коллизии
		story.UserID = owner
		storyID, err := s.createWithFreshID(ctx, querier, &story)
		if err != nil {
			return err
		}
		result.StoryID = storyID

		// 3. Events той же транзакцией, после story
		if err := s.events.InsertAll(ctx, querier, storyID, events); err != nil {
			return fmt.Errorf("error inserting events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Story created", zap.String("storyID", result.StoryID), zap.Bool("newIdentity", result.Identity != nil))
	return result, nil
}

// createWithFreshID inserts story under a freshly generated id, retrying
// collisions with new randomness up to maxAllocAttempts.
func (s *highlightServiceImpl) createWithFreshID(ctx context.Context, querier repository.DBTX, story *models.Story) (string, error) {
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		id, err := token.NewID()
		if err != nil {
			return "", fmt.Errorf("failed to generate story id: %w", err)
		}

		story.StoryID = id
		err = s.stories.Create(ctx, querier, story)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, models.ErrStoryIDTaken) {
			s.logger.Warn("Story id collision, retrying with fresh id", zap.Int("attempt", attempt))
			continue
		}
		return "", fmt.Errorf("error creating story: %w", err)
	}

	s.logger.Error("Exhausted story id allocation attempts", zap.Int("maxAttempts", maxAllocAttempts))
	return "", fmt.Errorf("exhausted %d story id allocation attempts: %w", maxAllocAttempts, models.ErrInternalServer)
}

func (s *highlightServiceImpl) UpdateStory(ctx context.Context, caller Caller, storyID string, events []models.StoryEvent) error {
	log := s.logger.With(zap.String("storyID", storyID))
	log.Info("UpdateStory called", zap.Int("events", len(events)))

	return s.tx.WithTx(ctx, func(querier repository.DBTX) error {
		// 1. Story должна существовать
		story, err := s.stories.GetByID(ctx, querier, storyID)
		if err != nil {
			return err
		}

		// 2. Только владелец с верным токеном
		creds, ok := caller.(Authenticated)
		if !ok {
			log.Warn("Story update without credentials")
			return models.ErrUnauthorized
		}
		if creds.UserID != story.UserID {
			log.Warn("Story update by non-owner", zap.String("userID", creds.UserID))
			return models.ErrUnauthorized
		}
		verified, err := s.identity.Verify(ctx, querier, creds.UserID, creds.UserToken)
		if err != nil {
			return fmt.Errorf("error verifying identity: %w", err)
		}
		if !verified {
			log.Warn("Story update with bad token", zap.String("userID", creds.UserID))
			return models.ErrUnauthorized
		}

		// 3. Upsert по натуральному ключу; title/game_id не трогаем
		if err := s.events.UpsertAll(ctx, querier, storyID, events); err != nil {
			return fmt.Errorf("error upserting events: %w", err)
		}
		return nil
	})
}

func (s *highlightServiceImpl) GetStory(ctx context.Context, storyID string) (*StoryDetail, error) {
	log := s.logger.With(zap.String("storyID", storyID))
	log.Debug("GetStory called")

	detail := &StoryDetail{}
	err := s.tx.WithTx(ctx, func(querier repository.DBTX) error {
		story, err := s.stories.GetByID(ctx, querier, storyID)
		if err != nil {
			return err
		}
		events, err := s.events.ListByStoryID(ctx, querier, storyID)
		if err != nil {
			return err
		}
		detail.Story = *story
		detail.Events = events
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
