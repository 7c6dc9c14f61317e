package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
	"github.com/kore-signet/blaseball-highlights-server/internal/repository"
	repoMocks "github.com/kore-signet/blaseball-highlights-server/internal/repository/mocks"
	"github.com/kore-signet/blaseball-highlights-server/internal/service"
	serviceMocks "github.com/kore-signet/blaseball-highlights-server/internal/service/mocks"
)

// stubTxManager выполняет fn напрямую, без реальной транзакции.
type stubTxManager struct{}

func (stubTxManager) WithTx(_ context.Context, fn func(querier repository.DBTX) error) error {
	return fn(nil)
}

type highlightFixture struct {
	stories  *repoMocks.StoryRepository
	events   *repoMocks.EventRepository
	identity *serviceMocks.IdentityService
	svc      service.HighlightService
}

func newHighlightFixture() *highlightFixture {
	f := &highlightFixture{
		stories:  new(repoMocks.StoryRepository),
		events:   new(repoMocks.EventRepository),
		identity: new(serviceMocks.IdentityService),
	}
	f.svc = service.NewHighlightService(f.stories, f.events, f.identity, stubTxManager{}, zap.NewNop())
	return f
}

func (f *highlightFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.stories.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.identity.AssertExpectations(t)
}

func sampleEvents() []models.StoryEvent {
	return []models.StoryEvent{
		{
			BlaseballEventID: uuid.New(),
			Description:      "The Crabs win forever",
			Visual:           json.RawMessage(`{"weather":"peanuts"}`),
		},
	}
}

func TestHighlightService_CreateStory(t *testing.T) {
	ctx := context.Background()
	gameID := uuid.New()

	t.Run("Anonymous caller mints a fresh identity", func(t *testing.T) {
		f := newHighlightFixture()
		events := sampleEvents()
		minted := &models.User{UserID: "fresh-user-id-00", UserToken: "secret"}

		f.identity.On("Allocate", ctx, nil).Return(minted, nil).Once()
		f.stories.On("Create", ctx, nil, mock.MatchedBy(func(s *models.Story) bool {
			return s.UserID == minted.UserID && s.GameID == gameID && s.StoryID != ""
		})).Return(nil).Once()
		f.events.On("InsertAll", ctx, nil, mock.AnythingOfType("string"), events).Return(nil).Once()

		result, err := f.svc.CreateStory(ctx, service.Anonymous{}, models.Story{GameID: gameID, Title: "game 4"}, events)
		require.NoError(t, err)
		assert.NotEmpty(t, result.StoryID)
		require.NotNil(t, result.Identity)
		assert.Equal(t, minted.UserID, result.Identity.UserID)
		f.assertExpectations(t)
	})

	t.Run("Authenticated caller keeps existing identity", func(t *testing.T) {
		f := newHighlightFixture()
		events := sampleEvents()

		f.identity.On("Verify", ctx, nil, "existing-user", "token").Return(true, nil).Once()
		f.stories.On("Create", ctx, nil, mock.MatchedBy(func(s *models.Story) bool {
			return s.UserID == "existing-user"
		})).Return(nil).Once()
		f.events.On("InsertAll", ctx, nil, mock.AnythingOfType("string"), events).Return(nil).Once()

		result, err := f.svc.CreateStory(ctx, service.Authenticated{UserID: "existing-user", UserToken: "token"}, models.Story{GameID: gameID}, events)
		require.NoError(t, err)
		assert.NotEmpty(t, result.StoryID)
		assert.Nil(t, result.Identity, "no token should be re-issued to a known caller")
		f.assertExpectations(t)
	})

	t.Run("Unverifiable identity rejects the whole request", func(t *testing.T) {
		f := newHighlightFixture()

		f.identity.On("Verify", ctx, nil, "who", "bad").Return(false, nil).Once()

		_, err := f.svc.CreateStory(ctx, service.Authenticated{UserID: "who", UserToken: "bad"}, models.Story{GameID: gameID}, sampleEvents())
		assert.ErrorIs(t, err, models.ErrInvalidIdentity)
		f.stories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		f.events.AssertNotCalled(t, "InsertAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Story id collision retries with fresh id", func(t *testing.T) {
		f := newHighlightFixture()
		events := sampleEvents()
		minted := &models.User{UserID: "u", UserToken: "s"}

		var seen []string
		f.identity.On("Allocate", ctx, nil).Return(minted, nil).Once()
		f.stories.On("Create", ctx, nil, mock.AnythingOfType("*models.Story")).
			Run(func(args mock.Arguments) {
				seen = append(seen, args.Get(2).(*models.Story).StoryID)
			}).
			Return(models.ErrStoryIDTaken).Once()
		f.stories.On("Create", ctx, nil, mock.AnythingOfType("*models.Story")).
			Run(func(args mock.Arguments) {
				seen = append(seen, args.Get(2).(*models.Story).StoryID)
			}).
			Return(nil).Once()
		f.events.On("InsertAll", ctx, nil, mock.AnythingOfType("string"), events).Return(nil).Once()

		result, err := f.svc.CreateStory(ctx, service.Anonymous{}, models.Story{GameID: gameID}, events)
		require.NoError(t, err)
		require.Len(t, seen, 2)
		assert.NotEqual(t, seen[0], seen[1])
		assert.Equal(t, seen[1], result.StoryID)
		f.assertExpectations(t)
	})

	t.Run("Event insert failure surfaces", func(t *testing.T) {
		f := newHighlightFixture()
		dbErr := errors.New("deadlock")

		f.identity.On("Allocate", ctx, nil).Return(&models.User{UserID: "u"}, nil).Once()
		f.stories.On("Create", ctx, nil, mock.AnythingOfType("*models.Story")).Return(nil).Once()
		f.events.On("InsertAll", ctx, nil, mock.AnythingOfType("string"), mock.Anything).Return(dbErr).Once()

		_, err := f.svc.CreateStory(ctx, service.Anonymous{}, models.Story{GameID: gameID}, sampleEvents())
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestHighlightService_UpdateStory(t *testing.T) {
	ctx := context.Background()
	owned := &models.Story{StoryID: "story-1", GameID: uuid.New(), UserID: "owner"}

	t.Run("Owner with valid token upserts events", func(t *testing.T) {
		f := newHighlightFixture()
		events := sampleEvents()

		f.stories.On("GetByID", ctx, nil, "story-1").Return(owned, nil).Once()
		f.identity.On("Verify", ctx, nil, "owner", "token").Return(true, nil).Once()
		f.events.On("UpsertAll", ctx, nil, "story-1", events).Return(nil).Once()

		err := f.svc.UpdateStory(ctx, service.Authenticated{UserID: "owner", UserToken: "token"}, "story-1", events)
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Unknown story", func(t *testing.T) {
		f := newHighlightFixture()

		f.stories.On("GetByID", ctx, nil, "nope").Return(nil, models.ErrStoryNotFound).Once()

		err := f.svc.UpdateStory(ctx, service.Authenticated{UserID: "owner", UserToken: "token"}, "nope", sampleEvents())
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
	})

	t.Run("Anonymous caller is rejected", func(t *testing.T) {
		f := newHighlightFixture()

		f.stories.On("GetByID", ctx, nil, "story-1").Return(owned, nil).Once()

		err := f.svc.UpdateStory(ctx, service.Anonymous{}, "story-1", sampleEvents())
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		f.events.AssertNotCalled(t, "UpsertAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non-owner is rejected before token check", func(t *testing.T) {
		f := newHighlightFixture()

		f.stories.On("GetByID", ctx, nil, "story-1").Return(owned, nil).Once()

		err := f.svc.UpdateStory(ctx, service.Authenticated{UserID: "stranger", UserToken: "token"}, "story-1", sampleEvents())
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		f.identity.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Owner with bad token is rejected", func(t *testing.T) {
		f := newHighlightFixture()

		f.stories.On("GetByID", ctx, nil, "story-1").Return(owned, nil).Once()
		f.identity.On("Verify", ctx, nil, "owner", "stale").Return(false, nil).Once()

		err := f.svc.UpdateStory(ctx, service.Authenticated{UserID: "owner", UserToken: "stale"}, "story-1", sampleEvents())
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		f.events.AssertNotCalled(t, "UpsertAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHighlightService_GetStory(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns story with events", func(t *testing.T) {
		f := newHighlightFixture()
		story := &models.Story{StoryID: "story-1", GameID: uuid.New(), UserID: "owner", Title: "grand unslam"}
		events := sampleEvents()

		f.stories.On("GetByID", ctx, nil, "story-1").Return(story, nil).Once()
		f.events.On("ListByStoryID", ctx, nil, "story-1").Return(events, nil).Once()

		detail, err := f.svc.GetStory(ctx, "story-1")
		require.NoError(t, err)
		assert.Equal(t, *story, detail.Story)
		assert.Equal(t, events, detail.Events)
		f.assertExpectations(t)
	})

	t.Run("Unknown story", func(t *testing.T) {
		f := newHighlightFixture()

		f.stories.On("GetByID", ctx, nil, "nope").Return(nil, models.ErrStoryNotFound).Once()

		detail, err := f.svc.GetStory(ctx, "nope")
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
		assert.Nil(t, detail)
	})
}
