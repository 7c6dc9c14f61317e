package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
	"github.com/kore-signet/blaseball-highlights-server/internal/repository"
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, querier repository.DBTX, user *models.User) error {
	args := m.Called(ctx, querier, user)
	return args.Error(0)
}

func (m *UserRepository) GetByCredentials(ctx context.Context, querier repository.DBTX, userID, userToken string) (*models.User, error) {
	args := m.Called(ctx, querier, userID, userToken)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

// Mock StoryRepository
type StoryRepository struct {
	mock.Mock
}

func (m *StoryRepository) Create(ctx context.Context, querier repository.DBTX, story *models.Story) error {
	args := m.Called(ctx, querier, story)
	return args.Error(0)
}

func (m *StoryRepository) GetByID(ctx context.Context, querier repository.DBTX, storyID string) (*models.Story, error) {
	args := m.Called(ctx, querier, storyID)
	story, _ := args.Get(0).(*models.Story)
	return story, args.Error(1)
}

// Mock EventRepository
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) InsertAll(ctx context.Context, querier repository.DBTX, storyID string, events []models.StoryEvent) error {
	args := m.Called(ctx, querier, storyID, events)
	return args.Error(0)
}

func (m *EventRepository) UpsertAll(ctx context.Context, querier repository.DBTX, storyID string, events []models.StoryEvent) error {
	args := m.Called(ctx, querier, storyID, events)
	return args.Error(0)
}

func (m *EventRepository) ListByStoryID(ctx context.Context, querier repository.DBTX, storyID string) ([]models.StoryEvent, error) {
	args := m.Called(ctx, querier, storyID)
	events, _ := args.Get(0).([]models.StoryEvent)
	return events, args.Error(1)
}
