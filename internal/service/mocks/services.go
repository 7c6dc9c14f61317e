package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
	"github.com/kore-signet/blaseball-highlights-server/internal/repository"
	"github.com/kore-signet/blaseball-highlights-server/internal/service"
)

// Mock IdentityService
type IdentityService struct {
	mock.Mock
}

func (m *IdentityService) Allocate(ctx context.Context, querier repository.DBTX) (*models.User, error) {
	args := m.Called(ctx, querier)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *IdentityService) Verify(ctx context.Context, querier repository.DBTX, userID, userToken string) (bool, error) {
	args := m.Called(ctx, querier, userID, userToken)
	return args.Bool(0), args.Error(1)
}

// Mock HighlightService
type HighlightService struct {
	mock.Mock
}

func (m *HighlightService) CreateStory(ctx context.Context, caller service.Caller, story models.Story, events []models.StoryEvent) (*service.CreateResult, error) {
	args := m.Called(ctx, caller, story, events)
	result, _ := args.Get(0).(*service.CreateResult)
	return result, args.Error(1)
}

func (m *HighlightService) UpdateStory(ctx context.Context, caller service.Caller, storyID string, events []models.StoryEvent) error {
	args := m.Called(ctx, caller, storyID, events)
	return args.Error(0)
}

func (m *HighlightService) GetStory(ctx context.Context, storyID string) (*service.StoryDetail, error) {
	args := m.Called(ctx, storyID)
	detail, _ := args.Get(0).(*service.StoryDetail)
	return detail, args.Error(1)
}
