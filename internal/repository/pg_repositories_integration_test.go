package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/database"
	"github.com/kore-signet/blaseball-highlights-server/internal/models"
	"github.com/kore-signet/blaseball-highlights-server/internal/repository"
)

type RepositoryTestSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	users       repository.UserRepository
	stories     repository.StoryRepository
	events      repository.EventRepository
}

func (s *RepositoryTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.dbPool, err = pgxpool.New(ctx, connStr)
	require.NoError(s.T(), err)

	require.NoError(s.T(), database.ApplyMigrations(s.dbPool))

	logger := zap.NewNop()
	s.users = repository.NewPgUserRepository(logger)
	s.stories = repository.NewPgStoryRepository(logger)
	s.events = repository.NewPgEventRepository(logger)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

func (s *RepositoryTestSuite) newUser(ctx context.Context, id string) *models.User {
	user := &models.User{UserID: id, UserToken: "token-" + id}
	s.Require().NoError(s.users.Create(ctx, s.dbPool, user))
	return user
}

// Коллизия id внутри транзакции не должна ломать её: после
// ErrUserIDTaken та же транзакция обязана принять повторную вставку.
func (s *RepositoryTestSuite) TestUserCreate_CollisionKeepsTxUsable() {
	ctx := context.Background()
	s.newUser(ctx, "collide-me")

	tx, err := s.dbPool.Begin(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)

	err = s.users.Create(ctx, tx, &models.User{UserID: "collide-me", UserToken: "other"})
	s.Require().ErrorIs(err, models.ErrUserIDTaken)

	// Транзакция всё ещё жива
	err = s.users.Create(ctx, tx, &models.User{UserID: "fresh-after-collision", UserToken: "other"})
	s.Require().NoError(err)
	s.Require().NoError(tx.Commit(ctx))

	found, err := s.users.GetByCredentials(ctx, s.dbPool, "fresh-after-collision", "other")
	s.Require().NoError(err)
	s.Equal("fresh-after-collision", found.UserID)
}

func (s *RepositoryTestSuite) TestUserGetByCredentials_ExactMatchOnly() {
	ctx := context.Background()
	s.newUser(ctx, "exact-user")

	_, err := s.users.GetByCredentials(ctx, s.dbPool, "exact-user", "token-exact-user")
	s.Require().NoError(err)

	_, err = s.users.GetByCredentials(ctx, s.dbPool, "exact-user", "token-exact")
	s.Require().ErrorIs(err, models.ErrUserNotFound)

	_, err = s.users.GetByCredentials(ctx, s.dbPool, "exact", "token-exact-user")
	s.Require().ErrorIs(err, models.ErrUserNotFound)
}

func (s *RepositoryTestSuite) TestStoryCreate_CollisionMapsToDomainError() {
	ctx := context.Background()
	owner := s.newUser(ctx, "story-owner")

	story := &models.Story{StoryID: "dup-story", GameID: uuid.New(), UserID: owner.UserID, Title: "first"}
	s.Require().NoError(s.stories.Create(ctx, s.dbPool, story))

	err := s.stories.Create(ctx, s.dbPool, &models.Story{StoryID: "dup-story", GameID: uuid.New(), UserID: owner.UserID})
	s.Require().ErrorIs(err, models.ErrStoryIDTaken)
}

func (s *RepositoryTestSuite) TestStoryGetByID_NotFound() {
	_, err := s.stories.GetByID(context.Background(), s.dbPool, "missing")
	s.Require().ErrorIs(err, models.ErrStoryNotFound)
}

func (s *RepositoryTestSuite) TestEventUpsert_OverwritesByNaturalKey() {
	ctx := context.Background()
	owner := s.newUser(ctx, "event-owner")
	story := &models.Story{StoryID: "event-story", GameID: uuid.New(), UserID: owner.UserID}
	s.Require().NoError(s.stories.Create(ctx, s.dbPool, story))

	eventID := uuid.New()
	first := []models.StoryEvent{{
		BlaseballEventID: eventID,
		Description:      "original",
		Visual:           json.RawMessage(`{"v":1}`),
	}}
	s.Require().NoError(s.events.InsertAll(ctx, s.dbPool, story.StoryID, first))

	// Upsert перезаписывает description и visual по (story_id, event_id)
	second := []models.StoryEvent{{
		BlaseballEventID: eventID,
		Description:      "rewritten",
		Visual:           json.RawMessage(`{"v":2}`),
	}}
	s.Require().NoError(s.events.UpsertAll(ctx, s.dbPool, story.StoryID, second))

	// Повтор того же батча идемпотентен
	s.Require().NoError(s.events.UpsertAll(ctx, s.dbPool, story.StoryID, second))

	events, err := s.events.ListByStoryID(ctx, s.dbPool, story.StoryID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("rewritten", events[0].Description)
	s.JSONEq(`{"v":2}`, string(events[0].Visual))
}

func (s *RepositoryTestSuite) TestEventInsertAll_DuplicateFails() {
	ctx := context.Background()
	owner := s.newUser(ctx, "dup-event-owner")
	story := &models.Story{StoryID: "dup-event-story", GameID: uuid.New(), UserID: owner.UserID}
	s.Require().NoError(s.stories.Create(ctx, s.dbPool, story))

	eventID := uuid.New()
	batch := []models.StoryEvent{{BlaseballEventID: eventID, Description: "once", Visual: json.RawMessage(`null`)}}
	s.Require().NoError(s.events.InsertAll(ctx, s.dbPool, story.StoryID, batch))
	s.Require().Error(s.events.InsertAll(ctx, s.dbPool, story.StoryID, batch))
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryTestSuite))
}
