package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
)

// DBTX is the subset of pgx used by repositories. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so every method can run against the pool or inside a
// transaction owned by the service layer (passed as the querier argument).
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines persistence for anonymous user identities.
type UserRepository interface {
	// Create inserts a new user. Returns models.ErrUserIDTaken when the
	// candidate user_id collides with an existing row; in that case the
	// enclosing transaction is left usable so the caller can retry with
	// fresh randomness.
	Create(ctx context.Context, querier DBTX, user *models.User) error

	// GetByCredentials retrieves a user matching both user_id and
	// user_token exactly. Returns models.ErrUserNotFound when no row
	// matches; there is no partial or prefix matching.
	GetByCredentials(ctx context.Context, querier DBTX, userID, userToken string) (*models.User, error)
}

// StoryRepository defines persistence for stories.
type StoryRepository interface {
	// Create inserts a new story. Returns models.ErrStoryIDTaken when the
	// candidate story_id collides with an existing row; the enclosing
	// transaction stays usable for a retry.
	Create(ctx context.Context, querier DBTX, story *models.Story) error

	// GetByID retrieves a story by its id.
	// Returns models.ErrStoryNotFound if the story does not exist.
	GetByID(ctx context.Context, querier DBTX, storyID string) (*models.Story, error)
}

// EventRepository defines persistence for story events.
type EventRepository interface {
	// InsertAll inserts the given events for a story. Fails on a
	// duplicate (story_id, blaseball_event_id) pair.
	InsertAll(ctx context.Context, querier DBTX, storyID string, events []models.StoryEvent) error

	// UpsertAll inserts or overwrites events by their natural key
	// (story_id, blaseball_event_id); an existing pair has its
	// description and visual replaced in place. Replaying the same batch
	// leaves the stored state unchanged.
	UpsertAll(ctx context.Context, querier DBTX, storyID string, events []models.StoryEvent) error

	// ListByStoryID returns every event belonging to the story, in
	// insertion order.
	ListByStoryID(ctx context.Context, querier DBTX, storyID string) ([]models.StoryEvent, error)
}
