package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
)

// Compile-time check
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	logger *zap.Logger
}

// NewPgStoryRepository creates a new PostgreSQL-backed StoryRepository.
func NewPgStoryRepository(logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		logger: logger.Named("PgStoryRepo"),
	}
}

// Create inserts a new story row. Runs in a nested transaction so a
// story_id collision can be retried by the caller.
func (r *pgStoryRepository) Create(ctx context.Context, querier DBTX, story *models.Story) error {
	query := `
        INSERT INTO stories (story_id, game_id, user_id, title)
        VALUES ($1, $2, $3, $4)
    `
	logFields := []zap.Field{zap.String("storyID", story.StoryID), zap.String("userID", story.UserID)}
	r.logger.Debug("Creating story", logFields...)

	err := execInNested(ctx, querier, query, story.StoryID, story.GameID, story.UserID, story.Title)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "stories_pkey" {
			r.logger.Warn("Story id collision on insert", logFields...)
			return models.ErrStoryIDTaken
		}
		r.logger.Error("Failed to create story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания story: %w", err)
	}
	r.logger.Info("Story created successfully", logFields...)
	return nil
}

// GetByID retrieves a story by its id.
func (r *pgStoryRepository) GetByID(ctx context.Context, querier DBTX, storyID string) (*models.Story, error) {
	query := `
        SELECT story_id, game_id, user_id, title
        FROM stories
        WHERE story_id = $1
    `
	story := &models.Story{}
	logFields := []zap.Field{zap.String("storyID", storyID)}
	r.logger.Debug("Getting story by ID", logFields...)

	err := querier.QueryRow(ctx, query, storyID).Scan(&story.StoryID, &story.GameID, &story.UserID, &story.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Story not found by ID", logFields...)
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения story %s: %w", storyID, err)
	}
	r.logger.Debug("Story retrieved successfully", logFields...)
	return story, nil
}
