package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
)

// Compile-time check
var _ EventRepository = (*pgEventRepository)(nil)

type pgEventRepository struct {
	logger *zap.Logger
}

// NewPgEventRepository creates a new PostgreSQL-backed EventRepository.
func NewPgEventRepository(logger *zap.Logger) EventRepository {
	return &pgEventRepository{
		logger: logger.Named("PgEventRepo"),
	}
}

// InsertAll inserts events for a freshly created story.
func (r *pgEventRepository) InsertAll(ctx context.Context, querier DBTX, storyID string, events []models.StoryEvent) error {
	query := `
        INSERT INTO events (story_id, blaseball_event_id, description, visual, ordinal)
        VALUES ($1, $2, $3, $4, $5)
    `
	logFields := []zap.Field{zap.String("storyID", storyID), zap.Int("count", len(events))}
	r.logger.Debug("Inserting events", logFields...)

	for i, event := range events {
		_, err := querier.Exec(ctx, query, storyID, event.BlaseballEventID, event.Description, string(event.Visual), i)
		if err != nil {
			r.logger.Error("Failed to insert event",
				append(logFields, zap.Stringer("blaseballEventID", event.BlaseballEventID), zap.Error(err))...)
			return fmt.Errorf("ошибка вставки event %s: %w", event.BlaseballEventID, err)
		}
	}
	r.logger.Info("Events inserted successfully", logFields...)
	return nil
}

// UpsertAll inserts or overwrites events by natural key.
func (r *pgEventRepository) UpsertAll(ctx context.Context, querier DBTX, storyID string, events []models.StoryEvent) error {
	query := `
        INSERT INTO events (story_id, blaseball_event_id, description, visual, ordinal)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (story_id, blaseball_event_id) DO UPDATE
        SET description = EXCLUDED.description,
            visual = EXCLUDED.visual,
            ordinal = EXCLUDED.ordinal
    `
	logFields := []zap.Field{zap.String("storyID", storyID), zap.Int("count", len(events))}
	r.logger.Debug("Upserting events", logFields...)

	for i, event := range events {
		_, err := querier.Exec(ctx, query, storyID, event.BlaseballEventID, event.Description, string(event.Visual), i)
		if err != nil {
			r.logger.Error("Failed to upsert event",
				append(logFields, zap.Stringer("blaseballEventID", event.BlaseballEventID), zap.Error(err))...)
			return fmt.Errorf("ошибка upsert event %s: %w", event.BlaseballEventID, err)
		}
	}
	r.logger.Info("Events upserted successfully", logFields...)
	return nil
}

// ListByStoryID returns every event of the story in batch order.
func (r *pgEventRepository) ListByStoryID(ctx context.Context, querier DBTX, storyID string) ([]models.StoryEvent, error) {
	query := `
        SELECT story_id, blaseball_event_id, description, visual, ordinal
        FROM events
        WHERE story_id = $1
        ORDER BY ordinal, blaseball_event_id
    `
	logFields := []zap.Field{zap.String("storyID", storyID)}
	r.logger.Debug("Listing events by story ID", logFields...)

	events := make([]models.StoryEvent, 0)
	if err := pgxscan.Select(ctx, querier, &events, query, storyID); err != nil {
		r.logger.Error("Failed to list events by story ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения events для story %s: %w", storyID, err)
	}
	return events, nil
}
