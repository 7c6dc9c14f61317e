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

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(logger *zap.Logger) UserRepository {
	return &pgUserRepository{
		logger: logger.Named("PgUserRepo"),
	}
}

// Create inserts a new user into the database. The insert runs in a
// nested transaction (savepoint) when the querier supports it, so a
// rejected candidate id does not abort the caller's transaction.
func (r *pgUserRepository) Create(ctx context.Context, querier DBTX, user *models.User) error {
	query := `INSERT INTO users (user_id, username, user_token) VALUES ($1, $2, $3)`
	// Токен намеренно не логируем
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", user.UserID))

	err := execInNested(ctx, querier, query, user.UserID, user.Username, user.UserToken)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation: the random candidate id collided
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("User id collision on insert", zap.String("userID", user.UserID))
			return models.ErrUserIDTaken
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("userID", user.UserID))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.UserID))
	return nil
}

// GetByCredentials retrieves a user by exact id/token match.
func (r *pgUserRepository) GetByCredentials(ctx context.Context, querier DBTX, userID, userToken string) (*models.User, error) {
	query := `SELECT user_id, username, user_token FROM users WHERE user_id = $1 AND user_token = $2`
	user := &models.User{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", userID))

	err := querier.QueryRow(ctx, query, userID, userToken).Scan(&user.UserID, &user.Username, &user.UserToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by credentials", zap.String("userID", userID))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by credentials from postgres", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to get user by credentials from postgres: %w", err)
	}
	return user, nil
}
