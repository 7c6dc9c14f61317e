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

// maxAllocAttempts bounds the id-collision retry loop. The id space is
// 2^96, so hitting the cap means something is wrong with the store or
// the randomness source, not bad luck.
const maxAllocAttempts = 5

// IdentityService mints anonymous identities and verifies bearer
// credentials. Both methods run against the querier the caller supplies,
// so allocation happens inside the same transaction as the story write
// that triggered it.
type IdentityService interface {
	// Allocate generates a fresh identity (random public id + secret
	// token) and persists it, retrying id collisions with fresh
	// randomness up to a hard cap.
	Allocate(ctx context.Context, querier repository.DBTX) (*models.User, error)

	// Verify reports whether a user exists with exactly this id/token
	// pair. Side-effect free.
	Verify(ctx context.Context, querier repository.DBTX, userID, userToken string) (bool, error)
}

type identityServiceImpl struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewIdentityService creates a new instance of IdentityService.
func NewIdentityService(users repository.UserRepository, logger *zap.Logger) IdentityService {
	return &identityServiceImpl{
		users:  users,
		logger: logger.Named("IdentityService"),
	}
}

func (s *identityServiceImpl) Allocate(ctx context.Context, querier repository.DBTX) (*models.User, error) {
	secret, err := token.NewSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user token: %w", err)
	}

	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		id, err := token.NewID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate user id: %w", err)
		}

		user := &models.User{
			UserID:    id,
			Username:  "",
			UserToken: secret,
		}
		err = s.users.Create(ctx, querier, user)
		if err == nil {
			s.logger.Info("Allocated new identity", zap.String("userID", user.UserID), zap.Int("attempt", attempt))
			return user, nil
		}
		if errors.Is(err, models.ErrUserIDTaken) {
			s.logger.Warn("User id collision, retrying with fresh id", zap.Int("attempt", attempt))
			continue
		}
		return nil, err
	}

	s.logger.Error("Exhausted user id allocation attempts", zap.Int("maxAttempts", maxAllocAttempts))
	return nil, fmt.Errorf("exhausted %d user id allocation attempts: %w", maxAllocAttempts, models.ErrInternalServer)
}

func (s *identityServiceImpl) Verify(ctx context.Context, querier repository.DBTX, userID, userToken string) (bool, error) {
	if userID == "" || userToken == "" {
		return false, nil
	}

	_, err := s.users.GetByCredentials(ctx, querier, userID, userToken)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
