package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/metrics"
	"rental-readiness-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const premiumCache = "premium"

// ProfileStore reads the account fields this system needs. The premium flag is
// cached in Redis when a client is configured.
type ProfileStore struct {
	db     Querier
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewProfileStore accepts a nil redis client, in which case every lookup hits Postgres.
func NewProfileStore(db Querier, redisClient *redis.Client, ttl time.Duration, log logger.Logger) *ProfileStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileStore{db: db, redis: redisClient, ttl: ttl, logger: log}
}

func premiumKey(userID string) string {
	return "user:premium:" + userID
}

// IsPremium reports the user's premium flag. Unknown users are not premium.
func (s *ProfileStore) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	if s.redis != nil {
		val, err := s.redis.Get(ctx, premiumKey(userID)).Result()
		switch {
		case err == nil:
			metrics.CacheLookups.WithLabelValues(premiumCache, "hit").Inc()
			return val == "1", nil
		case stderrors.Is(err, redis.Nil):
			metrics.CacheLookups.WithLabelValues(premiumCache, "miss").Inc()
		default:
			metrics.CacheLookups.WithLabelValues(premiumCache, "error").Inc()
			s.logger.Warn("premium cache read failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}

	var premium bool
	err := s.db.QueryRowContext(ctx, `SELECT is_premium FROM users WHERE id = $1`, userID).Scan(&premium)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return false, queryError("user_premium", err)
	}

	if s.redis != nil {
		val := "0"
		if premium {
			val = "1"
		}
		if err := s.redis.Set(ctx, premiumKey(userID), val, s.ttl).Err(); err != nil {
			s.logger.Warn("premium cache write failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}
	return premium, nil
}

// Contact returns the notification fields of a user.
func (s *ProfileStore) Contact(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, COALESCE(phone, ''), COALESCE(first_name, ''), is_premium FROM users WHERE id = $1`,
		userID).Scan(&p.UserID, &p.Email, &p.Phone, &p.FirstName, &p.IsPremium)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown user: %s", userID))
	}
	if err != nil {
		return nil, queryError("user_contact", err)
	}
	return &p, nil
}
