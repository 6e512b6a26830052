package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
)

// SocialService maintains the follow graph, recipe likes and favorites.
// Every social action reduces to toggling membership in one aggregate's set;
// the follow edge is the only action spanning two aggregates and runs inside
// a single transaction so neither side is ever written alone.
type SocialService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
}

// NewSocialService creates a new SocialService instance
func NewSocialService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *SocialService {
	return &SocialService{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// Follow inserts the directed edge follower -> followee on both sides.
// Self-follows and repeated follows are no-ops.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return nil
	}

	var created bool
	err := mutateUserPair(ctx, s.db, followerID, followeeID, func(follower, followee *models.User) error {
		if follower.IsFollowing(followeeID) {
			return nil
		}
		follower.Following = follower.Following.Add(followeeID)
		followee.Followers = followee.Followers.Add(followerID)
		created = true
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		follower, followee := s.loadUserPair(ctx, followerID, followeeID)
		if follower != nil && followee != nil {
			fireAndForget(s.logger, "new-follower", func() error {
				return s.notifier.NewFollower(followee, follower)
			})
		}
	}
	return nil
}

// Unfollow removes the directed edge from both sides; removing an absent
// edge is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return nil
	}
	return mutateUserPair(ctx, s.db, followerID, followeeID, func(follower, followee *models.User) error {
		follower.Following = follower.Following.Remove(followeeID)
		followee.Followers = followee.Followers.Remove(followerID)
		return nil
	})
}

// ToggleLike flips the user's membership in the recipe's like-set and
// returns the new state and count. Duplicate concurrent calls converge
// because membership is idempotent.
func (s *SocialService) ToggleLike(ctx context.Context, recipeID, userID uuid.UUID) (liked bool, likeCount int, err error) {
	recipe, err := mutateRecipe(ctx, s.db, recipeID, func(r *models.Recipe) error {
		liked = r.ToggleLike(userID)
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	if recipe.AuthorID != nil {
		if err := refreshAuthorStats(ctx, s.db, *recipe.AuthorID); err != nil {
			s.logger.Warn("author stats refresh failed",
				zap.String("author_id", recipe.AuthorID.String()),
				zap.Error(err))
		}
	}
	return liked, recipe.LikeCount, nil
}

// ToggleFavorite flips the recipe's membership in the user's bookmark set.
// Favorites carry no back-reference on the recipe beyond the saves counter.
func (s *SocialService) ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (favorited bool, err error) {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return false, err
	}

	_, err = mutateUser(ctx, s.db, userID, func(u *models.User) error {
		favorited = u.Favorites.Toggle(recipeID)
		return nil
	})
	if err != nil {
		return false, err
	}

	delta := "saves + 1"
	if !favorited {
		delta = "CASE WHEN saves > 0 THEN saves - 1 ELSE 0 END"
	}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		UpdateColumn("saves", gorm.Expr(delta)).Error; err != nil {
		s.logger.Warn("saves counter update failed",
			zap.String("recipe_id", recipeID.String()),
			zap.Error(err))
	}
	return favorited, nil
}

// IsFavorited reports whether the user has bookmarked the recipe.
func (s *SocialService) IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return false, err
	}
	return user.HasFavorited(recipeID), nil
}

func (s *SocialService) recipeExists(ctx context.Context, recipeID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
	}
	return nil
}

func (s *SocialService) loadUserPair(ctx context.Context, aID, bID uuid.UUID) (*models.User, *models.User) {
	var a, b models.User
	if err := s.db.WithContext(ctx).First(&a, "id = ?", aID).Error; err != nil {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).First(&b, "id = ?", bID).Error; err != nil {
		return nil, nil
	}
	return &a, &b
}
