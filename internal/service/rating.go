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

// RatingService collects per-recipe ratings. Each user holds at most one
// rating per recipe; resubmitting replaces the prior entry, and the derived
// average/count land in the same atomic write as the rating-list change.
type RatingService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
}

// NewRatingService creates a new RatingService instance
func NewRatingService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *RatingService {
	return &RatingService{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitRating records the user's score (1-5) with an optional review.
func (s *RatingService) SubmitRating(ctx context.Context, recipeID, userID uuid.UUID, score int, review string) (*models.Recipe, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("score %d is outside 1-5: %w", score, ErrInvalidArgument)
	}
	if len(review) > maxReviewLen {
		return nil, fmt.Errorf("review exceeds %d characters: %w", maxReviewLen, ErrInvalidArgument)
	}

	recipe, err := mutateRecipe(ctx, s.db, recipeID, func(r *models.Recipe) error {
		r.ApplyRating(userID, score, review)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if recipe.AuthorID != nil {
		if err := refreshAuthorStats(ctx, s.db, *recipe.AuthorID); err != nil {
			s.logger.Warn("author stats refresh failed",
				zap.String("author_id", recipe.AuthorID.String()),
				zap.Error(err))
		}
	}

	author, rater := s.loadNotificationParties(ctx, recipe.AuthorID, userID)
	if rater != nil {
		fireAndForget(s.logger, "recipe-rated", func() error {
			return s.notifier.RecipeRated(recipe, author, rater, score)
		})
	}
	return recipe, nil
}

// MarkHelpful adds the user to a rating's helpful-set; repeated calls by the
// same user are no-ops.
func (s *RatingService) MarkHelpful(ctx context.Context, recipeID, ratingID, userID uuid.UUID) (*models.Recipe, error) {
	return mutateRecipe(ctx, s.db, recipeID, func(r *models.Recipe) error {
		rating := r.FindRating(ratingID)
		if rating == nil {
			return fmt.Errorf("rating %s: %w", ratingID, ErrNotFound)
		}
		rating.Helpful = rating.Helpful.Add(userID)
		return nil
	})
}

func (s *RatingService) loadNotificationParties(ctx context.Context, authorID *uuid.UUID, raterID uuid.UUID) (author, rater *models.User) {
	var r models.User
	if err := s.db.WithContext(ctx).First(&r, "id = ?", raterID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("rater lookup failed", zap.Error(err))
		}
		return nil, nil
	}
	rater = &r

	if authorID != nil {
		var a models.User
		if err := s.db.WithContext(ctx).First(&a, "id = ?", *authorID).Error; err == nil {
			author = &a
		}
	}
	return author, rater
}
