package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
)

// CommentService manages a recipe's comment thread. Nesting is one level
// deep: comments take replies, replies do not. Comments and replies are
// immutable once created except for like-set membership.
type CommentService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
}

// NewCommentService creates a new CommentService instance
func NewCommentService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *CommentService {
	return &CommentService{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// AddComment appends a comment to the recipe's thread.
func (s *CommentService) AddComment(ctx context.Context, recipeID, userID uuid.UUID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", ErrInvalidArgument)
	}
	if len(text) > maxCommentLen {
		return nil, fmt.Errorf("comment exceeds %d characters: %w", maxCommentLen, ErrInvalidArgument)
	}

	comment := models.Comment{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	recipe, err := mutateRecipe(ctx, s.db, recipeID, func(r *models.Recipe) error {
		r.Comments = append(r.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyComment(ctx, recipe, userID, text)
	return &comment, nil
}

// AddReply appends a reply to an existing comment. Replies cannot be
// replied to.
func (s *CommentService) AddReply(ctx context.Context, recipeID, commentID, userID uuid.UUID, text string) (*models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("reply text is required: %w", ErrInvalidArgument)
	}
	if len(text) > maxReplyLen {
		return nil, fmt.Errorf("reply exceeds %d characters: %w", maxReplyLen, ErrInvalidArgument)
	}

	reply := models.Reply{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	_, err := mutateRecipe(ctx, s.db, recipeID, func(r *models.Recipe) error {
		comment := r.FindComment(commentID)
		if comment == nil {
			return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}
		comment.Replies = append(comment.Replies, reply)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// ToggleCommentLike flips the user's membership in a comment's like-set and
// returns the new state and count.
func (s *CommentService) ToggleCommentLike(ctx context.Context, recipeID, commentID, userID uuid.UUID) (liked bool, likeCount int, err error) {
	_, err = mutateRecipe(ctx, s.db, recipeID, func(r *models.Recipe) error {
		comment := r.FindComment(commentID)
		if comment == nil {
			return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}
		liked = comment.Likes.Toggle(userID)
		likeCount = len(comment.Likes)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likeCount, nil
}

// DeleteComment removes the whole comment node including its replies in one
// operation. The comment's own author and the recipe's author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, recipeID, commentID, callerID uuid.UUID) error {
	_, err := mutateRecipe(ctx, s.db, recipeID, func(r *models.Recipe) error {
		comment := r.FindComment(commentID)
		if comment == nil {
			return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}
		isRecipeAuthor := r.AuthorID != nil && *r.AuthorID == callerID
		if comment.UserID != callerID && !isRecipeAuthor {
			return fmt.Errorf("comment %s: caller may not delete: %w", commentID, ErrForbidden)
		}

		kept := r.Comments[:0]
		for _, c := range r.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		r.Comments = kept
		return nil
	})
	return err
}

func (s *CommentService) notifyComment(ctx context.Context, recipe *models.Recipe, commenterID uuid.UUID, text string) {
	var commenter models.User
	if err := s.db.WithContext(ctx).First(&commenter, "id = ?", commenterID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("commenter lookup failed", zap.Error(err))
		}
		return
	}

	var author *models.User
	if recipe.AuthorID != nil {
		var a models.User
		if err := s.db.WithContext(ctx).First(&a, "id = ?", *recipe.AuthorID).Error; err == nil {
			author = &a
		}
	}

	fireAndForget(s.logger, "new-comment", func() error {
		return s.notifier.NewComment(recipe, author, &commenter, text)
	})
}
