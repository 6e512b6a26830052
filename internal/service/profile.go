package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
)

// ProfileService handles user profile edits and account state. Users are
// never hard-deleted; deactivation clears the active flag only.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

// ProfileUpdate carries the user-editable fields; nil means leave the field
// unchanged.
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	Avatar      *string
	Preferences *models.Preferences
}

// GetProfile retrieves a user aggregate.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies profile edits under the aggregate version check.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, update *ProfileUpdate) (*models.User, error) {
	return mutateUser(ctx, s.db, userID, func(u *models.User) error {
		if update.Name != nil {
			if *update.Name == "" {
				return fmt.Errorf("name is required: %w", ErrInvalidArgument)
			}
			if len(*update.Name) > maxNameLen {
				return fmt.Errorf("name exceeds %d characters: %w", maxNameLen, ErrInvalidArgument)
			}
			u.Name = *update.Name
		}
		if update.Bio != nil {
			if len(*update.Bio) > maxBioLen {
				return fmt.Errorf("bio exceeds %d characters: %w", maxBioLen, ErrInvalidArgument)
			}
			u.Bio = *update.Bio
		}
		if update.Avatar != nil {
			u.Avatar = *update.Avatar
		}
		if update.Preferences != nil {
			prefs := *update.Preferences
			if prefs.Difficulty != "" && !models.ValidDifficulty(prefs.Difficulty) {
				return fmt.Errorf("unknown difficulty %q: %w", prefs.Difficulty, ErrInvalidArgument)
			}
			for _, label := range prefs.Dietary {
				if !models.ValidDietaryLabel(label) {
					return fmt.Errorf("unknown dietary label %q: %w", label, ErrInvalidArgument)
				}
			}
			u.Preferences = prefs
		}
		return nil
	})
}

// Deactivate clears the active flag; the account and its social edges stay.
func (s *ProfileService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	_, err := mutateUser(ctx, s.db, userID, func(u *models.User) error {
		u.IsActive = false
		return nil
	})
	return err
}
