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

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxNoteLen        = 100
	maxInstructionLen = 1000
	maxReviewLen      = 500
	maxCommentLen     = 300
	maxReplyLen       = 200
	maxBioLen         = 200
	maxNameLen        = 50
)

// RecipeService owns the recipe aggregate lifecycle: creation, content
// edits, visibility transitions and counters.
type RecipeService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// RecipeUpdate carries the author-editable content fields; nil means leave
// the field unchanged.
type RecipeUpdate struct {
	Title        *string
	Description  *string
	Ingredients  *models.IngredientList
	Instructions *models.InstructionList
	Images       *models.ImageList
	PrepTime     *int
	CookTime     *int
	Servings     *int
	Difficulty   *string
	Cuisine      *string
	Category     *string
	Tags         *models.JSONBStringArray
	Dietary      *models.JSONBStringArray
	Nutrition    *models.Nutrition
	IsPublic     *bool
	Source       *string
}

// CreateRecipe validates and stores a new recipe in draft state. Server-owned
// fields (ratings, likes, comments, counters) start empty regardless of input.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	recipe.Ratings = models.RatingList{}
	recipe.Comments = models.CommentList{}
	recipe.Likes = models.UUIDSet{}
	recipe.AverageRating = 0
	recipe.TotalRatings = 0
	recipe.LikeCount = 0
	recipe.Views = 0
	recipe.Saves = 0
	recipe.ReportCount = 0
	recipe.IsReported = false
	recipe.IsPublished = false
	recipe.IsFeatured = false
	recipe.Version = 0

	recipe.NormalizeTags()
	recipe.NormalizeImages()
	renumberInstructions(recipe)

	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}

	if recipe.AuthorID != nil {
		if err := refreshAuthorStats(ctx, s.db, *recipe.AuthorID); err != nil {
			s.logger.Warn("author stats refresh failed",
				zap.String("author_id", recipe.AuthorID.String()),
				zap.Error(err))
		}
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &recipe, nil
}

// IncrementViews bumps the view counter with a single atomic update. No
// read-modify-write cycle is involved, so a racing read may land before or
// after but the increment is never lost or doubled.
func (s *RecipeService) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateRecipe applies author-only content edits.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id, callerID uuid.UUID, update *RecipeUpdate) (*models.Recipe, error) {
	return mutateRecipe(ctx, s.db, id, func(r *models.Recipe) error {
		if r.AuthorID == nil || *r.AuthorID != callerID {
			return fmt.Errorf("recipe %s: caller is not the author: %w", id, ErrForbidden)
		}
		applyUpdate(r, update)
		r.NormalizeTags()
		renumberInstructions(r)
		return validateRecipe(r)
	})
}

// AddImage attaches an uploaded image to a recipe. The first image a
// recipe receives becomes its primary image.
func (s *RecipeService) AddImage(ctx context.Context, id, callerID uuid.UUID, image models.RecipeImage) (*models.Recipe, error) {
	if image.URL == "" {
		return nil, fmt.Errorf("image url is required: %w", ErrInvalidArgument)
	}
	return mutateRecipe(ctx, s.db, id, func(r *models.Recipe) error {
		if r.AuthorID == nil || *r.AuthorID != callerID {
			return fmt.Errorf("recipe %s: caller is not the author: %w", id, ErrForbidden)
		}
		r.Images = append(r.Images, image)
		r.NormalizeImages()
		return nil
	})
}

// RemoveImage detaches an image by storage key and returns the key so the
// caller can delete the underlying object.
func (s *RecipeService) RemoveImage(ctx context.Context, id, callerID uuid.UUID, storageID string) (*models.Recipe, error) {
	if storageID == "" {
		return nil, fmt.Errorf("storage id is required: %w", ErrInvalidArgument)
	}
	return mutateRecipe(ctx, s.db, id, func(r *models.Recipe) error {
		if r.AuthorID == nil || *r.AuthorID != callerID {
			return fmt.Errorf("recipe %s: caller is not the author: %w", id, ErrForbidden)
		}
		kept := r.Images[:0]
		found := false
		for _, img := range r.Images {
			if img.StorageID == storageID {
				found = true
				continue
			}
			kept = append(kept, img)
		}
		if !found {
			return fmt.Errorf("image %s: %w", storageID, ErrNotFound)
		}
		r.Images = kept
		r.NormalizeImages()
		return nil
	})
}

// PublishRecipe moves a draft to published. The transition is one-way;
// publishing an already published recipe is a no-op.
func (s *RecipeService) PublishRecipe(ctx context.Context, id, callerID uuid.UUID) (*models.Recipe, error) {
	return mutateRecipe(ctx, s.db, id, func(r *models.Recipe) error {
		if r.AuthorID == nil || *r.AuthorID != callerID {
			return fmt.Errorf("recipe %s: caller is not the author: %w", id, ErrForbidden)
		}
		r.IsPublished = true
		return nil
	})
}

// SetFeatured flags a recipe for the featured shelf. Capability checks for
// this admin operation live at the boundary.
func (s *RecipeService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Recipe, error) {
	return mutateRecipe(ctx, s.db, id, func(r *models.Recipe) error {
		r.IsFeatured = featured
		return nil
	})
}

// DeleteRecipe soft-removes a recipe; only the author or an admin may do so.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id, callerID uuid.UUID, isAdmin bool) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return err
	}
	if !isAdmin && (recipe.AuthorID == nil || *recipe.AuthorID != callerID) {
		return fmt.Errorf("recipe %s: caller is not the author: %w", id, ErrForbidden)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
		return err
	}

	if recipe.AuthorID != nil {
		if err := refreshAuthorStats(ctx, s.db, *recipe.AuthorID); err != nil {
			s.logger.Warn("author stats refresh failed",
				zap.String("author_id", recipe.AuthorID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// ReportRecipe bumps the report counter atomically and flags the recipe.
func (s *RecipeService) ReportRecipe(ctx context.Context, id uuid.UUID, reason string) error {
	res := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"report_count": gorm.Expr("report_count + 1"),
			"is_reported":  true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}

	recipe, err := s.GetRecipe(ctx, id)
	if err == nil {
		fireAndForget(s.logger, "recipe-reported", func() error {
			return s.notifier.RecipeReported(recipe, reason)
		})
	}
	return nil
}

// ListByAuthor lists a user's recipes, newest first.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	result := make([]*models.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

// GetFavoriteRecipes resolves a user's favorite set to recipes.
func (s *RecipeService) GetFavoriteRecipes(ctx context.Context, userID uuid.UUID) ([]*models.Recipe, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	if len(user.Favorites) == 0 {
		return []*models.Recipe{}, nil
	}

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Where("id IN ?", []uuid.UUID(user.Favorites)).Find(&recipes).Error; err != nil {
		return nil, err
	}
	result := make([]*models.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

func applyUpdate(r *models.Recipe, u *RecipeUpdate) {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Ingredients != nil {
		r.Ingredients = *u.Ingredients
	}
	if u.Instructions != nil {
		r.Instructions = *u.Instructions
	}
	if u.Images != nil {
		r.Images = *u.Images
	}
	if u.PrepTime != nil {
		r.PrepTime = *u.PrepTime
	}
	if u.CookTime != nil {
		r.CookTime = *u.CookTime
	}
	if u.Servings != nil {
		r.Servings = *u.Servings
	}
	if u.Difficulty != nil {
		r.Difficulty = *u.Difficulty
	}
	if u.Cuisine != nil {
		r.Cuisine = *u.Cuisine
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Tags != nil {
		r.Tags = *u.Tags
	}
	if u.Dietary != nil {
		r.Dietary = *u.Dietary
	}
	if u.Nutrition != nil {
		r.Nutrition = u.Nutrition
	}
	if u.IsPublic != nil {
		r.IsPublic = *u.IsPublic
	}
	if u.Source != nil {
		r.Source = *u.Source
	}
}

func renumberInstructions(r *models.Recipe) {
	for i := range r.Instructions {
		r.Instructions[i].Step = i + 1
	}
}

func validateRecipe(r *models.Recipe) error {
	switch {
	case r.Title == "":
		return fmt.Errorf("title is required: %w", ErrInvalidArgument)
	case len(r.Title) > maxTitleLen:
		return fmt.Errorf("title exceeds %d characters: %w", maxTitleLen, ErrInvalidArgument)
	case r.Description == "":
		return fmt.Errorf("description is required: %w", ErrInvalidArgument)
	case len(r.Description) > maxDescriptionLen:
		return fmt.Errorf("description exceeds %d characters: %w", maxDescriptionLen, ErrInvalidArgument)
	case len(r.Ingredients) == 0:
		return fmt.Errorf("at least one ingredient is required: %w", ErrInvalidArgument)
	case r.PrepTime < 1:
		return fmt.Errorf("prep time must be at least 1 minute: %w", ErrInvalidArgument)
	case r.CookTime < 1:
		return fmt.Errorf("cook time must be at least 1 minute: %w", ErrInvalidArgument)
	case r.Servings < 1:
		return fmt.Errorf("servings must be at least 1: %w", ErrInvalidArgument)
	case !models.ValidDifficulty(r.Difficulty):
		return fmt.Errorf("unknown difficulty %q: %w", r.Difficulty, ErrInvalidArgument)
	case !models.ValidCuisine(r.Cuisine):
		return fmt.Errorf("unknown cuisine %q: %w", r.Cuisine, ErrInvalidArgument)
	case !models.ValidCategory(r.Category):
		return fmt.Errorf("unknown category %q: %w", r.Category, ErrInvalidArgument)
	}

	for _, ing := range r.Ingredients {
		if ing.Name == "" || ing.Quantity == "" {
			return fmt.Errorf("ingredient name and quantity are required: %w", ErrInvalidArgument)
		}
		if len(ing.Note) > maxNoteLen {
			return fmt.Errorf("ingredient note exceeds %d characters: %w", maxNoteLen, ErrInvalidArgument)
		}
		if !models.ValidIngredientUnit(ing.Unit) {
			return fmt.Errorf("unknown ingredient unit %q: %w", ing.Unit, ErrInvalidArgument)
		}
	}

	for _, ins := range r.Instructions {
		if ins.Text == "" {
			return fmt.Errorf("instruction text is required: %w", ErrInvalidArgument)
		}
		if len(ins.Text) > maxInstructionLen {
			return fmt.Errorf("instruction exceeds %d characters: %w", maxInstructionLen, ErrInvalidArgument)
		}
	}

	for _, label := range r.Dietary {
		if !models.ValidDietaryLabel(label) {
			return fmt.Errorf("unknown dietary label %q: %w", label, ErrInvalidArgument)
		}
	}

	if n := r.Nutrition; n != nil {
		for _, v := range []float64{n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber, n.Sugar, n.Sodium} {
			if v < 0 {
				return fmt.Errorf("nutrition values must be non-negative: %w", ErrInvalidArgument)
			}
		}
	}
	return nil
}

// refreshAuthorStats recomputes a user's aggregate counters from their
// recipes. Cross-aggregate stats are eventually consistent; the per-recipe
// invariants stay strict.
func refreshAuthorStats(ctx context.Context, db *gorm.DB, authorID uuid.UUID) error {
	var agg struct {
		RecipesCreated int
		TotalLikes     int
		TotalRatings   int
		RatingSum      float64
	}
	err := db.WithContext(ctx).Model(&models.Recipe{}).
		Select("COUNT(*) AS recipes_created, COALESCE(SUM(like_count), 0) AS total_likes, COALESCE(SUM(total_ratings), 0) AS total_ratings, COALESCE(SUM(average_rating * total_ratings), 0) AS rating_sum").
		Where("author_id = ?", authorID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	_, err = mutateUser(ctx, db, authorID, func(u *models.User) error {
		u.Stats.RecipesCreated = agg.RecipesCreated
		u.Stats.TotalLikes = agg.TotalLikes
		u.Stats.TotalRatings = agg.TotalRatings
		if agg.TotalRatings > 0 {
			u.Stats.AverageRating = agg.RatingSum / float64(agg.TotalRatings)
		} else {
			u.Stats.AverageRating = 0
		}
		return nil
	})
	return err
}
