package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forkful/forkful-backend/internal/models"
)

// trendingWindow is the trailing period scoping the trending shelf.
const trendingWindow = 7 * 24 * time.Hour

// shelfCacheTTL bounds staleness of the cached popular/trending/featured
// shelves.
const shelfCacheTTL = time.Minute

var validate = validator.New()

// SearchFilters restrict a catalog search. Zero values impose no
// restriction; all present filters compose conjunctively.
type SearchFilters struct {
	Category   string
	Cuisine    string
	Difficulty string
	Dietary    []string
	MaxTime    int     `validate:"gte=0"`
	MinRating  float64 `validate:"gte=0,lte=5"`
}

// CatalogService serves read-only ranked and filtered projections over the
// recipe collection. Queries never mutate state and tolerate empty results.
// When a Redis client is configured the ranked shelves are cached briefly;
// cache failures degrade to direct queries.
type CatalogService struct {
	db     *gorm.DB
	cache  *redis.Client
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService instance. cache may be nil.
func NewCatalogService(db *gorm.DB, cache *redis.Client, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// Search returns public, published recipes matching the term and filters.
// Without a term the filtered set is unranked.
func (s *CatalogService) Search(ctx context.Context, term string, filters SearchFilters) ([]*models.Recipe, error) {
	if err := s.validateFilters(filters); err != nil {
		return nil, err
	}

	query := s.visible(ctx)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Cuisine != "" {
		query = query.Where("cuisine = ?", filters.Cuisine)
	}
	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}
	if len(filters.Dietary) > 0 {
		// Membership of at least one requested label.
		dietaryCol := s.jsonTextColumn("dietary")
		conds := make([]string, 0, len(filters.Dietary))
		args := make([]interface{}, 0, len(filters.Dietary))
		for _, label := range filters.Dietary {
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", dietaryCol))
			args = append(args, "%"+strings.ToLower(strings.TrimSpace(label))+"%")
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}
	if filters.MaxTime > 0 {
		query = query.Where("prep_time + cook_time <= ?", filters.MaxTime)
	}
	if filters.MinRating > 0 {
		query = query.Where("average_rating >= ?", filters.MinRating)
	}

	if term != "" {
		like := "%" + strings.ToLower(term) + "%"
		tagsCol := s.jsonTextColumn("tags")
		query = query.Where(
			fmt.Sprintf("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(%s) LIKE ?", tagsCol),
			like, like, like,
		)
		// Title matches rank above description and tag matches.
		query = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:  "CASE WHEN LOWER(title) LIKE ? THEN 0 WHEN LOWER(description) LIKE ? THEN 1 ELSE 2 END, average_rating DESC",
				Vars: []interface{}{like, like},
			},
		})
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return toPointers(recipes), nil
}

// GetPopular lists public, published recipes by views then average rating.
func (s *CatalogService) GetPopular(ctx context.Context, limit int) ([]*models.Recipe, error) {
	key := fmt.Sprintf("catalog:popular:%d", limit)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	var recipes []models.Recipe
	err := s.visible(ctx).
		Order("views DESC, average_rating DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	result := toPointers(recipes)
	s.toCache(ctx, key, result)
	return result, nil
}

// GetTrending lists public, published recipes created inside the trending
// window, by views then like count.
func (s *CatalogService) GetTrending(ctx context.Context, limit int) ([]*models.Recipe, error) {
	key := fmt.Sprintf("catalog:trending:%d", limit)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	var recipes []models.Recipe
	err := s.visible(ctx).
		Where("created_at >= ?", time.Now().Add(-trendingWindow)).
		Order("views DESC, like_count DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	result := toPointers(recipes)
	s.toCache(ctx, key, result)
	return result, nil
}

// GetFeatured lists featured public, published recipes, newest first.
func (s *CatalogService) GetFeatured(ctx context.Context, limit int) ([]*models.Recipe, error) {
	key := fmt.Sprintf("catalog:featured:%d", limit)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	var recipes []models.Recipe
	err := s.visible(ctx).
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	result := toPointers(recipes)
	s.toCache(ctx, key, result)
	return result, nil
}

func (s *CatalogService) visible(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("is_public = ? AND is_published = ?", true, true)
}

// jsonTextColumn renders a JSONB column as text for LIKE matching; SQLite
// already stores it as text.
func (s *CatalogService) jsonTextColumn(col string) string {
	if s.db.Dialector.Name() == "postgres" {
		return col + "::text"
	}
	return col
}

func (s *CatalogService) validateFilters(f SearchFilters) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("malformed filters: %v: %w", err, ErrInvalidArgument)
	}
	if f.Category != "" && !models.ValidCategory(f.Category) {
		return fmt.Errorf("unknown category %q: %w", f.Category, ErrInvalidArgument)
	}
	if f.Cuisine != "" && !models.ValidCuisine(f.Cuisine) {
		return fmt.Errorf("unknown cuisine %q: %w", f.Cuisine, ErrInvalidArgument)
	}
	if f.Difficulty != "" && !models.ValidDifficulty(f.Difficulty) {
		return fmt.Errorf("unknown difficulty %q: %w", f.Difficulty, ErrInvalidArgument)
	}
	for _, label := range f.Dietary {
		if !models.ValidDietaryLabel(label) {
			return fmt.Errorf("unknown dietary label %q: %w", label, ErrInvalidArgument)
		}
	}
	return nil
}

func (s *CatalogService) fromCache(ctx context.Context, key string) ([]*models.Recipe, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var recipes []*models.Recipe
	if err := json.Unmarshal(raw, &recipes); err != nil {
		return nil, false
	}
	return recipes, true
}

func (s *CatalogService) toCache(ctx context.Context, key string, recipes []*models.Recipe) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(recipes)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, shelfCacheTTL).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toPointers(recipes []models.Recipe) []*models.Recipe {
	result := make([]*models.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result
}
