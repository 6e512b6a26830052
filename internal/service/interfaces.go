package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/forkful/forkful-backend/internal/models"
	"github.com/forkful/forkful-backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	OAuthLogin(ctx context.Context, googleID, email, name, avatar string) (*models.User, string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update *ProfileUpdate) (*models.User, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// IRecipeService defines the interface for recipe lifecycle operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	UpdateRecipe(ctx context.Context, id, callerID uuid.UUID, update *RecipeUpdate) (*models.Recipe, error)
	AddImage(ctx context.Context, id, callerID uuid.UUID, image models.RecipeImage) (*models.Recipe, error)
	RemoveImage(ctx context.Context, id, callerID uuid.UUID, storageID string) (*models.Recipe, error)
	PublishRecipe(ctx context.Context, id, callerID uuid.UUID) (*models.Recipe, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id, callerID uuid.UUID, isAdmin bool) error
	ReportRecipe(ctx context.Context, id uuid.UUID, reason string) error
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Recipe, error)
	GetFavoriteRecipes(ctx context.Context, userID uuid.UUID) ([]*models.Recipe, error)
}

// IRatingService defines the interface for rating operations
type IRatingService interface {
	SubmitRating(ctx context.Context, recipeID, userID uuid.UUID, score int, review string) (*models.Recipe, error)
	MarkHelpful(ctx context.Context, recipeID, ratingID, userID uuid.UUID) (*models.Recipe, error)
}

// ISocialService defines the interface for follow/like/favorite operations
type ISocialService interface {
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	ToggleLike(ctx context.Context, recipeID, userID uuid.UUID) (liked bool, likeCount int, err error)
	ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (favorited bool, err error)
	IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
}

// ICommentService defines the interface for comment thread operations
type ICommentService interface {
	AddComment(ctx context.Context, recipeID, userID uuid.UUID, text string) (*models.Comment, error)
	AddReply(ctx context.Context, recipeID, commentID, userID uuid.UUID, text string) (*models.Reply, error)
	ToggleCommentLike(ctx context.Context, recipeID, commentID, userID uuid.UUID) (liked bool, likeCount int, err error)
	DeleteComment(ctx context.Context, recipeID, commentID, callerID uuid.UUID) error
}

// ICatalogService defines the interface for catalog queries
type ICatalogService interface {
	Search(ctx context.Context, term string, filters SearchFilters) ([]*models.Recipe, error)
	GetPopular(ctx context.Context, limit int) ([]*models.Recipe, error)
	GetTrending(ctx context.Context, limit int) ([]*models.Recipe, error)
	GetFeatured(ctx context.Context, limit int) ([]*models.Recipe, error)
}

// MediaStore is the boundary to external image storage. The core treats
// URLs and storage keys as opaque strings and never transforms media.
type MediaStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// Compile-time interface checks.
var (
	_ IAuthService    = (*AuthService)(nil)
	_ IProfileService = (*ProfileService)(nil)
	_ IRecipeService  = (*RecipeService)(nil)
	_ IRatingService  = (*RatingService)(nil)
	_ ISocialService  = (*SocialService)(nil)
	_ ICommentService = (*CommentService)(nil)
	_ ICatalogService = (*CatalogService)(nil)
)
