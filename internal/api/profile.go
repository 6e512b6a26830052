package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkful/forkful-backend/internal/middleware"
	"github.com/forkful/forkful-backend/internal/service"
)

type ProfileHandler struct {
	profileService service.IProfileService
	recipeService  service.IRecipeService
	socialService  service.ISocialService
}

func NewProfileHandler(profileService service.IProfileService, recipeService service.IRecipeService, socialService service.ISocialService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		recipeService:  recipeService,
		socialService:  socialService,
	}
}

func (h *ProfileHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/users/:id", h.GetUser)
	public.GET("/users/:id/recipes", h.ListUserRecipes)

	me := protected.Group("/profile")
	{
		me.GET("", h.GetProfile)
		me.PUT("", h.UpdateProfile)
		me.DELETE("", h.Deactivate)
		me.GET("/favorites", h.ListFavorites)
	}
	protected.POST("/users/:id/follow", h.Follow)
	protected.DELETE("/users/:id/follow", h.Unfollow)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &service.ProfileUpdate{
		Name:        req.Name,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		Preferences: req.Preferences,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) Deactivate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	if err := h.profileService.Deactivate(c.Request.Context(), userID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deactivated"})
}

func (h *ProfileHandler) GetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid user id"})
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) ListUserRecipes(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid user id"})
		return
	}

	recipes, err := h.recipeService.ListByAuthor(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": NewRecipeListResponse(recipes)})
}

func (h *ProfileHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	recipes, err := h.recipeService.GetFavoriteRecipes(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": NewRecipeListResponse(recipes)})
}

func (h *ProfileHandler) Follow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	targetID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid user id"})
		return
	}

	if err := h.socialService.Follow(c.Request.Context(), userID, targetID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "followed"})
}

func (h *ProfileHandler) Unfollow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	targetID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid user id"})
		return
	}

	if err := h.socialService.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}
