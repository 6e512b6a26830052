package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/forkful/forkful-backend/internal/api"
	"github.com/forkful/forkful-backend/internal/middleware"
	"github.com/forkful/forkful-backend/internal/service"
)

// Handlers bundles the API handlers the router wires up.
type Handlers struct {
	Auth    *api.AuthHandler
	Recipe  *api.RecipeHandler
	Catalog *api.CatalogHandler
	Profile *api.ProfileHandler
}

// SetupRouter configures the application routes. Catalog reads and single
// recipe reads are public; everything that mutates state sits behind
// authentication, with writes rate limited when Redis is available.
func SetupRouter(h Handlers, authService service.IAuthService, redisClient *redis.Client, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	h.Auth.RegisterRoutes(v1)
	h.Catalog.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))

	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, map[string]middleware.RateLimitConfig{
			"write": {Window: time.Minute, Limit: 30},
		})
		protected.Use(limiter.Limit("write"))
	}

	h.Recipe.RegisterRoutes(v1, protected)
	h.Profile.RegisterRoutes(v1, protected)

	return router
}
