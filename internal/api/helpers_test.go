package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/middleware"
	"github.com/forkful/forkful-backend/internal/models"
	"github.com/forkful/forkful-backend/internal/service"
	"github.com/forkful/forkful-backend/internal/testhelpers"
)

const testJWTSecret = "test-secret"

// memoryMediaStore keeps uploaded objects in a map so the image endpoints
// can be exercised without S3.
type memoryMediaStore struct {
	objects map[string][]byte
}

func newMemoryMediaStore() *memoryMediaStore {
	return &memoryMediaStore{objects: map[string][]byte{}}
}

func (m *memoryMediaStore) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "https://media.test/" + key, nil
}

func (m *memoryMediaStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

// setupTestRouter builds the full route tree over an in-memory database,
// mirroring the production wiring minus Redis.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	router, db, _ := setupTestRouterWithMedia(t)
	return router, db
}

func setupTestRouterWithMedia(t *testing.T) (*gin.Engine, *gorm.DB, *memoryMediaStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()
	notifier := service.NoopNotifier{}

	authService := service.NewAuthService(db, testJWTSecret)
	profileService := service.NewProfileService(db)
	recipeService := service.NewRecipeService(db, notifier, logger)
	ratingService := service.NewRatingService(db, notifier, logger)
	socialService := service.NewSocialService(db, notifier, logger)
	commentService := service.NewCommentService(db, notifier, logger)
	catalogService := service.NewCatalogService(db, nil, logger)
	mediaStore := newMemoryMediaStore()

	router := gin.New()
	v1 := router.Group("/api/v1")

	NewAuthHandler(authService).RegisterRoutes(v1)
	NewCatalogHandler(catalogService).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))

	NewRecipeHandler(recipeService, ratingService, socialService, commentService, mediaStore).RegisterRoutes(v1, protected)
	NewProfileHandler(profileService, recipeService, socialService).RegisterRoutes(v1, protected)

	return router, db, mediaStore
}

var testUserSeq int

// createUserAndToken registers a user through the auth service and returns
// it with a valid bearer token.
func createUserAndToken(t *testing.T, db *gorm.DB) (*models.User, string) {
	t.Helper()
	testUserSeq++
	svc := service.NewAuthService(db, testJWTSecret)
	user, token, err := svc.Register(context.Background(),
		fmt.Sprintf("Test User %d", testUserSeq),
		fmt.Sprintf("user%d@example.com", testUserSeq),
		"password123")
	require.NoError(t, err)
	return user, token
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func validRecipePayload() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Test Pasta",
		"description": "A recipe used by the handler tests.",
		"ingredients": []map[string]interface{}{
			{"name": "pasta", "quantity": "400", "unit": "g"},
		},
		"instructions": []map[string]interface{}{
			{"step": 1, "text": "Cook the pasta."},
		},
		"prep_time":  10,
		"cook_time":  15,
		"servings":   4,
		"difficulty": "Easy",
		"cuisine":    "Italian",
		"category":   "Dinner",
	}
}
