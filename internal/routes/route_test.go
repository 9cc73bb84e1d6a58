package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/config"
	"github.com/goplan-app/goplan-server/internal/container"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:   "test",
		MongoDBName:   "goplan_test",
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
		AllowedOrigin: "http://localhost:3000",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ct := container.NewContainer(cfg, logger, nil)
	return SetupRoutes(ct)
}

func do(r *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouteTable(t *testing.T) {
	r := testRouter()
	planID := primitive.NewObjectID().Hex()
	participantID := primitive.NewObjectID().Hex()

	t.Run("health", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/health"))
	})

	// Updates are PUT; the auth middleware answering 401 proves the route
	// is registered, while an unregistered method falls through to 404.
	t.Run("plan update is PUT", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPut, "/api/v1/plans/"+planID))
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/api/v1/plans/"+planID))
	})

	t.Run("participant status is PUT", func(t *testing.T) {
		path := "/api/v1/plans/" + planID + "/participants/" + participantID
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPut, path))
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, path))
	})

	t.Run("profile and settings are PUT", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPut, "/api/v1/user/profile"))
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/api/v1/user/profile"))
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPut, "/api/v1/user/settings"))
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/api/v1/user/settings"))
	})
}
