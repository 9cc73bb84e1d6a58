package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/connect"
	"github.com/goplan-app/goplan-server/internal/middleware"
	"github.com/goplan-app/goplan-server/internal/models"
	"github.com/goplan-app/goplan-server/internal/services"
)

func newAvatarRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewUploadService(connect.NewBlobHandle("", "", ""), nil, logger)
	user := &models.User{ID: primitive.NewObjectID(), Name: "Ana"}

	r := gin.New()
	r.POST("/user/avatar", func(c *gin.Context) { c.Set(middleware.UserKey, user) }, UploadAvatar(svc))
	return r
}

func postMultipart(t *testing.T, r *gin.Engine, field string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, "doc.bin")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/avatar", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAvatarFormField(t *testing.T) {
	t.Run("reads the image field", func(t *testing.T) {
		r := newAvatarRouter()

		// The part is found under "image"; it then fails the MIME check,
		// which proves the field was read.
		w := postMultipart(t, r, "image")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "only image files are allowed")
	})

	t.Run("other field names are not accepted", func(t *testing.T) {
		r := newAvatarRouter()

		w := postMultipart(t, r, "avatar")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "image file is required")
	})
}
