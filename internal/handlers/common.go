package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/middleware"
	"github.com/goplan-app/goplan-server/internal/models"
)

// fail writes the error as JSON using its mapped HTTP status. Unknown errors
// collapse to a generic 500 so internals never leak to clients.
func fail(c *gin.Context, err error) {
	e := apperrors.As(err)
	if e == nil {
		c.JSON(500, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.JSON(e.Status(), body)
}

// currentUser returns the user placed on the context by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(middleware.UserKey)
	if !exists {
		c.JSON(401, gin.H{"error": "unauthorized"})
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok {
		c.JSON(500, gin.H{"error": "invalid user context"})
		return nil, false
	}
	return user, true
}

// optionalUser returns the user when present, nil otherwise.
func optionalUser(c *gin.Context) *models.User {
	v, exists := c.Get(middleware.UserKey)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// pathID parses an ObjectID path parameter, writing a 400 on failure.
func pathID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid " + param})
		return primitive.NilObjectID, false
	}
	return id, true
}
