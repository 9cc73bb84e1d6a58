package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goplan-app/goplan-server/internal/helpers"
	"github.com/goplan-app/goplan-server/internal/models"
	"github.com/goplan-app/goplan-server/internal/services"
)

const (
	maxUploadSize = 5 << 20 // 5 MiB per file
	maxPhotoBatch = 10
)

func UpdateProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var reqBody struct {
			Name         *string                  `json:"name"`
			Bio          *string                  `json:"bio"`
			Interests    []string                 `json:"interests"`
			Availability *models.UserAvailability `json:"availability"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := u.UpdateProfile(c.Request.Context(), user, services.UpdateProfileInput{
			Name:         reqBody.Name,
			Bio:          reqBody.Bio,
			Interests:    reqBody.Interests,
			Availability: reqBody.Availability,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": updated})
	}
}

func UpdateSettings(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var reqBody models.UserSettings
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := u.UpdateSettings(c.Request.Context(), user, reqBody)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": updated})
	}
}

// GetUser returns another user's public profile, honoring their privacy
// settings.
func GetUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "userId")
		if !ok {
			return
		}

		user, err := u.GetUserProfile(c.Request.Context(), optionalUser(c), userID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Public()})
	}
}

// GetOwnPlans lists the authenticated user's created or joined plans.
func GetOwnPlans(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		plans, err := p.GetUserPlans(c.Request.Context(), user, user.ID, c.Query("type"), c.Query("status"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"plans": plans,
			"count": len(plans),
		})
	}
}

// GetUserPlans lists another user's plans, restricted to what the caller is
// allowed to see.
func GetUserPlans(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "userId")
		if !ok {
			return
		}

		plans, err := p.GetUserPlans(c.Request.Context(), optionalUser(c), userID, c.Query("type"), c.Query("status"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"plans": plans,
			"count": len(plans),
		})
	}
}

func AddFriend(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		friendID, ok := pathID(c, "friendId")
		if !ok {
			return
		}

		if err := u.AddFriend(c.Request.Context(), user, friendID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "friend added"})
	}
}

func RemoveFriend(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		friendID, ok := pathID(c, "friendId")
		if !ok {
			return
		}

		if err := u.RemoveFriend(c.Request.Context(), user, friendID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
	}
}

func UploadAvatar(up *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		header, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if header.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 5MB limit"})
			return
		}
		if !helpers.IsImageMime(header.Header.Get("Content-Type")) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only image files are allowed"})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}
		defer file.Close()

		url, err := up.UploadAvatar(c.Request.Context(), user, services.UploadFile{
			Reader: file,
			Name:   header.Filename,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"avatar": url})
	}
}

func UploadPhotos(up *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			return
		}
		headers := form.File["photos"]
		if len(headers) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one photo is required"})
			return
		}
		if len(headers) > maxPhotoBatch {
			c.JSON(http.StatusBadRequest, gin.H{"error": "a maximum of 10 photos may be uploaded at once"})
			return
		}

		files := make([]services.UploadFile, 0, len(headers))
		for _, header := range headers {
			if header.Size > maxUploadSize {
				c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 5MB limit"})
				return
			}
			if !helpers.IsImageMime(header.Header.Get("Content-Type")) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "only image files are allowed"})
				return
			}
			file, err := header.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
				return
			}
			defer file.Close()
			files = append(files, services.UploadFile{
				Reader: file,
				Name:   header.Filename,
			})
		}

		urls, err := up.UploadPhotos(c.Request.Context(), user, files)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"photos": urls})
	}
}

func DeletePhoto(up *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var reqBody struct {
			URL string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}

		if err := up.DeletePhoto(c.Request.Context(), user, reqBody.URL); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "photo deleted"})
	}
}
