package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/helpers"
	"github.com/goplan-app/goplan-server/internal/services"
)

func Register(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		token, user, err := a.Register(c.Request.Context(), reqBody.Email, reqBody.Password, reqBody.Name)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"token": token,
			"user":  user.Public(),
		})
	}
}

func Login(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		token, user, err := a.Login(c.Request.Context(), reqBody.Email, reqBody.Password)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user.Public(),
		})
	}
}

// GoogleAuth exchanges a Google ID token for a session token. The ID token's
// signature and audience are verified against Google's JWKS before the
// profile is trusted.
func GoogleAuth(a *services.AuthService, googleClientID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody struct {
			IDToken string `json:"idToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "idToken is required"})
			return
		}

		profile, err := helpers.VerifyGoogleIDToken(c.Request.Context(), reqBody.IDToken, googleClientID)
		if err != nil {
			fail(c, apperrors.Auth(apperrors.KindUnauthenticated, "invalid google token"))
			return
		}

		token, user, err := a.OAuthLogin(c.Request.Context(), "google", profile)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user.Public(),
		})
	}
}

// FacebookAuth exchanges a Facebook access token for a session token. The
// token is validated by asking the Graph API for the profile it belongs to.
func FacebookAuth(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody struct {
			AccessToken string `json:"accessToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "accessToken is required"})
			return
		}

		profile, err := helpers.VerifyFacebookToken(c.Request.Context(), reqBody.AccessToken)
		if err != nil {
			fail(c, apperrors.Auth(apperrors.KindUnauthenticated, "invalid facebook token"))
			return
		}

		token, user, err := a.OAuthLogin(c.Request.Context(), "facebook", profile)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user.Public(),
		})
	}
}

// Me returns the authenticated user's own record.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
