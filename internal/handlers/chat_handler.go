package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goplan-app/goplan-server/internal/models"
	"github.com/goplan-app/goplan-server/internal/services"
)

func GetChat(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}

		chat, err := cs.GetChat(c.Request.Context(), user, planID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"chat": chat})
	}
}

func SendMessage(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}

		var reqBody struct {
			Content string             `json:"content"`
			Type    models.MessageType `json:"type"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		msg, err := cs.SendMessage(c.Request.Context(), user, planID, reqBody.Content, reqBody.Type)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	}
}

func MarkMessagesAsRead(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}

		if err := cs.MarkMessagesAsRead(c.Request.Context(), user, planID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "messages marked as read"})
	}
}

func GetUnreadCount(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}

		count, err := cs.GetUnreadCount(c.Request.Context(), user, planID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	}
}
