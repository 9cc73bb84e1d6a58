package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goplan-app/goplan-server/internal/models"
	"github.com/goplan-app/goplan-server/internal/services"
)

// capString normalizes maxParticipants, which clients send either as a JSON
// number or as a string.
func capString(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case json.Number:
		return n.String()
	case float64:
		return strconv.FormatInt(int64(n), 10)
	default:
		return ""
	}
}

func CreatePlan(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var reqBody struct {
			Title           string      `json:"title"`
			Description     string      `json:"description"`
			Category        string      `json:"category"`
			Date            string      `json:"date"`
			Time            string      `json:"time"`
			Location        string      `json:"location"`
			Latitude        float64     `json:"latitude"`
			Longitude       float64     `json:"longitude"`
			CompanionType   string      `json:"companionType"`
			MaxParticipants interface{} `json:"maxParticipants"`
			Duration        int         `json:"duration"`
			IsPublic        bool        `json:"isPublic"`
			Tags            []string    `json:"tags"`
			Images          []string    `json:"images"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		plan, err := p.CreatePlan(c.Request.Context(), user, services.CreatePlanInput{
			Title:           reqBody.Title,
			Description:     reqBody.Description,
			Category:        reqBody.Category,
			Date:            reqBody.Date,
			Time:            reqBody.Time,
			Location:        reqBody.Location,
			Latitude:        reqBody.Latitude,
			Longitude:       reqBody.Longitude,
			CompanionType:   reqBody.CompanionType,
			MaxParticipants: capString(reqBody.MaxParticipants),
			Duration:        reqBody.Duration,
			IsPublic:        reqBody.IsPublic,
			Tags:            reqBody.Tags,
			Images:          reqBody.Images,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"plan": plan})
	}
}

func GetPlan(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}

		plan, err := p.GetPlan(c.Request.Context(), optionalUser(c), planID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan})
	}
}

func GetPlans(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		plans, err := p.GetPlans(c.Request.Context(), optionalUser(c), services.PlanListOptions{
			Status:   c.Query("status"),
			Category: c.Query("category"),
			Search:   c.Query("search"),
			Filter:   c.Query("filter"),
		})
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

func UpdatePlan(p *services.PlanService) gin.HandlerFunc {
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
			Title           *string             `json:"title"`
			Description     *string             `json:"description"`
			Category        *string             `json:"category"`
			Location        *string             `json:"location"`
			DateTime        *time.Time          `json:"dateTime"`
			Duration        *int                `json:"duration"`
			MaxParticipants *int                `json:"maxParticipants"`
			Tags            []string            `json:"tags"`
			Privacy         *models.PlanPrivacy `json:"privacy"`
			Status          *models.PlanStatus  `json:"status"`
			Images          []string            `json:"images"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		plan, err := p.UpdatePlan(c.Request.Context(), user, planID, services.UpdatePlanInput{
			Title:           reqBody.Title,
			Description:     reqBody.Description,
			Category:        reqBody.Category,
			Location:        reqBody.Location,
			DateTime:        reqBody.DateTime,
			Duration:        reqBody.Duration,
			MaxParticipants: reqBody.MaxParticipants,
			Tags:            reqBody.Tags,
			Privacy:         reqBody.Privacy,
			Status:          reqBody.Status,
			Images:          reqBody.Images,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan})
	}
}

func JoinPlan(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}

		plan, err := p.JoinPlan(c.Request.Context(), user, planID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "join request sent",
			"plan":    plan,
		})
	}
}

func LeavePlan(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}

		plan, err := p.LeavePlan(c.Request.Context(), user, planID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "you left the plan",
			"plan":    plan,
		})
	}
}

func UpdateParticipantStatus(p *services.PlanService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		planID, ok := pathID(c, "planId")
		if !ok {
			return
		}
		participantID, ok := pathID(c, "participantId")
		if !ok {
			return
		}

		var reqBody struct {
			Status models.ParticipantStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		plan, err := p.UpdateParticipantStatus(c.Request.Context(), user, planID, participantID, reqBody.Status)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan})
	}
}
