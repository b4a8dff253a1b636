package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/middleware"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

const challengeCachePrefix = "cache:challenges:"

// ChallengeController serves today's challenge and the admin catalogue.
type ChallengeController struct {
	db *gorm.DB
}

// NewChallengeController creates a ChallengeController.
func NewChallengeController(db *gorm.DB) *ChallengeController {
	return &ChallengeController{db: db}
}

// Today returns the challenge selected for the current day.
func (c *ChallengeController) Today(ctx *gin.Context) {
	loc := config.Get().Location()
	now := nowFunc().In(loc)
	date := services.DateString(now, loc)

	challenge, err := utils.Remember(challengeCachePrefix+"today:"+date, 0, func() (*models.Challenge, error) {
		items, err := services.ActiveChallenges(ctx.Request.Context(), c.db)
		if err != nil {
			return nil, err
		}
		return services.SelectTodaysChallenge(items, now), nil
	})
	if err != nil {
		utils.Sugar.Errorw("load today's challenge failed", "date", date, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load today's challenge")
		return
	}

	if challenge == nil {
		utils.SuccessMessage(ctx, "No challenge available today. Check back tomorrow!", gin.H{"challenge": nil, "date": date})
		return
	}

	data := gin.H{"challenge": challenge, "date": date}
	if s, ok := middleware.CurrentSession(ctx); ok {
		var count int64
		err := c.db.WithContext(ctx.Request.Context()).Model(&models.CheckIn{}).
			Where("user_id = ? AND challenge_id = ? AND checked_in_date = ?", s.UserID, challenge.ID, date).
			Count(&count).Error
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load check-in status")
			return
		}
		data["completed"] = count > 0
	}
	utils.Success(ctx, data)
}

// ListAll returns every challenge, newest first.
func (c *ChallengeController) ListAll(ctx *gin.Context) {
	items, err := utils.Remember(challengeCachePrefix+"all", 0, func() ([]models.Challenge, error) {
		items := []models.Challenge{}
		err := c.db.WithContext(ctx.Request.Context()).
			Order("created_at DESC").
			Order("id DESC").
			Find(&items).Error
		return items, err
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load challenges")
		return
	}
	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

func cleanDescription(s *string) *string {
	if s == nil {
		return nil
	}
	d := strings.TrimSpace(utils.Sanitize(*s))
	if d == "" {
		return nil
	}
	return &d
}

// Create adds a challenge.
func (c *ChallengeController) Create(ctx *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required,max=255"`
		Description *string `json:"description"`
		Difficulty  string  `json:"difficulty"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "title is required")
		return
	}

	title := utils.SanitizeText(req.Title, 255)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40010, "title is required")
		return
	}
	difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty))
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}
	if !models.ValidDifficulty(difficulty) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "difficulty must be beginner, intermediate or advanced")
		return
	}

	challenge := models.Challenge{
		Title:       title,
		Description: cleanDescription(req.Description),
		Difficulty:  difficulty,
		IsActive:    true,
	}
	if err := c.db.WithContext(ctx.Request.Context()).Create(&challenge).Error; err != nil {
		utils.Sugar.Errorw("create challenge failed", "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50013, "Failed to create challenge.")
		return
	}

	utils.InvalidateByPrefix(challengeCachePrefix)
	utils.SuccessMessage(ctx, "Challenge created successfully!", challenge)
}

// Update applies a partial update to a challenge.
func (c *ChallengeController) Update(ctx *gin.Context) {
	var req struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description"`
		Difficulty  *string `json:"difficulty"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	db := c.db.WithContext(ctx.Request.Context())
	var challenge models.Challenge
	if err := db.First(&challenge, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "challenge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50014, "Failed to update challenge.")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := utils.SanitizeText(*req.Title, 255)
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40010, "title is required")
			return
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = cleanDescription(req.Description)
	}
	if req.Difficulty != nil {
		d := strings.ToLower(strings.TrimSpace(*req.Difficulty))
		if !models.ValidDifficulty(d) {
			utils.Error(ctx, http.StatusBadRequest, 40011, "difficulty must be beginner, intermediate or advanced")
			return
		}
		updates["difficulty"] = d
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := db.Model(&challenge).Updates(updates).Error; err != nil {
			utils.Sugar.Errorw("update challenge failed", "id", challenge.ID, "error", err)
			utils.Error(ctx, http.StatusInternalServerError, 50014, "Failed to update challenge.")
			return
		}
		if err := db.First(&challenge, "id = ?", challenge.ID).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50014, "Failed to update challenge.")
			return
		}
	}

	utils.InvalidateByPrefix(challengeCachePrefix)
	utils.SuccessMessage(ctx, "Challenge updated successfully!", challenge)
}
