package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

// StatsController serves streak statistics and public counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a StatsController.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

func streakResponse(s models.UserStreak, date string) gin.H {
	s = services.EffectiveStreak(s, date)
	var next interface{}
	if m, remaining, ok := services.NextBadge(s.CurrentStreak, s.Badges); ok {
		next = gin.H{"badge": m.Badge, "threshold": m.Days, "days_remaining": remaining}
	}
	return gin.H{
		"current_streak":             s.CurrentStreak,
		"longest_streak":             s.LongestStreak,
		"badges":                     s.Badges,
		"total_challenges_completed": s.TotalChallengesCompleted,
		"last_check_in_date":         s.LastCheckInDate,
		"next_badge":                 next,
	}
}

// MyStreak returns the caller's streak, badges and next milestone.
func (st *StatsController) MyStreak(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	streak, err := utils.Remember(streakKey(s.UserID), 0, func() (models.UserStreak, error) {
		return services.LoadStreak(ctx.Request.Context(), st.db, s.UserID)
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load streak")
		return
	}
	utils.Success(ctx, streakResponse(streak, today()))
}

// GetStats returns public site counters.
func (st *StatsController) GetStats(ctx *gin.Context) {
	db := st.db.WithContext(ctx.Request.Context())
	date := today()

	var profiles, active, todays, total int64
	if err := db.Model(&models.Profile{}).Count(&profiles).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load stats")
		return
	}
	if err := db.Model(&models.Challenge{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load stats")
		return
	}
	if err := db.Model(&models.CheckIn{}).Where("checked_in_date = ?", date).Count(&todays).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load stats")
		return
	}
	if err := db.Model(&models.CheckIn{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load stats")
		return
	}

	utils.Success(ctx, gin.H{
		"users":             profiles,
		"active_challenges": active,
		"check_ins_today":   todays,
		"check_ins_total":   total,
		"date":              date,
	})
}
