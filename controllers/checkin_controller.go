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

// CheckInController records challenge completions and serves the user's history.
type CheckInController struct {
	db     *gorm.DB
	quotes services.QuoteSource
}

// NewCheckInController creates a CheckInController. quotes fills in a motivational
// quote when the client does not send one.
func NewCheckInController(db *gorm.DB, quotes services.QuoteSource) *CheckInController {
	return &CheckInController{db: db, quotes: quotes}
}

func checkInsKey(userID string) string { return "cache:checkins:" + userID }

func streakKey(userID string) string { return "cache:streak:" + userID }

// Create marks a challenge as completed for today.
func (c *CheckInController) Create(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}

	var req struct {
		ChallengeID       string `json:"challenge_id" binding:"required"`
		MotivationalQuote string `json:"motivational_quote"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "challenge_id is required")
		return
	}

	record, streak, err := services.RecordCheckIn(ctx.Request.Context(), c.db, services.CheckInRequest{
		UserID:      s.UserID,
		ChallengeID: strings.TrimSpace(req.ChallengeID),
		Quote:       utils.SanitizeText(req.MotivationalQuote, 1000),
		Date:        today(),
		Quotes:      c.quotes,
	})
	switch {
	case errors.Is(err, services.ErrChallengeNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, "challenge not found")
		return
	case errors.Is(err, services.ErrDuplicateCheckIn):
		middleware.ObserveCheckIn("duplicate")
		utils.Error(ctx, http.StatusConflict, 40930, "You've already completed today's challenge!")
		return
	case err != nil:
		middleware.ObserveCheckIn("error")
		utils.Sugar.Errorw("check-in failed", "user_id", s.UserID, "challenge_id", req.ChallengeID, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "Failed to mark challenge as complete.")
		return
	}

	middleware.ObserveCheckIn("created")
	utils.InvalidateByPrefix(checkInsKey(s.UserID))
	utils.InvalidateByPrefix(streakKey(s.UserID))

	utils.SuccessMessage(ctx, "Challenge completed! Keep up the streak!", gin.H{
		"check_in": record,
		"streak":   streakResponse(*streak, record.CheckedInDate),
	})
}

// List returns the user's check-ins, newest first.
func (c *CheckInController) List(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	items, err := c.loadCheckIns(ctx, s.UserID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load check-ins")
		return
	}
	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// Calendar summarizes the user's check-ins by month.
func (c *CheckInController) Calendar(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	items, err := c.loadCheckIns(ctx, s.UserID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load check-ins")
		return
	}
	utils.Success(ctx, services.BuildCalendar(items, nowFunc().In(config.Get().Location())))
}

func (c *CheckInController) loadCheckIns(ctx *gin.Context, userID string) ([]models.CheckIn, error) {
	return utils.Remember(checkInsKey(userID), 0, func() ([]models.CheckIn, error) {
		return services.ListCheckIns(ctx.Request.Context(), c.db, userID)
	})
}
