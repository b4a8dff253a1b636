package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/utils"
)

const profileCachePrefix = "cache:profile:"

// ProfileController reads and edits the caller's profile.
type ProfileController struct {
	db *gorm.DB
}

// NewProfileController creates a ProfileController.
func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

// GetProfile returns the caller's profile with its avatar url.
func (p *ProfileController) GetProfile(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	profile, err := utils.Remember(profileCachePrefix+s.UserID, 0, func() (models.Profile, error) {
		var profile models.Profile
		err := p.db.WithContext(ctx.Request.Context()).First(&profile, "id = ?", s.UserID).Error
		return profile, err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "profile not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load profile")
		return
	}
	utils.Success(ctx, profileResponse(profile))
}

// UpdateProfile changes the caller's display name and avatar seed.
func (p *ProfileController) UpdateProfile(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	var req struct {
		FullName   *string `json:"full_name"`
		AvatarSeed *string `json:"avatar_seed"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = nullable(utils.SanitizeText(*req.FullName, 255))
	}
	if req.AvatarSeed != nil {
		updates["avatar_seed"] = nullable(utils.SanitizeText(*req.AvatarSeed, 64))
	}

	db := p.db.WithContext(ctx.Request.Context())
	var profile models.Profile
	if err := db.First(&profile, "id = ?", s.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "profile not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update profile")
		return
	}
	if len(updates) > 0 {
		if err := db.Model(&profile).Updates(updates).Error; err != nil {
			utils.Sugar.Errorw("update profile failed", "user_id", s.UserID, "error", err)
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update profile")
			return
		}
		if err := db.First(&profile, "id = ?", s.UserID).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update profile")
			return
		}
	}

	utils.InvalidateByPrefix(profileCachePrefix + s.UserID)
	utils.SuccessMessage(ctx, "Profile updated", profileResponse(profile))
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
