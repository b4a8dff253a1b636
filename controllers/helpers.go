package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/middleware"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

// nowFunc is the controllers' clock; tests pin it.
var nowFunc = time.Now

// today returns the current check-in date in the configured timezone.
func today() string {
	return services.DateString(nowFunc(), config.Get().Location())
}

// requireSession returns the caller's session or writes a 401.
func requireSession(ctx *gin.Context) (*middleware.Session, bool) {
	s, ok := middleware.CurrentSession(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}
	return s, true
}

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// avatarURL renders the avatar for a seed; empty without one.
func avatarURL(seed *string) string {
	if seed == nil || *seed == "" {
		return ""
	}
	return avatarBaseURL + url.QueryEscape(*seed)
}

func profileResponse(p models.Profile) gin.H {
	return gin.H{
		"id":          p.ID,
		"email":       p.Email,
		"full_name":   p.FullName,
		"avatar_seed": p.AvatarSeed,
		"avatar_url":  avatarURL(p.AvatarSeed),
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func userResponse(u models.User, p models.Profile, roles []string) gin.H {
	isAdmin := false
	for _, r := range roles {
		if r == models.RoleAdmin {
			isAdmin = true
		}
	}
	return gin.H{
		"id":             u.ID,
		"email":          u.Email,
		"email_verified": u.EmailVerified,
		"provider":       u.Provider,
		"profile":        profileResponse(p),
		"roles":          roles,
		"is_admin":       isAdmin,
	}
}
