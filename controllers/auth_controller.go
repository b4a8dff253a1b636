package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

// AuthController handles authentication related endpoints including local and third-party providers.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

const (
	emailCodeTTL      = 10 * time.Minute
	emailCodeCooldown = 60 * time.Second
)

// sendMail delivers verification codes; tests replace it.
var sendMail = utils.SendMail

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SendEmailCode mails a single-use verification code for registration.
func (a *AuthController) SendEmailCode(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email,max=255"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "a valid email is required")
		return
	}
	email := normalizeEmail(req.Email)
	if !utils.EmailCooldownTrySet(email, emailCodeCooldown) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many requests, try again later")
		return
	}

	code := utils.GenerateVerificationCode(6)
	body := fmt.Sprintf("Your CodeStreak verification code is %s.\nIt expires in 10 minutes.", code)
	if err := sendMail(email, "CodeStreak verification code", body); err != nil {
		utils.Sugar.Warnw("send verification code failed", "email", email, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to send verification code")
		return
	}
	// saved only after delivery so undelivered codes never pile up
	utils.SaveEmailCode(email, code, emailCodeTTL)
	utils.SuccessMessage(ctx, "verification code sent", nil)
}

// Register creates a local account with a bcrypt password hash. A mailed code
// marks the email verified; it is mandatory once SMTP is configured. Listed
// admin emails are granted the admin role only when verified.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email,max=255"`
		Password string `json:"password" binding:"required,min=6,max=72"`
		FullName string `json:"full_name" binding:"max=255"`
		Code     string `json:"code"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := normalizeEmail(req.Email)
	cfg := config.Get()
	verified := false
	if code := strings.TrimSpace(req.Code); code != "" {
		if !utils.VerifyAndConsumeCode(email, code) {
			utils.Error(ctx, http.StatusBadRequest, 40002, "invalid or expired verification code")
			return
		}
		verified = true
	} else if cfg.MailEnabled() {
		utils.Error(ctx, http.StatusBadRequest, 40002, "email verification code is required")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{Email: email, EmailVerified: verified, PasswordHash: hash, Provider: models.ProviderLocal}
	var profile *models.Profile
	admin := verified && cfg.IsAdminEmail(email)
	err = a.db.WithContext(ctx.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		profile, err = services.CreateAccount(tx, &user, utils.SanitizeText(req.FullName, 255), admin)
		return err
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
			return
		}
		utils.Sugar.Errorw("register failed", "email", email, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create account")
		return
	}

	a.issueToken(ctx, user, *profile)
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.WithContext(ctx.Request.Context()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	var profile models.Profile
	if err := a.db.WithContext(ctx.Request.Context()).First(&profile, "id = ?", user.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to load profile")
		return
	}
	a.issueToken(ctx, user, profile)
}

func (a *AuthController) issueToken(ctx *gin.Context, user models.User, profile models.Profile) {
	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	roles, err := services.RoleNames(ctx.Request.Context(), a.db, user.ID)
	if err != nil {
		roles = []string{}
	}
	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user, profile, roles),
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	claims, err := utils.ParseToken(s.Token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(utils.TokenLifetime)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(s.Token, expiresAt)
	utils.SuccessMessage(ctx, "logged out", nil)
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	var user models.User
	if err := a.db.WithContext(ctx.Request.Context()).First(&user, "id = ?", s.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	var profile models.Profile
	if err := a.db.WithContext(ctx.Request.Context()).First(&profile, "id = ?", s.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "profile not found")
		return
	}
	roles, err := services.RoleNames(ctx.Request.Context(), a.db, s.UserID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load roles")
		return
	}
	utils.Success(ctx, userResponse(user, profile, roles))
}

// Roles lists the caller's roles.
func (a *AuthController) Roles(ctx *gin.Context) {
	s, ok := requireSession(ctx)
	if !ok {
		return
	}
	roles, err := services.RoleNames(ctx.Request.Context(), a.db, s.UserID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load roles")
		return
	}
	isAdmin := false
	for _, r := range roles {
		isAdmin = isAdmin || r == models.RoleAdmin
	}
	utils.Success(ctx, gin.H{"roles": roles, "is_admin": isAdmin})
}
