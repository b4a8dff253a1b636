package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

// ConfigController exposes public client settings.
type ConfigController struct{}

// NewConfigController creates a ConfigController.
func NewConfigController() *ConfigController {
	return &ConfigController{}
}

// GetPublicConfig returns badge milestones, difficulty levels and enabled login providers.
func (c *ConfigController) GetPublicConfig(ctx *gin.Context) {
	cfg := config.Get()
	providers := []string{}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers = append(providers, "github")
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers = append(providers, "google")
	}
	utils.Success(ctx, gin.H{
		"badges":          services.Milestones,
		"difficulties":    models.Difficulties,
		"oauth_providers": providers,
		"timezone":        cfg.Location().String(),
	})
}
