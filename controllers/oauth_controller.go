package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

const oauthStateTTL = 10 * time.Minute

var oauthHTTPClient = &http.Client{Timeout: 10 * time.Second}

// OAuthRedirect generates a provider-specific authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	provider := ctx.Param("provider")
	cfg, err := oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, oauthStateTTL)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity and issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := strings.ToLower(ctx.Param("provider"))
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}

	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	reqCtx := context.WithValue(ctx.Request.Context(), oauth2.HTTPClient, oauthHTTPClient)
	token, err := cfg.Exchange(reqCtx, code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	info, err := fetchOAuthUser(reqCtx, provider, token)
	if err != nil {
		utils.Sugar.Warnw("oauth user info failed", "provider", provider, "error", err)
		utils.Error(ctx, http.StatusBadGateway, 50205, "failed to load provider profile")
		return
	}

	user, profile, err := a.findOrCreateOAuthUser(ctx.Request.Context(), provider, info)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.Error(ctx, http.StatusConflict, 40902, "email already registered with another sign-in method")
			return
		}
		utils.Sugar.Errorw("oauth persist failed", "provider", provider, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist user")
		return
	}

	a.issueToken(ctx, *user, *profile)
}

func oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

type oauthUser struct {
	ID          string
	DisplayName string
	Email       string
}

func fetchOAuthUser(ctx context.Context, provider string, token *oauth2.Token) (*oauthUser, error) {
	switch provider {
	case "github":
		return fetchGitHubUser(ctx, token)
	case "google":
		return fetchGoogleUser(ctx, token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// placeholderEmail stands in for providers that do not disclose an address.
func placeholderEmail(provider, id string) string {
	return fmt.Sprintf("%s-%s@users.noreply.codestreak", provider, id)
}

func (a *AuthController) findOrCreateOAuthUser(ctx context.Context, provider string, data *oauthUser) (*models.User, *models.Profile, error) {
	db := a.db.WithContext(ctx)

	var user models.User
	err := db.Where("provider = ? AND provider_id = ?", provider, data.ID).First(&user).Error
	if err == nil {
		var profile models.Profile
		if err := db.First(&profile, "id = ?", user.ID).Error; err != nil {
			return nil, nil, fmt.Errorf("load profile: %w", err)
		}
		return &user, &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	// the fetchers only return addresses the provider has verified
	email := normalizeEmail(data.Email)
	verified := email != ""
	if !verified {
		email = placeholderEmail(provider, data.ID)
	}
	user = models.User{Email: email, EmailVerified: verified, Provider: provider, ProviderID: data.ID}

	var profile *models.Profile
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		profile, err = services.CreateAccount(tx, &user, utils.SanitizeText(data.DisplayName, 255), verified && config.Get().IsAdminEmail(email))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, profile, nil
}

func providerGet(ctx context.Context, url, accessToken string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Accept", "application/json")

	resp, err := oauthHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s request failed: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fetchGitHubUser(ctx context.Context, token *oauth2.Token) (*oauthUser, error) {
	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := providerGet(ctx, "https://api.github.com/user", token.AccessToken, &payload); err != nil {
		return nil, err
	}

	// the public profile email carries no verified flag; take it from /user/emails
	email, _ := fetchGitHubEmail(ctx, token.AccessToken)

	return &oauthUser{
		ID:          fmt.Sprintf("%d", payload.ID),
		DisplayName: fallback(payload.Name, payload.Login),
		Email:       email,
	}, nil
}

func fetchGitHubEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := providerGet(ctx, "https://api.github.com/user/emails", accessToken, &emails); err != nil {
		return "", err
	}

	for _, email := range emails {
		if email.Primary && email.Verified {
			return email.Email, nil
		}
	}
	for _, email := range emails {
		if email.Verified {
			return email.Email, nil
		}
	}
	return "", nil
}

func fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*oauthUser, error) {
	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := providerGet(ctx, "https://www.googleapis.com/oauth2/v2/userinfo", token.AccessToken, &payload); err != nil {
		return nil, err
	}

	email := payload.Email
	if !payload.VerifiedEmail {
		email = ""
	}
	return &oauthUser{
		ID:          payload.ID,
		DisplayName: payload.Name,
		Email:       email,
	}, nil
}

func fallback(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
