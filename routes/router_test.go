package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/middleware"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/utils"
)

type stubQuotes struct{}

func (stubQuotes) Random(context.Context) string { return "Stay the course. - Tester" }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t  *testing.T
	r  *gin.Engine
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	config.Set(config.AppConfig{
		JWTSecret:          "test-secret",
		GinMode:            "test",
		GinPath:            filepath.Join(t.TempDir(), "gin.log"),
		DBDriver:           "sqlite",
		DatabaseURI:        fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		LogLevel:           "silent",
		RateLimitPerMinute: 100000,
		AdminEmails:        []string{"admin@example.com"},
	})
	utils.FlushMemoryCache()
	middleware.InitPrometheus()

	db, err := config.OpenDatabase(config.Get(), models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testServer{t: t, r: SetupRouter(db, stubQuotes{}), db: db}
}

func (s *testServer) call(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type authData struct {
	Token string `json:"token"`
	User  struct {
		ID      string   `json:"id"`
		Email   string   `json:"email"`
		Roles   []string `json:"roles"`
		IsAdmin bool     `json:"is_admin"`
	} `json:"user"`
}

func (s *testServer) register(email string) authData {
	s.t.Helper()
	return s.registerWith(gin.H{"email": email, "password": "secret1", "full_name": "Test User"})
}

// registerVerified registers with a code as if it had been mailed to email.
func (s *testServer) registerVerified(email string) authData {
	s.t.Helper()
	utils.SaveEmailCode(strings.ToLower(email), "246810", time.Minute)
	return s.registerWith(gin.H{"email": email, "password": "secret1", "full_name": "Test User", "code": "246810"})
}

func (s *testServer) registerWith(body gin.H) authData {
	s.t.Helper()
	code, env := s.call(http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(s.t, http.StatusOK, code, env.Message)
	return decode[authData](s.t, env.Data)
}

func (s *testServer) createChallenge(adminToken, title string) models.Challenge {
	s.t.Helper()
	code, env := s.call(http.MethodPost, "/api/v1/admin/challenges", adminToken, gin.H{
		"title":       title,
		"description": "Solve it in O(n).",
		"difficulty":  "intermediate",
	})
	require.Equal(s.t, http.StatusOK, code, env.Message)
	return decode[models.Challenge](s.t, env.Data)
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t)
	code, env := s.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, env.Code)

	code, env = s.call(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 40400, env.Code)
}

func TestRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)
	reg := s.register("Dev@Example.com")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "dev@example.com", reg.User.Email)
	assert.False(t, reg.User.IsAdmin)

	code, env := s.call(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "dev@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 40901, env.Code)

	code, _ = s.call(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "short@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "dev@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 40106, env.Code)

	code, env = s.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "DEV@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	login := decode[authData](t, env.Data)
	assert.Equal(t, reg.User.ID, login.User.ID)

	code, _ = s.call(http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.call(http.MethodPost, "/api/v1/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.call(http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 40104, env.Code)
}

func TestUnverifiedAdminEmailGetsNoAdminRole(t *testing.T) {
	s := newTestServer(t)
	squatter := s.register("admin@example.com")
	assert.False(t, squatter.User.IsAdmin)

	code, _ := s.call(http.MethodGet, "/api/v1/admin/challenges", squatter.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// the code endpoint is routed and reports missing SMTP settings
	code, env := s.call(http.MethodPost, "/api/v1/auth/email-code", "", gin.H{"email": "admin@example.com"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, 50070, env.Code)
}

func TestAdminChallengeManagement(t *testing.T) {
	s := newTestServer(t)
	admin := s.registerVerified("admin@example.com")
	member := s.register("member@example.com")
	assert.True(t, admin.User.IsAdmin)

	code, env := s.call(http.MethodPost, "/api/v1/admin/challenges", member.Token, gin.H{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You need admin privileges to access this page.", env.Message)

	code, _ = s.call(http.MethodGet, "/api/v1/admin/challenges", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.call(http.MethodPost, "/api/v1/admin/challenges", admin.Token, gin.H{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.call(http.MethodPost, "/api/v1/admin/challenges", admin.Token, gin.H{"title": "X", "difficulty": "legendary"})
	assert.Equal(t, http.StatusBadRequest, code)

	created := s.createChallenge(admin.Token, "Merge intervals <script>alert(1)</script>")
	assert.Equal(t, "Merge intervals", created.Title)
	assert.Equal(t, models.DifficultyIntermediate, created.Difficulty)
	assert.True(t, created.IsActive)

	code, env = s.call(http.MethodGet, "/api/v1/admin/challenges", admin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Items []models.Challenge `json:"items"`
	}](t, env.Data)
	require.Len(t, list.Items, 1)

	code, env = s.call(http.MethodPut, "/api/v1/admin/challenges/"+created.ID, admin.Token, gin.H{"is_active": false, "difficulty": "advanced"})
	require.Equal(t, http.StatusOK, code, env.Message)
	updated := decode[models.Challenge](t, env.Data)
	assert.False(t, updated.IsActive)
	assert.Equal(t, models.DifficultyAdvanced, updated.Difficulty)
	assert.Equal(t, "Merge intervals", updated.Title)

	code, _ = s.call(http.MethodPut, "/api/v1/admin/challenges/does-not-exist", admin.Token, gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	// the cached challenge list was invalidated by the update
	code, env = s.call(http.MethodGet, "/api/v1/admin/challenges", admin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	list = decode[struct {
		Items []models.Challenge `json:"items"`
	}](t, env.Data)
	require.Len(t, list.Items, 1)
	assert.False(t, list.Items[0].IsActive)
}

func TestTodayAndCheckInFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.call(http.MethodGet, "/api/v1/challenges/today", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No challenge available today. Check back tomorrow!", env.Message)

	admin := s.registerVerified("admin@example.com")
	user := s.register("coder@example.com")
	challenge := s.createChallenge(admin.Token, "Binary search")

	type today struct {
		Challenge *models.Challenge `json:"challenge"`
		Completed *bool             `json:"completed"`
	}
	code, env = s.call(http.MethodGet, "/api/v1/challenges/today", "", nil)
	require.Equal(t, http.StatusOK, code)
	anon := decode[today](t, env.Data)
	require.NotNil(t, anon.Challenge)
	assert.Equal(t, challenge.ID, anon.Challenge.ID)
	assert.Nil(t, anon.Completed)

	code, env = s.call(http.MethodGet, "/api/v1/challenges/today", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	before := decode[today](t, env.Data)
	require.NotNil(t, before.Completed)
	assert.False(t, *before.Completed)

	code, _ = s.call(http.MethodPost, "/api/v1/checkins", "", gin.H{"challenge_id": challenge.ID})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.call(http.MethodPost, "/api/v1/checkins", user.Token, gin.H{"challenge_id": "missing"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.call(http.MethodPost, "/api/v1/checkins", user.Token, gin.H{"challenge_id": challenge.ID})
	require.Equal(t, http.StatusOK, code, env.Message)
	created := decode[struct {
		CheckIn models.CheckIn `json:"check_in"`
		Streak  struct {
			CurrentStreak int `json:"current_streak"`
		} `json:"streak"`
	}](t, env.Data)
	require.NotNil(t, created.CheckIn.MotivationalQuote)
	assert.Equal(t, "Stay the course. - Tester", *created.CheckIn.MotivationalQuote)
	assert.Equal(t, 1, created.Streak.CurrentStreak)

	code, env = s.call(http.MethodPost, "/api/v1/checkins", user.Token, gin.H{"challenge_id": challenge.ID, "motivational_quote": "again"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 40930, env.Code)
	assert.Equal(t, "You've already completed today's challenge!", env.Message)

	code, env = s.call(http.MethodGet, "/api/v1/challenges/today", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	after := decode[today](t, env.Data)
	require.NotNil(t, after.Completed)
	assert.True(t, *after.Completed)

	code, env = s.call(http.MethodGet, "/api/v1/checkins", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Items []models.CheckIn `json:"items"`
		Total int              `json:"total"`
	}](t, env.Data)
	assert.Equal(t, 1, list.Total)

	code, env = s.call(http.MethodGet, "/api/v1/me/streak", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	streak := decode[struct {
		CurrentStreak int      `json:"current_streak"`
		Total         int      `json:"total_challenges_completed"`
		Badges        []string `json:"badges"`
		NextBadge     *struct {
			Badge         string `json:"badge"`
			DaysRemaining int    `json:"days_remaining"`
		} `json:"next_badge"`
	}](t, env.Data)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.Total)
	assert.Empty(t, streak.Badges)
	require.NotNil(t, streak.NextBadge)
	assert.Equal(t, "bronze", streak.NextBadge.Badge)
	assert.Equal(t, 2, streak.NextBadge.DaysRemaining)

	code, env = s.call(http.MethodGet, "/api/v1/me/calendar", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	cal := decode[struct {
		Total     int `json:"total"`
		ThisMonth int `json:"this_month"`
	}](t, env.Data)
	assert.Equal(t, 1, cal.Total)
	assert.Equal(t, 1, cal.ThisMonth)

	code, env = s.call(http.MethodGet, "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, code)
	stats := decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 2, stats["users"])
	assert.EqualValues(t, 1, stats["check_ins_today"])
	assert.EqualValues(t, 1, stats["active_challenges"])
}

func TestProfileAndRoles(t *testing.T) {
	s := newTestServer(t)
	user := s.register("profile@example.com")

	code, env := s.call(http.MethodGet, "/api/v1/me/profile", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	profile := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "Test User", profile["full_name"])
	assert.True(t, strings.HasPrefix(profile["avatar_url"].(string), "https://api.dicebear.com/7.x/avataaars/svg?seed="))

	code, env = s.call(http.MethodPatch, "/api/v1/me/profile", user.Token, gin.H{"full_name": "<i>Grace</i> Hopper", "avatar_seed": "seed42"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.call(http.MethodGet, "/api/v1/me/profile", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	profile = decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "Grace Hopper", profile["full_name"])
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=seed42", profile["avatar_url"])

	code, env = s.call(http.MethodGet, "/api/v1/me/roles", user.Token, nil)
	require.Equal(t, http.StatusOK, code)
	roles := decode[struct {
		Roles   []string `json:"roles"`
		IsAdmin bool     `json:"is_admin"`
	}](t, env.Data)
	assert.Empty(t, roles.Roles)
	assert.False(t, roles.IsAdmin)
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, env := s.call(http.MethodGet, "/api/v1/quotes/random", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Stay the course. - Tester", decode[map[string]string](t, env.Data)["quote"])

	code, env = s.call(http.MethodGet, "/api/v1/config", "", nil)
	require.Equal(t, http.StatusOK, code)
	cfg := decode[struct {
		Badges []struct {
			Badge string `json:"badge"`
			Days  int    `json:"days"`
		} `json:"badges"`
		Difficulties []string `json:"difficulties"`
	}](t, env.Data)
	require.Len(t, cfg.Badges, 3)
	assert.Equal(t, 30, cfg.Badges[2].Days)
	assert.Equal(t, []string{"beginner", "intermediate", "advanced"}, cfg.Difficulties)

	code, _ = s.call(http.MethodGet, "/api/v1/auth/oauth/github/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, code, "provider without credentials")

	code, env = s.call(http.MethodGet, "/api/v1/auth/oauth/github/callback?code=x&state=forged", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 40006, env.Code)
}
