package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillswap/internal/config"
	"skillswap/internal/handlers/shared"
	"skillswap/internal/middleware"
	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/repositories/memory"
	"skillswap/internal/services"
	"skillswap/internal/utils"
	"skillswap/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "routes-test-secret"

type testServer struct {
	router *gin.Engine
	users  interfaces.UserRepository
	swaps  interfaces.SwapRepository
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *utils.APIError `json:"error"`
	Meta   *utils.Meta     `json:"meta"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	cfg := &config.SwapConfig{
		LockDriver:          config.LockDriverLocal,
		LockTTL:             10 * time.Second,
		LockWait:            5 * time.Second,
		AggregateCacheTTL:   time.Minute,
		MaxMessageLength:    500,
		MaxRatingCommentLen: 500,
	}

	swapRepo := memory.NewSwapRepository()
	userRepo := memory.NewUserRepository()
	locker := services.NewLocalLocker(cfg.LockWait)
	moderation := services.NewModerationService(userRepo, memory.NewAuditLogRepository(), log)
	ratings := services.NewRatingService(swapRepo, userRepo, locker, nil, cfg, log)
	swapService := services.NewSwapService(swapRepo, userRepo, moderation, ratings, locker, cfg, log)
	analytics := services.NewAnalyticsService(swapRepo, userRepo, moderation, log)

	swapHandler := shared.NewSwapHandler(swapService, ratings)
	adminHandler := shared.NewAdminHandler(swapService, ratings, moderation, analytics)

	r := gin.New()
	v1 := r.Group("/api/v1")
	SetupSwapRoutes(v1, swapHandler, testSecret, middleware.RateLimitMiddleware(0, 0, log))
	SetupAdminRoutes(v1, adminHandler, swapHandler, moderation, testSecret)

	return &testServer{router: r, users: userRepo, swaps: swapRepo}
}

func (s *testServer) user(t *testing.T, name string, role models.UserRole, offered ...string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role, SkillsOffered: offered}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *testServer) do(t *testing.T, actor *models.User, method, path string, body interface{}) (int, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, err := utils.GenerateAccessToken(actor.ID, string(actor.Role), testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, &env
}

func decodeSwap(t *testing.T, env *envelope) *models.Swap {
	t.Helper()
	var swap models.Swap
	require.NoError(t, json.Unmarshal(env.Data, &swap))
	return &swap
}

func TestSwapLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	u1 := s.user(t, "u1", models.UserRoleUser, "Guitar")
	u2 := s.user(t, "u2", models.UserRoleUser, "Python")

	code, env := s.do(t, u1, http.MethodPost, "/api/v1/swaps", map[string]string{
		"recipient_id":    u2.ID.Hex(),
		"skill_offered":   "Guitar",
		"skill_requested": "Python",
		"message":         "Let's trade",
	})
	require.Equal(t, http.StatusCreated, code)
	swap := decodeSwap(t, env)
	assert.Equal(t, models.SwapStatusPending, swap.Status)
	base := "/api/v1/swaps/" + swap.ID.Hex()

	code, env = s.do(t, u1, http.MethodPost, "/api/v1/swaps", map[string]string{
		"recipient_id":    u2.ID.Hex(),
		"skill_offered":   "Guitar",
		"skill_requested": "Python",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = s.do(t, u1, http.MethodPut, base+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, env = s.do(t, u1, http.MethodPut, base+"/complete", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
	assert.Equal(t, "pending", env.Error.Details["actual_status"])

	code, _ = s.do(t, u2, http.MethodPut, base+"/accept", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, u1, http.MethodPut, base+"/complete", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, decodeSwap(t, env).CompletedAt)

	code, env = s.do(t, u1, http.MethodPost, base+"/rate", map[string]interface{}{"rating": 5, "comment": "great", "role": "requesterRating"})
	assert.Equal(t, http.StatusForbidden, code, "u1 fills the recipient role, not the requester role")

	code, env = s.do(t, u1, http.MethodPost, base+"/rate", map[string]interface{}{"rating": 5, "comment": "great", "role": "recipientRating"})
	require.Equal(t, http.StatusOK, code)
	rated := decodeSwap(t, env)
	require.NotNil(t, rated.RecipientRating)
	assert.Equal(t, 5, rated.RecipientRating.Rating)

	code, env = s.do(t, u1, http.MethodPost, base+"/rate", map[string]interface{}{"rating": 1})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = s.do(t, u1, http.MethodGet, "/api/v1/users/"+u2.ID.Hex()+"/rating", nil)
	require.Equal(t, http.StatusOK, code)
	var rating map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &rating))
	assert.Equal(t, 5.0, rating["rating"])
	assert.Equal(t, 1.0, rating["total_ratings"])

	code, env = s.do(t, u2, http.MethodGet, "/api/v1/users/"+u1.ID.Hex()+"/rating", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &rating))
	assert.Equal(t, 0.0, rating["rating"])
	assert.Equal(t, models.UnratedDisplayRating, rating["display_rating"])

	code, env = s.do(t, u2, http.MethodGet, "/api/v1/swaps/mine?direction=incoming", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Pagination.Total)

	code, env = s.do(t, u2, http.MethodGet, "/api/v1/swaps/mine?page=922337203685477580", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Pagination.Total)
	assert.False(t, env.Meta.Pagination.HasNext)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestSwapRequestValidation(t *testing.T) {
	s := newTestServer(t)
	u1 := s.user(t, "u1", models.UserRoleUser, "Guitar")

	code, env := s.do(t, u1, http.MethodPost, "/api/v1/swaps", map[string]string{"recipient_id": "bad"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "recipient_id")

	code, _ = s.do(t, u1, http.MethodPut, "/api/v1/swaps/not-an-id/accept", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, u1, http.MethodGet, "/api/v1/swaps/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	code, env = s.do(t, u1, http.MethodPost, "/api/v1/swaps/"+primitive.NewObjectID().Hex()+"/rate", map[string]int{"rating": 7})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "rating")

	code, _ = s.do(t, nil, http.MethodGet, "/api/v1/swaps/mine", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	u1 := s.user(t, "u1", models.UserRoleUser, "Guitar")
	u2 := s.user(t, "u2", models.UserRoleUser, "Python")
	admin := s.user(t, "admin", models.UserRoleAdmin)
	ctx := context.Background()

	swap := &models.Swap{Requester: u1.ID, Recipient: u2.ID, SkillOffered: "Guitar", SkillRequested: "Python", Status: models.SwapStatusPending}
	require.NoError(t, s.swaps.Create(ctx, swap))
	_, err := s.swaps.UpdateStatus(ctx, swap.ID, models.SwapStatusPending, models.SwapStatusAccepted, nil)
	require.NoError(t, err)

	code, _ := s.do(t, u1, http.MethodGet, "/api/v1/admin/stats", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(t, admin, http.MethodPut, "/api/v1/admin/swaps/"+swap.ID.Hex()+"/complete", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.SwapStatusCompleted, decodeSwap(t, env).Status)

	code, _ = s.do(t, u2, http.MethodPost, "/api/v1/swaps/"+swap.ID.Hex()+"/rate", map[string]int{"rating": 2})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, admin, http.MethodDelete, "/api/v1/admin/swaps/"+swap.ID.Hex()+"/feedback/requester", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, decodeSwap(t, env).RequesterRating)

	code, env = s.do(t, admin, http.MethodDelete, "/api/v1/admin/swaps/"+swap.ID.Hex()+"/feedback/judge", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, admin, http.MethodPut, "/api/v1/admin/users/"+u2.ID.Hex()+"/ban", map[string]bool{"banned": true})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, admin, http.MethodGet, "/api/v1/admin/stats", nil)
	require.Equal(t, http.StatusOK, code)
	var stats models.PlatformStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.BannedUsers)
	assert.Equal(t, 100.0, stats.CompletionRate)

	code, env = s.do(t, admin, http.MethodGet, "/api/v1/admin/reports/swap-stats?start_date=2000-01-01", nil)
	require.Equal(t, http.StatusOK, code)
	var swapStats models.SwapStats
	require.NoError(t, json.Unmarshal(env.Data, &swapStats))
	assert.Equal(t, int64(1), swapStats.CompletedSwaps)

	code, _ = s.do(t, admin, http.MethodGet, "/api/v1/admin/reports/swap-stats?start_date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, admin, http.MethodPost, "/api/v1/admin/users/"+u1.ID.Hex()+"/rating/recompute", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, admin, http.MethodGet, "/api/v1/admin/swaps?status=completed", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), env.Meta.Pagination.Total)

	code, env = s.do(t, admin, http.MethodGet, "/api/v1/admin/users?page_size=2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(3), env.Meta.Pagination.Total)
	assert.True(t, env.Meta.Pagination.HasNext)

	code, env = s.do(t, admin, http.MethodGet, "/api/v1/admin/audit-logs", nil)
	require.Equal(t, http.StatusOK, code)
	var logs []models.AuditLog
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 4)
	assert.Equal(t, models.AuditActionRatingRecomputed, logs[0].Action)
	assert.Equal(t, models.AuditActionSwapCompleted, logs[3].Action)

	code, env = s.do(t, admin, http.MethodGet, "/api/v1/admin/audit-logs?resource=swap&action=feedback_deleted", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), env.Meta.Pagination.Total)

	code, _ = s.do(t, admin, http.MethodGet, "/api/v1/admin/audit-logs?action=login", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	for _, path := range []string{"/api/v1/admin/swaps", "/api/v1/admin/users", "/api/v1/admin/audit-logs"} {
		code, env = s.do(t, admin, http.MethodGet, path+"?page=922337203685477580&page_size=100", nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.JSONEq(t, "[]", string(env.Data), path)
	}
}
