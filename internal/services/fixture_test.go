package services

import (
	"context"
	"testing"
	"time"

	"skillswap/internal/config"
	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/repositories/memory"
	"skillswap/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	swapRepo   interfaces.SwapRepository
	userRepo   interfaces.UserRepository
	auditRepo  interfaces.AuditLogRepository
	moderation ModerationService
	ratings    RatingService
	swaps      SwapService
	analytics  AnalyticsService
}

func testSwapConfig() *config.SwapConfig {
	return &config.SwapConfig{
		LockDriver:          config.LockDriverLocal,
		LockTTL:             10 * time.Second,
		LockWait:            5 * time.Second,
		AggregateCacheTTL:   time.Minute,
		MaxMessageLength:    500,
		MaxRatingCommentLen: 500,
	}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, memory.NewSwapRepository(), memory.NewUserRepository(), nil)
}

func newFixtureWith(t *testing.T, swapRepo interfaces.SwapRepository, userRepo interfaces.UserRepository, cache AggregateCache) *fixture {
	t.Helper()

	log := logger.NewNop()
	cfg := testSwapConfig()
	locker := NewLocalLocker(cfg.LockWait)

	auditRepo := memory.NewAuditLogRepository()
	moderation := NewModerationService(userRepo, auditRepo, log)
	ratings := NewRatingService(swapRepo, userRepo, locker, cache, cfg, log)

	return &fixture{
		swapRepo:   swapRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		moderation: moderation,
		ratings:    ratings,
		swaps:      NewSwapService(swapRepo, userRepo, moderation, ratings, locker, cfg, log),
		analytics:  NewAnalyticsService(swapRepo, userRepo, moderation, log),
	}
}

func (f *fixture) user(t *testing.T, name string, offered ...string) *models.User {
	t.Helper()

	u := &models.User{
		Name:          name,
		Email:         name + "@example.com",
		SkillsOffered: offered,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

func (f *fixture) admin(t *testing.T) *models.User {
	t.Helper()

	u := &models.User{Name: "admin", Email: "admin@example.com", Role: models.UserRoleAdmin}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

func (f *fixture) propose(t *testing.T, requester, recipient *models.User, offered, requested string) *models.Swap {
	t.Helper()

	swap, err := f.swaps.Propose(context.Background(), &ProposeSwapRequest{
		RequesterID:    requester.ID,
		RecipientID:    recipient.ID,
		SkillOffered:   offered,
		SkillRequested: requested,
	})
	require.NoError(t, err)
	return swap
}

// completed drives a fresh swap between requester and recipient to completed.
func (f *fixture) completed(t *testing.T, requester, recipient *models.User) *models.Swap {
	t.Helper()
	ctx := context.Background()

	swap := f.propose(t, requester, recipient, requester.SkillsOffered[0], recipient.SkillsOffered[0])
	_, err := f.swaps.Accept(ctx, swap.ID, recipient.ID)
	require.NoError(t, err)
	swap, err = f.swaps.Complete(ctx, swap.ID, requester.ID)
	require.NoError(t, err)
	return swap
}
