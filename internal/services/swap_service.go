package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"skillswap/internal/config"
	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"
	"skillswap/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProposeSwapRequest struct {
	RequesterID    primitive.ObjectID
	RecipientID    primitive.ObjectID
	SkillOffered   string
	SkillRequested string
	Message        string
}

type SwapService interface {
	// Lifecycle transitions
	Propose(ctx context.Context, request *ProposeSwapRequest) (*models.Swap, error)
	Accept(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error)
	Reject(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error)
	Cancel(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error)
	Complete(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error)

	// Moderation
	DeleteFeedback(ctx context.Context, swapID primitive.ObjectID, role models.SwapRole, actorID primitive.ObjectID) (*models.Swap, error)

	// Queries
	Get(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error)
	ListAll(ctx context.Context, actorID primitive.ObjectID, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error)
}

type swapService struct {
	swapRepo   interfaces.SwapRepository
	userRepo   interfaces.UserRepository
	moderation ModerationService
	ratings    RatingService
	locker     Locker
	config     *config.SwapConfig
	logger     *logger.Logger
}

func NewSwapService(
	swapRepo interfaces.SwapRepository,
	userRepo interfaces.UserRepository,
	moderation ModerationService,
	ratings RatingService,
	locker Locker,
	config *config.SwapConfig,
	logger *logger.Logger,
) SwapService {
	return &swapService{
		swapRepo:   swapRepo,
		userRepo:   userRepo,
		moderation: moderation,
		ratings:    ratings,
		locker:     locker,
		config:     config,
		logger:     logger,
	}
}

func (s *swapService) Propose(ctx context.Context, request *ProposeSwapRequest) (*models.Swap, error) {
	skillOffered := strings.TrimSpace(request.SkillOffered)
	skillRequested := strings.TrimSpace(request.SkillRequested)
	message := strings.TrimSpace(request.Message)

	if skillOffered == "" || skillRequested == "" {
		return nil, utils.NewValidationError("skill offered and skill requested are required")
	}
	if request.RequesterID == request.RecipientID {
		return nil, utils.NewValidationError("cannot propose a swap to yourself")
	}
	if utf8.RuneCountInString(message) > s.config.MaxMessageLength {
		return nil, utils.NewValidationError(fmt.Sprintf("message must be at most %d characters", s.config.MaxMessageLength))
	}

	recipient, err := s.getUser(ctx, request.RecipientID)
	if err != nil {
		return nil, err
	}
	if recipient.IsBanned {
		// Banned users are invisible to other users.
		return nil, utils.NewNotFoundError("user", request.RecipientID.Hex())
	}

	requester, err := s.getUser(ctx, request.RequesterID)
	if err != nil {
		return nil, err
	}
	if !requester.Offers(skillOffered) {
		return nil, utils.NewValidationError("you do not offer this skill").WithDetail("skill_offered", skillOffered)
	}
	if !recipient.Offers(skillRequested) {
		return nil, utils.NewValidationError("the recipient does not offer this skill").WithDetail("skill_requested", skillRequested)
	}

	unlock, err := s.locker.Lock(ctx, pairLockKey(request.RequesterID, request.RecipientID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := retryRead(ctx, func(ctx context.Context) (*models.Swap, error) {
		return s.swapRepo.FindPendingBetween(ctx, request.RequesterID, request.RecipientID)
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewConflictError("a pending swap already exists between these users").
			WithDetail("swap_id", existing.ID.Hex())
	}

	swap := &models.Swap{
		Requester:      request.RequesterID,
		Recipient:      request.RecipientID,
		SkillOffered:   skillOffered,
		SkillRequested: skillRequested,
		Message:        message,
		Status:         models.SwapStatusPending,
	}
	if err := s.swapRepo.Create(ctx, swap); err != nil {
		s.logger.WithError(err).WithUserID(request.RequesterID).Error("Failed to create swap")
		return nil, err
	}

	s.logger.LogSwapEvent(swap.ID, utils.EventSwapProposed, map[string]interface{}{
		"requester_id": swap.Requester.Hex(),
		"recipient_id": swap.Recipient.Hex(),
	})

	return swap, nil
}

func (s *swapService) Accept(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error) {
	return s.respond(ctx, swapID, actorID, models.SwapStatusAccepted, utils.EventSwapAccepted)
}

func (s *swapService) Reject(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error) {
	return s.respond(ctx, swapID, actorID, models.SwapStatusRejected, utils.EventSwapRejected)
}

// respond handles the recipient's answer to a pending swap.
func (s *swapService) respond(ctx context.Context, swapID, actorID primitive.ObjectID, next models.SwapStatus, event string) (*models.Swap, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Recipient != actorID {
		return nil, utils.NewAuthorizationError("only the recipient can respond to this swap")
	}
	if swap.Status != models.SwapStatusPending {
		return nil, utils.NewStateError(swapID.Hex(), string(models.SwapStatusPending), string(swap.Status))
	}

	return s.transition(ctx, swap, actorID, models.SwapStatusPending, next, nil, event)
}

func (s *swapService) Cancel(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Requester != actorID {
		return nil, utils.NewAuthorizationError("only the requester can cancel this swap")
	}
	if swap.Status != models.SwapStatusPending {
		return nil, utils.NewStateError(swapID.Hex(), string(models.SwapStatusPending), string(swap.Status))
	}

	return s.transition(ctx, swap, actorID, models.SwapStatusPending, models.SwapStatusCancelled, nil, utils.EventSwapCancelled)
}

func (s *swapService) Complete(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapStatusAccepted {
		return nil, utils.NewStateError(swapID.Hex(), string(models.SwapStatusAccepted), string(swap.Status))
	}
	asAdmin := false
	if !swap.IsParticipant(actorID) {
		isAdmin, err := s.moderation.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, utils.NewAuthorizationError("only swap participants or admins can complete this swap")
		}
		asAdmin = true
	}

	completedAt := time.Now().UTC()
	completed, err := s.transition(ctx, swap, actorID, models.SwapStatusAccepted, models.SwapStatusCompleted,
		&interfaces.StatusUpdate{CompletedAt: &completedAt}, utils.EventSwapCompleted)
	if err != nil {
		return nil, err
	}

	if asAdmin {
		s.moderation.RecordAction(ctx, actorID, models.AuditActionSwapCompleted, models.AuditResourceSwap, swapID.Hex(), nil)
	}
	return completed, nil
}

func (s *swapService) DeleteFeedback(ctx context.Context, swapID primitive.ObjectID, role models.SwapRole, actorID primitive.ObjectID) (*models.Swap, error) {
	if err := s.moderation.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, utils.NewValidationError("role must be requester or recipient").WithDetail("role", string(role))
	}
	if swap.Status != models.SwapStatusCompleted {
		return nil, utils.NewStateError(swapID.Hex(), string(models.SwapStatusCompleted), string(swap.Status))
	}
	if swap.RatingFor(role) == nil {
		return nil, utils.NewNotFoundError("feedback", swapID.Hex()).WithDetail("role", string(role))
	}

	cleared, err := s.swapRepo.ClearRating(ctx, swapID, role)
	if err != nil {
		s.logger.WithError(err).WithSwapID(swapID).Error("Failed to clear swap rating")
		return nil, err
	}
	if !cleared {
		// Removed by a concurrent moderation request.
		return nil, utils.NewNotFoundError("feedback", swapID.Hex()).WithDetail("role", string(role))
	}

	ratedUserID := swap.Participant(role)
	s.moderation.RecordAction(ctx, actorID, models.AuditActionFeedbackDeleted, models.AuditResourceSwap, swapID.Hex(), map[string]interface{}{
		"role":          string(role),
		"rated_user_id": ratedUserID.Hex(),
	})

	if _, err := s.ratings.RecomputeAggregate(ctx, ratedUserID); err != nil {
		return nil, err
	}

	swap.SetRating(role, nil)
	return swap, nil
}

func (s *swapService) Get(ctx context.Context, swapID, actorID primitive.ObjectID) (*models.Swap, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.IsParticipant(actorID) {
		return swap, nil
	}

	isAdmin, err := s.moderation.IsAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, utils.NewAuthorizationError("only swap participants or admins can view this swap")
	}
	return swap, nil
}

func (s *swapService) ListForUser(ctx context.Context, userID primitive.ObjectID, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}

	return retryList(ctx, func(ctx context.Context) ([]*models.Swap, int64, error) {
		return s.swapRepo.GetByParticipant(ctx, userID, filter, params)
	})
}

func (s *swapService) ListAll(ctx context.Context, actorID primitive.ObjectID, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error) {
	if err := s.moderation.RequireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}

	return retryList(ctx, func(ctx context.Context) ([]*models.Swap, int64, error) {
		return s.swapRepo.List(ctx, filter, params)
	})
}

// transition applies expected -> next as one conditional write. A lost race re-reads the swap and
// reports the status it actually holds.
func (s *swapService) transition(ctx context.Context, swap *models.Swap, actorID primitive.ObjectID, expected, next models.SwapStatus, extra *interfaces.StatusUpdate, event string) (*models.Swap, error) {
	updated, err := s.swapRepo.UpdateStatus(ctx, swap.ID, expected, next, extra)
	if err != nil {
		s.logger.WithError(err).WithSwapID(swap.ID).Error("Failed to update swap status")
		return nil, err
	}
	if !updated {
		current, err := s.getSwap(ctx, swap.ID)
		if err != nil {
			return nil, err
		}
		return nil, utils.NewStateError(swap.ID.Hex(), string(expected), string(current.Status))
	}

	swap.Status = next
	if extra != nil && extra.CompletedAt != nil {
		swap.CompletedAt = extra.CompletedAt
	}

	s.logger.LogSwapEvent(swap.ID, event, map[string]interface{}{
		"actor_id":    actorID.Hex(),
		"from_status": string(expected),
		"to_status":   string(next),
	})

	return swap, nil
}

func (s *swapService) getSwap(ctx context.Context, swapID primitive.ObjectID) (*models.Swap, error) {
	return retryRead(ctx, func(ctx context.Context) (*models.Swap, error) {
		return s.swapRepo.GetByID(ctx, swapID)
	})
}

func (s *swapService) getUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return retryRead(ctx, func(ctx context.Context) (*models.User, error) {
		return s.userRepo.GetByID(ctx, userID)
	})
}

func validateFilter(filter *models.SwapFilter) error {
	if filter == nil {
		return nil
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return utils.NewValidationError("invalid status filter").WithDetail("status", string(filter.Status))
	}
	switch filter.Direction {
	case "", models.SwapDirectionAll, models.SwapDirectionIncoming, models.SwapDirectionOutgoing:
		return nil
	}
	return utils.NewValidationError("direction must be all, incoming or outgoing").WithDetail("direction", filter.Direction)
}

// pairLockKey is the same for both orderings of a user pair.
func pairLockKey(a, b primitive.ObjectID) string {
	first, second := a.Hex(), b.Hex()
	if second < first {
		first, second = second, first
	}
	return "swap:pair:" + first + ":" + second
}
