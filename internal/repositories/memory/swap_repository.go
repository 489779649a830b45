// Package memory holds mutex-guarded in-process repositories with the same
// conditional-write semantics as the MongoDB implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type swapRepository struct {
	mu    sync.RWMutex
	swaps map[primitive.ObjectID]*models.Swap
}

func NewSwapRepository() interfaces.SwapRepository {
	return &swapRepository{
		swaps: make(map[primitive.ObjectID]*models.Swap),
	}
}

func (r *swapRepository) Create(ctx context.Context, swap *models.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	swap.ID = primitive.NewObjectID()
	swap.CreatedAt = now
	swap.UpdatedAt = now

	r.swaps[swap.ID] = cloneSwap(swap)
	return nil
}

func (r *swapRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	swap, ok := r.swaps[id]
	if !ok {
		return nil, utils.NewNotFoundError("swap", id.Hex())
	}
	return cloneSwap(swap), nil
}

func (r *swapRepository) GetByParticipant(ctx context.Context, userID primitive.ObjectID, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error) {
	direction := models.SwapDirectionAll
	var status models.SwapStatus
	if filter != nil {
		if filter.Direction != "" {
			direction = filter.Direction
		}
		status = filter.Status
	}

	return r.page(params, func(s *models.Swap) bool {
		if status != "" && s.Status != status {
			return false
		}
		switch direction {
		case models.SwapDirectionIncoming:
			return s.Recipient == userID
		case models.SwapDirectionOutgoing:
			return s.Requester == userID
		default:
			return s.IsParticipant(userID)
		}
	})
}

func (r *swapRepository) FindPendingBetween(ctx context.Context, userA, userB primitive.ObjectID) (*models.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.swaps {
		if s.Status != models.SwapStatusPending {
			continue
		}
		if (s.Requester == userA && s.Recipient == userB) || (s.Requester == userB && s.Recipient == userA) {
			return cloneSwap(s), nil
		}
	}
	return nil, nil
}

func (r *swapRepository) GetCompletedInvolving(ctx context.Context, userID primitive.ObjectID) ([]*models.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var swaps []*models.Swap
	for _, s := range r.swaps {
		if s.Status == models.SwapStatusCompleted && s.IsParticipant(userID) {
			swaps = append(swaps, cloneSwap(s))
		}
	}
	return swaps, nil
}

func (r *swapRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, expected, next models.SwapStatus, extra *interfaces.StatusUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swaps[id]
	if !ok || s.Status != expected {
		return false, nil
	}

	s.Status = next
	s.UpdatedAt = time.Now()
	if extra != nil && extra.CompletedAt != nil {
		completedAt := *extra.CompletedAt
		s.CompletedAt = &completedAt
	}
	return true, nil
}

func (r *swapRepository) SetRating(ctx context.Context, id primitive.ObjectID, role models.SwapRole, rating *models.SwapRating) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swaps[id]
	if !ok || s.Status != models.SwapStatusCompleted || s.RatingFor(role) != nil {
		return false, nil
	}

	value := *rating
	s.SetRating(role, &value)
	s.UpdatedAt = time.Now()
	return true, nil
}

func (r *swapRepository) ClearRating(ctx context.Context, id primitive.ObjectID, role models.SwapRole) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swaps[id]
	if !ok || s.RatingFor(role) == nil {
		return false, nil
	}

	s.SetRating(role, nil)
	s.UpdatedAt = time.Now()
	return true, nil
}

func (r *swapRepository) List(ctx context.Context, filter *models.SwapFilter, params *utils.PaginationParams) ([]*models.Swap, int64, error) {
	return r.page(params, func(s *models.Swap) bool {
		return filter == nil || filter.Status == "" || s.Status == filter.Status
	})
}

func (r *swapRepository) CountByStatus(ctx context.Context, from, to *time.Time) (map[models.SwapStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.SwapStatus]int64)
	for _, s := range r.swaps {
		if from != nil && s.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && s.CreatedAt.After(*to) {
			continue
		}
		counts[s.Status]++
	}
	return counts, nil
}

// page returns matching swaps newest first, ties broken by id.
func (r *swapRepository) page(params *utils.PaginationParams, match func(*models.Swap) bool) ([]*models.Swap, int64, error) {
	if params == nil {
		params = utils.DefaultPaginationParams()
	}

	r.mu.RLock()
	var matched []*models.Swap
	for _, s := range r.swaps {
		if match(s) {
			matched = append(matched, cloneSwap(s))
		}
	}
	r.mu.RUnlock()

	asc := params.Order == "asc"
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if asc {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if asc {
			return a.ID.Hex() < b.ID.Hex()
		}
		return a.ID.Hex() > b.ID.Hex()
	})

	return paginate(matched, params), int64(len(matched)), nil
}

func paginate[T any](items []T, params *utils.PaginationParams) []T {
	start := params.GetSkip()
	if start < 0 || start >= len(items) {
		return nil
	}
	limit := params.GetLimit()
	if limit < 0 {
		limit = 0
	}
	if limit > len(items)-start {
		limit = len(items) - start
	}
	return items[start : start+limit]
}

func cloneSwap(s *models.Swap) *models.Swap {
	c := *s
	if s.RequesterRating != nil {
		r := *s.RequesterRating
		c.RequesterRating = &r
	}
	if s.RecipientRating != nil {
		r := *s.RecipientRating
		c.RecipientRating = &r
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
