package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/repositories/interfaces"
	"skillswap/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewUserRepository() interfaces.UserRepository {
	return &userRepository{
		users: make(map[primitive.ObjectID]*models.User),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if user.Email != "" && strings.EqualFold(u.Email, user.Email) {
			return utils.NewConflictError("a user with this email already exists")
		}
	}

	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("user", id.Hex())
	}
	return cloneUser(u), nil
}

func (r *userRepository) UpdateRatingAggregate(ctx context.Context, id primitive.ObjectID, rating float64, totalRatings int) error {
	return r.update(id, func(u *models.User) {
		u.Rating = rating
		u.TotalRatings = totalRatings
	})
}

func (r *userRepository) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	return r.update(id, func(u *models.User) {
		u.IsBanned = banned
	})
}

func (r *userRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	if params == nil {
		params = utils.DefaultPaginationParams()
	}

	r.mu.RLock()
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	r.mu.RUnlock()

	asc := params.Order == "asc"
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
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

	return paginate(users, params), int64(len(users)), nil
}

func (r *userRepository) GetTotalCount(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *userRepository) GetBannedCount(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, u := range r.users {
		if u.IsBanned {
			count++
		}
	}
	return count, nil
}

func (r *userRepository) update(id primitive.ObjectID, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return utils.NewNotFoundError("user", id.Hex())
	}
	apply(u)
	u.UpdatedAt = time.Now()
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.SkillsOffered = append([]string(nil), u.SkillsOffered...)
	c.SkillsWanted = append([]string(nil), u.SkillsWanted...)
	return &c
}
