package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewRepository keeps reviews in process memory.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[primitive.ObjectID]domain.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{reviews: make(map[primitive.ObjectID]domain.Review)}
}

func copyReview(r domain.Review) *domain.Review {
	r.Likes = append([]domain.Like{}, r.Likes...)
	r.Author = nil
	return &r
}

func (r *ReviewRepository) hasOtherActive(review *domain.Review) bool {
	for id, existing := range r.reviews {
		if id != review.ID && existing.IsActive() && existing.UserID == review.UserID && existing.ItemID == review.ItemID {
			return true
		}
	}
	return false
}

func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; ok {
		return fmt.Errorf("%w: review %s", domain.ErrAlreadyExists, review.ID.Hex())
	}
	if review.IsActive() && r.hasOtherActive(review) {
		return fmt.Errorf("%w: user %s already reviewed item %s", domain.ErrAlreadyExists, review.UserID, review.ItemID)
	}
	r.reviews[review.ID] = *copyReview(*review)
	return nil
}

func (r *ReviewRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %s", domain.ErrNotFound, id.Hex())
	}
	return copyReview(review), nil
}

func (r *ReviewRepository) FindActiveByUserAndItem(_ context.Context, userID, itemID string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.reviews {
		if review.IsActive() && review.UserID == userID && review.ItemID == itemID {
			return copyReview(review), nil
		}
	}
	return nil, fmt.Errorf("%w: no active review by %s for %s", domain.ErrNotFound, userID, itemID)
}

// lockedForWrite returns the stored review when it is still at version. Callers hold r.mu.
func (r *ReviewRepository) lockedForWrite(id primitive.ObjectID, version int64) (domain.Review, error) {
	existing, ok := r.reviews[id]
	if !ok {
		return existing, fmt.Errorf("%w: review %s", domain.ErrNotFound, id.Hex())
	}
	if existing.Version != version {
		return existing, fmt.Errorf("%w: review %s is at version %d, not %d", domain.ErrOptimisticLock, id.Hex(), existing.Version, version)
	}
	return existing, nil
}

func (r *ReviewRepository) UpdateContent(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, err := r.lockedForWrite(review.ID, review.Version)
	if err != nil {
		return err
	}
	existing.Text = review.Text
	existing.Rating = review.Rating
	existing.UpdatedAt = review.UpdatedAt
	existing.Version++
	r.reviews[review.ID] = existing
	review.Version = existing.Version
	return nil
}

func (r *ReviewRepository) UpdateState(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, err := r.lockedForWrite(review.ID, review.Version)
	if err != nil {
		return err
	}
	if review.IsActive() && r.hasOtherActive(&existing) {
		return fmt.Errorf("%w: user %s already reviewed item %s", domain.ErrAlreadyExists, existing.UserID, existing.ItemID)
	}
	existing.State = review.State
	existing.UpdatedAt = review.UpdatedAt
	existing.Version++
	r.reviews[review.ID] = existing
	review.Version = existing.Version
	return nil
}

func (r *ReviewRepository) Delete(_ context.Context, id primitive.ObjectID, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lockedForWrite(id, version); err != nil {
		return err
	}
	delete(r.reviews, id)
	return nil
}

func (r *ReviewRepository) List(_ context.Context, filter domain.ReviewFilter) ([]*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Review, 0)
	for _, review := range r.reviews {
		if filter.ItemID != "" && review.ItemID != filter.ItemID {
			continue
		}
		if filter.ItemVariant != "" && review.ItemVariant != filter.ItemVariant {
			continue
		}
		if filter.UserID != "" && review.UserID != filter.UserID {
			continue
		}
		if filter.State != "" && review.State != filter.State {
			continue
		}
		out = append(out, copyReview(review))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *ReviewRepository) ToggleLike(_ context.Context, id primitive.ObjectID, liker domain.Like) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %s", domain.ErrNotFound, id.Hex())
	}
	review.Likes, _ = domain.ToggleLike(review.Likes, liker)
	r.reviews[id] = review
	return copyReview(review), nil
}

func (r *ReviewRepository) SumActiveRatings(_ context.Context, variant domain.ItemVariant, itemID string) (float64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total float64
	var count int64
	for _, review := range r.reviews {
		if review.IsActive() && review.ItemID == itemID && review.ItemVariant == variant {
			total += review.Rating
			count++
		}
	}
	return total, count, nil
}
