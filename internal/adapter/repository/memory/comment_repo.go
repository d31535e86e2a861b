package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentRepository keeps comments in process memory.
type CommentRepository struct {
	mu       sync.RWMutex
	comments map[primitive.ObjectID]domain.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[primitive.ObjectID]domain.Comment)}
}

func copyComment(c domain.Comment) *domain.Comment {
	c.Likes = append([]domain.Like{}, c.Likes...)
	c.Author = nil
	return &c
}

func (r *CommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.comments {
		if existing.ReviewID == comment.ReviewID && existing.UserID == comment.UserID {
			return fmt.Errorf("%w: user %s already commented on review %s", domain.ErrAlreadyExists, comment.UserID, comment.ReviewID.Hex())
		}
	}
	r.comments[comment.ID] = *copyComment(*comment)
	return nil
}

func (r *CommentRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("%w: comment %s", domain.ErrNotFound, id.Hex())
	}
	return copyComment(c), nil
}

func (r *CommentRepository) Update(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.comments[comment.ID]
	if !ok {
		return fmt.Errorf("%w: comment %s", domain.ErrNotFound, comment.ID.Hex())
	}
	existing.Text = comment.Text
	existing.Edited = comment.Edited
	existing.UpdatedAt = comment.UpdatedAt
	r.comments[comment.ID] = existing
	return nil
}

func (r *CommentRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return fmt.Errorf("%w: comment %s", domain.ErrNotFound, id.Hex())
	}
	delete(r.comments, id)
	return nil
}

func (r *CommentRepository) ListByReview(_ context.Context, reviewID primitive.ObjectID) ([]*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Comment, 0)
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			out = append(out, copyComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *CommentRepository) DeleteByReview(_ context.Context, reviewID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comments {
		if c.ReviewID == reviewID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *CommentRepository) ToggleLike(_ context.Context, id primitive.ObjectID, liker domain.Like) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("%w: comment %s", domain.ErrNotFound, id.Hex())
	}
	c.Likes, _ = domain.ToggleLike(c.Likes, liker)
	r.comments[id] = c
	return copyComment(c), nil
}
