package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
)

type catalogKey struct {
	variant domain.ItemVariant
	id      string
}

// CatalogRepository keeps catalog items in process memory.
type CatalogRepository struct {
	mu    sync.RWMutex
	items map[catalogKey]domain.CatalogItem
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{items: make(map[catalogKey]domain.CatalogItem)}
}

func (r *CatalogRepository) GetByID(_ context.Context, variant domain.ItemVariant, id string) (*domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[catalogKey{variant, id}]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, variant, id)
	}
	return &item, nil
}

func (r *CatalogRepository) ApplyRatingDelta(_ context.Context, variant domain.ItemVariant, id string, deltaTotal float64, deltaCount int64) (*domain.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := catalogKey{variant, id}
	item, ok := r.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, variant, id)
	}
	item.Rating = item.Rating.Apply(deltaTotal, deltaCount)
	r.items[key] = item
	agg := item.Rating
	return &agg, nil
}

func (r *CatalogRepository) SetRating(_ context.Context, variant domain.ItemVariant, id string, total float64, count int64) (*domain.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := catalogKey{variant, id}
	item, ok := r.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, variant, id)
	}
	item.Rating = domain.RatingAggregate{}.Apply(total, count)
	r.items[key] = item
	agg := item.Rating
	return &agg, nil
}

func (r *CatalogRepository) Upsert(_ context.Context, item *domain.CatalogItem) error {
	if item == nil || item.ID == "" || !item.Variant.IsValid() {
		return fmt.Errorf("%w: catalog item needs an id and a known variant", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := catalogKey{item.Variant, item.ID}
	stored := *item
	if existing, ok := r.items[key]; ok {
		stored.Rating = existing.Rating
		stored.CreatedAt = existing.CreatedAt
	}
	r.items[key] = stored
	return nil
}
