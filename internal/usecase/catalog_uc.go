package usecase

import (
	"context"
	"fmt"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"go.uber.org/zap"
)

// CatalogUsecase exposes catalog items and repairs their rating aggregates.
type CatalogUsecase struct {
	catalog domain.CatalogRepository
	reviews domain.ReviewRepository
	logger  *logger.Logger
}

func NewCatalogUsecase(repos Repositories, log *logger.Logger) *CatalogUsecase {
	return &CatalogUsecase{
		catalog: repos.Catalog,
		reviews: repos.Reviews,
		logger:  log.Named("CatalogUsecase"),
	}
}

func (uc *CatalogUsecase) GetItem(ctx context.Context, variant domain.ItemVariant, id string) (*domain.CatalogItem, error) {
	if !variant.IsValid() {
		return nil, fmt.Errorf("%w: unknown item variant '%s'", domain.ErrInvalidInput, variant)
	}
	return uc.catalog.GetByID(ctx, variant, id)
}

// RecalculateRating rebuilds the aggregate of an item from its active reviews.
func (uc *CatalogUsecase) RecalculateRating(ctx context.Context, variant domain.ItemVariant, id string) (*domain.RatingAggregate, error) {
	item, err := uc.GetItem(ctx, variant, id)
	if err != nil {
		return nil, err
	}
	total, count, err := uc.reviews.SumActiveRatings(ctx, variant, id)
	if err != nil {
		return nil, err
	}
	agg, err := uc.catalog.SetRating(ctx, variant, id, total, count)
	if err != nil {
		return nil, err
	}
	if agg.Total != item.Rating.Total || agg.Count != item.Rating.Count {
		uc.logger.Warn("Rating aggregate drift corrected",
			zap.String("item_id", id),
			zap.Float64("stored_total", item.Rating.Total), zap.Int64("stored_count", item.Rating.Count),
			zap.Float64("total", agg.Total), zap.Int64("count", agg.Count))
	}
	return agg, nil
}
