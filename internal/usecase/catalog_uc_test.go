package usecase

import (
	"context"
	"testing"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogUsecase_GetItem(t *testing.T) {
	f := newFixture(t)
	item, err := f.catalog.GetItem(context.Background(), domain.VariantMovie, movieID)
	require.NoError(t, err)
	assert.Equal(t, "The Shawshank Redemption", item.Title)

	_, err = f.catalog.GetItem(context.Background(), domain.VariantGame, movieID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.catalog.GetItem(context.Background(), "podcast", movieID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalogUsecase_RecalculateRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createReview(t, userA, 4)
	f.createReview(t, userB, 2.5)

	_, err := f.store.Catalog.SetRating(ctx, domain.VariantMovie, movieID, 100, 9)
	require.NoError(t, err)

	agg, err := f.catalog.RecalculateRating(ctx, domain.VariantMovie, movieID)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{Total: 6.5, Count: 2, Average: 3.25}, *agg)
	assert.Equal(t, *agg, f.movie(t))
}
