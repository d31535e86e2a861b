package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/adapter/repository/memory"
	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	movieID  = "tt0111161"
	userA    = "64b000000000000000000001"
	userB    = "64b000000000000000000002"
	userC    = "64b000000000000000000003"
	modUser  = "64b000000000000000000004"
	adminID  = "64b000000000000000000005"
	superID  = "64b000000000000000000006"
	unknownU = "64b0000000000000000000ff"
)

var fastRetry = RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, MaxElapsedTime: 200 * time.Millisecond}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type fixture struct {
	store      *memory.Store
	repos      Repositories
	pub        *mockPublisher
	reviews    *ReviewUsecase
	comments   *CommentUsecase
	reports    *ReportUsecase
	moderation *ModerationUsecase
	catalog    *CatalogUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := Repositories{
		Catalog:  store.Catalog,
		Reviews:  store.Reviews,
		Comments: store.Comments,
		Reports:  store.Reports,
		People:   store.People,
	}
	ctx := context.Background()
	require.NoError(t, store.Catalog.Upsert(ctx, &domain.CatalogItem{
		ID: movieID, Variant: domain.VariantMovie, Title: "The Shawshank Redemption", Year: "1994",
	}))

	people := []domain.Person{
		{ID: userA, Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser, State: domain.AccountStateActive},
		{ID: userB, Name: "Bruno", Email: "bruno@example.com", Role: domain.RoleCritic, State: domain.AccountStateActive},
		{ID: userC, Name: "Carla", Email: "carla@example.com", Role: domain.RoleUser, State: domain.AccountStateActive},
		{ID: modUser, Name: "Mod", Email: "mod@example.com", Role: domain.RoleModerator, State: domain.AccountStateActive},
		{ID: adminID, Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, State: domain.AccountStateActive},
		{ID: superID, Name: "Root", Email: "root@example.com", Role: domain.RoleSuperAdmin, State: domain.AccountStateActive},
	}
	for i := range people {
		require.NoError(t, store.People.Create(ctx, &people[i]))
	}

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	log := logger.NewNop()
	return &fixture{
		store:      store,
		repos:      repos,
		pub:        pub,
		reviews:    NewReviewUsecase(repos, pub, nil, fastRetry, log),
		comments:   NewCommentUsecase(repos, pub, nil, log),
		reports:    NewReportUsecase(repos, pub, nil, log),
		moderation: NewModerationUsecase(repos, pub, nil, log),
		catalog:    NewCatalogUsecase(repos, log),
	}
}

func (f *fixture) movie(t *testing.T) domain.RatingAggregate {
	t.Helper()
	item, err := f.store.Catalog.GetByID(context.Background(), domain.VariantMovie, movieID)
	require.NoError(t, err)
	return item.Rating
}

func (f *fixture) createReview(t *testing.T, userID string, rating float64) *ReviewResult {
	t.Helper()
	res, err := f.reviews.CreateReview(context.Background(), CreateReviewInput{
		UserID: userID, ItemID: movieID, ItemVariant: domain.VariantMovie, Text: "review by " + userID, Rating: rating,
	})
	require.NoError(t, err)
	return res
}

// mockCatalog lets tests script failures of the aggregate writes.
type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetByID(ctx context.Context, variant domain.ItemVariant, id string) (*domain.CatalogItem, error) {
	args := m.Called(ctx, variant, id)
	item, _ := args.Get(0).(*domain.CatalogItem)
	return item, args.Error(1)
}

func (m *mockCatalog) ApplyRatingDelta(ctx context.Context, variant domain.ItemVariant, id string, deltaTotal float64, deltaCount int64) (*domain.RatingAggregate, error) {
	args := m.Called(ctx, variant, id, deltaTotal, deltaCount)
	agg, _ := args.Get(0).(*domain.RatingAggregate)
	return agg, args.Error(1)
}

func (m *mockCatalog) SetRating(ctx context.Context, variant domain.ItemVariant, id string, total float64, count int64) (*domain.RatingAggregate, error) {
	args := m.Called(ctx, variant, id, total, count)
	agg, _ := args.Get(0).(*domain.RatingAggregate)
	return agg, args.Error(1)
}

func (m *mockCatalog) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	return m.Called(ctx, item).Error(0)
}
