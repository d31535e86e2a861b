package mongodb

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testClient is nil when Docker is unavailable; integration tests skip in that case.
var testClient *mongo.Client

func TestMain(m *testing.M) {
	pool, resource := startMongo()
	code := m.Run()
	if testClient != nil {
		_ = testClient.Disconnect(context.Background())
	}
	if resource != nil {
		if err := pool.Purge(resource); err != nil {
			log.Printf("Could not purge MongoDB resource: %s", err)
		}
	}
	os.Exit(code)
}

func startMongo() (*dockertest.Pool, *dockertest.Resource) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("Could not construct pool, skipping MongoDB integration tests: %s", err)
		return nil, nil
	}
	if err := pool.Client.Ping(); err != nil {
		log.Printf("Could not connect to Docker, skipping MongoDB integration tests: %s", err)
		return nil, nil
	}
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "6.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Printf("Could not start MongoDB resource: %s", err)
		return pool, nil
	}
	_ = resource.Expire(300)

	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))
	if err := pool.Retry(func() error {
		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err := client.Ping(context.Background(), nil); err != nil {
			_ = client.Disconnect(context.Background())
			return err
		}
		testClient = client
		return nil
	}); err != nil {
		log.Printf("Could not connect to MongoDB: %s", err)
	}
	return pool, resource
}

// newTestStore returns a store over a fresh database so tests do not share state.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testClient == nil {
		t.Skip("MongoDB container not available")
	}
	db := testClient.Database("stateview_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	store, err := NewStore(db, logger.NewNop())
	require.NoError(t, err)
	return store
}

func seedItem(t *testing.T, s *Store, variant domain.ItemVariant, id string) {
	t.Helper()
	require.NoError(t, s.Catalog.Upsert(context.Background(), &domain.CatalogItem{ID: id, Variant: variant, Title: "Item " + id}))
}

func TestCatalogRepository_ApplyRatingDelta(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, domain.VariantMovie, "tt0111161")

	agg, err := s.Catalog.ApplyRatingDelta(ctx, domain.VariantMovie, "tt0111161", 4, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{Total: 4, Count: 1, Average: 4}, *agg)

	agg, err = s.Catalog.ApplyRatingDelta(ctx, domain.VariantMovie, "tt0111161", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{Total: 6, Count: 2, Average: 3}, *agg)

	agg, err = s.Catalog.ApplyRatingDelta(ctx, domain.VariantMovie, "tt0111161", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{Total: 7, Count: 2, Average: 3.5}, *agg)

	agg, err = s.Catalog.ApplyRatingDelta(ctx, domain.VariantMovie, "tt0111161", -7, -2)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{}, *agg, "an empty aggregate resets the total")

	item, err := s.Catalog.GetByID(ctx, domain.VariantMovie, "tt0111161")
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.Rating.Count)
	assert.Equal(t, "Item tt0111161", item.Title)

	_, err = s.Catalog.ApplyRatingDelta(ctx, domain.VariantMovie, "missing", 1, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Catalog.GetByID(ctx, domain.VariantSeries, "tt0111161")
	assert.ErrorIs(t, err, domain.ErrNotFound, "variants live in separate collections")
}

func TestCatalogRepository_ConcurrentDeltas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, domain.VariantGame, "hollow-knight")

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Catalog.ApplyRatingDelta(ctx, domain.VariantGame, "hollow-knight", 2, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	item, err := s.Catalog.GetByID(ctx, domain.VariantGame, "hollow-knight")
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{Total: 50, Count: 25, Average: 2}, item.Rating)
}

func TestCatalogRepository_UpsertKeepsRating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, domain.VariantAlbum, "kind-of-blue")

	_, err := s.Catalog.SetRating(ctx, domain.VariantAlbum, "kind-of-blue", 9, 2)
	require.NoError(t, err)
	require.NoError(t, s.Catalog.Upsert(ctx, &domain.CatalogItem{ID: "kind-of-blue", Variant: domain.VariantAlbum, Title: "Kind of Blue"}))

	item, err := s.Catalog.GetByID(ctx, domain.VariantAlbum, "kind-of-blue")
	require.NoError(t, err)
	assert.Equal(t, "Kind of Blue", item.Title)
	assert.Equal(t, domain.RatingAggregate{Total: 9, Count: 2, Average: 4.5}, item.Rating)

	_, err = s.Catalog.SetRating(ctx, domain.VariantAlbum, "missing", 1, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepository_OneActiveReviewPerUserAndItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := domain.NewReview("user-a", "tt0111161", domain.VariantMovie, "Hope is a good thing", 4)
	require.NoError(t, err)
	require.NoError(t, s.Reviews.Create(ctx, first))

	dup, err := domain.NewReview("user-a", "tt0111161", domain.VariantMovie, "Again", 3)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Reviews.Create(ctx, dup), domain.ErrAlreadyExists)

	first.State = domain.ReviewStateBlocked
	first.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.Reviews.UpdateState(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	again, err := domain.NewReview("user-a", "tt0111161", domain.VariantMovie, "Second take", 5)
	require.NoError(t, err)
	require.NoError(t, s.Reviews.Create(ctx, again), "blocked reviews do not hold the slot")

	active, err := s.Reviews.FindActiveByUserAndItem(ctx, "user-a", "tt0111161")
	require.NoError(t, err)
	assert.Equal(t, again.ID, active.ID)

	first.State = domain.ReviewStateActive
	assert.ErrorIs(t, s.Reviews.UpdateState(ctx, first), domain.ErrAlreadyExists)
}

func TestReviewRepository_VersionedWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	review, err := domain.NewReview("user-v", "tt0068646", domain.VariantMovie, "An offer", 4)
	require.NoError(t, err)
	require.NoError(t, s.Reviews.Create(ctx, review))

	stale := *review

	review.Text = "An offer you cannot refuse"
	review.Rating = 5
	require.NoError(t, s.Reviews.UpdateContent(ctx, review))
	assert.Equal(t, int64(2), review.Version)

	stale.State = domain.ReviewStateBlocked
	assert.ErrorIs(t, s.Reviews.UpdateState(ctx, &stale), domain.ErrOptimisticLock)
	assert.ErrorIs(t, s.Reviews.Delete(ctx, review.ID, 1), domain.ErrOptimisticLock)

	stored, err := s.Reviews.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStateActive, stored.State)
	assert.Equal(t, 5.0, stored.Rating)
	assert.Equal(t, int64(2), stored.Version)

	stored.State = domain.ReviewStateBlocked
	require.NoError(t, s.Reviews.UpdateState(ctx, stored))
	after, err := s.Reviews.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "An offer you cannot refuse", after.Text, "state writes leave the content alone")
	assert.Equal(t, domain.ReviewStateBlocked, after.State)

	missing := primitive.NewObjectID()
	assert.ErrorIs(t, s.Reviews.Delete(ctx, missing, 1), domain.ErrNotFound)
}

func TestReviewRepository_LegacyDocumentWithoutVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	review, err := domain.NewReview("user-legacy", "tt0050083", domain.VariantMovie, "Twelve jurors", 5)
	require.NoError(t, err)
	require.NoError(t, s.Reviews.Create(ctx, review))
	_, err = s.Reviews.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, bson.M{"$unset": bson.M{"version": ""}})
	require.NoError(t, err)

	legacy, err := s.Reviews.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Zero(t, legacy.Version)

	legacy.Rating = 4
	require.NoError(t, s.Reviews.UpdateContent(ctx, legacy))
	assert.Equal(t, int64(1), legacy.Version)

	stored, err := s.Reviews.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, 4.0, stored.Rating)
}

func TestReviewRepository_CRUDAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []primitive.ObjectID
	for i, user := range []string{"u1", "u2", "u3"} {
		r, err := domain.NewReview(user, "tt0903747", domain.VariantSeries, "Say my name", float64(i+1))
		require.NoError(t, err)
		r.CreatedAt = r.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.Reviews.Create(ctx, r))
		ids = append(ids, r.ID)
	}

	list, err := s.Reviews.List(ctx, domain.ReviewFilter{ItemID: "tt0903747", ItemVariant: domain.VariantSeries})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID, "newest first")
	assert.Equal(t, ids[0], list[2].ID)

	list, err = s.Reviews.List(ctx, domain.ReviewFilter{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2.0, list[0].Rating)

	total, count, err := s.Reviews.SumActiveRatings(ctx, domain.VariantSeries, "tt0903747")
	require.NoError(t, err)
	assert.Equal(t, 6.0, total)
	assert.Equal(t, int64(3), count)

	require.NoError(t, s.Reviews.Delete(ctx, ids[0], 1))
	_, err = s.Reviews.GetByID(ctx, ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Reviews.Delete(ctx, ids[0], 1), domain.ErrNotFound)

	total, count, err = s.Reviews.SumActiveRatings(ctx, domain.VariantSeries, "tt0903747")
	require.NoError(t, err)
	assert.Equal(t, 5.0, total)
	assert.Equal(t, int64(2), count)

	total, count, err = s.Reviews.SumActiveRatings(ctx, domain.VariantSeries, "unknown")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, count)
}

func TestReviewRepository_ToggleLike(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, err := domain.NewReview("author", "tt0111161", domain.VariantMovie, "Get busy living", 5)
	require.NoError(t, err)
	require.NoError(t, s.Reviews.Create(ctx, r))

	liked, err := s.Reviews.ToggleLike(ctx, r.ID, domain.Like{UserID: "fan", Name: "Bruno"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Like{{UserID: "fan", Name: "Bruno"}}, liked.Likes)

	liked, err = s.Reviews.ToggleLike(ctx, r.ID, domain.Like{UserID: "other", Name: "Carla"})
	require.NoError(t, err)
	assert.Len(t, liked.Likes, 2)

	unliked, err := s.Reviews.ToggleLike(ctx, r.ID, domain.Like{UserID: "fan", Name: "Bruno"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Like{{UserID: "other", Name: "Carla"}}, unliked.Likes)

	_, err = s.Reviews.ToggleLike(ctx, primitive.NewObjectID(), domain.Like{UserID: "fan"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommentRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reviewID := primitive.NewObjectID()

	first, err := domain.NewComment(reviewID, "u1", "First")
	require.NoError(t, err)
	require.NoError(t, s.Comments.Create(ctx, first))
	second, err := domain.NewComment(reviewID, "u2", "Second")
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, s.Comments.Create(ctx, second))

	dup, err := domain.NewComment(reviewID, "u1", "Twice")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Comments.Create(ctx, dup), domain.ErrAlreadyExists)

	list, err := s.Comments.ListByReview(ctx, reviewID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "oldest first")

	liked, err := s.Comments.ToggleLike(ctx, second.ID, domain.Like{UserID: "u1", Name: "Ana"})
	require.NoError(t, err)
	assert.True(t, domain.HasLiked(liked.Likes, "u1"))

	n, err := s.Comments.DeleteByReview(ctx, reviewID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	_, err = s.Comments.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportRepository_Resolve(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	reviewID := primitive.NewObjectID()
	report, err := domain.NewReport("reporter", "reported", "spam", &reviewID)
	require.NoError(t, err)
	report.Snapshot = domain.ReportSnapshot{Text: "Buy now", Kind: domain.ContentKindReview, Title: "Heat", Rating: 1, Variant: domain.VariantMovie}
	require.NoError(t, s.Reports.Create(ctx, report))

	pending, err := s.Reports.List(ctx, domain.ReportFilter{State: domain.ReportStatePending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, report.Snapshot, pending[0].Snapshot)
	require.NotNil(t, pending[0].ReviewID)
	assert.Equal(t, reviewID, *pending[0].ReviewID)

	at := time.Now().UTC().Truncate(time.Millisecond)
	resolved, err := s.Reports.Resolve(ctx, report.ID, domain.ReportStateResolved, "mod", at)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStateResolved, resolved.State)
	assert.Equal(t, "mod", resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, at.Equal(*resolved.ResolvedAt))

	_, err = s.Reports.Resolve(ctx, report.ID, domain.ReportStateRejected, "mod", at)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = s.Reports.Resolve(ctx, report.ID, domain.ReportStatePending, "mod", at)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = s.Reports.Resolve(ctx, primitive.NewObjectID(), domain.ReportStateRejected, "mod", at)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err = s.Reports.List(ctx, domain.ReportFilter{State: domain.ReportStatePending})
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, s.Reports.Delete(ctx, report.ID))
	assert.ErrorIs(t, s.Reports.Delete(ctx, report.ID), domain.ErrNotFound)
}

func TestPersonRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana, err := domain.NewPerson("Ana", "ana@example.com", "password123", domain.RoleUser)
	require.NoError(t, err)
	require.NoError(t, s.People.Create(ctx, ana))

	twin, err := domain.NewPerson("Ana Two", "ANA@example.com", "password123", domain.RoleUser)
	require.NoError(t, err)
	assert.ErrorIs(t, s.People.Create(ctx, twin), domain.ErrAlreadyExists)

	got, err := s.People.GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.True(t, got.CheckPassword("password123"))

	byID, err := s.People.GetByIDs(ctx, []string{ana.ID, primitive.NewObjectID().Hex(), "not-an-id"})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Contains(t, byID, ana.ID)

	restricted, err := s.People.UpdateState(ctx, ana.ID, domain.AccountStateRestricted)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStateRestricted, restricted.State)

	promoted, err := s.People.UpdateRole(ctx, ana.ID, domain.RoleCritic)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCritic, promoted.Role)

	_, err = s.People.UpdateState(ctx, primitive.NewObjectID().Hex(), domain.AccountStateDisabled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
