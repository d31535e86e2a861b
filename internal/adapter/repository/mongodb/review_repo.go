package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	zap "go.uber.org/zap"
)

const reviewCollectionName = "reviews"

// ReviewRepository implements the domain.ReviewRepository interface using MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewReviewRepository creates a new MongoDB review repository.
func NewReviewRepository(db *mongo.Database, log *logger.Logger) (*ReviewRepository, error) {
	collection := db.Collection(reviewCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "item_variant", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		// one active review per user and item
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_active_review_per_user_item").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"state": string(domain.ReviewStateActive)}),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for reviews collection", zap.Error(err))
		return nil, fmt.Errorf("failed to create indexes for %s: %w", reviewCollectionName, err)
	}
	log.Info("Successfully ensured indexes for reviews collection")

	return &ReviewRepository{
		collection: collection,
		logger:     log.Named("ReviewRepository"),
	}, nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.logger.Debug("Creating review in DB", zap.String("item_id", review.ItemID), zap.String("user_id", review.UserID))
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, fromDomainReview(review)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate active review", zap.String("user_id", review.UserID), zap.String("item_id", review.ItemID))
		} else {
			r.logger.Error("Failed to insert review into DB", zap.Error(err))
		}
		return mapError(err, "review by "+review.UserID+" for "+review.ItemID)
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	var doc reviewDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err, "review "+id.Hex())
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) FindActiveByUserAndItem(ctx context.Context, userID, itemID string) (*domain.Review, error) {
	filter := bson.M{"user_id": userID, "item_id": itemID, "state": string(domain.ReviewStateActive)}
	var doc reviewDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err, "active review by "+userID+" for "+itemID)
	}
	return doc.toDomain(), nil
}

// versionFilter matches the review only at version. Reviews stored before versioning carry no
// version field and match version 0.
func versionFilter(id primitive.ObjectID, version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": id, "version": bson.M{"$in": bson.A{int64(0), nil}}}
	}
	return bson.M{"_id": id, "version": version}
}

// missedWrite tells a lost optimistic lock from a review that no longer exists.
func (r *ReviewRepository) missedWrite(ctx context.Context, id primitive.ObjectID, version int64) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err, "review "+id.Hex())
	}
	if n == 0 {
		return fmt.Errorf("%w: review %s", domain.ErrNotFound, id.Hex())
	}
	r.logger.Warn("Review modified concurrently", zap.String("review_id", id.Hex()), zap.Int64("expected_version", version))
	return fmt.Errorf("%w: review %s is no longer at version %d", domain.ErrOptimisticLock, id.Hex(), version)
}

func (r *ReviewRepository) updateVersioned(ctx context.Context, review *domain.Review, set bson.M) error {
	update := bson.M{"$set": set, "$inc": bson.M{"version": int64(1)}}
	res, err := r.collection.UpdateOne(ctx, versionFilter(review.ID, review.Version), update)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.logger.Error("Failed to update review in DB", zap.String("review_id", review.ID.Hex()), zap.Error(err))
		}
		return mapError(err, "review "+review.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return r.missedWrite(ctx, review.ID, review.Version)
	}
	review.Version++
	return nil
}

func (r *ReviewRepository) UpdateContent(ctx context.Context, review *domain.Review) error {
	return r.updateVersioned(ctx, review, bson.M{
		"text":       review.Text,
		"rating":     review.Rating,
		"updated_at": review.UpdatedAt,
	})
}

// UpdateState fails with ErrAlreadyExists when reactivating would give the author two active reviews.
func (r *ReviewRepository) UpdateState(ctx context.Context, review *domain.Review) error {
	return r.updateVersioned(ctx, review, bson.M{
		"state":      string(review.State),
		"updated_at": review.UpdatedAt,
	})
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID, version int64) error {
	res, err := r.collection.DeleteOne(ctx, versionFilter(id, version))
	if err != nil {
		r.logger.Error("Failed to delete review from DB", zap.String("review_id", id.Hex()), zap.Error(err))
		return mapError(err, "review "+id.Hex())
	}
	if res.DeletedCount == 0 {
		return r.missedWrite(ctx, id, version)
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter) ([]*domain.Review, error) {
	query := bson.M{}
	if filter.ItemID != "" {
		query["item_id"] = filter.ItemID
	}
	if filter.ItemVariant != "" {
		query["item_variant"] = string(filter.ItemVariant)
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.State != "" {
		query["state"] = string(filter.State)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("Failed to list reviews", zap.Any("filter", query), zap.Error(err))
		return nil, mapError(err, "reviews")
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err, "reviews")
	}
	reviews := make([]*domain.Review, 0, len(docs))
	for i := range docs {
		reviews = append(reviews, docs[i].toDomain())
	}
	return reviews, nil
}

func (r *ReviewRepository) ToggleLike(ctx context.Context, id primitive.ObjectID, liker domain.Like) (*domain.Review, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc reviewDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, toggleLikePipeline(liker), opts).Decode(&doc); err != nil {
		return nil, mapError(err, "review "+id.Hex())
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) SumActiveRatings(ctx context.Context, variant domain.ItemVariant, itemID string) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "item_id", Value: itemID},
			{Key: "item_variant", Value: string(variant)},
			{Key: "state", Value: string(domain.ReviewStateActive)},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate ratings", zap.String("item_id", itemID), zap.Error(err))
		return 0, 0, mapError(err, "ratings of "+itemID)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, mapError(err, "ratings of "+itemID)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Total, results[0].Count, nil
}
