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
	"go.uber.org/zap"
)

const commentCollectionName = "comments"

type CommentRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCommentRepository(db *mongo.Database, log *logger.Logger) (*CommentRepository, error) {
	collection := db.Collection(commentCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "review_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{
			Keys:    bson.D{{Key: "review_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_comment_per_user_review").SetUnique(true),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for comments collection", zap.Error(err))
		return nil, fmt.Errorf("failed to create indexes for %s: %w", commentCollectionName, err)
	}

	return &CommentRepository{
		collection: collection,
		logger:     log.Named("CommentRepository"),
	}, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, fromDomainComment(comment)); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.logger.Error("Failed to insert comment", zap.String("review_id", comment.ReviewID.Hex()), zap.Error(err))
		}
		return mapError(err, "comment by "+comment.UserID+" on review "+comment.ReviewID.Hex())
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	var doc commentDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err, "comment "+id.Hex())
	}
	return doc.toDomain(), nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	update := bson.M{"$set": bson.M{
		"text":       comment.Text,
		"edited":     comment.Edited,
		"updated_at": comment.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": comment.ID}, update)
	if err != nil {
		r.logger.Error("Failed to update comment", zap.String("comment_id", comment.ID.Hex()), zap.Error(err))
		return mapError(err, "comment "+comment.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: comment %s", domain.ErrNotFound, comment.ID.Hex())
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err, "comment "+id.Hex())
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: comment %s", domain.ErrNotFound, id.Hex())
	}
	return nil
}

func (r *CommentRepository) ListByReview(ctx context.Context, reviewID primitive.ObjectID) ([]*domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"review_id": reviewID}, opts)
	if err != nil {
		return nil, mapError(err, "comments of review "+reviewID.Hex())
	}
	defer cursor.Close(ctx)

	var docs []commentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err, "comments of review "+reviewID.Hex())
	}
	comments := make([]*domain.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toDomain())
	}
	return comments, nil
}

func (r *CommentRepository) DeleteByReview(ctx context.Context, reviewID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"review_id": reviewID})
	if err != nil {
		r.logger.Error("Failed to delete comments of review", zap.String("review_id", reviewID.Hex()), zap.Error(err))
		return 0, mapError(err, "comments of review "+reviewID.Hex())
	}
	return res.DeletedCount, nil
}

func (r *CommentRepository) ToggleLike(ctx context.Context, id primitive.ObjectID, liker domain.Like) (*domain.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc commentDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, toggleLikePipeline(liker), opts).Decode(&doc); err != nil {
		return nil, mapError(err, "comment "+id.Hex())
	}
	return doc.toDomain(), nil
}
