package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var catalogCollectionNames = map[domain.ItemVariant]string{
	domain.VariantMovie:  "movies",
	domain.VariantSeries: "series",
	domain.VariantGame:   "games",
	domain.VariantAlbum:  "albums",
}

// CatalogRepository implements domain.CatalogRepository with one collection per item variant.
type CatalogRepository struct {
	collections map[domain.ItemVariant]*mongo.Collection
	logger      *logger.Logger
}

func NewCatalogRepository(db *mongo.Database, log *logger.Logger) *CatalogRepository {
	collections := make(map[domain.ItemVariant]*mongo.Collection, len(catalogCollectionNames))
	for variant, name := range catalogCollectionNames {
		collections[variant] = db.Collection(name)
	}
	return &CatalogRepository{
		collections: collections,
		logger:      log.Named("CatalogRepository"),
	}
}

func (r *CatalogRepository) collection(variant domain.ItemVariant) (*mongo.Collection, error) {
	c, ok := r.collections[variant]
	if !ok {
		return nil, fmt.Errorf("%w: unknown item variant '%s'", domain.ErrInvalidInput, variant)
	}
	return c, nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, variant domain.ItemVariant, id string) (*domain.CatalogItem, error) {
	coll, err := r.collection(variant)
	if err != nil {
		return nil, err
	}
	var doc catalogDocument
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err, fmt.Sprintf("%s %s", variant, id))
	}
	return doc.toDomain(variant), nil
}

// ratingDeltaPipeline adds the deltas and recomputes the average inside one update.
// Each $set stage sees the output of the previous one.
func ratingDeltaPipeline(deltaTotal float64, deltaCount int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "rating_count", Value: bson.D{{Key: "$max", Value: bson.A{
				int64(0),
				bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$rating_count", int64(0)}}}, deltaCount}}},
			}}}},
			{Key: "rating_total", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$rating_total", 0.0}}},
				deltaTotal,
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "rating_total", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$gt", Value: bson.A{"$rating_count", 0}}}, "$rating_total", 0.0,
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "average_rating", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$gt", Value: bson.A{"$rating_count", 0}}},
				bson.D{{Key: "$divide", Value: bson.A{"$rating_total", "$rating_count"}}},
				0.0,
			}}}},
		}}},
	}
}

func (r *CatalogRepository) ApplyRatingDelta(ctx context.Context, variant domain.ItemVariant, id string, deltaTotal float64, deltaCount int64) (*domain.RatingAggregate, error) {
	coll, err := r.collection(variant)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc catalogDocument
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, ratingDeltaPipeline(deltaTotal, deltaCount), opts).Decode(&doc)
	if err != nil {
		r.logger.Error("Failed to apply rating delta",
			zap.String("variant", string(variant)), zap.String("item_id", id),
			zap.Float64("delta_total", deltaTotal), zap.Int64("delta_count", deltaCount), zap.Error(err))
		return nil, mapError(err, fmt.Sprintf("%s %s", variant, id))
	}
	agg := doc.toDomain(variant).Rating
	r.logger.Debug("Rating aggregate updated",
		zap.String("item_id", id), zap.Float64("total", agg.Total), zap.Int64("count", agg.Count))
	return &agg, nil
}

func (r *CatalogRepository) SetRating(ctx context.Context, variant domain.ItemVariant, id string, total float64, count int64) (*domain.RatingAggregate, error) {
	coll, err := r.collection(variant)
	if err != nil {
		return nil, err
	}
	agg := domain.RatingAggregate{}.Apply(total, count)
	update := bson.M{"$set": bson.M{
		"rating_total":   agg.Total,
		"rating_count":   agg.Count,
		"average_rating": agg.Average,
	}}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("%s %s", variant, id))
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, variant, id)
	}
	return &agg, nil
}

// Upsert writes descriptive fields; the rating aggregate is only initialised on insert.
func (r *CatalogRepository) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("%w: catalog item needs an id", domain.ErrInvalidInput)
	}
	coll, err := r.collection(item.Variant)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"title":      item.Title,
			"year":       item.Year,
			"poster_url": item.PosterURL,
		},
		"$setOnInsert": bson.M{
			"rating_total":   0.0,
			"rating_count":   int64(0),
			"average_rating": 0.0,
			"created_at":     time.Now().UTC(),
		},
	}
	_, err = coll.UpdateOne(ctx, bson.M{"_id": item.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return mapError(err, fmt.Sprintf("%s %s", item.Variant, item.ID))
	}
	return nil
}
