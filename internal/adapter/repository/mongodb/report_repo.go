package mongodb

import (
	"context"
	"errors"
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

const reportCollectionName = "reports"

type ReportRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewReportRepository(db *mongo.Database, log *logger.Logger) (*ReportRepository, error) {
	collection := db.Collection(reportCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reported_user_id", Value: 1}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for reports collection", zap.Error(err))
		return nil, fmt.Errorf("failed to create indexes for %s: %w", reportCollectionName, err)
	}

	return &ReportRepository{
		collection: collection,
		logger:     log.Named("ReportRepository"),
	}, nil
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, fromDomainReport(report)); err != nil {
		r.logger.Error("Failed to insert report", zap.String("reporter_id", report.ReporterID), zap.Error(err))
		return mapError(err, "report "+report.ID.Hex())
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Report, error) {
	var doc reportDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err, "report "+id.Hex())
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) List(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	query := bson.M{}
	if filter.State != "" {
		query["state"] = string(filter.State)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, mapError(err, "reports")
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err, "reports")
	}
	reports := make([]*domain.Report, 0, len(docs))
	for i := range docs {
		reports = append(reports, docs[i].toDomain())
	}
	return reports, nil
}

// Resolve only matches pending reports, so a terminal state can never be overwritten.
func (r *ReportRepository) Resolve(ctx context.Context, id primitive.ObjectID, state domain.ReportState, moderatorID string, at time.Time) (*domain.Report, error) {
	if !domain.ReportStatePending.CanTransitionTo(state) {
		return nil, fmt.Errorf("%w: cannot move a report to %s", domain.ErrInvalidTransition, state)
	}
	filter := bson.M{"_id": id, "state": string(domain.ReportStatePending)}
	update := bson.M{"$set": bson.M{
		"state":       string(state),
		"resolved_by": moderatorID,
		"resolved_at": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc reportDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to resolve report", zap.String("report_id", id.Hex()), zap.Error(err))
		return nil, mapError(err, "report "+id.Hex())
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: report %s is already %s", domain.ErrInvalidTransition, id.Hex(), current.State)
}

func (r *ReportRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err, "report "+id.Hex())
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: report %s", domain.ErrNotFound, id.Hex())
	}
	return nil
}
