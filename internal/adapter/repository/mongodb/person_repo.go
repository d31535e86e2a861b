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

const personCollectionName = "users"

type PersonRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewPersonRepository(db *mongo.Database, log *logger.Logger) (*PersonRepository, error) {
	collection := db.Collection(personCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "account_state", Value: 1}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for users collection", zap.Error(err))
		return nil, fmt.Errorf("failed to create indexes for %s: %w", personCollectionName, err)
	}

	return &PersonRepository{
		collection: collection,
		logger:     log.Named("PersonRepository"),
	}, nil
}

func parsePersonID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return oid, nil
}

func (r *PersonRepository) Create(ctx context.Context, person *domain.Person) error {
	doc, err := fromDomainPerson(person)
	if err != nil {
		return fmt.Errorf("%w: invalid user id '%s'", domain.ErrInvalidInput, person.ID)
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Email already registered", zap.String("email", person.Email))
		}
		return mapError(err, "user "+person.Email)
	}
	return nil
}

func (r *PersonRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	oid, err := parsePersonID(id)
	if err != nil {
		return nil, err
	}
	var doc personDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapError(err, "user "+id)
	}
	return doc.toDomain(), nil
}

func (r *PersonRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Person, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	out := make(map[string]*domain.Person, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	projection := options.Find().SetProjection(bson.M{"password_hash": 0})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, projection)
	if err != nil {
		return nil, mapError(err, "users")
	}
	defer cursor.Close(ctx)

	var docs []personDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err, "users")
	}
	for i := range docs {
		p := docs[i].toDomain()
		out[p.ID] = p
	}
	return out, nil
}

func (r *PersonRepository) updateField(ctx context.Context, id, field, value string) (*domain.Person, error) {
	oid, err := parsePersonID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{field: value, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc personDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err, "user "+id)
	}
	return doc.toDomain(), nil
}

func (r *PersonRepository) UpdateState(ctx context.Context, id string, state domain.AccountState) (*domain.Person, error) {
	return r.updateField(ctx, id, "account_state", string(state))
}

func (r *PersonRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Person, error) {
	return r.updateField(ctx, id, "role", string(role))
}
