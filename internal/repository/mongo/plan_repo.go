package mongo

import (
	"context"
	"errors"
	"time"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "pricing_plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new PricingPlan repository backed by MongoDB.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new pricing plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.PricingPlan) (primitive.ObjectID, error) {
	if plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires a name")
	}

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PricingPlan, error) {
	var plan domain.PricingPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByName retrieves a plan by name (e.g., the default "Free" plan at signup).
func (r *mongoPlanRepository) GetByName(ctx context.Context, name string) (*domain.PricingPlan, error) {
	var plan domain.PricingPlan
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetActive retrieves all active plans, cheapest first.
func (r *mongoPlanRepository) GetActive(ctx context.Context) ([]domain.PricingPlan, error) {
	var plans []domain.PricingPlan
	findOptions := options.Find().SetSort(bson.D{{Key: "priceCents", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// EnsurePlanIndexes creates necessary indexes for the pricing_plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// SeedDefaultPlans inserts the default plan tiers when the collection is empty.
// Safe to call on every startup.
func SeedDefaultPlans(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(planCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	defaults := []interface{}{
		domain.PricingPlan{ID: primitive.NewObjectID(), Name: "Free", AnalysisLimit: 1, PriceCents: 0, Active: true, CreatedAt: now, UpdatedAt: now},
		domain.PricingPlan{ID: primitive.NewObjectID(), Name: "Pro", AnalysisLimit: 5, PriceCents: 2900, Active: true, CreatedAt: now, UpdatedAt: now},
		domain.PricingPlan{ID: primitive.NewObjectID(), Name: "Elite", AnalysisLimit: 15, PriceCents: 7900, Active: true, CreatedAt: now, UpdatedAt: now},
	}

	_, err = collection.InsertMany(ctx, defaults)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Another instance seeded concurrently.
		return nil
	}
	return err
}
