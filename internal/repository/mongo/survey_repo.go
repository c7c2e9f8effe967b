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

const surveyCollectionName = "survey_responses"

// mongoSurveyRepository implements repository.SurveyRepository
type mongoSurveyRepository struct {
	collection *mongo.Collection
}

// NewMongoSurveyRepository creates a new Survey repository backed by MongoDB.
func NewMongoSurveyRepository(db *mongo.Database) repository.SurveyRepository {
	return &mongoSurveyRepository{
		collection: db.Collection(surveyCollectionName),
	}
}

// Create inserts a raw survey submission.
func (r *mongoSurveyRepository) Create(ctx context.Context, response *domain.SurveyResponse) (primitive.ObjectID, error) {
	response.ID = primitive.NewObjectID()
	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, response)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted survey response ID")
	}
	return insertedID, nil
}

// GetByUserID retrieves a user's survey submissions, newest first.
func (r *mongoSurveyRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.SurveyResponse, error) {
	var responses []domain.SurveyResponse
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return responses, nil
}

// EnsureSurveyIndexes creates necessary indexes for the survey_responses collection.
func EnsureSurveyIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "submittedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
