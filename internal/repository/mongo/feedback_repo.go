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

const feedbackCollectionName = "video_feedback"

// mongoFeedbackRepository implements repository.FeedbackRepository
type mongoFeedbackRepository struct {
	collection *mongo.Collection
}

// NewMongoFeedbackRepository creates a new Feedback repository backed by MongoDB.
func NewMongoFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &mongoFeedbackRepository{
		collection: db.Collection(feedbackCollectionName),
	}
}

// Create inserts a feedback row. The unique index on assignmentId turns a
// concurrent double-submit into ErrDuplicate instead of a second row.
func (r *mongoFeedbackRepository) Create(ctx context.Context, feedback *domain.VideoFeedback) (primitive.ObjectID, error) {
	if feedback.AssignmentID == primitive.NilObjectID ||
		feedback.VideoID == primitive.NilObjectID ||
		feedback.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("feedback requires assignmentId, videoId and coachId")
	}

	feedback.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted feedback ID")
	}
	return insertedID, nil
}

// GetByAssignmentID retrieves the feedback row for an assignment, if any.
func (r *mongoFeedbackRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.VideoFeedback, error) {
	var feedback domain.VideoFeedback
	err := r.collection.FindOne(ctx, bson.M{"assignmentId": assignmentID}).Decode(&feedback)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

// GetByVideoID retrieves all feedback rows for a video, newest first.
func (r *mongoFeedbackRepository) GetByVideoID(ctx context.Context, videoID primitive.ObjectID) ([]domain.VideoFeedback, error) {
	var feedbacks []domain.VideoFeedback
	filter := bson.M{"videoId": videoID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &feedbacks); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// DistinctVideoIDsByPlayer returns the IDs of the player's videos that have at
// least one feedback row. Backs the player's "reviewed videos" list.
func (r *mongoFeedbackRepository) DistinctVideoIDsByPlayer(ctx context.Context, playerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := r.collection.Distinct(ctx, "videoId", bson.M{"playerId": playerID})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// EnsureFeedbackIndexes creates necessary indexes for the video_feedback collection.
func EnsureFeedbackIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// At most one feedback row per assignment
			Keys:    bson.D{{Key: "assignmentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "videoId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "playerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
