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

const assignmentCollectionName = "video_coaches"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Upsert inserts a pending assignment row for (video, coach) if none exists.
// An existing row keeps its status; re-selecting an already assigned coach
// must not reset a completed review back to pending.
func (r *mongoAssignmentRepository) Upsert(ctx context.Context, assignment *domain.VideoCoachAssignment) (primitive.ObjectID, error) {
	if assignment.VideoID == primitive.NilObjectID || assignment.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires videoId and coachId")
	}

	now := time.Now().UTC()
	filter := bson.M{"videoId": assignment.VideoID, "coachId": assignment.CoachID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"videoId":   assignment.VideoID,
			"coachId":   assignment.CoachID,
			"playerId":  assignment.PlayerID,
			"status":    domain.StatusPending,
			"createdAt": now,
		},
		"$set": bson.M{"updatedAt": now},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent upsert raced on the unique index; the row exists now.
			return r.findID(ctx, filter)
		}
		return primitive.NilObjectID, err
	}

	if result.UpsertedID != nil {
		if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
			return id, nil
		}
		return primitive.NilObjectID, errors.New("failed to convert upserted assignment ID")
	}
	return r.findID(ctx, filter)
}

func (r *mongoAssignmentRepository) findID(ctx context.Context, filter bson.M) (primitive.ObjectID, error) {
	var row struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := r.collection.FindOne(ctx, filter).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, repository.ErrNotFound
		}
		return primitive.NilObjectID, err
	}
	return row.ID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoCoachAssignment, error) {
	var assignment domain.VideoCoachAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByVideoID retrieves all assignment rows for a video.
func (r *mongoAssignmentRepository) GetByVideoID(ctx context.Context, videoID primitive.ObjectID) ([]domain.VideoCoachAssignment, error) {
	var assignments []domain.VideoCoachAssignment
	cursor, err := r.collection.Find(ctx, bson.M{"videoId": videoID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetByCoachAndStatus retrieves a coach's assignments filtered by status,
// newest first. Backs the pending and completed review queues.
func (r *mongoAssignmentRepository) GetByCoachAndStatus(ctx context.Context, coachID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.VideoCoachAssignment, error) {
	var assignments []domain.VideoCoachAssignment
	filter := bson.M{"coachId": coachID, "status": status}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UpdateStatus transitions an assignment's status.
func (r *mongoAssignmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByVideoAndCoaches removes the assignment rows for the given coaches on
// one video. Used when a player de-selects coaches.
func (r *mongoAssignmentRepository) DeleteByVideoAndCoaches(ctx context.Context, videoID primitive.ObjectID, coachIDs []primitive.ObjectID) error {
	if len(coachIDs) == 0 {
		return nil
	}
	filter := bson.M{"videoId": videoID, "coachId": bson.M{"$in": coachIDs}}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

// DeleteByVideoID removes all assignment rows for a video. Cascade path for
// video deletion.
func (r *mongoAssignmentRepository) DeleteByVideoID(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"videoId": videoID})
	return err
}

// EnsureAssignmentIndexes creates necessary indexes for the video_coaches collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One assignment row per (video, coach) pair
			Keys:    bson.D{{Key: "videoId", Value: 1}, {Key: "coachId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Coach review queues filtered by status
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
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
