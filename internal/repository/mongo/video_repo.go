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

const videoCollectionName = "videos"

// mongoVideoRepository implements repository.VideoRepository
type mongoVideoRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a new Video repository backed by MongoDB.
func NewMongoVideoRepository(db *mongo.Database) repository.VideoRepository {
	return &mongoVideoRepository{
		collection: db.Collection(videoCollectionName),
	}
}

// Create inserts a new video metadata row.
func (r *mongoVideoRepository) Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error) {
	if video.PlayerID == primitive.NilObjectID || video.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("video requires playerId and s3ObjectKey")
	}

	video.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now
	if video.UploadedAt.IsZero() {
		video.UploadedAt = now
	}

	result, err := r.collection.InsertOne(ctx, video)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted video ID")
	}
	return insertedID, nil
}

// GetByID retrieves a video by its ID.
func (r *mongoVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	var video domain.Video
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// GetByPlayerID retrieves all videos owned by a player, newest first.
func (r *mongoVideoRepository) GetByPlayerID(ctx context.Context, playerID primitive.ObjectID) ([]domain.Video, error) {
	var videos []domain.Video
	filter := bson.M{"playerId": playerID}
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return videos, nil
}

// GetByIDs retrieves the videos matching the given IDs, newest first.
// Used to resolve assignment rows back to their videos.
func (r *mongoVideoRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var videos []domain.Video
	filter := bson.M{"_id": bson.M{"$in": ids}}
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return videos, nil
}

// CountByPlayerInRange counts a player's videos with uploadedAt within [from, to].
// Backs the monthly quota computation.
func (r *mongoVideoRepository) CountByPlayerInRange(ctx context.Context, playerID primitive.ObjectID, from, to time.Time) (int64, error) {
	filter := bson.M{
		"playerId":   playerID,
		"uploadedAt": bson.M{"$gte": from, "$lte": to},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// SetAnalyzed updates the video's analyzed flag.
func (r *mongoVideoRepository) SetAnalyzed(ctx context.Context, videoID primitive.ObjectID, analyzed bool) error {
	filter := bson.M{"_id": videoID}
	update := bson.M{"$set": bson.M{
		"analyzed":  analyzed,
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

// Delete removes a video row. The playerID filter ensures only the owner's
// row can be deleted.
func (r *mongoVideoRepository) Delete(ctx context.Context, videoID, playerID primitive.ObjectID) error {
	filter := bson.M{"_id": videoID, "playerId": playerID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureVideoIndexes creates necessary indexes for the videos collection.
func EnsureVideoIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Player's video list, newest first
			Keys:    bson.D{{Key: "playerId", Value: 1}, {Key: "uploadedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "analyzed", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
