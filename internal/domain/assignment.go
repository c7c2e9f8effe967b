package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"   // Coach assigned, review outstanding
	StatusCompleted AssignmentStatus = "completed" // Coach submitted feedback
)

// VideoCoachAssignment links one Video to one Coach and tracks review status.
// Unique per (video, coach) pair; the repository enforces this with a compound
// unique index and upsert semantics.
type VideoCoachAssignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VideoID   primitive.ObjectID `bson:"videoId" json:"videoId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	PlayerID  primitive.ObjectID `bson:"playerId" json:"playerId"` // Denormalized for easier queries/auth
	Status    AssignmentStatus   `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
