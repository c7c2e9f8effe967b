package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoFeedback is one coach's review of one assignment. At most one feedback
// row may exist per assignment; the repository enforces this with a unique
// index on assignmentId, so a second submission fails instead of duplicating.
type VideoFeedback struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	VideoID      primitive.ObjectID `bson:"videoId" json:"videoId"`
	CoachID      primitive.ObjectID `bson:"coachId" json:"coachId"`
	PlayerID     primitive.ObjectID `bson:"playerId" json:"playerId"` // Denormalized
	Rating       int                `bson:"rating" json:"rating"`     // 1..5
	Feedback     string             `bson:"feedback" json:"feedback"` // Free text, non-empty

	// Object keys of files the coach attached (diagrams, annotated stills).
	// Keys only; presigned URLs are generated on read.
	AttachmentKeys []string `bson:"attachmentKeys,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
