package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video identifies an uploaded match recording. The actual file resides in S3;
// only its object key is stored here.
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlayerID    primitive.ObjectID `bson:"playerId" json:"playerId"` // Owning player
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"`     // Internal use only
	FileName    string             `bson:"fileName" json:"fileName"` // Original filename provided by player
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"` // File size in bytes
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	FocusArea   string             `bson:"focusArea,omitempty" json:"focusArea,omitempty"` // What aspect of play to review

	// Analyzed flips to true as soon as at least one coach is assigned, not when
	// feedback lands. Display convenience carried over from the original product.
	Analyzed bool `bson:"analyzed" json:"analyzed"`

	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
