package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RolePlayer Role = "player"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

// User represents a user in the system (a Player, a Coach, or an Admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Coach-specific profile fields, shown in the coach directory ---
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty"`
	Specialty string `bson:"specialty,omitempty" json:"specialty,omitempty"` // e.g., "Serve", "Footwork", "Match strategy"
}

func (u *User) IsPlayer() bool {
	return u.Role == RolePlayer
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}
