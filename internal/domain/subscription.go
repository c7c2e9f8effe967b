package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus type for subscription lifecycle
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// PricingPlan describes a purchasable tier. AnalysisLimit caps how many videos
// a player may submit for coach analysis per calendar month.
type PricingPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"` // e.g., "Free", "Pro", "Elite"
	AnalysisLimit int                `bson:"analysisLimit" json:"analysisLimit"`
	PriceCents    int64              `bson:"priceCents" json:"priceCents"`
	Active        bool               `bson:"active" json:"active"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Subscription attaches a player to a pricing plan. Read-only from the quota
// service's perspective; UsagesCount is reset externally at billing boundaries.
type Subscription struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID      primitive.ObjectID `bson:"planId" json:"planId"`
	Status      SubscriptionStatus `bson:"status" json:"status"`
	UsagesCount int                `bson:"usagesCount" json:"usagesCount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
