package model

import "time"

// LodgeLock is an advisory lock document serializing validate-then-write
// sequences per lodge. The unique _id index makes acquisition atomic; ExpiresAt
// bounds how long a crashed holder can block other writers.
type LodgeLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
