package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestLockExpiryIndex(t *testing.T) {
	index := lockExpiryIndex()

	keys, ok := index.Keys.(bson.D)
	if !ok {
		t.Fatalf("expected bson.D keys, got %T", index.Keys)
	}
	if len(keys) != 1 || keys[0].Key != "expires_at" {
		t.Fatalf("expected index on expires_at, got %+v", keys)
	}

	if index.Options == nil || index.Options.ExpireAfterSeconds == nil {
		t.Fatal("expected a TTL option on the expiry index")
	}
	if *index.Options.ExpireAfterSeconds != 0 {
		t.Errorf("expected documents to expire at expires_at exactly, got %d second grace", *index.Options.ExpireAfterSeconds)
	}
}
