package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
)

var _ repo.CartRepository = (*CartRepository)(nil)

// cartRecord keeps the encoded cart as an opaque string so that legacy
// and future record versions round-trip untouched.
type cartRecord struct {
	Key       string    `bson:"_id"`
	SessionID string    `bson:"session_id"`
	Record    string    `bson:"record"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		collection: db.Collection(collectionCarts),
	}
}

func (r *CartRepository) Save(ctx context.Context, key string, record []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := cartRecord{
		Key:       key,
		SessionID: sessionFromKey(key),
		Record:    string(record),
		UpdatedAt: time.Now(),
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

func (r *CartRepository) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc cartRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return []byte(doc.Record), nil
}

func (r *CartRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

func sessionFromKey(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}
