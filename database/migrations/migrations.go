// Package migrations registers the MongoDB index migrations. Importing it
// for side effects fills the migration registry used by `tailorshop migrate`.
package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index is a single-collection index migration.
type Index struct {
	Collection string
	Name       string
	Keys       bson.D
	Unique     bool
}

func (ix *Index) Up(ctx context.Context, db *mongo.Database) error {
	model := mongo.IndexModel{
		Keys:    ix.Keys,
		Options: options.Index().SetName(ix.Name).SetUnique(ix.Unique),
	}
	if _, err := db.Collection(ix.Collection).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create index %s.%s: %w", ix.Collection, ix.Name, err)
	}
	return nil
}

func (ix *Index) Down(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(ix.Collection).Indexes().DropOne(ctx, ix.Name); err != nil {
		return fmt.Errorf("drop index %s.%s: %w", ix.Collection, ix.Name, err)
	}
	return nil
}
