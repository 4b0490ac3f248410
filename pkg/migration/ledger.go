package migration

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const ledgerCollection = "schema_migrations"

// MongoLedger keeps migration records in a collection.
type MongoLedger struct {
	col *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{col: db.Collection(ledgerCollection)}
}

func (l *MongoLedger) Applied(ctx context.Context) ([]Record, error) {
	cur, err := l.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", ledgerCollection, err)
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ledgerCollection, err)
	}
	return out, nil
}

func (l *MongoLedger) Add(ctx context.Context, rec Record) error {
	_, err := l.col.InsertOne(ctx, rec)
	return err
}

func (l *MongoLedger) Remove(ctx context.Context, name string) error {
	_, err := l.col.DeleteOne(ctx, bson.M{"name": name})
	return err
}
