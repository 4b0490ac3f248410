package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
)

// UsersCollection is the collection name used by UserRepository.
const UsersCollection = "users"

// UserRepository handles database operations for User.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(UsersCollection)}
}

// FindByUsername looks up a user by exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	raw, err := r.col.FindOne(ctx, bson.M{"username": username}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	var u models.User
	if err := decodeStrict(raw, models.UserRequiredKeys, &u); err != nil {
		return nil, err
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: user %q has role %q", ErrMalformedRecord, u.Username, u.Role)
	}
	return &u, nil
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	_, err := r.col.InsertOne(ctx, u)
	return mapWriteErr("insert user", err)
}
