package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
)

const CustomersCollection = "customers"

type CustomerRepository struct {
	col *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{col: db.Collection(CustomersCollection)}
}

func (r *CustomerRepository) FindByMobile(ctx context.Context, mobile string) (*models.Customer, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	raw, err := r.col.FindOne(ctx, bson.M{"mobile": mobile}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}

	var c models.Customer
	if err := decodeStrict(raw, models.CustomerRequiredKeys, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	_, err := r.col.InsertOne(ctx, c)
	return mapWriteErr("insert customer", err)
}

// Update sets customer_code and measurements for mobile.
func (r *CustomerRepository) Update(ctx context.Context, mobile, code, measurements string) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	res, err := r.col.UpdateOne(ctx,
		bson.M{"mobile": mobile},
		bson.M{"$set": bson.M{"customer_code": code, "measurements": measurements}},
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoRecord
	}
	return nil
}

// Delete removes the customer; deleting a missing mobile is not an error.
func (r *CustomerRepository) Delete(ctx context.Context, mobile string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	if _, err := r.col.DeleteOne(ctx, bson.M{"mobile": mobile}); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) All(ctx context.Context) ([]models.Customer, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Customer{}
	for cur.Next(ctx) {
		var c models.Customer
		if err := decodeStrict(cur.Current, models.CustomerRequiredKeys, &c); err != nil {
			logger.WithCtx(ctx).Warn("skipping malformed customer", "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, cur.Err()
}
