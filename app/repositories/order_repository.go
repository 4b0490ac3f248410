package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
)

const OrdersCollection = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(OrdersCollection)}
}

func (r *OrderRepository) FindByBillNo(ctx context.Context, billNo string) (*models.Order, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	raw, err := r.col.FindOne(ctx, bson.M{"bill_no": billNo}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	var o models.Order
	if err := decodeStrict(raw, models.OrderRequiredKeys, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	_, err := r.col.InsertOne(ctx, o)
	return mapWriteErr("insert order", err)
}

// Replace overwrites every field of the order identified by o.BillNo.
func (r *OrderRepository) Replace(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	res, err := r.col.UpdateOne(ctx,
		bson.M{"bill_no": o.BillNo},
		bson.M{"$set": bson.M{
			"mobile":        o.Mobile,
			"measurements":  o.Measurements,
			"description":   o.Description,
			"total_amount":  o.TotalAmount,
			"advance":       o.Advance,
			"due_amount":    o.DueAmount,
			"delivery_date": o.DeliveryDate,
			"created_date":  o.CreatedDate,
			"status":        o.Status,
		}},
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoRecord
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, billNo string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	if _, err := r.col.DeleteOne(ctx, bson.M{"bill_no": billNo}); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// DeleteByMobile removes every order for mobile and reports how many went.
func (r *OrderRepository) DeleteByMobile(ctx context.Context, mobile string) (int64, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res, err := r.col.DeleteMany(ctx, bson.M{"mobile": mobile})
	if err != nil {
		return 0, fmt.Errorf("delete orders for %s: %w", mobile, err)
	}
	return res.DeletedCount, nil
}

func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) ByMobile(ctx context.Context, mobile string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"mobile": mobile})
}

// SearchBillNo matches fragment as a literal, case-insensitive substring.
func (r *OrderRepository) SearchBillNo(ctx context.Context, fragment string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"bill_no": bson.M{
		"$regex":   regexp.QuoteMeta(fragment),
		"$options": "i",
	}})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Order{}
	for cur.Next(ctx) {
		var o models.Order
		if err := decodeStrict(cur.Current, models.OrderRequiredKeys, &o); err != nil {
			logger.WithCtx(ctx).Warn("skipping malformed order", "error", err)
			continue
		}
		out = append(out, o)
	}
	return out, cur.Err()
}
