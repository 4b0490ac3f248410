package migrations

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/pkg/migration"
)

// Unique keys back the duplicate checks in the services: a racing insert
// fails with a duplicate-key error instead of creating a second record.
var initial = []struct {
	name  string
	index *Index
}{
	{"20250101000000_users_username_unique", &Index{
		Collection: repositories.UsersCollection, Name: "username_unique",
		Keys: bson.D{{Key: "username", Value: 1}}, Unique: true,
	}},
	{"20250101000001_customers_mobile_unique", &Index{
		Collection: repositories.CustomersCollection, Name: "mobile_unique",
		Keys: bson.D{{Key: "mobile", Value: 1}}, Unique: true,
	}},
	{"20250101000002_orders_bill_no_unique", &Index{
		Collection: repositories.OrdersCollection, Name: "bill_no_unique",
		Keys: bson.D{{Key: "bill_no", Value: 1}}, Unique: true,
	}},
	{"20250101000003_orders_mobile", &Index{
		Collection: repositories.OrdersCollection, Name: "mobile",
		Keys: bson.D{{Key: "mobile", Value: 1}},
	}},
}

func init() {
	for _, m := range initial {
		migration.Register(m.name, m.index)
	}
}
