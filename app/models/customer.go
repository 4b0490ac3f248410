package models

// Customer is keyed by mobile number.
type Customer struct {
	Mobile       string `bson:"mobile"        json:"mobile"`
	CustomerCode string `bson:"customer_code" json:"customer_code"`
	Measurements string `bson:"measurements"  json:"measurements"`
}

var CustomerRequiredKeys = []string{"mobile"}
