package models

// DateLayout is the on-disk format of delivery_date and created_date.
const DateLayout = "2006-01-02"

// Order is one garment job. DueAmount is always TotalAmount - Advance and is
// written by the order service only.
type Order struct {
	BillNo       string  `bson:"bill_no"       json:"bill_no"`
	Mobile       string  `bson:"mobile"        json:"mobile"`
	Measurements string  `bson:"measurements"  json:"measurements"`
	Description  string  `bson:"description"   json:"description"`
	TotalAmount  float64 `bson:"total_amount"  json:"total_amount"`
	Advance      float64 `bson:"advance"       json:"advance"`
	DueAmount    float64 `bson:"due_amount"    json:"due_amount"`
	DeliveryDate string  `bson:"delivery_date" json:"delivery_date"`
	CreatedDate  string  `bson:"created_date"  json:"created_date"`
	Status       string  `bson:"status"        json:"status"`
}

var OrderRequiredKeys = []string{
	"bill_no", "mobile", "total_amount", "advance", "due_amount", "delivery_date", "created_date",
}
