package services

import (
	"strings"

	"github.com/google/uuid"
)

// BillNoLength is the number of characters in a generated bill number.
const BillNoLength = 8

// NewBillNo returns the first eight hex characters of a random UUID,
// upper-cased. Uniqueness is enforced by the orders index, not here.
func NewBillNo() string {
	return strings.ToUpper(uuid.NewString()[:BillNoLength])
}
