package repositories

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNoRecord is returned when a point lookup or update matches nothing.
	ErrNoRecord = errors.New("repositories: no record")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("repositories: duplicate key")
	// ErrMalformedRecord is returned when a stored document lacks a required key.
	ErrMalformedRecord = errors.New("repositories: malformed record")
)

// decodeStrict unmarshals raw into dest after checking every required key
// is present. A missing key is reported instead of decoding as a zero value.
func decodeStrict(raw bson.Raw, required []string, dest interface{}) error {
	for _, key := range required {
		if _, err := raw.LookupErr(key); err != nil {
			return fmt.Errorf("%w: missing %q", ErrMalformedRecord, key)
		}
	}
	if err := bson.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return nil
}

func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
