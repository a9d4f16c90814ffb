// Package ident provides the canonical record identifier used at every
// boundary of the service. Every externally supplied id is parsed through
// this package before it reaches the registry, so malformed ids are
// rejected once, up front.
package ident

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMalformed is returned for anything that is not a 24-char hex id.
var ErrMalformed = errors.New("ident: malformed id")

// ID is an opaque 24-hex-char record identifier.
type ID struct {
	oid primitive.ObjectID
}

// New assigns a fresh unique ID.
func New() ID {
	return ID{oid: primitive.NewObjectID()}
}

// Parse validates s and returns its ID. Anything other than exactly
// 24 hex characters fails with ErrMalformed.
func Parse(s string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return ID{}, ErrMalformed
	}
	return ID{oid: oid}, nil
}

// FromObjectID wraps a driver-level object id.
func FromObjectID(oid primitive.ObjectID) ID {
	return ID{oid: oid}
}

// ObjectID returns the driver-level representation for store filters.
func (id ID) ObjectID() primitive.ObjectID { return id.oid }

func (id ID) String() string { return id.oid.Hex() }

// IsZero reports whether id is the unassigned zero value.
func (id ID) IsZero() bool { return id.oid.IsZero() }

// MarshalText implements encoding.TextMarshaler so IDs render as hex in JSON.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.oid.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with the same
// validation as Parse.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
