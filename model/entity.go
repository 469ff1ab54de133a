// Package model defines the entity kinds stored in the shared content table.
//
// Submissions, comments and replies live side by side in one table. Each
// record carries its business attributes together with the primary and
// secondary-index keys derived from them when the record is built. Records
// are immutable: an update is a rebuilt record replacing the old one.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/valnk/internal/keys"
)

// EntityType discriminates the record kinds sharing the table.
type EntityType string

const (
	TypeSubmission EntityType = "submission"
	TypeComment    EntityType = "comment"
	TypeReply      EntityType = "reply"
)

// EntityTypeAttr is the attribute holding a record's EntityType.
const EntityTypeAttr = "entity_type"

var (
	// ErrMissingField is returned by a builder when required fields were never set.
	ErrMissingField = errors.New("valnk: required field missing")

	// ErrKeyDrift is returned when stored index keys differ from the keys derived
	// from the record's current attributes.
	ErrKeyDrift = errors.New("valnk: stored keys do not match attributes")

	// ErrUnknownEntityType is returned when a raw item has no recognised entity_type.
	ErrUnknownEntityType = errors.New("valnk: unknown entity type")
)

// Tag returns the key tag of the entity kind.
func (t EntityType) Tag() keys.Tag {
	switch t {
	case TypeSubmission:
		return keys.Submission
	case TypeComment:
		return keys.Comment
	case TypeReply:
		return keys.Reply
	}
	return ""
}

// Record is implemented by every entity kind.
type Record interface {
	// EntityType returns the kind discriminant.
	EntityType() EntityType

	// PrimaryKey returns the stored primary key.
	PrimaryKey() keys.PrimaryKey

	// VerifyKeys re-derives all keys and compares them with the stored ones.
	VerifyKeys() error
}

// BuildError reports why a builder could not produce a record.
type BuildError struct {
	Entity EntityType

	// Missing lists the required fields that were never set.
	Missing []string

	// Err is the validation failure when no field is missing.
	Err error
}

func (e *BuildError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("valnk: build %s: missing fields: %s", e.Entity, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("valnk: build %s: %v", e.Entity, e.Err)
}

func (e *BuildError) Unwrap() error {
	if len(e.Missing) > 0 {
		return ErrMissingField
	}
	return e.Err
}

// now is the clock used to default timestamps.
var now = time.Now

// fields accumulates the names of required fields that were not set.
type fields []string

func (f *fields) require(name string, set bool) {
	if !set {
		*f = append(*f, name)
	}
}

// DecodeRecord unmarshals a raw item into the variant named by its entity_type.
func DecodeRecord(item map[string]types.AttributeValue) (Record, error) {
	t, err := ItemType(item)
	if err != nil {
		return nil, err
	}
	var rec Record
	switch t {
	case TypeSubmission:
		rec = &Submission{}
	case TypeComment:
		rec = &Comment{}
	case TypeReply:
		rec = &Reply{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, t)
	}
	if err := attributevalue.UnmarshalMap(item, rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", t, err)
	}
	return rec, nil
}

// ItemType reads the entity_type attribute of a raw item.
func ItemType(item map[string]types.AttributeValue) (EntityType, error) {
	v, ok := item[EntityTypeAttr].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrUnknownEntityType, EntityTypeAttr)
	}
	return EntityType(v.Value), nil
}

func compareKey(name string, stored, derived string) error {
	if stored != derived {
		return fmt.Errorf("%w: %s is %q, expected %q", ErrKeyDrift, name, stored, derived)
	}
	return nil
}

func unixOrdinal(t time.Time) int64 {
	return t.Unix()
}
