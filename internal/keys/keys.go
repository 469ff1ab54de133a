// Package keys derives the composite primary and secondary-index keys used by
// the single-table layout.
//
// Every partition value has the form "TAG#value". Sort values of secondary
// indexes have the form "KIND#%010d" or "KIND#parent#%010d", so byte order
// matches numeric order for 0 <= n <= MaxOrdinal. Values outside that range
// would silently break ordering and are rejected with ErrInvalidAttribute.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

// Tag is a fixed 5-character mnemonic for an entity kind or grouping dimension.
type Tag string

const (
	Submission Tag = "SUBMS"
	Comment    Tag = "COMMT"
	Reply      Tag = "REPLY"
	Topic      Tag = "TOPIC"
	Author     Tag = "AUTHR"
)

const (
	// Separator joins a tag and its value.
	Separator = "#"

	// PrimarySort is the sort value of every primary key (one record per id).
	PrimarySort = "A"

	// MaxOrdinal is the largest value that fits in the 10-digit sort suffix.
	MaxOrdinal int64 = 9_999_999_999

	ordinalWidth = 10
)

// ErrInvalidAttribute is returned when a key cannot be derived from the given attributes.
var ErrInvalidAttribute = errors.New("valnk: invalid key attribute")

// PrimaryKey identifies exactly one record.
type PrimaryKey struct {
	Partition string
	Sort      string
}

// IndexKey is a (partition, sort) pair of one secondary index.
type IndexKey struct {
	Partition string
	Sort      string
}

// Primary derives the primary key of the record of the given kind.
func Primary(kind Tag, id string) (PrimaryKey, error) {
	if err := CheckID(kind, id); err != nil {
		return PrimaryKey{}, err
	}
	return PrimaryKey{
		Partition: Partition(kind, id),
		Sort:      PrimarySort,
	}, nil
}

// Secondary derives an index key grouping records of kind under group#value,
// ordered by n.
func Secondary(kind, group Tag, value string, n int64) (IndexKey, error) {
	if value == "" {
		return IndexKey{}, fmt.Errorf("%w: empty %s value", ErrInvalidAttribute, group)
	}
	suffix, err := Ordinal(n)
	if err != nil {
		return IndexKey{}, err
	}
	return IndexKey{
		Partition: Partition(group, value),
		Sort:      SortPrefix(kind) + suffix,
	}, nil
}

// Nested derives an index key for a record that belongs under two foreign
// attributes at once: it is grouped by group#value and clustered by parentID
// inside the partition before being ordered by n.
func Nested(kind, group Tag, value, parentID string, n int64) (IndexKey, error) {
	if value == "" {
		return IndexKey{}, fmt.Errorf("%w: empty %s value", ErrInvalidAttribute, group)
	}
	if err := CheckID(kind, parentID); err != nil {
		return IndexKey{}, fmt.Errorf("parent: %w", err)
	}
	suffix, err := Ordinal(n)
	if err != nil {
		return IndexKey{}, err
	}
	return IndexKey{
		Partition: Partition(group, value),
		Sort:      NestedSortPrefix(kind, parentID) + suffix,
	}, nil
}

// CheckID rejects ids that cannot be embedded in a key. An id holding the
// separator would make one parent's nested sort prefix match another's.
func CheckID(kind Tag, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty %s id", ErrInvalidAttribute, kind)
	}
	if strings.Contains(id, Separator) {
		return fmt.Errorf("%w: %s id %q contains %q", ErrInvalidAttribute, kind, id, Separator)
	}
	return nil
}

// Partition renders "TAG#value".
func Partition(tag Tag, value string) string {
	return string(tag) + Separator + value
}

// SortPrefix is the begins_with literal that selects every record of kind
// inside an index partition.
func SortPrefix(kind Tag) string {
	return string(kind) + Separator
}

// NestedSortPrefix selects the records of kind clustered under parentID.
func NestedSortPrefix(kind Tag, parentID string) string {
	return SortPrefix(kind) + parentID + Separator
}

// Ordinal renders n zero-padded to 10 digits.
func Ordinal(n int64) (string, error) {
	if n < 0 || n > MaxOrdinal {
		return "", fmt.Errorf("%w: ordinal %d outside [0, %d]", ErrInvalidAttribute, n, MaxOrdinal)
	}
	return fmt.Sprintf("%0*d", ordinalWidth, n), nil
}

// ParsePartition splits "TAG#value" into its tag and value.
func ParsePartition(s string) (Tag, string, error) {
	tag, value, ok := strings.Cut(s, Separator)
	if !ok || value == "" || !Known(Tag(tag)) {
		return "", "", fmt.Errorf("%w: malformed partition %q", ErrInvalidAttribute, s)
	}
	return Tag(tag), value, nil
}

// Known reports whether tag is one of the defined mnemonics.
func Known(tag Tag) bool {
	switch tag {
	case Submission, Comment, Reply, Topic, Author:
		return true
	}
	return false
}
