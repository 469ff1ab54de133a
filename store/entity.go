package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/valnk/internal/keys"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
// *dynamodb.Client satisfies it.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Item is a raw DynamoDB item.
type Item = map[string]types.AttributeValue

// Selector describes one way of listing records: the index to scan, the
// grouping dimension of its partitions and the kind selected inside them.
type Selector struct {
	// Name identifies the selector in logs.
	Name string

	// Index is the secondary index to scan.
	Index keys.Index

	// Group is the tag of the partition's grouping dimension.
	Group keys.Tag

	// Kind is the tag every selected sort key starts with. Empty selects every
	// kind in the partition.
	Kind keys.Tag

	// Nested is set when sort keys carry a parent id after the kind tag, so a
	// listing may be narrowed to one parent.
	Nested bool
}

var (
	SubmissionsByTopic   = Selector{Name: "submissions-by-topic", Index: keys.ByParent, Group: keys.Topic, Kind: keys.Submission}
	SubmissionsByAuthor  = Selector{Name: "submissions-by-author", Index: keys.ByAuthor, Group: keys.Author, Kind: keys.Submission}
	CommentsBySubmission = Selector{Name: "comments-by-submission", Index: keys.ByParent, Group: keys.Submission, Kind: keys.Comment}
	CommentsByAuthor     = Selector{Name: "comments-by-author", Index: keys.ByAuthor, Group: keys.Author, Kind: keys.Comment}
	RepliesBySubmission  = Selector{Name: "replies-by-submission", Index: keys.ByParent, Group: keys.Submission, Kind: keys.Reply, Nested: true}
	RepliesByAuthor      = Selector{Name: "replies-by-author", Index: keys.ByAuthor, Group: keys.Author, Kind: keys.Reply}

	// Thread selects every comment and reply of a submission.
	Thread = Selector{Name: "thread", Index: keys.ByParent, Group: keys.Submission}
)

// ListInput defines one page request against a Selector.
type ListInput struct {
	// GroupValue selects the partition (topic, submission id or author id).
	GroupValue string

	// ParentID narrows a Nested selector to the records of one parent.
	ParentID string

	// Limit is the page size. Nil uses Config.PageSize.
	Limit *int32

	// Reverse scans in descending sort-key order.
	Reverse bool

	// StartCursor resumes after the position returned by a previous page.
	StartCursor *string
}

// ListOptions are the paging options of the typed list methods.
type ListOptions struct {
	Limit       *int32
	Reverse     bool
	StartCursor *string
}

// RawPage is one page of raw items.
type RawPage struct {
	Items []Item

	// NextCursor is nil when no more results exist.
	NextCursor *string
}

// Page is one page of decoded records.
type Page[T any] struct {
	Items []T

	// NextCursor is nil when no more results exist.
	NextCursor *string
}
