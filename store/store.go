package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/valnk/internal/keys"
	"github.com/jacentio/valnk/model"
)

// Store provides DynamoDB operations over the shared content table.
type Store struct {
	client   DynamoDBAPI
	config   Config
	registry *Registry
	logger   *slog.Logger
}

// New creates a new Store instance.
func New(client DynamoDBAPI, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
		logger: config.Logger,
	}
}

// NewWithRegistry creates a new Store instance with a relationship registry.
func NewWithRegistry(client DynamoDBAPI, config Config, registry *Registry) *Store {
	s := New(client, config)
	s.registry = registry
	return s
}

// Registry returns the relationship registry, or nil if not set.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Config returns the validated configuration.
func (s *Store) Config() Config {
	return s.config
}

// Create stores a new record. The record's keys are re-derived first; a
// record whose stored keys disagree with its attributes is rejected.
func (s *Store) Create(ctx context.Context, rec model.Record) error {
	item, err := s.marshalRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrAlreadyExists
	}
	return s.serverError("create "+string(rec.EntityType()), err)
}

// Replace overwrites a live record with a rebuilt one carrying freshly
// derived keys. It is the only supported way of changing a stored record.
func (s *Store) Replace(ctx context.Context, rec model.Record) error {
	item, err := s.marshalRecord(rec)
	if err != nil {
		return err
	}
	filter := newLiveFilter(time.Now().Unix())

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.config.TableName),
		Item:                      item,
		ConditionExpression:       aws.String("attribute_exists(PK) AND (" + filter.expr + ")"),
		ExpressionAttributeNames:  filter.names,
		ExpressionAttributeValues: filter.values,
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrNotFound
	}
	return s.serverError("replace "+string(rec.EntityType()), err)
}

// GetSubmission retrieves a submission, returning ErrNotFound if deleted or missing.
func (s *Store) GetSubmission(ctx context.Context, id model.SubmissionID) (*model.Submission, error) {
	return getTyped[model.Submission](ctx, s, model.TypeSubmission, string(id))
}

// GetComment retrieves a comment, returning ErrNotFound if deleted or missing.
func (s *Store) GetComment(ctx context.Context, id model.CommentID) (*model.Comment, error) {
	return getTyped[model.Comment](ctx, s, model.TypeComment, string(id))
}

// GetReply retrieves a reply, returning ErrNotFound if deleted or missing.
func (s *Store) GetReply(ctx context.Context, id model.ReplyID) (*model.Reply, error) {
	return getTyped[model.Reply](ctx, s, model.TypeReply, string(id))
}

// Get retrieves any record by kind and id.
func (s *Store) Get(ctx context.Context, t model.EntityType, id string) (model.Record, error) {
	item, err := s.getItem(ctx, t, id)
	if err != nil {
		return nil, err
	}
	rec, err := model.DecodeRecord(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutputData, err)
	}
	if rec.EntityType() != t {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidOutputData, t, rec.EntityType())
	}
	return rec, nil
}

func getTyped[T any](ctx context.Context, s *Store, t model.EntityType, id string) (*T, error) {
	item, err := s.getItem(ctx, t, id)
	if err != nil {
		return nil, err
	}
	v, err := decodeItem[T](item, t)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) getItem(ctx context.Context, t model.EntityType, id string) (Item, error) {
	key, err := primaryKey(t, id)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       keyItem(key),
	})
	if err != nil {
		return nil, s.serverError("get "+string(t), err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	// Check if entity is deleted (has expired TTL)
	if IsDeleted(result.Item) {
		return nil, ErrNotFound
	}
	return result.Item, nil
}

// Delete marks a record for deletion by setting its TTL to now. Deleting a
// missing or already deleted record is a no-op. Children are expired by the
// stream handler.
func (s *Store) Delete(ctx context.Context, t model.EntityType, id string) error {
	key, err := primaryKey(t, id)
	if err != nil {
		return err
	}
	return s.SetTTLByKey(ctx, key, time.Now().Unix())
}

// SetTTLByKey sets TTL on a record by primary key.
// Used by cascade delete to propagate TTL to children.
func (s *Store) SetTTLByKey(ctx context.Context, key keys.PrimaryKey, ttl int64) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.config.TableName),
		Key:                 keyItem(key),
		UpdateExpression:    aws.String("SET #ttl = :ttl"),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_not_exists(#ttl)"),
		ExpressionAttributeNames: map[string]string{
			"#ttl": TTLAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ttl": &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
		},
	})

	// Ignore condition failure - missing or already has TTL
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return nil
	}
	return s.serverError("set ttl", err)
}

func (s *Store) marshalRecord(rec model.Record) (Item, error) {
	if err := rec.VerifyKeys(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInputData, err)
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s: %w", ErrInvalidInputData, rec.EntityType(), err)
	}
	return item, nil
}

// decodeItem unmarshals a raw item after checking its entity_type.
func decodeItem[T any](item Item, want model.EntityType) (T, error) {
	var v T
	got, err := model.ItemType(item)
	if err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidOutputData, err)
	}
	if got != want {
		return v, fmt.Errorf("%w: expected %s, got %s", ErrInvalidOutputData, want, got)
	}
	if err := attributevalue.UnmarshalMap(item, &v); err != nil {
		return v, fmt.Errorf("%w: unmarshal %s: %w", ErrInvalidOutputData, want, err)
	}
	return v, nil
}

func primaryKey(t model.EntityType, id string) (keys.PrimaryKey, error) {
	tag := t.Tag()
	if tag == "" {
		return keys.PrimaryKey{}, fmt.Errorf("%w: %w: %q", ErrInvalidInputData, model.ErrUnknownEntityType, t)
	}
	key, err := keys.Primary(tag, id)
	if err != nil {
		return keys.PrimaryKey{}, fmt.Errorf("%w: %w", ErrInvalidInputData, err)
	}
	return key, nil
}

func keyItem(key keys.PrimaryKey) Item {
	return Item{
		keys.Table.PartitionAttr: &types.AttributeValueMemberS{Value: key.Partition},
		keys.Table.SortAttr:      &types.AttributeValueMemberS{Value: key.Sort},
	}
}

// serverError wraps a storage failure, keeping the underlying message.
func (s *Store) serverError(op string, err error) error {
	if err == nil {
		return nil
	}
	s.logger.Warn("storage request failed",
		"op", op,
		"error", err,
	)
	return fmt.Errorf("%w: %s: %w", ErrServerError, op, err)
}

// unknownError wraps a failure that fits no other category. These are logged
// at error level so they stand out from storage failures.
func (s *Store) unknownError(op string, err error) error {
	s.logger.Error("unknown error",
		"op", op,
		"error", err,
	)
	return fmt.Errorf("%w: %s: %w", ErrUnknown, op, err)
}
