package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/valnk/internal/cursor"
	"github.com/jacentio/valnk/internal/keys"
	"github.com/jacentio/valnk/model"
)

// scope returns the index partition and sort-key prefix a request reads.
func (sel Selector) scope(in ListInput) (partition, prefix string, err error) {
	if in.GroupValue == "" {
		return "", "", fmt.Errorf("%w: %w: empty %s value", ErrInvalidInputData, keys.ErrInvalidAttribute, sel.Group)
	}
	partition = keys.Partition(sel.Group, in.GroupValue)

	switch {
	case in.ParentID != "" && !sel.Nested:
		return "", "", fmt.Errorf("%w: %s does not take a parent id", ErrBadRequest, sel.Name)
	case in.ParentID != "":
		if err := keys.CheckID(sel.Kind, in.ParentID); err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrInvalidInputData, err)
		}
		prefix = keys.NestedSortPrefix(sel.Kind, in.ParentID)
	case sel.Kind != "":
		prefix = keys.SortPrefix(sel.Kind)
	}
	return partition, prefix, nil
}

func (s *Store) pageLimit(limit *int32) (int32, error) {
	if limit == nil {
		return s.config.PageSize, nil
	}
	if *limit < 1 || *limit > s.config.MaxPageSize {
		return 0, fmt.Errorf("%w: limit %d outside [1, %d]", ErrBadRequest, *limit, s.config.MaxPageSize)
	}
	return *limit, nil
}

// ListRaw returns one page of raw items selected by sel, ordered by the
// index sort key. NextCursor is set only when more items follow the page.
func (s *Store) ListRaw(ctx context.Context, sel Selector, in ListInput) (*RawPage, error) {
	limit, err := s.pageLimit(in.Limit)
	if err != nil {
		return nil, err
	}
	partition, prefix, err := sel.scope(in)
	if err != nil {
		return nil, err
	}

	var startKey Item
	if in.StartCursor != nil {
		startKey, err = startKeyFromCursor(sel.Index, *in.StartCursor, partition, prefix)
		if err != nil {
			return nil, err
		}
	}

	keyCond := "#pk = :pk"
	names := map[string]string{"#pk": sel.Index.PartitionAttr}
	values := Item{":pk": &types.AttributeValueMemberS{Value: partition}}
	if prefix != "" {
		keyCond += " AND begins_with(#sk, :sk_prefix)"
		names["#sk"] = sel.Index.SortAttr
		values[":sk_prefix"] = &types.AttributeValueMemberS{Value: prefix}
	}
	filter := newLiveFilter(time.Now().Unix())

	// Fetch one item past the limit so the presence of a next page is known.
	var items []Item
	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(s.config.TableName),
			KeyConditionExpression:    aws.String(keyCond),
			FilterExpression:          aws.String(filter.expr),
			ExpressionAttributeNames:  mergeExprNames(names, filter.names),
			ExpressionAttributeValues: mergeExprValues(values, filter.values),
			ScanIndexForward:          aws.Bool(!in.Reverse),
			Limit:                     aws.Int32(limit + 1 - int32(len(items))),
			ExclusiveStartKey:         startKey,
		}
		if sel.Index.Name != "" {
			input.IndexName = aws.String(sel.Index.Name)
		}

		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, s.serverError("list "+sel.Name, err)
		}
		items = append(items, result.Items...)

		if int32(len(items)) > limit || len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	page := &RawPage{Items: items}
	if int32(len(items)) > limit {
		page.Items = items[:limit]
		token, err := s.cursorAfter(sel, page.Items[limit-1])
		if err != nil {
			return nil, err
		}
		page.NextCursor = &token
	}
	return page, nil
}

// cursorAfter encodes the key position of the last item of a page.
func (s *Store) cursorAfter(sel Selector, item Item) (string, error) {
	pos := make(cursor.Position, 4)
	for _, attr := range sel.Index.KeyAttrs() {
		v, ok := item[attr]
		if !ok {
			return "", fmt.Errorf("%w: item is missing key attribute %s", ErrInvalidOutputData, attr)
		}
		pos[attr] = v
	}
	token, err := cursor.Encode(pos)
	if err != nil {
		return "", s.unknownError("encode cursor "+sel.Name, err)
	}
	return token, nil
}

// startKeyFromCursor decodes a cursor and checks it points into the
// partition and prefix of the current request.
func startKeyFromCursor(idx keys.Index, token, partition, prefix string) (Item, error) {
	pos, err := cursor.Decode(token, idx.KeyAttrs()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInputData, err)
	}

	startKey := make(Item, len(pos))
	for _, attr := range idx.KeyAttrs() {
		v, ok := pos[attr].(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("%w: cursor attribute %s is not a string", ErrInvalidInputData, attr)
		}
		startKey[attr] = v
	}

	pk := startKey[idx.PartitionAttr].(*types.AttributeValueMemberS).Value
	sk := startKey[idx.SortAttr].(*types.AttributeValueMemberS).Value
	if _, _, err := keys.ParsePartition(pk); err != nil {
		return nil, fmt.Errorf("%w: cursor: %w", ErrInvalidInputData, err)
	}
	if pk != partition || !strings.HasPrefix(sk, prefix) {
		return nil, fmt.Errorf("%w: cursor does not belong to this listing", ErrInvalidInputData)
	}
	return startKey, nil
}

func listTyped[T any](ctx context.Context, s *Store, sel Selector, in ListInput, want model.EntityType) (*Page[T], error) {
	raw, err := s.ListRaw(ctx, sel, in)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(raw.Items))
	for _, item := range raw.Items {
		v, err := decodeItem[T](item, want)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return &Page[T]{Items: items, NextCursor: raw.NextCursor}, nil
}

func (o ListOptions) input(group, parent string) ListInput {
	return ListInput{
		GroupValue:  group,
		ParentID:    parent,
		Limit:       o.Limit,
		Reverse:     o.Reverse,
		StartCursor: o.StartCursor,
	}
}

// ListSubmissionsByTopic lists a topic's submissions by ascending ranking score.
func (s *Store) ListSubmissionsByTopic(ctx context.Context, topic string, opts ListOptions) (*Page[model.Submission], error) {
	return listTyped[model.Submission](ctx, s, SubmissionsByTopic, opts.input(topic, ""), model.TypeSubmission)
}

// ListSubmissionsByAuthor lists an author's submissions by creation time.
func (s *Store) ListSubmissionsByAuthor(ctx context.Context, authorID string, opts ListOptions) (*Page[model.Submission], error) {
	return listTyped[model.Submission](ctx, s, SubmissionsByAuthor, opts.input(authorID, ""), model.TypeSubmission)
}

// ListCommentsBySubmission lists a submission's comments by ranking score.
func (s *Store) ListCommentsBySubmission(ctx context.Context, id model.SubmissionID, opts ListOptions) (*Page[model.Comment], error) {
	return listTyped[model.Comment](ctx, s, CommentsBySubmission, opts.input(string(id), ""), model.TypeComment)
}

// ListCommentsByAuthor lists an author's comments by creation time.
func (s *Store) ListCommentsByAuthor(ctx context.Context, authorID string, opts ListOptions) (*Page[model.Comment], error) {
	return listTyped[model.Comment](ctx, s, CommentsByAuthor, opts.input(authorID, ""), model.TypeComment)
}

// ListRepliesBySubmission lists every reply under a submission, grouped by
// comment and ordered by creation time within each comment.
func (s *Store) ListRepliesBySubmission(ctx context.Context, id model.SubmissionID, opts ListOptions) (*Page[model.Reply], error) {
	return listTyped[model.Reply](ctx, s, RepliesBySubmission, opts.input(string(id), ""), model.TypeReply)
}

// ListRepliesByComment lists the replies to one comment by creation time.
func (s *Store) ListRepliesByComment(ctx context.Context, submissionID model.SubmissionID, commentID model.CommentID, opts ListOptions) (*Page[model.Reply], error) {
	if commentID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInputData, model.ErrEmptyID)
	}
	return listTyped[model.Reply](ctx, s, RepliesBySubmission, opts.input(string(submissionID), string(commentID)), model.TypeReply)
}

// ListRepliesByAuthor lists an author's replies by creation time.
func (s *Store) ListRepliesByAuthor(ctx context.Context, authorID string, opts ListOptions) (*Page[model.Reply], error) {
	return listTyped[model.Reply](ctx, s, RepliesByAuthor, opts.input(authorID, ""), model.TypeReply)
}

// ListThread lists a submission's comments followed by its replies.
func (s *Store) ListThread(ctx context.Context, id model.SubmissionID, opts ListOptions) (*Page[model.Record], error) {
	raw, err := s.ListRaw(ctx, Thread, opts.input(string(id), ""))
	if err != nil {
		return nil, err
	}
	items := make([]model.Record, 0, len(raw.Items))
	for _, item := range raw.Items {
		rec, err := model.DecodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOutputData, err)
		}
		items = append(items, rec)
	}
	return &Page[model.Record]{Items: items, NextCursor: raw.NextCursor}, nil
}
