// Package ddbtest provides an in-memory stand-in for the DynamoDB operations
// used by the store. It understands exactly the expressions the store sends.
package ddbtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/valnk/internal/keys"
)

// Item is a raw DynamoDB item.
type Item = map[string]types.AttributeValue

// Fake is an in-memory table with GSI queries.
type Fake struct {
	mu    sync.Mutex
	items map[string]Item

	// QueryErr, when set, is returned by every Query call.
	QueryErr error

	// PutErr, when set, is returned by every PutItem call.
	PutErr error

	// PageCap bounds the items evaluated by one Query call, standing in for
	// the 1 MB response limit. Zero means no cap.
	PageCap int

	// Queries records every Query input received.
	Queries []*dynamodb.QueryInput
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{items: make(map[string]Item)}
}

// Seed stores raw items without any condition checks.
func (f *Fake) Seed(items ...Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.items[itemID(item)] = clone(item)
	}
}

// Get returns the stored item for a primary key.
func (f *Fake) Get(pk, sk string) (Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[pk+"\x00"+sk]
	return clone(item), ok
}

// Len returns the number of stored items.
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// PutItem stores an item, honouring attribute_exists(PK) and
// attribute_not_exists(PK) conditions.
func (f *Fake) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id := itemID(in.Item)
	existing, exists := f.items[id]
	cond := aws.ToString(in.ConditionExpression)
	switch {
	case strings.Contains(cond, "attribute_not_exists(PK)") && exists:
		return nil, conditionFailed()
	case strings.Contains(cond, "attribute_exists(PK)"):
		if !exists || !live(existing, in.ExpressionAttributeValues) {
			return nil, conditionFailed()
		}
	}
	f.items[id] = clone(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem returns a copy of the stored item, or no item.
func (f *Fake) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: clone(item)}, nil
}

// UpdateItem applies a "SET #name = :value" update. The conditions
// attribute_exists(PK) and attribute_not_exists(#name) are honoured.
func (f *Fake) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	fields := strings.Fields(aws.ToString(in.UpdateExpression))
	if len(fields) != 4 || fields[0] != "SET" || fields[2] != "=" {
		return nil, fmt.Errorf("ddbtest: unsupported update expression %q", aws.ToString(in.UpdateExpression))
	}
	attr := in.ExpressionAttributeNames[fields[1]]
	value, ok := in.ExpressionAttributeValues[fields[3]]
	if attr == "" || !ok {
		return nil, errors.New("ddbtest: unresolved update placeholders")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := itemID(in.Key)
	item, exists := f.items[id]
	cond := aws.ToString(in.ConditionExpression)
	if strings.Contains(cond, "attribute_exists(PK)") && !exists {
		return nil, conditionFailed()
	}
	if strings.Contains(cond, "attribute_not_exists("+fields[1]+")") && exists {
		if _, set := item[attr]; set {
			return nil, conditionFailed()
		}
	}
	if !exists {
		item = clone(in.Key)
	}
	item[attr] = value
	f.items[id] = item
	return &dynamodb.UpdateItemOutput{}, nil
}

// Query evaluates "#pk = :pk" with an optional begins_with(#sk, :sk_prefix)
// against the table or a GSI, and drops items whose ttl is not after :now
// when that value is present.
func (f *Fake) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries = append(f.Queries, in)
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}

	idx, ok := keys.IndexByName(aws.ToString(in.IndexName))
	if !ok {
		return nil, fmt.Errorf("ddbtest: unknown index %q", aws.ToString(in.IndexName))
	}
	pk, ok := stringValue(in.ExpressionAttributeValues, ":pk")
	if !ok {
		return nil, errors.New("ddbtest: query without :pk")
	}
	prefix, _ := stringValue(in.ExpressionAttributeValues, ":sk_prefix")

	var matched []Item
	for _, item := range f.items {
		ipk, ok1 := stringValue(item, idx.PartitionAttr)
		isk, ok2 := stringValue(item, idx.SortAttr)
		if ok1 && ok2 && ipk == pk && strings.HasPrefix(isk, prefix) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return compareTuple(tuple(idx, matched[i]), tuple(idx, matched[j])) < 0
	})
	forward := in.ScanIndexForward == nil || *in.ScanIndexForward
	if !forward {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	if in.ExclusiveStartKey != nil {
		start := tuple(idx, in.ExclusiveStartKey)
		i := 0
		for ; i < len(matched); i++ {
			c := compareTuple(tuple(idx, matched[i]), start)
			if (forward && c > 0) || (!forward && c < 0) {
				break
			}
		}
		matched = matched[i:]
	}

	limit := len(matched)
	if in.Limit != nil && int(*in.Limit) < limit {
		limit = int(*in.Limit)
	}
	if f.PageCap > 0 && f.PageCap < limit {
		limit = f.PageCap
	}

	out := &dynamodb.QueryOutput{}
	for _, item := range matched[:limit] {
		if live(item, in.ExpressionAttributeValues) {
			out.Items = append(out.Items, clone(item))
		}
	}
	out.Count = int32(len(out.Items))
	out.ScannedCount = int32(limit)

	if limit > 0 && (limit < len(matched) || (in.Limit != nil && int(*in.Limit) == limit)) {
		last := matched[limit-1]
		out.LastEvaluatedKey = make(Item)
		for _, attr := range idx.KeyAttrs() {
			out.LastEvaluatedKey[attr] = last[attr]
		}
	}
	return out, nil
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

// live reports whether item survives the ttl filter bound to :now.
func live(item Item, values map[string]types.AttributeValue) bool {
	nowAttr, ok := values[":now"].(*types.AttributeValueMemberN)
	if !ok {
		return true
	}
	ttlAttr, ok := item["ttl"].(*types.AttributeValueMemberN)
	if !ok {
		return true
	}
	now, _ := strconv.ParseInt(nowAttr.Value, 10, 64)
	ttl, _ := strconv.ParseInt(ttlAttr.Value, 10, 64)
	return ttl > now
}

func tuple(idx keys.Index, item Item) [3]string {
	sk, _ := stringValue(item, idx.SortAttr)
	tpk, _ := stringValue(item, keys.Table.PartitionAttr)
	tsk, _ := stringValue(item, keys.Table.SortAttr)
	return [3]string{sk, tpk, tsk}
}

func compareTuple(a, b [3]string) int {
	for i := range a {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func stringValue(item Item, name string) (string, bool) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return v.Value, true
}

func itemID(item Item) string {
	pk, _ := stringValue(item, keys.Table.PartitionAttr)
	sk, _ := stringValue(item, keys.Table.SortAttr)
	return pk + "\x00" + sk
}

func clone(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
