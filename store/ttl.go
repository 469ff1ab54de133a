package store

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TTLAttr holds the expiry of a soft-deleted record, in Unix seconds.
const TTLAttr = "ttl"

// IsDeleted checks if an item has an expired TTL (is marked for deletion).
func IsDeleted(item map[string]types.AttributeValue) bool {
	return isDeletedAt(item, time.Now().Unix())
}

func isDeletedAt(item map[string]types.AttributeValue, now int64) bool {
	ttlNum, ok := item[TTLAttr].(*types.AttributeValueMemberN)
	if !ok {
		return false // No TTL = active
	}
	ttl, err := strconv.ParseInt(ttlNum.Value, 10, 64)
	if err != nil {
		return false
	}
	return ttl <= now
}

// liveFilter is the filter expression excluding soft-deleted items.
type liveFilter struct {
	expr   string
	names  map[string]string
	values map[string]types.AttributeValue
}

func newLiveFilter(now int64) liveFilter {
	return liveFilter{
		expr:  "attribute_not_exists(#ttl) OR #ttl > :now",
		names: map[string]string{"#ttl": TTLAttr},
		values: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now, 10)},
		},
	}
}

// mergeExprNames merges multiple expression attribute name maps.
func mergeExprNames(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// mergeExprValues merges multiple expression attribute value maps.
func mergeExprValues(maps ...map[string]types.AttributeValue) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
