package stream

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// --- getStringAttr Tests ---

func TestGetStringAttr(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"name":    events.NewStringAttribute("test-value"),
		"unicode": events.NewStringAttribute("日本語テスト"),
		"count":   events.NewNumberAttribute("3"),
	}

	tests := []struct {
		name     string
		image    map[string]events.DynamoDBAttributeValue
		key      string
		expected string
	}{
		{"existing string", image, "name", "test-value"},
		{"unicode value", image, "unicode", "日本語テスト"},
		{"number attribute", image, "count", ""},
		{"missing key", image, "other", ""},
		{"nil image", nil, "name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getStringAttr(tt.image, tt.key)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

// --- getNumberAttr Tests ---

func TestGetNumberAttr(t *testing.T) {
	tests := []struct {
		name     string
		image    map[string]events.DynamoDBAttributeValue
		expected int64
	}{
		{
			name:     "valid number",
			image:    map[string]events.DynamoDBAttributeValue{"ttl": events.NewNumberAttribute("1234567890")},
			expected: 1234567890,
		},
		{
			name:     "negative number",
			image:    map[string]events.DynamoDBAttributeValue{"ttl": events.NewNumberAttribute("-100")},
			expected: -100,
		},
		{
			name:     "string attribute",
			image:    map[string]events.DynamoDBAttributeValue{"ttl": events.NewStringAttribute("123")},
			expected: 0,
		},
		{
			name:     "missing key",
			image:    map[string]events.DynamoDBAttributeValue{},
			expected: 0,
		},
		{
			name:     "nil image",
			image:    nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getNumberAttr(tt.image, "ttl")
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// --- ConvertImage Tests ---

func TestConvertImage_AllTypes(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"s":    events.NewStringAttribute("text"),
		"n":    events.NewNumberAttribute("42"),
		"b":    events.NewBinaryAttribute([]byte{1, 2}),
		"bool": events.NewBooleanAttribute(true),
		"null": events.NewNullAttribute(),
		"ss":   events.NewStringSetAttribute([]string{"a", "b"}),
		"ns":   events.NewNumberSetAttribute([]string{"1", "2"}),
		"bs":   events.NewBinarySetAttribute([][]byte{{3}}),
		"l": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewStringAttribute("x"),
			events.NewNumberAttribute("1"),
		}),
		"m": events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
			"inner": events.NewStringAttribute("y"),
		}),
	}

	want := map[string]types.AttributeValue{
		"s":    &types.AttributeValueMemberS{Value: "text"},
		"n":    &types.AttributeValueMemberN{Value: "42"},
		"b":    &types.AttributeValueMemberB{Value: []byte{1, 2}},
		"bool": &types.AttributeValueMemberBOOL{Value: true},
		"null": &types.AttributeValueMemberNULL{Value: true},
		"ss":   &types.AttributeValueMemberSS{Value: []string{"a", "b"}},
		"ns":   &types.AttributeValueMemberNS{Value: []string{"1", "2"}},
		"bs":   &types.AttributeValueMemberBS{Value: [][]byte{{3}}},
		"l": &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: "x"},
			&types.AttributeValueMemberN{Value: "1"},
		}},
		"m": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"inner": &types.AttributeValueMemberS{Value: "y"},
		}},
	}

	got := ConvertImage(image)
	opts := cmpopts.IgnoreUnexported(
		types.AttributeValueMemberS{}, types.AttributeValueMemberN{}, types.AttributeValueMemberB{},
		types.AttributeValueMemberBOOL{}, types.AttributeValueMemberNULL{}, types.AttributeValueMemberSS{},
		types.AttributeValueMemberNS{}, types.AttributeValueMemberBS{}, types.AttributeValueMemberL{},
		types.AttributeValueMemberM{},
	)
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("converted image mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertImage_Empty(t *testing.T) {
	got := ConvertImage(nil)
	if got == nil {
		t.Fatal("expected non-nil item for nil image")
	}
	if len(got) != 0 {
		t.Errorf("expected empty item, got %d attributes", len(got))
	}
}

// --- processRecord Tests ---

func TestProcessRecord_SkipsOtherEvents(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
	}{
		{"REMOVE", "REMOVE"},
		{"Unknown", "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(nil, nil)
			record := events.DynamoDBEventRecord{
				EventName: tt.eventName,
			}

			if err := h.processRecord(context.Background(), record); err != nil {
				t.Errorf("expected no error for %s event, got %v", tt.eventName, err)
			}
		})
	}
}

func TestProcessRecord_SkipsModifyWithoutNewTTL(t *testing.T) {
	h := NewHandler(nil, nil)

	// TTL already existed, so the cascade ran before.
	record := events.DynamoDBEventRecord{
		EventName: "MODIFY",
		Change: events.DynamoDBStreamRecord{
			OldImage: map[string]events.DynamoDBAttributeValue{
				"entity_type": events.NewStringAttribute("submission"),
				"ttl":         events.NewNumberAttribute("1000"),
			},
			NewImage: map[string]events.DynamoDBAttributeValue{
				"entity_type": events.NewStringAttribute("submission"),
				"ttl":         events.NewNumberAttribute("2000"),
			},
		},
	}

	if err := h.processRecord(context.Background(), record); err != nil {
		t.Errorf("expected no error when TTL already existed, got %v", err)
	}
}

func TestProcessRecord_SkipsRecordWithoutEntityType(t *testing.T) {
	h := NewHandler(nil, nil)
	record := events.DynamoDBEventRecord{
		EventName: "MODIFY",
		Change: events.DynamoDBStreamRecord{
			NewImage: map[string]events.DynamoDBAttributeValue{
				"PK":  events.NewStringAttribute("LOCK#1"),
				"ttl": events.NewNumberAttribute("2000"),
			},
		},
	}

	if err := h.processRecord(context.Background(), record); err != nil {
		t.Errorf("expected foreign items to be skipped, got %v", err)
	}
}

// --- Benchmark Tests ---

func BenchmarkGetNumberAttr(b *testing.B) {
	image := map[string]events.DynamoDBAttributeValue{
		"ttl": events.NewNumberAttribute("1704067200"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		getNumberAttr(image, "ttl")
	}
}

func BenchmarkConvertImage(b *testing.B) {
	image := map[string]events.DynamoDBAttributeValue{
		"PK":          events.NewStringAttribute("SUBMS#12345678-1234-1234-1234-123456789012"),
		"SK":          events.NewStringAttribute("A"),
		"entity_type": events.NewStringAttribute("submission"),
		"n_votes":     events.NewNumberAttribute("17"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ConvertImage(image)
	}
}
