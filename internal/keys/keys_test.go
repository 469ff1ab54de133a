package keys

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"testing"
)

func TestPrimary(t *testing.T) {
	tests := []struct {
		kind     Tag
		id       string
		expected PrimaryKey
	}{
		{Submission, "id1", PrimaryKey{"SUBMS#id1", "A"}},
		{Comment, "id1", PrimaryKey{"COMMT#id1", "A"}},
		{Reply, "id1", PrimaryKey{"REPLY#id1", "A"}},
		{Submission, "550e8400-e29b-41d4-a716-446655440000", PrimaryKey{"SUBMS#550e8400-e29b-41d4-a716-446655440000", "A"}},
	}

	for _, tt := range tests {
		result, err := Primary(tt.kind, tt.id)
		if err != nil {
			t.Fatalf("Primary(%q, %q) failed: %v", tt.kind, tt.id, err)
		}
		if result != tt.expected {
			t.Errorf("Primary(%q, %q) = %+v, want %+v", tt.kind, tt.id, result, tt.expected)
		}
	}
}

func TestPrimary_EmptyID(t *testing.T) {
	_, err := Primary(Submission, "")
	if !errors.Is(err, ErrInvalidAttribute) {
		t.Errorf("expected ErrInvalidAttribute, got %v", err)
	}
}

func TestPrimary_SeparatorInID(t *testing.T) {
	for _, id := range []string{"c1#x", "#", "a#"} {
		if _, err := Primary(Comment, id); !errors.Is(err, ErrInvalidAttribute) {
			t.Errorf("Primary(%q): expected ErrInvalidAttribute, got %v", id, err)
		}
	}
}

func TestSecondary(t *testing.T) {
	tests := []struct {
		name     string
		kind     Tag
		group    Tag
		value    string
		n        int64
		expected IndexKey
	}{
		{"submission by topic", Submission, Topic, "news", 192, IndexKey{"TOPIC#news", "SUBMS#0000000192"}},
		{"submission by author", Submission, Author, "py0x", 1234, IndexKey{"AUTHR#py0x", "SUBMS#0000001234"}},
		{"comment by submission", Comment, Submission, "submission_id_123", 192, IndexKey{"SUBMS#submission_id_123", "COMMT#0000000192"}},
		{"comment by author", Comment, Author, "py0x", 1234, IndexKey{"AUTHR#py0x", "COMMT#0000001234"}},
		{"reply by author", Reply, Author, "py0x", 1234, IndexKey{"AUTHR#py0x", "REPLY#0000001234"}},
		{"zero", Submission, Topic, "news", 0, IndexKey{"TOPIC#news", "SUBMS#0000000000"}},
		{"max", Submission, Topic, "news", MaxOrdinal, IndexKey{"TOPIC#news", "SUBMS#9999999999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Secondary(tt.kind, tt.group, tt.value, tt.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, result)
			}
		})
	}
}

func TestSecondary_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		n     int64
	}{
		{"empty grouping value", "", 1},
		{"negative", "news", -1},
		{"eleven digits", "news", MaxOrdinal + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Secondary(Submission, Topic, tt.value, tt.n)
			if !errors.Is(err, ErrInvalidAttribute) {
				t.Errorf("expected ErrInvalidAttribute, got %v", err)
			}
		})
	}
}

func TestNested(t *testing.T) {
	result, err := Nested(Reply, Submission, "submission_id_123", "comment_id_123", 1234)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := IndexKey{"SUBMS#submission_id_123", "REPLY#comment_id_123#0000001234"}
	if result != expected {
		t.Errorf("expected %+v, got %+v", expected, result)
	}
	if !strings.HasPrefix(result.Sort, NestedSortPrefix(Reply, "comment_id_123")) {
		t.Errorf("expected sort %q to start with nested prefix", result.Sort)
	}
	if !strings.HasPrefix(result.Sort, SortPrefix(Reply)) {
		t.Errorf("expected sort %q to start with kind prefix", result.Sort)
	}
}

func TestNested_Invalid(t *testing.T) {
	if _, err := Nested(Reply, Submission, "s1", "", 1); !errors.Is(err, ErrInvalidAttribute) {
		t.Errorf("expected ErrInvalidAttribute for empty parent, got %v", err)
	}
	if _, err := Nested(Reply, Submission, "", "c1", 1); !errors.Is(err, ErrInvalidAttribute) {
		t.Errorf("expected ErrInvalidAttribute for empty group value, got %v", err)
	}
	if _, err := Nested(Reply, Submission, "s1", "c1", -5); !errors.Is(err, ErrInvalidAttribute) {
		t.Errorf("expected ErrInvalidAttribute for negative ordinal, got %v", err)
	}
	if _, err := Nested(Reply, Submission, "s1", "c1#x", 1); !errors.Is(err, ErrInvalidAttribute) {
		t.Errorf("expected ErrInvalidAttribute for parent id with separator, got %v", err)
	}
}

func TestCheckID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"c1", false},
		{"550e8400-e29b-41d4-a716-446655440000", false},
		{"", true},
		{"c1#x", true},
		{"#", true},
	}
	for _, tt := range tests {
		err := CheckID(Comment, tt.id)
		if tt.wantErr != (err != nil) {
			t.Errorf("CheckID(%q): expected error %v, got %v", tt.id, tt.wantErr, err)
		}
		if err != nil && !errors.Is(err, ErrInvalidAttribute) {
			t.Errorf("CheckID(%q): expected ErrInvalidAttribute, got %v", tt.id, err)
		}
	}
}

func TestSortPrefix(t *testing.T) {
	if p := SortPrefix(Submission); p != "SUBMS#" {
		t.Errorf("expected 'SUBMS#', got %q", p)
	}
	if p := NestedSortPrefix(Reply, "c1"); p != "REPLY#c1#" {
		t.Errorf("expected 'REPLY#c1#', got %q", p)
	}
}

func TestOrdinal_Monotonic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	values := []int64{0, 1, 9, 10, 99, 100, 1_000_000_000, MaxOrdinal - 1, MaxOrdinal}
	for i := 0; i < 1000; i++ {
		values = append(values, r.Int63n(MaxOrdinal+1))
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	prev := ""
	for i, n := range values {
		s, err := Ordinal(n)
		if err != nil {
			t.Fatalf("Ordinal(%d) failed: %v", n, err)
		}
		if len(s) != 10 {
			t.Errorf("expected 10 digits, got %q", s)
		}
		if i > 0 && values[i-1] < n && !(prev < s) {
			t.Errorf("ordering broken: %d -> %q not after %d -> %q", n, s, values[i-1], prev)
		}
		prev = s
	}
}

func TestParsePartition(t *testing.T) {
	tag, value, err := ParsePartition("SUBMS#abc#def")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != Submission || value != "abc#def" {
		t.Errorf("expected (SUBMS, abc#def), got (%s, %s)", tag, value)
	}

	for _, bad := range []string{"", "SUBMS", "SUBMS#", "XXXXX#id", "#id"} {
		if _, _, err := ParsePartition(bad); !errors.Is(err, ErrInvalidAttribute) {
			t.Errorf("ParsePartition(%q): expected ErrInvalidAttribute, got %v", bad, err)
		}
	}
}

func TestIndexByName(t *testing.T) {
	tests := []struct {
		name     string
		expected Index
		ok       bool
	}{
		{"", Table, true},
		{"GSI1", ByParent, true},
		{"GSI2", ByAuthor, true},
		{"GSI9", Index{}, false},
	}
	for _, tt := range tests {
		idx, ok := IndexByName(tt.name)
		if ok != tt.ok || idx != tt.expected {
			t.Errorf("IndexByName(%q) = (%+v, %v), want (%+v, %v)", tt.name, idx, ok, tt.expected, tt.ok)
		}
	}
}

func TestKeyAttrs(t *testing.T) {
	if attrs := Table.KeyAttrs(); strings.Join(attrs, ",") != "PK,SK" {
		t.Errorf("expected PK,SK, got %v", attrs)
	}
	if attrs := ByParent.KeyAttrs(); strings.Join(attrs, ",") != "PK,SK,GSI1_PK,GSI1_SK" {
		t.Errorf("expected PK,SK,GSI1_PK,GSI1_SK, got %v", attrs)
	}
}

func BenchmarkSecondary(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Secondary(Submission, Topic, "news", int64(i))
	}
}
