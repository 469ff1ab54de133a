package keys

// Index names a key schema of the table: the table itself or one of its GSIs.
type Index struct {
	// Name is the GSI name, empty for the table's own key schema.
	Name string

	// PartitionAttr is the attribute holding the partition value.
	PartitionAttr string

	// SortAttr is the attribute holding the sort value.
	SortAttr string
}

var (
	// Table is the primary key schema.
	Table = Index{PartitionAttr: "PK", SortAttr: "SK"}

	// ByParent groups submissions by topic, and comments and replies by submission.
	ByParent = Index{Name: "GSI1", PartitionAttr: "GSI1_PK", SortAttr: "GSI1_SK"}

	// ByAuthor groups every kind by author, ordered by creation time.
	ByAuthor = Index{Name: "GSI2", PartitionAttr: "GSI2_PK", SortAttr: "GSI2_SK"}
)

// Indexes lists the secondary indexes of the table.
func Indexes() []Index {
	return []Index{ByParent, ByAuthor}
}

// IndexByName returns the schema for a GSI name, or Table for "".
func IndexByName(name string) (Index, bool) {
	if name == "" {
		return Table, true
	}
	for _, idx := range Indexes() {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// KeyAttrs lists the attributes that make up a position in idx: the table's
// own key plus, for a GSI, the index key.
func (idx Index) KeyAttrs() []string {
	if idx.Name == "" {
		return []string{Table.PartitionAttr, Table.SortAttr}
	}
	return []string{Table.PartitionAttr, Table.SortAttr, idx.PartitionAttr, idx.SortAttr}
}
