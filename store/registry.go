package store

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/valnk/model"
)

// Relationship defines a parent-child relationship for cascade operations.
type Relationship struct {
	// ParentType is the parent entity type (e.g., "submission").
	ParentType model.EntityType

	// ChildType is the child entity type (e.g., "comment").
	ChildType model.EntityType

	// Selector lists the children of one parent.
	Selector Selector

	// GroupAttr is the parent attribute holding the children's index
	// partition value (e.g., "id" for comments of a submission).
	GroupAttr string

	// ParentAttr is the parent attribute narrowing a nested selector to the
	// parent's own children. Empty lists the whole partition.
	ParentAttr string
}

// ChildScope returns the listing that selects the children of parent.
func (rel Relationship) ChildScope(parent Item) (ListInput, error) {
	group, err := stringAttr(parent, rel.GroupAttr)
	if err != nil {
		return ListInput{}, err
	}
	in := ListInput{GroupValue: group}
	if rel.ParentAttr != "" {
		if in.ParentID, err = stringAttr(parent, rel.ParentAttr); err != nil {
			return ListInput{}, err
		}
	}
	return in, nil
}

func stringAttr(item Item, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok || v.Value == "" {
		return "", fmt.Errorf("%w: missing string attribute %s", ErrInvalidOutputData, name)
	}
	return v.Value, nil
}

// Registry holds all known entity relationships for cascade operations.
type Registry struct {
	relationships []Relationship
	byParent      map[model.EntityType][]Relationship
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		relationships: []Relationship{},
		byParent:      make(map[model.EntityType][]Relationship),
	}
}

// DefaultRegistry returns the relationships between the built-in kinds.
// Deleting a submission expires its comments and replies; deleting a comment
// expires the replies clustered under it.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Relationship{
		ParentType: model.TypeSubmission,
		ChildType:  model.TypeComment,
		Selector:   CommentsBySubmission,
		GroupAttr:  "id",
	})
	r.Register(Relationship{
		ParentType: model.TypeSubmission,
		ChildType:  model.TypeReply,
		Selector:   RepliesBySubmission,
		GroupAttr:  "id",
	})
	r.Register(Relationship{
		ParentType: model.TypeComment,
		ChildType:  model.TypeReply,
		Selector:   RepliesBySubmission,
		GroupAttr:  "submission_id",
		ParentAttr: "id",
	})
	return r
}

// Register adds a relationship to the registry.
func (r *Registry) Register(rel Relationship) {
	r.relationships = append(r.relationships, rel)
	r.byParent[rel.ParentType] = append(r.byParent[rel.ParentType], rel)
}

// ChildrenOf returns all child relationships for a given parent type.
func (r *Registry) ChildrenOf(parentType model.EntityType) []Relationship {
	return r.byParent[parentType]
}

// AllRelationships returns all registered relationships.
func (r *Registry) AllRelationships() []Relationship {
	return r.relationships
}

// HasChildren returns true if the parent type has any registered child relationships.
func (r *Registry) HasChildren(parentType model.EntityType) bool {
	return len(r.byParent[parentType]) > 0
}
