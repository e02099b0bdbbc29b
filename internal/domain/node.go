package domain

import (
	"fmt"
	"time"
)

// NodeType names one of the independent taxonomy namespaces.
type NodeType string

const (
	TypeClassification NodeType = "classification"
	TypeLocation       NodeType = "location"
	TypeProcedure      NodeType = "procedure"
	TypeAction         NodeType = "action"
	TypeAccountType    NodeType = "account_type"
)

// NodeTypes is the closed set of taxonomy types in display order.
var NodeTypes = []NodeType{
	TypeClassification,
	TypeLocation,
	TypeProcedure,
	TypeAction,
	TypeAccountType,
}

// ParseNodeType validates s against the closed set of taxonomy types.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known taxonomy types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Hierarchical reports whether nodes of this type may have a parent.
// Procedures, actions and account types are flat lists.
func (t NodeType) Hierarchical() bool {
	return t == TypeClassification || t == TypeLocation
}

// Node is a single entry in a taxonomy. Children is derived by
// taxonomy.BuildTree and never persisted.
type Node struct {
	ID         string
	Type       NodeType
	Name       string
	ParentID   *string
	IsRequired bool
	SortOrder  int
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Children []*Node
}

// IsRoot reports whether the node has no parent reference.
func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}
