package domain

import "errors"

var (
	// ErrUnknownType is returned before any I/O when a type string is not
	// one of NodeTypes.
	ErrUnknownType = errors.New("unknown taxonomy type")
	ErrNotFound    = errors.New("not found")
	ErrEmptyName   = errors.New("name must not be empty")
	// ErrCrossParent rejects a drag between different sibling groups.
	ErrCrossParent = errors.New("nodes can only be reordered within the same parent")
	ErrPersistence = errors.New("persistence failure")
	// ErrDuplicate is raised by the store when a uniqueness constraint on a
	// canonical name is violated.
	ErrDuplicate         = errors.New("duplicate node")
	ErrUnsupportedImport = errors.New("import is only supported for the location taxonomy")
)
