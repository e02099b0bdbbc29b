package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/google/uuid"
)

// Generated is the output of template execution. Nodes of each type are
// listed parents first, so they can be inserted in order.
type Generated struct {
	Nodes map[domain.NodeType][]*domain.Node
	// Types lists the seeded types in template order.
	Types []domain.NodeType
}

// Count returns the total number of generated nodes.
func (g *Generated) Count() int {
	n := 0
	for _, nodes := range g.Nodes {
		n += len(nodes)
	}
	return n
}

// LoadSchema reads and parses a template JSON file.
func LoadSchema(path string) (*TemplateSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(data)
}

// ParseSchema decodes a template. Unknown fields are rejected so a typo in
// a key does not silently drop content.
func ParseSchema(data []byte) (*TemplateSchema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var schema TemplateSchema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &schema, nil
}

// Execute validates schema and generates the nodes it describes, with ids,
// parent references and sort orders assigned.
func Execute(schema *TemplateSchema, now time.Time) (*Generated, error) {
	if errs := ValidateSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("invalid template %s: %w", schema.DisplayName(), errors.Join(errs...))
	}

	out := &Generated{Nodes: map[domain.NodeType][]*domain.Node{}}
	for _, tx := range schema.Taxonomies {
		typ := domain.NodeType(tx.Type)
		def := domain.BoolFromPtrWithDefault(false, requiredOf(tx.Defaults), requiredOf(schema.Defaults))

		var nodes []*domain.Node
		var walk func(level []NodeConfig, parentID *string)
		walk = func(level []NodeConfig, parentID *string) {
			for i, cfg := range level {
				n := &domain.Node{
					ID:         uuid.New().String(),
					Type:       typ,
					Name:       strings.TrimSpace(cfg.Name),
					ParentID:   parentID,
					IsRequired: domain.BoolFromPtrWithDefault(def, cfg.Required),
					SortOrder:  i,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				nodes = append(nodes, n)
				id := n.ID
				walk(cfg.Children, &id)
			}
		}
		walk(tx.Nodes, nil)

		out.Types = append(out.Types, typ)
		out.Nodes[typ] = nodes
	}
	return out, nil
}
