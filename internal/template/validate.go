package template

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
)

// ValidateSchema checks a TemplateSchema for structural errors.
// Returns a slice of errors (empty if valid).
func ValidateSchema(schema *TemplateSchema) []error {
	var errs []error

	if schema.ID == "" {
		errs = append(errs, fmt.Errorf("template id is required"))
	}
	if len(schema.Taxonomies) == 0 {
		errs = append(errs, fmt.Errorf("at least one taxonomy is required"))
	}

	seenTypes := map[domain.NodeType]bool{}
	for i, tx := range schema.Taxonomies {
		typ, err := domain.ParseNodeType(tx.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("taxonomies[%d]: %w", i, err))
			continue
		}
		if seenTypes[typ] {
			errs = append(errs, fmt.Errorf("taxonomies[%d]: %s listed twice", i, typ))
		}
		seenTypes[typ] = true
		if len(tx.Nodes) == 0 {
			errs = append(errs, fmt.Errorf("taxonomies[%d]: %s has no nodes", i, typ))
		}
		errs = append(errs, validateNodes(typ, string(typ), tx.Nodes)...)
	}

	return errs
}

// validateNodes checks one sibling group and recurses into children. Sibling
// names must be unique after canonicalization.
func validateNodes(typ domain.NodeType, path string, nodes []NodeConfig) []error {
	var errs []error
	names := map[string]bool{}
	for i, n := range nodes {
		at := fmt.Sprintf("%s[%d]", path, i)
		name := strings.TrimSpace(n.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s: %w", at, domain.ErrEmptyName))
			continue
		}
		at = path + "/" + name
		key := taxonomy.Normalize(name)
		if names[key] {
			errs = append(errs, fmt.Errorf("%s: %w among siblings", at, domain.ErrDuplicate))
		}
		names[key] = true

		if len(n.Children) > 0 && !typ.Hierarchical() {
			errs = append(errs, fmt.Errorf("%s: %s is a flat list and cannot have children", at, typ))
			continue
		}
		errs = append(errs, validateNodes(typ, at, n.Children)...)
	}
	return errs
}
