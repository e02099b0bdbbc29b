// Package template loads JSON seed templates that describe the initial
// content of one or more taxonomies.
package template

// TemplateSchema is the top-level JSON template structure.
type TemplateSchema struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	Version     string           `json:"version,omitempty"`
	Description string           `json:"description,omitempty"`
	Defaults    *DefaultsConfig  `json:"defaults,omitempty"`
	Taxonomies  []TaxonomyConfig `json:"taxonomies"`
}

// DefaultsConfig applies to every node that does not override it.
type DefaultsConfig struct {
	Required *bool `json:"required,omitempty"`
}

// TaxonomyConfig is the node forest of one taxonomy type. Defaults here
// override the template-wide defaults.
type TaxonomyConfig struct {
	Type     string          `json:"type"`
	Defaults *DefaultsConfig `json:"defaults,omitempty"`
	Nodes    []NodeConfig    `json:"nodes"`
}

type NodeConfig struct {
	Name     string       `json:"name"`
	Required *bool        `json:"required,omitempty"`
	Children []NodeConfig `json:"children,omitempty"`
}

// DisplayName is the name shown to users, falling back to the id.
func (s *TemplateSchema) DisplayName() string {
	return coalesceStr(s.Name, s.ID)
}

func coalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func requiredOf(d *DefaultsConfig) *bool {
	if d == nil {
		return nil
	}
	return d.Required
}
