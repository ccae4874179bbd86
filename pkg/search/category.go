package search

import (
	"encoding/json"
	"strings"
)

// SearchItemTypeField marks a free-text field search item.
const SearchItemTypeField = "field"

// Category is a search panel category bound to a many2one field.
type Category struct {
	ID            int
	FieldName     string
	ActiveValueID any
	Hierarchical  bool
}

// Active reports whether a value is selected in the category.
func (c Category) Active() bool {
	switch v := c.ActiveValueID.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f != 0
		}
		return v != ""
	case string:
		return v != ""
	default:
		return true
	}
}

// SearchItem is an entry of the search view (filter, group-by, field...).
type SearchItem struct {
	ID   int
	Type string
}

// Facet is an active query facet referencing a search item.
type Facet struct {
	SearchItemID int
}

// State is the part of the search model the category domain depends on.
type State struct {
	ResModel    string
	Categories  []Category
	Query       []Facet
	SearchItems map[int]SearchItem
}

// HasFieldSearch reports whether a free-text field facet is active.
func (s State) HasFieldSearch() bool {
	for _, facet := range s.Query {
		if item, ok := s.SearchItems[facet.SearchItemID]; ok && item.Type == SearchItemTypeField {
			return true
		}
	}
	return false
}

// CategoryDomainBuilder produces the domain contributed by search panel categories.
// excluded is the category id to skip, 0 for none.
type CategoryDomainBuilder interface {
	CategoryDomain(state State, excluded int) Domain
}

// DefaultBuilder uses child_of for hierarchical categories and = otherwise.
type DefaultBuilder struct{}

// CategoryDomain implements CategoryDomainBuilder.
func (DefaultBuilder) CategoryDomain(state State, excluded int) Domain {
	var domain Domain
	for _, category := range state.Categories {
		if category.ID == excluded || !category.Active() {
			continue
		}
		op := OpEqual
		if category.Hierarchical {
			op = OpChildOf
		}
		domain = append(domain, Where(category.FieldName, op, category.ActiveValueID))
	}
	return domain
}

// ExactMatchBuilder filters categories by exact value for a family of models
// and delegates every other model to Fallback.
type ExactMatchBuilder struct {
	ModelPrefix   string
	RootOnlyModel string
	Fallback      CategoryDomainBuilder
}

// CategoryDomain implements CategoryDomainBuilder.
func (b ExactMatchBuilder) CategoryDomain(state State, excluded int) Domain {
	if state.ResModel == "" || !strings.HasPrefix(state.ResModel, b.ModelPrefix) {
		return b.fallback().CategoryDomain(state, excluded)
	}
	var domain Domain
	for _, category := range state.Categories {
		if category.ID == excluded || !category.Active() {
			continue
		}
		domain = append(domain, Where(category.FieldName, OpEqual, category.ActiveValueID))
	}
	// Nothing selected: show roots only, unless a text search must reach nested records.
	if len(domain) == 0 && b.RootOnlyModel != "" && state.ResModel == b.RootOnlyModel && !state.HasFieldSearch() {
		for _, category := range state.Categories {
			if category.ID == excluded {
				continue
			}
			domain = append(domain, Where(category.FieldName, OpEqual, false))
		}
	}
	return domain
}

func (b ExactMatchBuilder) fallback() CategoryDomainBuilder {
	if b.Fallback == nil {
		return DefaultBuilder{}
	}
	return b.Fallback
}

// Config selects the category domain behavior.
type Config struct {
	ExactMatchPrefix string `yaml:"exact_match_prefix" json:"exact_match_prefix"`
	RootOnlyModel    string `yaml:"root_only_model" json:"root_only_model"`
}

// DefaultConfig enables exact matching for document management models.
func DefaultConfig() Config {
	return Config{ExactMatchPrefix: "dms", RootOnlyModel: "dms.directory"}
}

// NewBuilder returns the builder selected by cfg.
func NewBuilder(cfg Config) CategoryDomainBuilder {
	if cfg.ExactMatchPrefix == "" {
		return DefaultBuilder{}
	}
	return ExactMatchBuilder{
		ModelPrefix:   cfg.ExactMatchPrefix,
		RootOnlyModel: cfg.RootOnlyModel,
		Fallback:      DefaultBuilder{},
	}
}
