package portal

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

const (
	defaultSectionIcon     = "fa-th-large"
	defaultSectionSequence = 10
)

var (
	errMissingSectionCode = errors.New("portal: section code is required")
	errMissingSectionName = errors.New("portal: section name is required")
	errDuplicateSection   = errors.New("portal: section code must be unique")
	errUnknownSection     = errors.New("portal: section not found")
)

// Group xmlids gating the default sections.
const (
	GroupDirection = "isic_base.group_isic_direction"
	GroupScolarite = "isic_base.group_isic_scolarite"
)

// SectionDefinition configures one dashboard section. Code selects the
// builder producing the section's KPIs and, when HasChart is set, its charts.
type SectionDefinition struct {
	Code        string   `json:"code" yaml:"code"`
	Name        string   `json:"name" yaml:"name"`
	Icon        string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Sequence    int      `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Groups      []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Active      *bool    `json:"active,omitempty" yaml:"active,omitempty"`
	HasChart    bool     `json:"has_chart,omitempty" yaml:"has_chart,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsActive reports whether the section is published. Sections are active
// unless explicitly disabled.
func (d SectionDefinition) IsActive() bool {
	return d.Active == nil || *d.Active
}

// VisibleTo reports whether viewer may see the section: it must be active and
// either open to everyone or shared with one of the viewer's groups.
func (d SectionDefinition) VisibleTo(viewer ViewerContext) bool {
	if !d.IsActive() {
		return false
	}
	if len(d.Groups) == 0 {
		return true
	}
	for _, group := range d.Groups {
		if viewer.HasGroup(group) {
			return true
		}
	}
	return false
}

func (d SectionDefinition) withDefaults() SectionDefinition {
	if d.Icon == "" {
		d.Icon = defaultSectionIcon
	}
	if d.Sequence == 0 {
		d.Sequence = defaultSectionSequence
	}
	if d.Active == nil {
		active := true
		d.Active = &active
	}
	return d
}

func (d SectionDefinition) validate() error {
	if d.Code == "" {
		return errMissingSectionCode
	}
	if d.Name == "" {
		return fmt.Errorf("%w: %s", errMissingSectionName, d.Code)
	}
	return nil
}

// SectionCatalog holds section definitions ordered by sequence then code.
type SectionCatalog struct {
	mu   sync.RWMutex
	defs map[string]SectionDefinition
}

// NewSectionCatalog builds a catalog from defs.
func NewSectionCatalog(defs ...SectionDefinition) (*SectionCatalog, error) {
	c := &SectionCatalog{defs: make(map[string]SectionDefinition, len(defs))}
	for _, def := range defs {
		if err := c.Add(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers def; codes are unique.
func (c *SectionCatalog) Add(def SectionDefinition) error {
	if err := def.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.defs[def.Code]; exists {
		return fmt.Errorf("%w: %s", errDuplicateSection, def.Code)
	}
	c.defs[def.Code] = def.withDefaults()
	return nil
}

// Put adds def or replaces the definition sharing its code.
func (c *SectionCatalog) Put(def SectionDefinition) error {
	if err := def.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Code] = def.withDefaults()
	return nil
}

// SetActive publishes or archives a section.
func (c *SectionCatalog) SetActive(code string, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	def, ok := c.defs[code]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownSection, code)
	}
	def.Active = &active
	c.defs[code] = def
	return nil
}

// Definition returns the section registered under code.
func (c *SectionCatalog) Definition(code string) (SectionDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[code]
	return def, ok
}

// Definitions returns every section, archived ones included, in display order.
func (c *SectionCatalog) Definitions() []SectionDefinition {
	c.mu.RLock()
	defs := make([]SectionDefinition, 0, len(c.defs))
	for _, def := range c.defs {
		defs = append(defs, def)
	}
	c.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Sequence != defs[j].Sequence {
			return defs[i].Sequence < defs[j].Sequence
		}
		return defs[i].Code < defs[j].Code
	})
	return defs
}

// Visible returns the sections viewer may see, in display order.
func (c *SectionCatalog) Visible(viewer ViewerContext) []SectionDefinition {
	all := c.Definitions()
	out := make([]SectionDefinition, 0, len(all))
	for _, def := range all {
		if def.VisibleTo(viewer) {
			out = append(out, def)
		}
	}
	return out
}
