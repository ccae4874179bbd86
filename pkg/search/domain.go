package search

import (
	"encoding/json"
	"fmt"
)

// Domain operators used by the search panel.
const (
	OpEqual   = "="
	OpChildOf = "child_of"
	OpIn      = "in"
	OpGTE     = ">="
	OpLT      = "<"
)

// Clause is one [field, operator, value] triple.
type Clause struct {
	Field    string
	Operator string
	Value    any
}

// Domain is a conjunction of clauses.
type Domain []Clause

// Where builds a single clause.
func Where(field, operator string, value any) Clause {
	return Clause{Field: field, Operator: operator, Value: value}
}

// And returns a new domain holding the clauses of d followed by more.
func (d Domain) And(more ...Clause) Domain {
	out := make(Domain, 0, len(d)+len(more))
	out = append(out, d...)
	return append(out, more...)
}

// MarshalJSON encodes the clause as a three element array.
func (c Clause) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Field, c.Operator, c.Value})
}

// UnmarshalJSON decodes a three element array.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("search: decode clause: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("search: clause must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &c.Field); err != nil {
		return fmt.Errorf("search: decode clause field: %w", err)
	}
	if err := json.Unmarshal(raw[1], &c.Operator); err != nil {
		return fmt.Errorf("search: decode clause operator: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw[2], &value); err != nil {
		return fmt.Errorf("search: decode clause value: %w", err)
	}
	c.Value = value
	return nil
}
