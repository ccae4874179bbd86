package portal

import (
	"context"
	"sync"

	"github.com/goliatone/go-portal/pkg/search"
)

// Models counted by the default sections.
const (
	ModelApprovalRequest = "isic.approbation.demande"
	ModelDMSFile         = "dms.file"
	ModelUsers           = "res.users"
)

// RecordCounter counts the records of model matching domain.
type RecordCounter interface {
	Count(ctx context.Context, model string, domain search.Domain) (int, error)
}

// RecordCounterFunc adapts a function into a RecordCounter.
type RecordCounterFunc func(ctx context.Context, model string, domain search.Domain) (int, error)

// Count implements RecordCounter.
func (f RecordCounterFunc) Count(ctx context.Context, model string, domain search.Domain) (int, error) {
	return f(ctx, model, domain)
}

// MemoryRecords is an in-memory RecordCounter.
type MemoryRecords struct {
	mu      sync.RWMutex
	records map[string][]search.Record
}

// NewMemoryRecords creates an empty record set.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{records: make(map[string][]search.Record)}
}

// Add appends records to model.
func (m *MemoryRecords) Add(model string, records ...search.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[model] = append(m.records[model], records...)
}

// Count implements RecordCounter.
func (m *MemoryRecords) Count(ctx context.Context, model string, domain search.Domain) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, rec := range m.records[model] {
		if domain.Match(rec) {
			n++
		}
	}
	return n, nil
}

// AcademicYear identifies the current academic year.
type AcademicYear struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// AcademicYearSource resolves the open academic year; nil when none is open.
type AcademicYearSource interface {
	Current(ctx context.Context) (*AcademicYear, error)
}

// StaticAcademicYear always returns the same year.
type StaticAcademicYear struct {
	Year *AcademicYear
}

// Current implements AcademicYearSource.
func (s StaticAcademicYear) Current(context.Context) (*AcademicYear, error) {
	return s.Year, nil
}
