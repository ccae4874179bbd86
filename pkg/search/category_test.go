package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directoryState() State {
	return State{
		ResModel: "dms.directory",
		Categories: []Category{
			{ID: 1, FieldName: "parent_id", Hierarchical: true},
			{ID: 2, FieldName: "storage_id"},
		},
		SearchItems: map[int]SearchItem{
			10: {ID: 10, Type: SearchItemTypeField},
			11: {ID: 11, Type: "filter"},
		},
	}
}

func TestExactMatchRootOnlyWithoutSearch(t *testing.T) {
	builder := NewBuilder(DefaultConfig())
	domain := builder.CategoryDomain(directoryState(), 0)
	assert.Equal(t, Domain{
		Where("parent_id", OpEqual, false),
		Where("storage_id", OpEqual, false),
	}, domain)
}

func TestExactMatchSkipsRootFallbackDuringTextSearch(t *testing.T) {
	state := directoryState()
	state.Query = []Facet{{SearchItemID: 10}}
	domain := NewBuilder(DefaultConfig()).CategoryDomain(state, 0)
	assert.Empty(t, domain)
}

func TestExactMatchKeepsRootFallbackForNonFieldFacets(t *testing.T) {
	state := directoryState()
	state.Query = []Facet{{SearchItemID: 11}}
	domain := NewBuilder(DefaultConfig()).CategoryDomain(state, 0)
	assert.Len(t, domain, 2)
}

func TestExactMatchRespectsExcludedCategory(t *testing.T) {
	domain := NewBuilder(DefaultConfig()).CategoryDomain(directoryState(), 2)
	assert.Equal(t, Domain{Where("parent_id", OpEqual, false)}, domain)
}

func TestExactMatchUsesEqualForActiveHierarchicalCategory(t *testing.T) {
	state := directoryState()
	state.ResModel = "dms.file"
	state.Categories[0].ActiveValueID = 7
	domain := NewBuilder(DefaultConfig()).CategoryDomain(state, 0)
	assert.Equal(t, Domain{Where("parent_id", OpEqual, 7)}, domain)
}

func TestNonMatchingModelFallsBackToDefault(t *testing.T) {
	state := directoryState()
	state.ResModel = "res.partner"
	state.Categories[0].ActiveValueID = 3
	domain := NewBuilder(DefaultConfig()).CategoryDomain(state, 0)
	assert.Equal(t, Domain{Where("parent_id", OpChildOf, 3)}, domain)
}

func TestEmptyConfigSelectsDefaultBuilder(t *testing.T) {
	builder := NewBuilder(Config{})
	_, ok := builder.(DefaultBuilder)
	assert.True(t, ok)
	assert.Empty(t, builder.CategoryDomain(directoryState(), 0))
}

func TestClauseJSON(t *testing.T) {
	data, err := json.Marshal(Domain{Where("state", OpEqual, "submitted")})
	require.NoError(t, err)
	assert.JSONEq(t, `[["state","=","submitted"]]`, string(data))

	var decoded Domain
	require.NoError(t, json.Unmarshal([]byte(`[["parent_id","=",false]]`), &decoded))
	assert.Equal(t, Domain{Where("parent_id", OpEqual, false)}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`[["a","="]]`), &decoded))
}

func TestCategoryActiveDecodedIDs(t *testing.T) {
	cases := []struct {
		value  any
		active bool
	}{
		{nil, false},
		{false, false},
		{0, false},
		{float64(0), false},
		{float64(12), true},
		{json.Number("0"), false},
		{json.Number("4"), true},
		{"", false},
		{"dir_1", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.active, Category{ActiveValueID: tc.value}.Active(), "%#v", tc.value)
	}

	var decoded Category
	require.NoError(t, json.Unmarshal([]byte(`{"ActiveValueID": 0}`), &decoded))
	assert.False(t, decoded.Active())
}
