package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainMatch(t *testing.T) {
	demande := Record{
		"state":        "submitted",
		"demandeur_id": 7,
		"reviewer_ids": []int{3, 7},
		"create_date":  "2026-03-14 10:00:00",
		"parent_id":    nil,
	}
	cases := []struct {
		name   string
		domain Domain
		want   bool
	}{
		{"empty domain", nil, true},
		{"equal", Domain{Where("state", OpEqual, "submitted")}, true},
		{"not equal", Domain{Where("state", OpEqual, "draft")}, false},
		{"numeric equal across types", Domain{Where("demandeur_id", OpEqual, "7")}, true},
		{"in on many2many", Domain{Where("reviewer_ids", OpIn, 7)}, true},
		{"in on many2many miss", Domain{Where("reviewer_ids", OpIn, 9)}, false},
		{"in with list", Domain{Where("state", OpIn, []string{"draft", "submitted"})}, true},
		{"range", Domain{
			Where("create_date", OpGTE, "2026-03-01"),
			Where("create_date", OpLT, "2026-04-01"),
		}, true},
		{"range miss", Domain{Where("create_date", OpLT, "2026-03-01")}, false},
		{"false matches empty", Domain{Where("parent_id", OpEqual, false)}, true},
		{"false on set field", Domain{Where("state", OpEqual, false)}, false},
		{"unknown operator", Domain{Where("state", "ilike", "sub")}, false},
		{"conjunction", Domain{Where("state", OpEqual, "submitted"), Where("demandeur_id", OpEqual, 8)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.domain.Match(demande))
		})
	}
}
