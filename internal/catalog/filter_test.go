package catalog

import (
	"reflect"
	"testing"
)

func filterCatalog() *Catalog {
	return NewCatalog([]*Posting{
		{ID: "PMIS-2025-1", Company: "Acme", Title: "Data Intern", Skills: "Python, SQL", State: "Karnataka", Sector: "Tech", Specialization: "Computer Science"},
		{ID: "PMIS-2025-2", Company: "Globex", Title: "Marketing Intern", Skills: "Photoshop", State: "Maharashtra", Sector: "Media", Specialization: "Marketing"},
		{ID: "PMIS-2025-3", Company: "Initech", Title: "Backend Intern", Skills: "Go, Python", State: "Maharashtra", Sector: "Tech", Specialization: "Computer Science"},
	})
}

func TestFilterApply(t *testing.T) {
	t.Parallel()

	c := filterCatalog()

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no constraints", Filter{}, []string{"PMIS-2025-1", "PMIS-2025-2", "PMIS-2025-3"}},
		{"search matches skills case-insensitively", Filter{Search: "python"}, []string{"PMIS-2025-1", "PMIS-2025-3"}},
		{"search matches company", Filter{Search: "globex"}, []string{"PMIS-2025-2"}},
		{"state is exact", Filter{State: "Maharashtra"}, []string{"PMIS-2025-2", "PMIS-2025-3"}},
		{"sector is exact", Filter{Sector: "Tech"}, []string{"PMIS-2025-1", "PMIS-2025-3"}},
		{"specialization is substring", Filter{Specialization: "computer"}, []string{"PMIS-2025-1", "PMIS-2025-3"}},
		{"constraints combine", Filter{State: "Maharashtra", Sector: "Tech"}, []string{"PMIS-2025-3"}},
		{"limit caps results", Filter{Limit: 2}, []string{"PMIS-2025-1", "PMIS-2025-2"}},
		{"no match", Filter{Search: "nonexistent"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, p := range c.Apply(tc.filter) {
				got = append(got, p.ID)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Apply(%+v) = %v, want %v", tc.filter, got, tc.want)
			}
		})
	}
}

func TestFilterOptions(t *testing.T) {
	t.Parallel()

	opts := filterCatalog().Options()

	if !reflect.DeepEqual(opts.States, []string{"Karnataka", "Maharashtra"}) {
		t.Fatalf("unexpected states: %v", opts.States)
	}
	if !reflect.DeepEqual(opts.Sectors, []string{"Media", "Tech"}) {
		t.Fatalf("unexpected sectors: %v", opts.Sectors)
	}
	if !reflect.DeepEqual(opts.Specializations, []string{"Computer Science", "Marketing"}) {
		t.Fatalf("unexpected specializations: %v", opts.Specializations)
	}
}
