package catalog

import (
	"sort"
	"strings"
)

// DefaultFilterLimit bounds listing responses when the caller does not set
// a limit.
const DefaultFilterLimit = 50

// Filter selects postings for the listing endpoint. Zero values mean "no
// constraint".
type Filter struct {
	Search         string
	State          string
	Sector         string
	Specialization string
	Limit          int
}

// Apply returns the postings matching the filter, in catalog order, capped
// at the limit.
func (c *Catalog) Apply(f Filter) []*Posting {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultFilterLimit
	}

	search := strings.ToLower(f.Search)
	specialization := strings.ToLower(f.Specialization)

	var out []*Posting
	for _, p := range c.Postings {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Company), search) &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Skills), search) {
			continue
		}
		if f.State != "" && p.State != f.State {
			continue
		}
		if f.Sector != "" && p.Sector != f.Sector {
			continue
		}
		if specialization != "" && !strings.Contains(strings.ToLower(p.Specialization), specialization) {
			continue
		}

		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// FilterOptions lists the distinct values available to filter on.
type FilterOptions struct {
	States          []string `json:"states"`
	Sectors         []string `json:"sectors"`
	Specializations []string `json:"specializations"`
}

// Options collects the distinct states, sectors and specializations in the
// catalog, sorted for stable responses.
func (c *Catalog) Options() FilterOptions {
	return FilterOptions{
		States:          c.distinct(func(p *Posting) string { return p.State }),
		Sectors:         c.distinct(func(p *Posting) string { return p.Sector }),
		Specializations: c.distinct(func(p *Posting) string { return p.Specialization }),
	}
}

func (c *Catalog) distinct(field func(*Posting) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.Postings {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
