// Package catalog holds the internship postings loaded from a tabular
// source. A loaded catalog is immutable; reloads build a fresh catalog and
// swap it in atomically.
package catalog

import (
	"strings"
)

// Posting is one internship catalog entry.
type Posting struct {
	ID                string `json:"internship_id"`
	Company           string `json:"company"`
	Title             string `json:"title"`
	Sector            string `json:"sector"`
	AreaField         string `json:"area_field"`
	Specialization    string `json:"specialization"`
	Skills            string `json:"skills"`
	Qualification     string `json:"qualification"`
	Course            string `json:"course"`
	Location          string `json:"location"`
	District          string `json:"district"`
	State             string `json:"state"`
	Benefits          string `json:"benefits,omitempty"`
	Opportunities     int    `json:"opportunities"`
	CandidatesApplied int    `json:"candidates_applied"`
	Description       string `json:"description,omitempty"`

	// SearchableText is derived from the posting fields at load time and
	// feeds the similarity index.
	SearchableText string `json:"-"`
}

// SkillList returns the posting's comma-separated skills as a trimmed list.
func (p *Posting) SkillList() []string {
	return SplitSkills(p.Skills)
}

// SplitSkills splits a comma-separated skill string, dropping empty entries.
func SplitSkills(s string) []string {
	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

func (p *Posting) searchableText() string {
	fields := []string{
		p.Title,
		p.Description,
		p.Sector,
		p.AreaField,
		p.Skills,
		p.Specialization,
		p.Course,
		p.Qualification,
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}

	return strings.Join(parts, " ")
}

// Catalog is one immutable set of postings with unique IDs.
type Catalog struct {
	Postings []*Posting

	byID map[string]*Posting
}

// NewCatalog derives searchable text for each posting and indexes them by ID.
func NewCatalog(postings []*Posting) *Catalog {
	c := &Catalog{
		Postings: postings,
		byID:     make(map[string]*Posting, len(postings)),
	}

	for _, p := range postings {
		p.SearchableText = p.searchableText()
		c.byID[p.ID] = p
	}

	return c
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Postings)
}

// ByID returns the posting with the given identifier, or nil.
func (c *Catalog) ByID(id string) *Posting {
	if c == nil {
		return nil
	}
	return c.byID[id]
}

// SearchableTexts returns the derived text of every posting in insertion order.
func (c *Catalog) SearchableTexts() []string {
	texts := make([]string, c.Len())
	for i, p := range c.Postings {
		texts[i] = p.SearchableText
	}
	return texts
}
