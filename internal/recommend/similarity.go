package recommend

import (
	"context"
	"errors"
	"fmt"
)

// defaultHighlights is used when a posting lists no preferred skills.
var defaultHighlights = []string{"Communication", "Teamwork"}

// similarityAttempt is the backup tier: similarity-only ranking over the
// TF-IDF index with synthesized scores and reasoning.
type similarityAttempt struct{}

func (a *similarityAttempt) Name() string { return "similarity" }

func (a *similarityAttempt) Method() string { return MethodBackup }

func (a *similarityAttempt) Run(_ context.Context, req *request) ([]Recommendation, error) {
	hits := req.index.Query(req.formatted, req.count*2)
	if len(hits) == 0 {
		return nil, errors.New("no postings to rank")
	}

	recs := make([]Recommendation, 0, req.count)
	seen := make(map[string]struct{}, req.count)
	for _, hit := range hits {
		if len(recs) == req.count {
			break
		}

		posting := req.catalog.Postings[hit.Doc]
		// Keep the first (highest-similarity) occurrence per posting ID.
		if _, dup := seen[posting.ID]; dup {
			continue
		}
		seen[posting.ID] = struct{}{}

		position := len(recs)
		skills := capSkills(posting.SkillList())
		if len(skills) == 0 {
			skills = defaultHighlights
		}

		recs = append(recs, Recommendation{
			Rank:    position + 1,
			Company: posting.Company,
			Title:   posting.Title,
			// Placeholder confidence heuristic, not a calibrated
			// probability: 75% + 3 points per position, capped at 95%.
			MatchScore: clampScore(min(75+3*position, 95)),
			Reasoning: fmt.Sprintf(
				"Strong match based on %s sector and %s specialization. Location (%s, %s) and skills alignment make this a good fit.",
				posting.Sector, posting.AreaField, posting.Location, posting.State,
			),
			SkillsToHighlight:      skills,
			Location:               posting.Location,
			Sector:                 posting.Sector,
			OpportunitiesAvailable: posting.Opportunities,
		})
	}

	return recs, nil
}
