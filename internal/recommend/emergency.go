package recommend

import "context"

// emergencyAttempt is the guaranteed-success terminal tier: the first few
// catalog entries in storage order with a fixed score. It performs no I/O
// and never fails; an empty catalog yields an empty list.
type emergencyAttempt struct{}

func (a *emergencyAttempt) Name() string { return "emergency" }

func (a *emergencyAttempt) Method() string { return MethodEmergency }

func (a *emergencyAttempt) Run(_ context.Context, req *request) ([]Recommendation, error) {
	n := min(3, req.count)
	if n > req.catalog.Len() {
		n = req.catalog.Len()
	}

	recs := make([]Recommendation, 0, n)
	for i := 0; i < n; i++ {
		posting := req.catalog.Postings[i]
		recs = append(recs, Recommendation{
			Rank:                   i + 1,
			Company:                posting.Company,
			Title:                  posting.Title,
			MatchScore:             70,
			Reasoning:              "Basic recommendation due to system limitations",
			SkillsToHighlight:      []string{},
			Location:               posting.Location,
			Sector:                 posting.Sector,
			OpportunitiesAvailable: posting.Opportunities,
		})
	}

	return recs, nil
}
