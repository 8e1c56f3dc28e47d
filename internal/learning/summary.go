package learning

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SkillGapCount is one skill gap and how often recruiters flagged it.
type SkillGapCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Progress summarizes how far the learner has come for one candidate.
type Progress struct {
	SkillImprovementRate float64 `json:"skill_improvement_rate"`
	FeedbackQuality      float64 `json:"feedback_quality"`
	LearningConsistency  float64 `json:"learning_consistency"`
}

// Summary is the per-candidate learning report.
type Summary struct {
	TotalApplications int             `json:"total_applications"`
	AverageScore      float64         `json:"average_score"`
	CommonSkillGaps   []SkillGapCount `json:"common_skill_gaps"`
	Progress          Progress        `json:"learning_progress"`
	Recommendations   []string        `json:"recommendations"`
}

const maxCommonGaps = 5

// Summary aggregates a candidate's feedback history into a learning report.
func (l *Learner) Summary(ctx context.Context, candidateID string) (*Summary, error) {
	history, err := l.store.FeedbackByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("loading feedback history: %w", err)
	}

	total := len(history)

	var scoreSum, scored int
	gapCounts := make(map[string]int)
	var gapOrder []string
	for _, fb := range history {
		if fb.Score > 0 {
			scoreSum += fb.Score
			scored++
		}
		for _, gap := range fb.SkillGaps {
			key := strings.ToLower(gap)
			if gapCounts[key] == 0 {
				gapOrder = append(gapOrder, key)
			}
			gapCounts[key]++
		}
	}

	var average float64
	if scored > 0 {
		average = float64(scoreSum) / float64(scored)
	}

	sort.SliceStable(gapOrder, func(i, j int) bool {
		return gapCounts[gapOrder[i]] > gapCounts[gapOrder[j]]
	})
	if len(gapOrder) > maxCommonGaps {
		gapOrder = gapOrder[:maxCommonGaps]
	}
	gaps := make([]SkillGapCount, 0, len(gapOrder))
	for _, skill := range gapOrder {
		gaps = append(gaps, SkillGapCount{Skill: skill, Count: gapCounts[skill]})
	}

	divisor := total
	if divisor < 1 {
		divisor = 1
	}

	s := &Summary{
		TotalApplications: total,
		AverageScore:      average,
		CommonSkillGaps:   gaps,
		Progress: Progress{
			SkillImprovementRate: float64(len(gaps)) / float64(divisor),
			FeedbackQuality:      average / 10.0,
			LearningConsistency:  min(float64(total)/5.0, 1.0),
		},
	}

	if average < 6 {
		s.Recommendations = append(s.Recommendations, "Focus on improving core technical skills")
	}
	if len(gaps) > 3 {
		s.Recommendations = append(s.Recommendations, "Consider taking comprehensive skill development courses")
	}
	if total < 3 {
		s.Recommendations = append(s.Recommendations, "Apply to more internships to get more feedback")
	}

	return s, nil
}
