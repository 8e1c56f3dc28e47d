package similarity

import (
	"fmt"
	"testing"
)

func buildFixture() *Index {
	return Build([]string{
		"Data Science Intern Python Machine Learning SQL",
		"Marketing Intern social media campaigns branding",
		"Backend Developer Intern Go Python microservices",
		"Accounting Intern bookkeeping Tally Excel",
	})
}

func TestQueryRanksClosestFirst(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	hits := idx.Query("Python machine learning data analysis", 4)
	if len(hits) != 4 {
		t.Fatalf("expected 4 hits, got %d", len(hits))
	}

	if hits[0].Doc != 0 {
		t.Fatalf("expected data science posting first, got doc %d", hits[0].Doc)
	}

	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("hits not sorted descending at %d: %v > %v", i, hits[i].Score, hits[i-1].Score)
		}
	}
}

func TestQueryScoreBounds(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	for _, hit := range idx.Query("python intern marketing accounting go", 10) {
		if hit.Score < 0 || hit.Score > 1+1e-9 {
			t.Fatalf("score out of [0,1]: %v", hit.Score)
		}
	}
}

func TestQueryHonorsTopK(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	tests := []struct {
		topK   int
		expect int
	}{
		{topK: 0, expect: 0},
		{topK: 2, expect: 2},
		{topK: 4, expect: 4},
		{topK: 50, expect: 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("topK=%d", tt.topK), func(t *testing.T) {
			if got := len(idx.Query("intern", tt.topK)); got != tt.expect {
				t.Fatalf("expected %d hits, got %d", tt.expect, got)
			}
		})
	}
}

func TestQueryAllStopwords(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	hits := idx.Query("the and of a", 4)
	if len(hits) != 4 {
		t.Fatalf("degenerate query must still return hits, got %d", len(hits))
	}

	for _, hit := range hits {
		if hit.Score != 0 {
			t.Fatalf("expected zero similarity for stop-word query, got %v", hit.Score)
		}
	}

	// Zero scores everywhere: ties must follow insertion order.
	for i, hit := range hits {
		if hit.Doc != i {
			t.Fatalf("tie at position %d broken out of insertion order: doc %d", i, hit.Doc)
		}
	}
}

func TestQueryIgnoresUnknownTerms(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	with := idx.Query("python", 1)
	withNoise := idx.Query("python zzzunseenterm", 1)

	if len(with) != 1 || len(withNoise) != 1 {
		t.Fatal("expected one hit from both queries")
	}
	if with[0].Doc != withNoise[0].Doc {
		t.Fatalf("unknown term changed the top hit: %d vs %d", with[0].Doc, withNoise[0].Doc)
	}
}

func TestVocabularyCap(t *testing.T) {
	t.Parallel()

	docs := make([]string, 60)
	for i := range docs {
		text := ""
		for j := 0; j < 30; j++ {
			text += fmt.Sprintf("term%d%d ", i, j)
		}
		docs[i] = text
	}

	idx := Build(docs)
	if idx.VocabularySize() > maxVocabulary {
		t.Fatalf("vocabulary exceeds cap: %d", idx.VocabularySize())
	}
}

func TestEmptyCorpus(t *testing.T) {
	t.Parallel()

	idx := Build(nil)
	if hits := idx.Query("anything", 5); hits != nil {
		t.Fatalf("expected no hits on empty corpus, got %v", hits)
	}
}

func TestBigramsInfluenceMatching(t *testing.T) {
	t.Parallel()

	idx := Build([]string{
		"machine learning research",
		"learning machine operation heavy equipment",
	})

	hits := idx.Query("machine learning", 2)
	if hits[0].Doc != 0 {
		t.Fatalf("expected bigram match to rank doc 0 first, got %d", hits[0].Doc)
	}
}
