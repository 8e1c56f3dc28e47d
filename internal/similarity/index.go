// Package similarity provides a TF-IDF vector index over catalog text.
//
// An index is fitted once per catalog load and is read-only afterwards, so it
// can be shared across concurrent queries without locking. The vocabulary is
// capped at 1000 unigram/bigram terms chosen by corpus frequency, English
// stop-words are removed, and scores are cosine similarities over
// L2-normalised vectors with smoothed inverse document frequency.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	maxVocabulary = 1000
	minTokenRunes = 2
)

// Hit is one query result: a document position in the fitted corpus and its
// cosine similarity to the query.
type Hit struct {
	Doc   int
	Score float64
}

// Index is a fitted TF-IDF vector space.
type Index struct {
	vocabulary map[string]int
	idf        []float64
	docs       []map[int]float64 // L2-normalised sparse vectors
}

// Build fits an index over the provided document texts. Building is the
// expensive step; queries only vectorize the query text.
func Build(texts []string) *Index {
	tokenized := make([][]string, len(texts))
	for i, text := range texts {
		tokenized[i] = terms(text)
	}

	idx := &Index{vocabulary: fitVocabulary(tokenized)}
	idx.fitIDF(tokenized)

	idx.docs = make([]map[int]float64, len(tokenized))
	for i, doc := range tokenized {
		idx.docs[i] = idx.vectorize(doc)
	}

	return idx
}

// Len returns the number of fitted documents.
func (idx *Index) Len() int { return len(idx.docs) }

// VocabularySize returns the number of terms in the fitted vocabulary.
func (idx *Index) VocabularySize() int { return len(idx.vocabulary) }

// Query returns up to topK documents by descending cosine similarity to the
// query text, ties broken by document insertion order. Out-of-vocabulary
// terms are ignored; a query with no known terms scores 0 against every
// document, which is a valid (if useless) result rather than an error.
func (idx *Index) Query(text string, topK int) []Hit {
	if topK <= 0 || len(idx.docs) == 0 {
		return nil
	}

	qv := idx.vectorize(terms(text))

	hits := make([]Hit, len(idx.docs))
	for i, doc := range idx.docs {
		hits[i] = Hit{Doc: i, Score: dot(qv, doc)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}

// terms produces the unigram and bigram term stream for a text: lower-cased
// alphanumeric tokens with stop-words removed, bigrams joined by a space.
func terms(text string) []string {
	tokens := tokenize(text)

	out := make([]string, 0, len(tokens)*2)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < minTokenRunes {
			continue
		}
		if _, stop := stopwords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// fitVocabulary keeps the maxVocabulary most frequent terms across the
// corpus, breaking count ties alphabetically so fitting is deterministic.
func fitVocabulary(docs [][]string) map[string]int {
	counts := make(map[string]int)
	for _, doc := range docs {
		for _, term := range doc {
			counts[term]++
		}
	}

	ordered := make([]string, 0, len(counts))
	for term := range counts {
		ordered = append(ordered, term)
	}
	sort.Slice(ordered, func(a, b int) bool {
		if counts[ordered[a]] != counts[ordered[b]] {
			return counts[ordered[a]] > counts[ordered[b]]
		}
		return ordered[a] < ordered[b]
	})

	if len(ordered) > maxVocabulary {
		ordered = ordered[:maxVocabulary]
	}

	vocab := make(map[string]int, len(ordered))
	for i, term := range ordered {
		vocab[term] = i
	}
	return vocab
}

// fitIDF computes smoothed inverse document frequency:
// idf(t) = ln((1+n)/(1+df(t))) + 1.
func (idx *Index) fitIDF(docs [][]string) {
	df := make([]int, len(idx.vocabulary))
	for _, doc := range docs {
		seen := make(map[int]struct{}, len(doc))
		for _, term := range doc {
			if t, ok := idx.vocabulary[term]; ok {
				seen[t] = struct{}{}
			}
		}
		for t := range seen {
			df[t]++
		}
	}

	n := float64(len(docs))
	idx.idf = make([]float64, len(df))
	for t, count := range df {
		idx.idf[t] = math.Log((1+n)/(1+float64(count))) + 1
	}
}

// vectorize builds the L2-normalised TF-IDF vector of a term stream.
func (idx *Index) vectorize(doc []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, term := range doc {
		if t, ok := idx.vocabulary[term]; ok {
			vec[t]++
		}
	}

	var norm float64
	for t, tf := range vec {
		w := tf * idx.idf[t]
		vec[t] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}

	norm = math.Sqrt(norm)
	for t := range vec {
		vec[t] /= norm
	}
	return vec
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for t, w := range a {
		sum += w * b[t]
	}
	return sum
}
