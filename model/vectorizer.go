package model

import (
	"math"
	"sort"
	"strings"

	"github.com/swiftlab/routing/conf"
)

// Vectorizer turns message text into fixed-length feature vectors
// using character n-grams drawn from within word boundaries: each
// whitespace-separated token is padded with spaces before the n-grams
// are extracted. Vocabulary is fixed at fit time, keeping the most
// frequent n-grams up to MaxFeatures.
type Vectorizer struct {
	Kind        string         `json:"kind"`
	NGramMin    int            `json:"ngram_min"`
	NGramMax    int            `json:"ngram_max"`
	MaxFeatures int            `json:"max_features"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf,omitempty"`
}

func NewVectorizer(cfg conf.FeatureExtraction) *Vectorizer {
	return &Vectorizer{
		Kind:        cfg.Vectorizer,
		NGramMin:    cfg.NGramMin,
		NGramMax:    cfg.NGramMax,
		MaxFeatures: cfg.MaxFeatures,
	}
}

func (v *Vectorizer) Fitted() bool {
	return v.Vocabulary != nil
}

func (v *Vectorizer) analyze(text string) []string {
	var grams []string

	for _, token := range strings.Fields(text) {
		padded := " " + token + " "
		runes := []rune(padded)

		for n := v.NGramMin; n <= v.NGramMax; n++ {
			if n > len(runes) {
				break
			}
			for i := 0; i+n <= len(runes); i++ {
				grams = append(grams, string(runes[i:i+n]))
			}
		}
	}

	return grams
}

// Fit builds the vocabulary and, for tf-idf, the IDF weights.
func (v *Vectorizer) Fit(docs []string) {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, gram := range v.analyze(doc) {
			termFreq[gram]++
			seen[gram] = struct{}{}
		}
		for gram := range seen {
			docFreq[gram]++
		}
	}

	grams := make([]string, 0, len(termFreq))
	for gram := range termFreq {
		grams = append(grams, gram)
	}

	// Most frequent first; ties resolve alphabetically so the
	// vocabulary is stable.
	sort.Slice(grams, func(i, j int) bool {
		if termFreq[grams[i]] != termFreq[grams[j]] {
			return termFreq[grams[i]] > termFreq[grams[j]]
		}
		return grams[i] < grams[j]
	})

	if len(grams) > v.MaxFeatures {
		grams = grams[:v.MaxFeatures]
	}
	sort.Strings(grams)

	v.Vocabulary = make(map[string]int, len(grams))
	for i, gram := range grams {
		v.Vocabulary[gram] = i
	}

	if v.Kind == "tfidf" {
		n := float64(len(docs))
		v.IDF = make([]float64, len(grams))
		for gram, i := range v.Vocabulary {
			df := float64(docFreq[gram])
			v.IDF[i] = math.Log((1+n)/(1+df)) + 1
		}
	}
}

// Transform maps one document onto the fitted vocabulary. For tf-idf
// the vector is IDF-weighted and L2-normalized.
func (v *Vectorizer) Transform(doc string) []float64 {
	x := make([]float64, len(v.Vocabulary))
	for _, gram := range v.analyze(doc) {
		if i, ok := v.Vocabulary[gram]; ok {
			x[i]++
		}
	}

	if v.Kind != "tfidf" {
		return x
	}

	var norm float64
	for i := range x {
		x[i] *= v.IDF[i]
		norm += x[i] * x[i]
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range x {
			x[i] /= norm
		}
	}

	return x
}

func (v *Vectorizer) TransformAll(docs []string) [][]float64 {
	xs := make([][]float64, len(docs))
	for i, doc := range docs {
		xs[i] = v.Transform(doc)
	}
	return xs
}
