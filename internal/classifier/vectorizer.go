// Package classifier implements the statistical text classifiers: a TF-IDF
// vectorizer feeding a multinomial logistic model trained by online gradient
// descent, and a lighter-weight naive Bayes model.
package classifier

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultMaxFeatures caps the vectorizer vocabulary size.
const DefaultMaxFeatures = 5000

// tokenPattern matches word tokens of at least two characters.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Vectorizer converts text into L2-normalized TF-IDF feature vectors. The
// vocabulary and IDF weights are fixed at fit time.
type Vectorizer struct {
	Vocabulary  map[string]int
	IDF         []float64
	MaxFeatures int
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Vectorizer{MaxFeatures: maxFeatures}
}

// Tokenize splits text into lowercase word tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// FitTransform learns the vocabulary and IDF weights from texts and returns
// their feature vectors.
func (v *Vectorizer) FitTransform(texts []string) [][]float64 {
	termCount := make(map[string]int)
	docFreq := make(map[string]int)

	tokenized := make([][]string, len(texts))
	for i, text := range texts {
		tokens := Tokenize(text)
		tokenized[i] = tokens

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			termCount[tok]++
			if !seen[tok] {
				docFreq[tok]++
				seen[tok] = true
			}
		}
	}

	terms := make([]string, 0, len(termCount))
	for term := range termCount {
		terms = append(terms, term)
	}
	// Keep the most frequent terms; ties resolve alphabetically.
	sort.Slice(terms, func(i, j int) bool {
		if termCount[terms[i]] != termCount[terms[j]] {
			return termCount[terms[i]] > termCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	n := float64(len(texts))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// Smoothed IDF, so unseen document frequencies never divide by zero.
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([][]float64, len(texts))
	for i, tokens := range tokenized {
		vectors[i] = v.vectorize(tokens)
	}
	return vectors
}

// Transform converts texts into feature vectors using the fitted vocabulary.
func (v *Vectorizer) Transform(texts []string) [][]float64 {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = v.vectorize(Tokenize(text))
	}
	return vectors
}

func (v *Vectorizer) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, tok := range tokens {
		if idx, ok := v.Vocabulary[tok]; ok {
			vec[idx] += v.IDF[idx]
		}
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// NumFeatures returns the dimensionality of the fitted feature space.
func (v *Vectorizer) NumFeatures() int {
	return len(v.IDF)
}

// InverseVocabulary returns the term for each feature index.
func (v *Vectorizer) InverseVocabulary() []string {
	terms := make([]string, len(v.IDF))
	for term, idx := range v.Vocabulary {
		terms[idx] = term
	}
	return terms
}
