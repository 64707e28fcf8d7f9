package classifier

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/jbrukh/bayesian"
	"gonum.org/v1/gonum/floats"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// bayesArtifact is the single persisted artifact of the secondary model.
const bayesArtifact = "classifier.gob"

// BayesModel is the secondary, lighter-weight classifier: a naive Bayes model
// over whitespace tokens. Like the primary pipeline, its class set is fixed
// at construction; unknown labels are rejected on incremental updates.
type BayesModel struct {
	clf *bayesian.Classifier
}

// TrainBayes builds a naive Bayes model over the unique labels in the
// training set and learns every sample.
func TrainBayes(texts, labels []string) (*BayesModel, error) {
	if len(texts) != len(labels) {
		return nil, common.ErrSampleLengthMismatch
	}
	if len(texts) == 0 {
		return nil, common.ErrNoSamples
	}

	seen := make(map[string]bool, len(labels))
	var classes []bayesian.Class
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, bayesian.Class(l))
		}
	}
	if len(classes) < 2 {
		return nil, common.ErrTooFewClasses
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	b := &BayesModel{clf: bayesian.NewClassifier(classes...)}
	for i, text := range texts {
		b.clf.Learn(Tokenize(text), bayesian.Class(labels[i]))
	}
	return b, nil
}

// LoadBayes restores the secondary model from dir.
func LoadBayes(dir string) (*BayesModel, error) {
	clf, err := bayesian.NewClassifierFromFile(filepath.Join(dir, bayesArtifact))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: missing artifact %s", common.ErrModelCorrupted, bayesArtifact)
		}
		return nil, fmt.Errorf("%w: failed to load %s: %v", common.ErrModelCorrupted, bayesArtifact, err)
	}
	return &BayesModel{clf: clf}, nil
}

// Labels returns the ordered label set.
func (b *BayesModel) Labels() []string {
	out := make([]string, len(b.clf.Classes))
	for i, c := range b.clf.Classes {
		out[i] = string(c)
	}
	return out
}

// Predict classifies texts. Confidence is the winning class probability.
func (b *BayesModel) Predict(texts []string) []model.ClassifierOutput {
	outputs := make([]model.ClassifierOutput, len(texts))
	for i, text := range texts {
		doc := Tokenize(text)
		logScores, best, _ := b.clf.LogScores(doc)
		scores := posterior(logScores)

		probMap := make(map[string]float64, len(b.clf.Classes))
		for c, class := range b.clf.Classes {
			probMap[string(class)] = scores[c]
		}

		outputs[i] = model.ClassifierOutput{
			Label:      string(b.clf.Classes[best]),
			Confidence: scores[best],
			Probs:      probMap,
			TopTokens:  b.topTokens(doc, best),
		}
	}
	return outputs
}

// posterior converts log scores into a probability distribution. ProbScores
// underflows to NaN on long documents, so normalization stays in log space.
func posterior(logScores []float64) []float64 {
	probs := make([]float64, len(logScores))
	max := floats.Max(logScores)
	for i, s := range logScores {
		probs[i] = math.Exp(s - max)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// topTokens ranks the document's tokens by their conditional frequency under
// the winning class.
func (b *BayesModel) topTokens(doc []string, class int) []model.TokenScore {
	if len(doc) == 0 {
		return nil
	}
	freq := b.clf.WordFrequencies(doc)

	seen := make(map[string]bool, len(doc))
	var scored []model.TokenScore
	for j, tok := range doc {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		scored = append(scored, model.TokenScore{Token: tok, Score: freq[class][j]})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Token < scored[j].Token
	})
	if len(scored) > topTokenCount {
		scored = scored[:topTokenCount]
	}
	return scored
}

// Learn applies incremental updates, discarding samples whose label is not in
// the class set. Returns the number of samples applied.
func (b *BayesModel) Learn(texts, labels []string) (int, error) {
	if len(texts) != len(labels) {
		return 0, common.ErrSampleLengthMismatch
	}

	known := make(map[string]bool, len(b.clf.Classes))
	for _, c := range b.clf.Classes {
		known[string(c)] = true
	}

	applied := 0
	for i, text := range texts {
		if !known[labels[i]] {
			continue
		}
		b.clf.Learn(Tokenize(text), bayesian.Class(labels[i]))
		applied++
	}
	return applied, nil
}

// Save persists the model under dir via temp file and rename.
func (b *BayesModel) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	path := filepath.Join(dir, bayesArtifact)
	tmp := path + ".tmp"
	if err := b.clf.WriteToFile(tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", bayesArtifact, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", bayesArtifact, err)
	}
	return nil
}
