package classifier

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// topTokenCount is how many contributing tokens a prediction reports.
const topTokenCount = 5

// Pipeline is the primary statistical classifier: TF-IDF vectorizer, linear
// model and label encoder, persisted and loaded as three artifacts.
//
// A fitted Pipeline is safe for concurrent reads. PartialFit mutates weights
// in place; callers that share a Pipeline across goroutines must apply
// incremental updates to a Clone and publish the clone instead.
type Pipeline struct {
	vec         *Vectorizer
	clf         *linearModel
	labels      *labelEncoder
	maxFeatures int
	fitted      bool
}

// NewPipeline creates an unfitted pipeline with the default vocabulary cap.
func NewPipeline() *Pipeline {
	return &Pipeline{maxFeatures: DefaultMaxFeatures}
}

// Fitted reports whether the pipeline has been fitted or loaded.
func (p *Pipeline) Fitted() bool {
	return p.fitted
}

// Labels returns the ordered label set, or nil before fit/load.
func (p *Pipeline) Labels() []string {
	if p.labels == nil {
		return nil
	}
	return p.labels.Classes()
}

// Fit replaces the vectorizer vocabulary and trains a fresh classifier and
// label encoder from scratch over exactly the labels observed in this call.
func (p *Pipeline) Fit(texts, labels []string) error {
	if len(texts) != len(labels) {
		return common.ErrSampleLengthMismatch
	}
	if len(texts) == 0 {
		return common.ErrNoSamples
	}

	le := fitLabels(labels)
	if len(le.Classes()) < 2 {
		return common.ErrTooFewClasses
	}

	vec := NewVectorizer(p.maxFeatures)
	vectors := vec.FitTransform(texts)
	if vec.NumFeatures() == 0 {
		return common.ErrNoFeatures
	}

	encoded := make([]int, len(labels))
	for i, l := range labels {
		encoded[i], _ = le.transform(l)
	}

	clf := newLinearModel(len(le.Classes()), vec.NumFeatures())
	clf.fit(vectors, encoded)

	p.vec = vec
	p.clf = clf
	p.labels = le
	p.fitted = true
	return nil
}

// Predict classifies texts. Confidence is the maximum class probability.
func (p *Pipeline) Predict(texts []string) ([]model.ClassifierOutput, error) {
	if !p.fitted {
		return nil, common.ErrModelNotReady
	}

	classes := p.labels.Classes()
	outputs := make([]model.ClassifierOutput, len(texts))
	for i, vec := range p.vec.Transform(texts) {
		probs := p.clf.probabilities(vec)

		best := 0
		for c := range probs {
			if probs[c] > probs[best] {
				best = c
			}
		}

		probMap := make(map[string]float64, len(classes))
		for c, label := range classes {
			probMap[label] = probs[c]
		}

		outputs[i] = model.ClassifierOutput{
			Label:      p.labels.inverse(best),
			Confidence: probs[best],
			Probs:      probMap,
			TopTokens:  p.topTokens(vec, best),
		}
	}
	return outputs, nil
}

// topTokens ranks the features of one input by their contribution to the
// winning class score (weight times TF-IDF value), keeping positive ones.
func (p *Pipeline) topTokens(vec []float64, class int) []model.TokenScore {
	terms := p.vec.InverseVocabulary()
	var scored []model.TokenScore
	for j, value := range vec {
		if value == 0 {
			continue
		}
		score := p.clf.classWeight(class, j) * value
		if score <= 0 {
			continue
		}
		scored = append(scored, model.TokenScore{Token: terms[j], Score: score})
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

// PartialFit applies online gradient updates for the given samples. Samples
// whose label is not already in the label set are discarded, never learned:
// the model's output dimensionality is fixed at fit time and a new label
// requires a full retrain. Returns the number of samples actually applied.
func (p *Pipeline) PartialFit(texts, labels []string) (int, error) {
	if !p.fitted {
		return 0, common.ErrModelNotReady
	}
	if len(texts) != len(labels) {
		return 0, common.ErrSampleLengthMismatch
	}

	var keptTexts []string
	var keptClasses []int
	for i, label := range labels {
		if class, ok := p.labels.transform(label); ok {
			keptTexts = append(keptTexts, texts[i])
			keptClasses = append(keptClasses, class)
		}
	}
	if len(keptTexts) == 0 {
		return 0, nil
	}

	for i, vec := range p.vec.Transform(keptTexts) {
		p.clf.update(vec, keptClasses[i], onlineLearningRate)
	}
	return len(keptTexts), nil
}

// Clone returns a deep copy sharing no mutable state with the original.
func (p *Pipeline) Clone() *Pipeline {
	if !p.fitted {
		return NewPipeline()
	}

	vec := &Vectorizer{
		Vocabulary:  make(map[string]int, len(p.vec.Vocabulary)),
		IDF:         make([]float64, len(p.vec.IDF)),
		MaxFeatures: p.vec.MaxFeatures,
	}
	for term, idx := range p.vec.Vocabulary {
		vec.Vocabulary[term] = idx
	}
	copy(vec.IDF, p.vec.IDF)

	return &Pipeline{
		vec:         vec,
		clf:         p.clf.clone(),
		labels:      encoderFromClasses(p.labels.Classes()),
		maxFeatures: p.maxFeatures,
		fitted:      true,
	}
}

// Save persists the three artifacts under dir. Each artifact is written via
// temp file and rename; Load detects any cross-artifact inconsistency a
// mid-save crash could leave behind.
func (p *Pipeline) Save(dir string) error {
	if !p.fitted {
		return common.ErrModelNotReady
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	if err := saveGob(artifactPath(dir, vectorizerArtifact), p.vec); err != nil {
		return err
	}
	if err := saveGob(artifactPath(dir, modelArtifact), p.clf.state()); err != nil {
		return err
	}
	return saveGob(artifactPath(dir, labelsArtifact), p.labels.Classes())
}

// Load restores a pipeline from dir. It fails loudly if any artifact is
// absent or the artifacts disagree on dimensions or label count, rather than
// partially initializing.
func (p *Pipeline) Load(dir string) error {
	var vec Vectorizer
	if err := loadGob(artifactPath(dir, vectorizerArtifact), &vec); err != nil {
		return err
	}

	var state linearModelState
	if err := loadGob(artifactPath(dir, modelArtifact), &state); err != nil {
		return err
	}

	var classes []string
	if err := loadGob(artifactPath(dir, labelsArtifact), &classes); err != nil {
		return err
	}

	if len(vec.Vocabulary) != len(vec.IDF) {
		return fmt.Errorf("%w: vectorizer vocabulary and IDF weights disagree", common.ErrModelCorrupted)
	}
	if state.Cols != len(vec.IDF) {
		return fmt.Errorf("%w: model expects %d features, vectorizer has %d",
			common.ErrModelCorrupted, state.Cols, len(vec.IDF))
	}
	if state.Rows != len(classes) {
		return fmt.Errorf("%w: model has %d classes, label encoder has %d",
			common.ErrModelCorrupted, state.Rows, len(classes))
	}

	p.vec = &vec
	p.clf = modelFromState(state)
	p.labels = encoderFromClasses(classes)
	p.fitted = true
	return nil
}

func artifactPath(dir, name string) string {
	return filepath.Join(dir, name)
}
