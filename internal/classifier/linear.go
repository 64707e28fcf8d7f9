package classifier

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Training hyperparameters. The online rate is smaller than the batch rate so
// a single correction nudges rather than overwrites the fitted weights.
const (
	defaultEpochs      = 25
	batchLearningRate  = 0.5
	onlineLearningRate = 0.1
	shuffleSeed        = 42
)

// linearModel is a multinomial logistic regression classifier trained with
// stochastic gradient descent on log loss. Output dimensionality is fixed at
// construction; a new class requires a fresh model.
type linearModel struct {
	weights *mat.Dense // numClasses x numFeatures
	bias    []float64
	classes int
}

func newLinearModel(numClasses, numFeatures int) *linearModel {
	return &linearModel{
		weights: mat.NewDense(numClasses, numFeatures, nil),
		bias:    make([]float64, numClasses),
		classes: numClasses,
	}
}

// fit runs SGD over the full dataset. The shuffle is seeded so training is
// deterministic for identical inputs.
func (m *linearModel) fit(vectors [][]float64, labels []int) {
	rng := rand.New(rand.NewSource(shuffleSeed))
	order := make([]int, len(vectors))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < defaultEpochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		lr := batchLearningRate / (1 + float64(epoch))
		for _, idx := range order {
			m.update(vectors[idx], labels[idx], lr)
		}
	}
}

// update applies one gradient step for a single sample.
func (m *linearModel) update(x []float64, label int, lr float64) {
	probs := m.probabilities(x)
	for c := 0; c < m.classes; c++ {
		grad := probs[c]
		if c == label {
			grad -= 1
		}
		if grad == 0 {
			continue
		}
		row := m.weights.RawRowView(c)
		floats.AddScaled(row, -lr*grad, x)
		m.bias[c] -= lr * grad
	}
}

// decision returns the raw per-class scores W*x + b.
func (m *linearModel) decision(x []float64) []float64 {
	scores := make([]float64, m.classes)
	for c := 0; c < m.classes; c++ {
		scores[c] = floats.Dot(m.weights.RawRowView(c), x) + m.bias[c]
	}
	return scores
}

// probabilities converts decision scores into a probability distribution via
// a numerically stable softmax.
func (m *linearModel) probabilities(x []float64) []float64 {
	scores := m.decision(x)
	max := floats.Max(scores)
	for i, s := range scores {
		scores[i] = math.Exp(s - max)
	}
	floats.Scale(1/floats.Sum(scores), scores)
	return scores
}

// numFeatures returns the input dimensionality the model was built for.
func (m *linearModel) numFeatures() int {
	_, cols := m.weights.Dims()
	return cols
}

// classWeight returns the weight of one feature for one class.
func (m *linearModel) classWeight(class, feature int) float64 {
	return m.weights.At(class, feature)
}

// clone deep-copies the model so online updates never touch a snapshot a
// concurrent reader may hold.
func (m *linearModel) clone() *linearModel {
	c := &linearModel{
		weights: mat.DenseCopyOf(m.weights),
		bias:    make([]float64, len(m.bias)),
		classes: m.classes,
	}
	copy(c.bias, m.bias)
	return c
}

// linearModelState is the serializable form of linearModel. mat.Dense has no
// exported fields, so persistence goes through this flat representation.
type linearModelState struct {
	Data []float64
	Bias []float64
	Rows int
	Cols int
}

func (m *linearModel) state() linearModelState {
	rows, cols := m.weights.Dims()
	data := make([]float64, rows*cols)
	copy(data, m.weights.RawMatrix().Data)
	bias := make([]float64, len(m.bias))
	copy(bias, m.bias)
	return linearModelState{Rows: rows, Cols: cols, Data: data, Bias: bias}
}

func modelFromState(s linearModelState) *linearModel {
	return &linearModel{
		weights: mat.NewDense(s.Rows, s.Cols, s.Data),
		bias:    s.Bias,
		classes: s.Rows,
	}
}
