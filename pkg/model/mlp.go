package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	nn "salesclass/pkg/NeuralNetwork"
	"salesclass/pkg/data"
	"salesclass/pkg/loader"
	"salesclass/pkg/optim"
)

// MLPClassifier is a fully connected feed-forward network with a softmax
// output layer trained on cross-entropy with an L2 penalty.
//
// Training runs minibatch epochs over a reshuffled row order. It stops
// once the epoch loss has failed to improve by Tol for more than
// NIterNoChange consecutive epochs, or after MaxIter epochs.
type MLPClassifier struct {
	HiddenLayers  []int
	Activation    string // relu, logistic, tanh or identity
	Solver        string // adam or sgd
	LearningRate  float64
	Alpha         float64 // L2 penalty
	BatchSize     int     // 0 => min(200, n)
	MaxIter       int
	Tol           float64
	NIterNoChange int
	RandomState   int64
	Logger        *slog.Logger

	LossCurve []float64
	NIter     int
	Converged bool

	classes  []int
	classPos map[int]int
	act      nn.Activation
	params   []float64
	grads    []float64
	weights  []*mat.Dense
	biases   [][]float64
	gWeights []*mat.Dense
	gBiases  [][]float64
}

// MLPOption configures an MLPClassifier.
type MLPOption func(*MLPClassifier)

func WithHiddenLayers(sizes ...int) MLPOption {
	return func(m *MLPClassifier) { m.HiddenLayers = append([]int(nil), sizes...) }
}
func WithActivation(name string) MLPOption { return func(m *MLPClassifier) { m.Activation = name } }
func WithSolver(name string) MLPOption     { return func(m *MLPClassifier) { m.Solver = name } }
func WithLearningRate(lr float64) MLPOption {
	return func(m *MLPClassifier) { m.LearningRate = lr }
}
func WithAlpha(a float64) MLPOption     { return func(m *MLPClassifier) { m.Alpha = a } }
func WithBatchSize(n int) MLPOption     { return func(m *MLPClassifier) { m.BatchSize = n } }
func WithMaxIter(n int) MLPOption       { return func(m *MLPClassifier) { m.MaxIter = n } }
func WithTol(tol float64) MLPOption     { return func(m *MLPClassifier) { m.Tol = tol } }
func WithNIterNoChange(n int) MLPOption { return func(m *MLPClassifier) { m.NIterNoChange = n } }
func WithMLPRandomState(seed int64) MLPOption {
	return func(m *MLPClassifier) { m.RandomState = seed }
}
func WithLogger(l *slog.Logger) MLPOption { return func(m *MLPClassifier) { m.Logger = l } }

// NewMLPClassifier returns a network with one hidden layer of 100 ReLU
// units trained by Adam.
func NewMLPClassifier(opts ...MLPOption) *MLPClassifier {
	m := &MLPClassifier{
		HiddenLayers:  []int{100},
		Activation:    "relu",
		Solver:        "adam",
		LearningRate:  1e-3,
		Alpha:         1e-4,
		MaxIter:       500,
		Tol:           1e-4,
		NIterNoChange: 10,
		RandomState:   42,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Classes returns the sorted labels seen during Fit; output column j of
// PredictProba belongs to Classes()[j].
func (m *MLPClassifier) Classes() []int { return m.classes }

// Fit trains the network from scratch.
func (m *MLPClassifier) Fit(X *mat.Dense, y []int) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	if m.MaxIter <= 0 {
		return errors.New("mlp: max_iter must be positive")
	}
	for _, h := range m.HiddenLayers {
		if h <= 0 {
			return fmt.Errorf("mlp: hidden layer size %d must be positive", h)
		}
	}
	act, err := nn.Lookup(m.Activation)
	if err != nil {
		return err
	}
	m.act = act
	m.classes, m.classPos = uniqueLabels(y)
	if len(m.classes) < 2 {
		return fmt.Errorf("mlp: need at least 2 classes, got %d", len(m.classes))
	}

	var opt optim.Optimizer
	switch m.Solver {
	case "adam":
		opt = optim.NewAdam(m.LearningRate)
	case "sgd":
		opt = optim.NewSGD(m.LearningRate)
	default:
		return fmt.Errorf("mlp: unknown solver %q", m.Solver)
	}

	n, p := X.Dims()
	rnd := rand.New(rand.NewSource(m.RandomState))
	m.initParams(p, rnd)

	batchSize := m.BatchSize
	if batchSize <= 0 {
		batchSize = min(200, n)
	}
	batchSize = min(batchSize, n)

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m.LossCurve = m.LossCurve[:0]
	m.Converged = false
	bestLoss := math.Inf(1)
	noImprovement := 0

	for epoch := 1; epoch <= m.MaxIter; epoch++ {
		batches := make(chan data.Batch)
		data.Batcher(n, batchSize, rnd, batches)

		accum := 0.0
		for b := range batches {
			Xb := loader.Take(X, b.Index)
			yb := make([]int, len(b.Index))
			for k, i := range b.Index {
				yb[k] = m.classPos[y[i]]
			}
			loss := m.backprop(Xb, yb)
			opt.Step(m.params, m.grads)
			accum += loss * float64(len(b.Index))
		}
		loss := accum / float64(n)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return fmt.Errorf("%w: training loss diverged at epoch %d", ErrNonFinite, epoch)
		}
		m.LossCurve = append(m.LossCurve, loss)
		m.NIter = epoch
		logger.Debug("mlp epoch", "epoch", epoch, "loss", loss)

		if loss > bestLoss-m.Tol {
			noImprovement++
		} else {
			noImprovement = 0
		}
		if loss < bestLoss {
			bestLoss = loss
		}
		if noImprovement > m.NIterNoChange {
			m.Converged = true
			logger.Debug("mlp training loss stopped improving",
				"epochs", epoch, "tol", m.Tol, "n_iter_no_change", m.NIterNoChange)
			break
		}
	}
	if !m.Converged {
		logger.Warn("mlp reached max_iter before converging", "max_iter", m.MaxIter, "loss", bestLoss)
	}
	return nil
}

// initParams lays every layer out as W (fanIn x fanOut) followed by b
// (fanOut) inside one flat slice, and fills both with Glorot uniform noise.
func (m *MLPClassifier) initParams(nFeatures int, rnd *rand.Rand) {
	sizes := append(append([]int{nFeatures}, m.HiddenLayers...), len(m.classes))
	total := 0
	for l := 0; l+1 < len(sizes); l++ {
		total += sizes[l]*sizes[l+1] + sizes[l+1]
	}
	m.params = make([]float64, total)
	m.grads = make([]float64, total)
	m.weights = m.weights[:0]
	m.biases = m.biases[:0]
	m.gWeights = m.gWeights[:0]
	m.gBiases = m.gBiases[:0]

	factor := 6.0
	if m.Activation == "logistic" {
		factor = 2.0
	}
	off := 0
	for l := 0; l+1 < len(sizes); l++ {
		fanIn, fanOut := sizes[l], sizes[l+1]
		bound := math.Sqrt(factor / float64(fanIn+fanOut))
		w := fanIn * fanOut

		m.weights = append(m.weights, mat.NewDense(fanIn, fanOut, m.params[off:off+w]))
		m.gWeights = append(m.gWeights, mat.NewDense(fanIn, fanOut, m.grads[off:off+w]))
		m.biases = append(m.biases, m.params[off+w:off+w+fanOut])
		m.gBiases = append(m.gBiases, m.grads[off+w:off+w+fanOut])
		for i := off; i < off+w+fanOut; i++ {
			m.params[i] = (2*rnd.Float64() - 1) * bound
		}
		off += w + fanOut
	}
}

// forward returns the activations of every layer, input included. The last
// entry holds the class probabilities.
func (m *MLPClassifier) forward(X *mat.Dense) []*mat.Dense {
	r, _ := X.Dims()
	acts := make([]*mat.Dense, 0, len(m.weights)+1)
	acts = append(acts, X)
	last := len(m.weights) - 1
	for l, W := range m.weights {
		_, fanOut := W.Dims()
		Z := mat.NewDense(r, fanOut, nil)
		Z.Mul(acts[l], W)
		b := m.biases[l]
		if l == last {
			Z.Apply(func(_, j int, v float64) float64 { return v + b[j] }, Z)
			nn.SoftmaxRows(Z)
		} else {
			f := m.act.F
			Z.Apply(func(_, j int, v float64) float64 { return f(v + b[j]) }, Z)
		}
		acts = append(acts, Z)
	}
	return acts
}

// backprop fills m.grads for the batch (Xb, class positions yb) and
// returns the penalized batch loss.
func (m *MLPClassifier) backprop(Xb *mat.Dense, yb []int) float64 {
	acts := m.forward(Xb)
	P := acts[len(acts)-1]
	bn := float64(len(yb))

	loss := nn.CrossEntropy(yb, P)
	sq := 0.0
	for _, W := range m.weights {
		for _, w := range W.RawMatrix().Data {
			sq += w * w
		}
	}
	loss += 0.5 * m.Alpha * sq / bn

	delta := mat.DenseCopyOf(P)
	for i, c := range yb {
		delta.Set(i, c, delta.At(i, c)-1)
	}

	for l := len(m.weights) - 1; l >= 0; l-- {
		W := m.weights[l]
		gW := m.gWeights[l]
		gW.Mul(acts[l].T(), delta)
		alpha := m.Alpha
		gW.Apply(func(i, j int, v float64) float64 { return (v + alpha*W.At(i, j)) / bn }, gW)

		gb := m.gBiases[l]
		for j := range gb {
			gb[j] = 0
		}
		rows, _ := delta.Dims()
		for i := range rows {
			for j, v := range delta.RawRowView(i) {
				gb[j] += v
			}
		}
		for j := range gb {
			gb[j] /= bn
		}

		if l == 0 {
			break
		}
		fanIn, _ := W.Dims()
		prev := mat.NewDense(rows, fanIn, nil)
		prev.Mul(delta, W.T())
		A := acts[l]
		d := m.act.Derivative
		prev.Apply(func(i, j int, v float64) float64 { return v * d(A.At(i, j)) }, prev)
		delta = prev
	}
	return loss
}

// PredictProba returns the softmax output for each row of X.
func (m *MLPClassifier) PredictProba(X *mat.Dense) (*mat.Dense, error) {
	if len(m.weights) == 0 {
		return nil, ErrNotFitted
	}
	if err := checkFinite(X); err != nil {
		return nil, err
	}
	_, p := X.Dims()
	if in, _ := m.weights[0].Dims(); in != p {
		return nil, fmt.Errorf("mlp: fitted on %d features, got %d", in, p)
	}
	acts := m.forward(X)
	return acts[len(acts)-1], nil
}

// Predict returns the most probable label for each row of X.
func (m *MLPClassifier) Predict(X *mat.Dense) ([]int, error) {
	P, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := P.Dims()
	out := make([]int, r)
	for i := range r {
		row := P.RawRowView(i)
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = m.classes[best]
	}
	return out, nil
}
