package optim

import "math"

// Adam keeps bias-corrected first and second moment estimates per
// parameter. The moment buffers are sized on the first Step.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t    int
	m, v []float64
}

func NewAdam(lr float64) *Adam {
	return &Adam{LearningRate: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

func (o *Adam) Step(weights, grads []float64) {
	if o.m == nil {
		o.m = make([]float64, len(weights))
		o.v = make([]float64, len(weights))
	}
	o.t++
	lr := o.LearningRate * math.Sqrt(1-math.Pow(o.Beta2, float64(o.t))) / (1 - math.Pow(o.Beta1, float64(o.t)))
	for i, g := range grads {
		o.m[i] = o.Beta1*o.m[i] + (1-o.Beta1)*g
		o.v[i] = o.Beta2*o.v[i] + (1-o.Beta2)*g*g
		weights[i] -= lr * o.m[i] / (math.Sqrt(o.v[i]) + o.Epsilon)
	}
}

// Steps returns how many updates have been applied.
func (o *Adam) Steps() int { return o.t }
