package optim

// Optimizer updates a flat parameter vector in place from its gradient.
type Optimizer interface {
	Step(weights, grads []float64)
}

// Stochastic Gradient Descent optimizer with a fixed learning rate.
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

func (o *SGD) Step(weights, grads []float64) {
	for i := range weights {
		weights[i] -= o.LearningRate * grads[i]
	}
}
