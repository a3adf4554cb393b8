package NeuralNetwork

import (
	"fmt"
	"math"
)

// Activation is an element-wise hidden-layer function. Derivative is
// expressed in terms of the activation output, which is what the backward
// pass keeps around.
type Activation struct {
	Name       string
	F          func(x float64) float64
	Derivative func(out float64) float64
}

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

var (
	ReLUActivation = Activation{
		Name: "relu",
		F:    ReLU,
		Derivative: func(out float64) float64 {
			if out > 0 {
				return 1
			}
			return 0
		},
	}
	LogisticActivation = Activation{
		Name:       "logistic",
		F:          Sigmoid,
		Derivative: func(out float64) float64 { return out * (1 - out) },
	}
	TanhActivation = Activation{
		Name:       "tanh",
		F:          math.Tanh,
		Derivative: func(out float64) float64 { return 1 - out*out },
	}
	IdentityActivation = Activation{
		Name:       "identity",
		F:          func(x float64) float64 { return x },
		Derivative: func(float64) float64 { return 1 },
	}
)

// Lookup returns the activation registered under name.
func Lookup(name string) (Activation, error) {
	switch name {
	case "relu":
		return ReLUActivation, nil
	case "logistic":
		return LogisticActivation, nil
	case "tanh":
		return TanhActivation, nil
	case "identity":
		return IdentityActivation, nil
	}
	return Activation{}, fmt.Errorf("NeuralNetwork: unknown activation %q", name)
}
