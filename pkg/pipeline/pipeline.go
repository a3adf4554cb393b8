package pipeline

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Transformer learns from a matrix in Fit and applies what it learned in
// Transform.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// Pipeline chains multiple transformers. Each step is fit on the output of
// the previous one.
type Pipeline struct {
	steps []Transformer
}

func NewPipeline(steps ...Transformer) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Fit(X mat.Matrix) error {
	_, err := p.FitTransform(X)
	return err
}

func (p *Pipeline) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	out := mat.DenseCopyOf(X)
	for i, step := range p.steps {
		if err := step.Fit(out); err != nil {
			return nil, fmt.Errorf("pipeline: fit step %d: %w", i, err)
		}
		next, err := step.Transform(out)
		if err != nil {
			return nil, fmt.Errorf("pipeline: transform step %d: %w", i, err)
		}
		out = next
	}
	return out, nil
}

func (p *Pipeline) Transform(X mat.Matrix) (*mat.Dense, error) {
	out := mat.DenseCopyOf(X)
	for i, step := range p.steps {
		next, err := step.Transform(out)
		if err != nil {
			return nil, fmt.Errorf("pipeline: transform step %d: %w", i, err)
		}
		out = next
	}
	return out, nil
}

// Stage is one named step of a run.
type Stage struct {
	Name string
	Run  func(ctx context.Context, st *State) error
}

// RunStages executes stages in order. It stops at the first error or when
// ctx is done, and records every stage's wall time.
func RunStages(ctx context.Context, st *State, stages ...Stage) error {
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		start := time.Now()
		st.Logger.Info("stage started", "stage", s.Name)
		if err := s.Run(ctx, st); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		elapsed := time.Since(start)
		st.Metrics.ObserveStage(s.Name, elapsed)
		st.Logger.Info("stage finished", "stage", s.Name, "duration", elapsed)
	}
	return nil
}
