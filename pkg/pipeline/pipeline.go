package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Step is one table transformation.
type Step interface {
	Name() string
	Apply(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// Observer is told about every step a Pipeline runs.
type Observer interface {
	StepDone(step string, rows, addedCols int, elapsed time.Duration, err error)
}

// StepFunc adapts a function to Step.
type StepFunc struct {
	StepName string
	Fn       func(dataframe.DataFrame) (dataframe.DataFrame, error)
}

func (s StepFunc) Name() string { return s.StepName }

func (s StepFunc) Apply(df dataframe.DataFrame) (dataframe.DataFrame, error) { return s.Fn(df) }

// Pipeline chains multiple steps.
type Pipeline struct {
	steps    []Step
	observer Observer
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// WithObserver sets the observer notified after each step.
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	p.observer = o
	return p
}

// Steps returns the names of the configured steps in order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run applies every step in order. It stops at the first failing step or
// when ctx is done between steps.
func (p *Pipeline) Run(ctx context.Context, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return df, err
		}
		before := df.Ncol()
		start := time.Now()
		out, err := step.Apply(df)
		if p.observer != nil {
			p.observer.StepDone(step.Name(), out.Nrow(), out.Ncol()-before, time.Since(start), err)
		}
		if err != nil {
			return df, fmt.Errorf("pipeline: step %s: %w", step.Name(), err)
		}
		df = out
	}
	return df, nil
}
