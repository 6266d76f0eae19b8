// Package pipeline wires steps together and runs hooks around them.
package pipeline

import (
	"context"
	"time"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// Pipeline executes a sequence of Steps with hooks.  Each step runs at most
// once; a failure is never retried.
type Pipeline struct {
	steps []core.Step
	hooks []core.Hook
}

// New returns an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// Use appends a step to the pipeline.  Returns the same Pipeline for chaining.
func (p *Pipeline) Use(s ...core.Step) *Pipeline {
	p.steps = append(p.steps, s...)
	return p
}

// AddHook registers an observer.
func (p *Pipeline) AddHook(h ...core.Hook) *Pipeline {
	p.hooks = append(p.hooks, h...)
	return p
}

// Steps returns the names of the configured steps in run order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run executes the pipeline on c, stopping at the first failing step.  It
// returns the final Conversion and a map of per-step timing observations.
func (p *Pipeline) Run(ctx context.Context, c *core.Conversion) (*core.Conversion, map[string]time.Duration, error) {
	timings := make(map[string]time.Duration, len(p.steps))
	current := c

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, timings, apperrors.Wrap(apperrors.CategoryPipeline, step.Name(), err)
		}

		result, elapsed, err := p.runStep(ctx, step, current)
		timings[step.Name()] = elapsed
		if err != nil {
			return nil, timings, err
		}
		current = result
	}
	return current, timings, nil
}

// runStep executes a single step between its hooks.
func (p *Pipeline) runStep(ctx context.Context, step core.Step, c *core.Conversion) (*core.Conversion, time.Duration, error) {
	p.callHooksBefore(ctx, step.Name(), c)
	start := time.Now()
	result, err := step.Execute(ctx, c)
	elapsed := time.Since(start)
	p.callHooksAfter(ctx, step.Name(), result, elapsed, err)
	return result, elapsed, err
}

func (p *Pipeline) callHooksBefore(ctx context.Context, name string, c *core.Conversion) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, c)
	}
}

func (p *Pipeline) callHooksAfter(ctx context.Context, name string, c *core.Conversion, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, c, d, err)
	}
}
