package gogp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// OptimizeSettings controls the hyperparameter fit.
type OptimizeSettings struct {
	// MaxIterations bounds the number of BFGS iterations, 0 for the gonum default.
	MaxIterations int
	// Mask selects the hyperparameters (in HyperParameters order) which are optimized.
	// A nil mask optimizes all of them.
	Mask []bool
}

// OptimizeResult is returned by Optimize.
type OptimizeResult struct {
	HyperParameters  []float64
	NegLogLikelihood float64
	Iterations       int
	Evaluations      int
	Status           optimize.Status
}

// Optimize fits the hyperparameters of a Fitted GP by minimizing its negative log
// likelihood with BFGS, and leaves the GP inferred with the best hyperparameters found.
// Hyperparameters excluded by the mask keep their current value.
func Optimize(ctx context.Context, gp *GP, settings OptimizeSettings) (*OptimizeResult, error) {
	if gp.State() != Fitted {
		return nil, fmt.Errorf("optimize: %w", ErrNoTrainingData)
	}
	initial := gp.HyperParameters()
	mask := settings.Mask
	if mask == nil {
		mask = make([]bool, len(initial))
		for i := range mask {
			mask[i] = true
		}
	} else if len(mask) != len(initial) {
		return nil, sizeMismatch("optimization mask", len(initial), len(mask))
	}
	var free []int
	for i, m := range mask {
		if m {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return nil, errors.New("optimize: mask does not select any hyperparameter")
	}

	full := func(x []float64) []float64 {
		h := append([]float64(nil), initial...)
		for i, idx := range free {
			h[idx] = x[i]
		}
		return h
	}
	// set avoids a new inference when Grad is called at the point Func was just called at.
	var last []float64
	var lastErr error
	set := func(x []float64) error {
		if last != nil && floats.Equal(last, x) {
			return lastErr
		}
		last = append(last[:0], x...)
		lastErr = gp.SetHyperParameters(full(x))
		return lastErr
	}

	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			evals++
			if err := set(x); err != nil {
				gp.logger.Debug("hyperparameters rejected", zap.Float64s("x", x), zap.Error(err))
				return math.Inf(1)
			}
			nll, _ := gp.NegLogLikelihood()
			gp.logger.Debug("likelihood evaluation", zap.Int("eval", evals), zap.Float64("nll", nll))
			return nll
		},
		Grad: func(grad, x []float64) {
			if err := set(x); err != nil {
				for i := range grad {
					grad[i] = 0
				}
				return
			}
			g, _ := gp.NegLogLikelihoodGradient()
			for i, idx := range free {
				grad[i] = g[idx]
			}
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x0 := make([]float64, len(free))
	for i, idx := range free {
		x0[i] = initial[idx]
	}
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{MajorIterations: settings.MaxIterations}, &optimize.BFGS{})
	if result == nil || math.IsInf(result.F, 1) || math.IsNaN(result.F) {
		if rerr := gp.SetHyperParameters(initial); rerr != nil {
			return nil, rerr
		}
		if err == nil {
			err = errors.New("optimize: no finite likelihood found")
		}
		return nil, fmt.Errorf("optimize: %w", err)
	}
	best := full(result.X)
	if serr := gp.SetHyperParameters(best); serr != nil {
		return nil, serr
	}
	out := &OptimizeResult{
		HyperParameters:  best,
		NegLogLikelihood: result.F,
		Iterations:       result.Stats.MajorIterations,
		Evaluations:      evals,
		Status:           result.Status,
	}
	gp.logger.Debug("optimization done", zap.Float64("nll", result.F), zap.Stringer("status", result.Status), zap.Int("iterations", out.Iterations))
	if cerr := ctx.Err(); cerr != nil {
		return out, cerr
	}
	return out, nil
}
