package solver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

// fakeGeneration 的最优个体固定不变，并记录 NextGeneration 的调用次数
type fakeGeneration struct {
	best   *solver.Individual
	calls  int
	err    error
	onNext func(calls int)
}

func (f *fakeGeneration) Best() *solver.Individual {
	return f.best
}

func (f *fakeGeneration) NextGeneration() (solver.Generation, error) {
	f.calls++
	if f.onNext != nil {
		f.onNext(f.calls)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f, nil
}

func envyFreeIndividual(t *testing.T) *solver.Individual {
	inst, eval := newInstance(t, [][]float64{{1, 0}, {0, 1}})
	return newIndividual(t, solver.VariantSwap, []int{1, 1, 2}, inst, eval)
}

func enviousIndividual(t *testing.T) *solver.Individual {
	inst, eval := newInstance(t, [][]float64{{1, 0.5}, {0, 0.5}})
	return newIndividual(t, solver.VariantSwap, []int{1, 2, 1}, inst, eval)
}

func TestRunStopsImmediatelyWhenOptimal(t *testing.T) {
	pop := &fakeGeneration{best: envyFreeIndividual(t)}

	ga, err := solver.New(pop, 10, 0, nil)
	require.NoError(t, err)

	result, err := ga.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Generations)
	assert.Equal(t, solver.StatusOptimal, result.Status)
	assert.Same(t, pop.best, result.Best)
	assert.Equal(t, 0, pop.calls)
}

func TestRunExecutesGenerationLimit(t *testing.T) {
	pop := &fakeGeneration{best: enviousIndividual(t)}

	var progress []solver.Progress
	ga, err := solver.New(pop, 7, 0, func(p solver.Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	result, err := ga.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, result.Generations)
	assert.Equal(t, solver.StatusLimit, result.Status)
	assert.Equal(t, 7, pop.calls)

	require.Len(t, progress, 7)
	for i, p := range progress {
		assert.Equal(t, i+1, p.Generation)
		assert.InDelta(t, 1.0, p.BestFitness, 1e-12)
		assert.False(t, p.Cancelled)
	}
}

func TestRunStopsWhenStagnant(t *testing.T) {
	pop := &fakeGeneration{best: enviousIndividual(t)}

	ga, err := solver.New(pop, 0, 5, nil)
	require.NoError(t, err)

	result, err := ga.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Generations)
	assert.Equal(t, solver.StatusStagnant, result.Status)
	assert.Equal(t, 5, pop.calls)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	pop := &fakeGeneration{best: envyFreeIndividual(t)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ga, err := solver.New(pop, 0, 0, nil)
	require.NoError(t, err)

	result, err := ga.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, solver.StatusCancelled, result.Status)
	assert.Equal(t, 0, result.Generations)
	assert.Same(t, pop.best, result.Best)
	assert.Equal(t, 0, pop.calls)
}

func TestRunCancelledAtGenerationBoundary(t *testing.T) {
	pop := &fakeGeneration{best: enviousIndividual(t)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var last solver.Progress
	ga, err := solver.New(pop, 0, 0, func(p solver.Progress) {
		if p.Generation == 3 {
			cancel()
		}
		last = p
	})
	require.NoError(t, err)

	result, err := ga.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, solver.StatusCancelled, result.Status)
	assert.Equal(t, 3, result.Generations)
	assert.Equal(t, 3, pop.calls)
	assert.Equal(t, 3, last.Generation)
}

func TestRunReportsCancellationInProgress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 在第二代繁殖的过程中取消
	pop := &fakeGeneration{best: enviousIndividual(t), onNext: func(calls int) {
		if calls == 2 {
			cancel()
		}
	}}

	var progress []solver.Progress
	ga, err := solver.New(pop, 0, 0, func(p solver.Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	result, err := ga.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, solver.StatusCancelled, result.Status)
	assert.Equal(t, 2, result.Generations)
	require.Len(t, progress, 2)
	assert.False(t, progress[0].Cancelled)
	assert.True(t, progress[1].Cancelled)
}

func TestRunPropagatesReproductionError(t *testing.T) {
	boom := errors.New("boom")
	pop := &fakeGeneration{best: enviousIndividual(t), err: boom}

	ga, err := solver.New(pop, 10, 0, nil)
	require.NoError(t, err)

	_, err = ga.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestNewRejectsInvalidArguments(t *testing.T) {
	pop := &fakeGeneration{best: enviousIndividual(t)}

	_, err := solver.New(nil, 0, 0, nil)
	assert.ErrorIs(t, err, solver.ErrInvalidArgument)
	_, err = solver.New(pop, -1, 0, nil)
	assert.ErrorIs(t, err, solver.ErrInvalidArgument)
	_, err = solver.New(pop, 0, -1, nil)
	assert.ErrorIs(t, err, solver.ErrInvalidArgument)
}
