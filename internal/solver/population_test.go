package solver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

func TestPopulationBestBreaksTiesByFirstOccurrence(t *testing.T) {
	inst, eval := newInstance(t, [][]float64{{1, 0.5}, {0, 0.5}})

	worse := newIndividual(t, solver.VariantSwap, []int{1, 2, 1}, inst, eval)
	first := newIndividual(t, solver.VariantSwap, []int{1, 1, 2}, inst, eval)
	second := newIndividual(t, solver.VariantSwap, []int{1, 1, 2}, inst, eval)

	pop, err := solver.NewPopulation([]*solver.Individual{worse, first, second}, newRand(1), solver.PopulationOptions{})
	require.NoError(t, err)

	assert.Same(t, first, pop.Best())
	assert.Equal(t, 3, pop.Size())
}

func TestNextGenerationPreservesSize(t *testing.T) {
	inst, eval := randomInstance(t, 4, 12, 4)

	for _, variant := range []solver.Variant{solver.VariantSwap, solver.VariantOptimized} {
		t.Run(variant.String(), func(t *testing.T) {
			factory, err := solver.NewFactory(inst, eval, variant, solver.BoundaryWrap)
			require.NoError(t, err)

			rng := newRand(17)
			pop, err := solver.RandomPopulation(factory, 15, rng, solver.PopulationOptions{
				EliteCount:    2,
				CrossoverRate: 0.8,
			})
			require.NoError(t, err)

			var current solver.Generation = pop
			for g := 0; g < 30; g++ {
				best := current.Best().Fitness()

				next, err := current.NextGeneration()
				require.NoError(t, err)

				nextPop := next.(*solver.Population)
				require.Equal(t, 15, nextPop.Size())
				for _, ind := range nextPop.Individuals() {
					requireValid(t, ind)
				}

				// 有精英时最优适应度不会变差
				assert.LessOrEqual(t, next.Best().Fitness(), best)
				current = next
			}
		})
	}
}

func TestNextGenerationDoesNotMutateCurrentPopulation(t *testing.T) {
	inst, eval := randomInstance(t, 6, 10, 3)
	factory, err := solver.NewFactory(inst, eval, solver.VariantSwap, solver.BoundaryWrap)
	require.NoError(t, err)

	rng := newRand(23)
	pop, err := solver.RandomPopulation(factory, 10, rng, solver.PopulationOptions{CrossoverRate: 0.5})
	require.NoError(t, err)

	before := make([][]int, 0, pop.Size())
	for _, ind := range pop.Individuals() {
		before = append(before, ind.Chromosome())
	}

	_, err = pop.NextGeneration()
	require.NoError(t, err)

	for i, ind := range pop.Individuals() {
		assert.Equal(t, before[i], ind.Chromosome())
	}
}

func TestNewPopulationRejectsInvalidArguments(t *testing.T) {
	inst, eval := newInstance(t, [][]float64{{1, 0}, {0, 1}})
	ind := newIndividual(t, solver.VariantSwap, []int{1, 1, 2}, inst, eval)
	rng := newRand(1)

	tests := []struct {
		name        string
		individuals []*solver.Individual
		rng         bool
		options     solver.PopulationOptions
	}{
		{"empty", nil, true, solver.PopulationOptions{}},
		{"nil individual", []*solver.Individual{ind, nil}, true, solver.PopulationOptions{}},
		{"nil rng", []*solver.Individual{ind}, false, solver.PopulationOptions{}},
		{"negative elite", []*solver.Individual{ind}, true, solver.PopulationOptions{EliteCount: -1}},
		{"too many elites", []*solver.Individual{ind}, true, solver.PopulationOptions{EliteCount: 2}},
		{"whole population elite", []*solver.Individual{ind, ind.Clone()}, true, solver.PopulationOptions{EliteCount: 2}},
		{"crossover rate above one", []*solver.Individual{ind}, true, solver.PopulationOptions{CrossoverRate: 1.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := rng
			if !tc.rng {
				r = nil
			}
			_, err := solver.NewPopulation(tc.individuals, r, tc.options)
			require.ErrorIs(t, err, solver.ErrInvalidArgument)
		})
	}
}

func TestRandomPopulationRejectsInvalidArguments(t *testing.T) {
	inst, eval := newInstance(t, [][]float64{{1, 0}, {0, 1}})
	factory, err := solver.NewFactory(inst, eval, solver.VariantSwap, solver.BoundaryWrap)
	require.NoError(t, err)

	_, err = solver.RandomPopulation(nil, 5, newRand(1), solver.PopulationOptions{})
	assert.ErrorIs(t, err, solver.ErrInvalidArgument)
	_, err = solver.RandomPopulation(factory, 0, newRand(1), solver.PopulationOptions{})
	assert.ErrorIs(t, err, solver.ErrInvalidArgument)
	_, err = solver.RandomPopulation(factory, 5, nil, solver.PopulationOptions{})
	assert.ErrorIs(t, err, solver.ErrInvalidArgument)
}
