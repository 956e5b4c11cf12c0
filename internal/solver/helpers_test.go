package solver_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

func newInstance(t *testing.T, matrix [][]float64) (*cake.Instance, *solver.Evaluator) {
	t.Helper()

	inst, err := cake.NewInstance(matrix)
	require.NoError(t, err)
	eval, err := solver.NewEvaluator(inst)
	require.NoError(t, err)

	return inst, eval
}

func newIndividual(t *testing.T, variant solver.Variant, genes []int, inst *cake.Instance, eval *solver.Evaluator) *solver.Individual {
	t.Helper()

	ind, err := solver.NewIndividual(variant, genes, inst, eval)
	require.NoError(t, err)
	return ind
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func randomInstance(t *testing.T, seed int64, atoms int, agents int) (*cake.Instance, *solver.Evaluator) {
	t.Helper()

	matrix, err := cake.GenerateMatrix(newRand(seed), atoms, agents, 0.3)
	require.NoError(t, err)
	return newInstance(t, matrix)
}

// requireValid 用同样的校验重新构造一次个体
func requireValid(t *testing.T, ind *solver.Individual) {
	t.Helper()

	_, err := solver.NewIndividual(ind.Variant(), ind.Chromosome(), ind.Instance(), mustEvaluator(t, ind.Instance()))
	require.NoError(t, err, "chromosome %v", ind.Chromosome())
}

func mustEvaluator(t *testing.T, inst *cake.Instance) *solver.Evaluator {
	t.Helper()

	eval, err := solver.NewEvaluator(inst)
	require.NoError(t, err)
	return eval
}
