package solver_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

func TestSolveAssignment(t *testing.T) {
	assignment, err := solver.SolveAssignment([][]int64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, assignment)

	single, err := solver.SolveAssignment([][]int64{{7}})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, single)
}

func TestSolveAssignmentMatchesBruteForce(t *testing.T) {
	rng := newRand(77)

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(6)
		cost := make([][]int64, n)
		for r := range cost {
			cost[r] = make([]int64, n)
			for c := range cost[r] {
				cost[r][c] = int64(rng.Intn(1000))
			}
		}

		assignment, err := solver.SolveAssignment(cost)
		require.NoError(t, err)

		used := make(map[int]bool, n)
		for _, col := range assignment {
			require.False(t, used[col], "column %d assigned twice", col)
			used[col] = true
		}
		require.Equal(t, bruteForceMinCost(cost), totalCost(cost, assignment), "cost %v", cost)
	}
}

func TestSolveAssignmentRejectsInvalidMatrix(t *testing.T) {
	tests := []struct {
		name string
		cost [][]int64
	}{
		{"empty", nil},
		{"not square", [][]int64{{1, 2}, {3}}},
		{"negative", [][]int64{{1, -2}, {3, 4}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := solver.SolveAssignment(tc.cost)
			require.ErrorIs(t, err, solver.ErrInvalidArgument)
		})
	}
}

func totalCost(cost [][]int64, assignment []int) int64 {
	total := int64(0)
	for row, col := range assignment {
		total += cost[row][col]
	}
	return total
}

func bruteForceMinCost(cost [][]int64) int64 {
	n := len(cost)
	best := int64(math.MaxInt64)
	used := make([]bool, n)

	var search func(row int, acc int64)
	search = func(row int, acc int64) {
		if acc >= best {
			return
		}
		if row == n {
			best = acc
			return
		}
		for col := 0; col < n; col++ {
			if used[col] {
				continue
			}
			used[col] = true
			search(row+1, acc+cost[row][col])
			used[col] = false
		}
	}
	search(0, 0)

	return best
}
