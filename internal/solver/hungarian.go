package solver

import (
	"fmt"
	"math"
)

// SolveAssignment 用匈牙利算法求解 k×k 的最小费用完美匹配
// 返回 assignment[row] = col，时间复杂度 O(k^3)
func SolveAssignment(cost [][]int64) ([]int, error) {
	n := len(cost)
	if n == 0 {
		return nil, fmt.Errorf("%w: 费用矩阵为空", ErrInvalidArgument)
	}
	for i, row := range cost {
		if len(row) != n {
			return nil, fmt.Errorf("%w: 费用矩阵第 %d 行有 %d 列，期望 %d 列", ErrInvalidArgument, i, len(row), n)
		}
		for j, c := range row {
			if c < 0 {
				return nil, fmt.Errorf("%w: 费用矩阵 (%d, %d) 为负数", ErrInvalidArgument, i, j)
			}
		}
	}

	return hungarian(cost), nil
}

// hungarian 假设 cost 已经是非负方阵
// 势函数 u（行）、v（列），p[j] 为匹配到列 j 的行，下标从 1 开始，0 为虚拟节点
func hungarian(cost [][]int64) []int {
	n := len(cost)

	u := make([]int64, n+1)
	v := make([]int64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)
	minv := make([]int64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := 0; j <= n; j++ {
			minv[j] = math.MaxInt64
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := int64(math.MaxInt64)
			j1 := 0

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		// 沿增广路翻转匹配
		for {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
			if j0 == 0 {
				break
			}
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= n; j++ {
		assignment[p[j]-1] = j - 1
	}
	return assignment
}
