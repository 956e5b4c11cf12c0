package solver

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
)

// Mutate 先变异切点，再按变体变异分配基因
func (ind *Individual) Mutate(rng *rand.Rand) {
	ind.mutateCuts(rng)

	switch ind.variant {
	case VariantSwap:
		ind.mutateAssignmentBySwap(rng)
	case VariantOptimized:
		ind.optimizeAssignment()
	}

	ind.evaluated = false
}

// mutateCuts 每个切点以 1/L 的概率移动 ±1
func (ind *Individual) mutateCuts(rng *rand.Rand) {
	rate := 1 / float64(len(ind.genes))
	atomCount := ind.instance.AtomCount()

	for i := 0; i < ind.cutCount(); i++ {
		if rng.Float64() >= rate {
			continue
		}

		delta := 1
		if rng.Intn(2) == 0 {
			delta = -1
		}
		ind.genes[i] = shiftCut(ind.genes[i], delta, atomCount, ind.boundary)
	}
}

func shiftCut(cut int, delta int, atomCount int, boundary BoundaryPolicy) int {
	moved := cut + delta

	switch boundary {
	case BoundaryClamp:
		return max(0, min(moved, atomCount))
	default:
		// 在 atomCount+1 个取值上循环
		span := atomCount + 1
		return ((moved % span) + span) % span
	}
}

// mutateAssignmentBySwap 每个分配基因以 1/L 的概率和随机一个分配基因交换
func (ind *Individual) mutateAssignmentBySwap(rng *rand.Rand) {
	rate := 1 / float64(len(ind.genes))
	offset := ind.cutCount()
	k := ind.instance.AgentCount()

	for i := 0; i < k; i++ {
		if rng.Float64() >= rate {
			continue
		}
		j := rng.Intn(k)
		ind.genes[offset+i], ind.genes[offset+j] = ind.genes[offset+j], ind.genes[offset+i]
	}
}

// optimizeAssignment 用当前切点下估值最大的分配覆盖所有分配基因
func (ind *Individual) optimizeAssignment() {
	assignment := OptimalAssignment(ind.instance, ind.Cuts())
	copy(ind.genes[ind.cutCount():], assignment)
}

/**
 * 求出给定切点下的最优分配，返回每一块对应的参与者 id
 * 其中:
 * 		1. value[piece][agent] 为参与者对该块的估值
 * 		2. cost = round((maxValue - value) * 1000)，量化为整数后交给匈牙利算法
 */
func OptimalAssignment(inst *cake.Instance, sortedCuts []int) []int {
	values := inst.PieceValues(sortedCuts) // [agent][piece]
	k := len(values)

	maxValue := 0.0
	for _, row := range values {
		for _, v := range row {
			maxValue = max(maxValue, v)
		}
	}

	cost := make([][]int64, k)
	for piece := 0; piece < k; piece++ {
		cost[piece] = make([]int64, k)
		for agent := 0; agent < k; agent++ {
			cost[piece][agent] = int64(math.Round((maxValue - values[agent][piece]) * 1000))
		}
	}

	assignment := hungarian(cost)
	for piece := range assignment {
		assignment[piece]++
	}
	return assignment
}

// Crossover 切点单点交叉，分配基因顺序交叉（OX），返回同一变体的新个体
func (ind *Individual) Crossover(other *Individual, rng *rand.Rand) (*Individual, error) {
	if other == nil {
		return nil, fmt.Errorf("%w: 父本为 nil", ErrInvalidArgument)
	}
	if len(ind.genes) != len(other.genes) {
		return nil, fmt.Errorf("%w: 染色体长度分别为 %d 和 %d", ErrIncompatibleParents, len(ind.genes), len(other.genes))
	}

	cuts := ind.cutCount()
	genes := make([]int, 0, len(ind.genes))
	genes = append(genes, crossoverCuts(ind.genes[:cuts], other.genes[:cuts], rng)...)
	genes = append(genes, orderCrossover(ind.genes[cuts:], other.genes[cuts:], rng)...)

	child, err := NewIndividual(ind.variant, genes, ind.instance, ind.evaluator)
	if err != nil {
		return nil, err
	}
	child.boundary = ind.boundary

	return child, nil
}

// crossoverCuts 单点交叉：p 在 [1, n-1] 中均匀选取，只有一个切点时 p = n
func crossoverCuts(p1 []int, p2 []int, rng *rand.Rand) []int {
	n := len(p1)
	if n == 0 {
		return nil
	}

	point := n
	if n > 1 {
		point = 1 + rng.Intn(n-1)
	}
	return crossoverCutsAt(p1, p2, point)
}

// crossoverCutsAt 前 point 个切点来自 p1，其余来自 p2
func crossoverCutsAt(p1 []int, p2 []int, point int) []int {
	child := make([]int, 0, len(p1))
	child = append(child, p1[:point]...)
	child = append(child, p2[point:]...)
	return child
}

// orderCrossover 顺序交叉，片段 [start, end] 均匀选取
func orderCrossover(p1 []int, p2 []int, rng *rand.Rand) []int {
	n := len(p1)
	start := rng.Intn(n)
	end := start + rng.Intn(n-start)
	return orderCrossoverSegment(p1, p2, start, end)
}

// orderCrossoverSegment 复制 p1 在 [start, end] 的片段，其余位置从 end 之后循环地
// 按 p2 中的顺序填入片段中没有出现过的值
func orderCrossoverSegment(p1 []int, p2 []int, start int, end int) []int {
	n := len(p1)
	child := make([]int, n)
	inSegment := make(map[int]struct{}, end-start+1)
	for i := start; i <= end; i++ {
		child[i] = p1[i]
		inSegment[p1[i]] = struct{}{}
	}

	pos := (end + 1) % n
	for _, gene := range p2 {
		if pos == start {
			break
		}
		if _, exists := inSegment[gene]; exists {
			continue
		}
		child[pos] = gene
		pos = (pos + 1) % n
	}

	return child
}
