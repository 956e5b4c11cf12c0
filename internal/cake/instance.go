package cake

import (
	"fmt"
	"math"
	"sort"
)

// Instance: 求解器的只读输入，所有个体共享同一个实例
type Instance struct {
	agents    []*Agent
	atomCount int
	matrix    [][]float64
}

// NewInstance 从估值矩阵构造问题实例
// matrix[atom][agent]：行对应原子（从 0 开始），列对应参与者（从 0 开始）
func NewInstance(matrix [][]float64) (*Instance, error) {
	if len(matrix) == 0 {
		return nil, fmt.Errorf("%w: 估值矩阵为空", ErrInvalidInstance)
	}

	cols := len(matrix[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: 估值矩阵没有任何参与者", ErrInvalidInstance)
	}

	for row, values := range matrix {
		if len(values) != cols {
			return nil, fmt.Errorf("%w: 第 %d 行有 %d 列，期望 %d 列", ErrInvalidInstance, row+1, len(values), cols)
		}
		for col, value := range values {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, fmt.Errorf("%w: 第 %d 行第 %d 列的估值不是有限数", ErrInvalidInstance, row+1, col+1)
			}
		}
	}

	// 参与者在第一次出现正估值时才创建，id 为列号 + 1
	agentsByCol := make([]*Agent, cols)
	valued := make(map[int]struct{})

	for row, values := range matrix {
		for col, value := range values {
			if value <= 0 {
				continue
			}

			if agentsByCol[col] == nil {
				agentsByCol[col] = newAgent(col + 1)
			}

			if err := agentsByCol[col].AddValuation(Atom{Position: row + 1, Valuation: value}); err != nil {
				return nil, err
			}
			valued[row+1] = struct{}{}
		}
	}

	for col, agent := range agentsByCol {
		if agent == nil {
			return nil, fmt.Errorf("%w: 参与者 %d 没有任何正估值", ErrInvalidInstance, col+1)
		}
		agent.sealed = true
	}

	copied := make([][]float64, len(matrix))
	for i, values := range matrix {
		copied[i] = append([]float64(nil), values...)
	}

	return &Instance{
		agents:    agentsByCol,
		atomCount: len(valued),
		matrix:    copied,
	}, nil
}

func (i *Instance) Agents() []*Agent {
	agents := make([]*Agent, len(i.agents))
	copy(agents, i.agents)
	return agents
}

// Agent 按 id（从 1 开始）获取参与者
func (i *Instance) Agent(id int) (*Agent, error) {
	if id < 1 || id > len(i.agents) {
		return nil, fmt.Errorf("%w: 参与者 %d 不存在", ErrInvalidArgument, id)
	}
	return i.agents[id-1], nil
}

func (i *Instance) AgentCount() int {
	return len(i.agents)
}

// AtomCount 是至少被一个参与者正估值的位置数量，切点的取值范围为 [0, AtomCount]
func (i *Instance) AtomCount() int {
	return i.atomCount
}

// PositionCount 是估值矩阵的行数，也就是最大的原子位置
func (i *Instance) PositionCount() int {
	return len(i.matrix)
}

// Matrix 返回原始估值矩阵的副本
func (i *Instance) Matrix() [][]float64 {
	matrix := make([][]float64, len(i.matrix))
	for r, values := range i.matrix {
		matrix[r] = append([]float64(nil), values...)
	}
	return matrix
}

// PieceIndex 返回位置 position 所在的块
// 块 i 包含满足 cuts[i-1] < p <= cuts[i] 的位置，最后一个切点之后的位置都属于最后一块
func PieceIndex(sortedCuts []int, position int) int {
	return sort.SearchInts(sortedCuts, position)
}

// PieceValues 计算每个参与者对每一块的估值，结果为 values[agentID-1][piece]
func (i *Instance) PieceValues(sortedCuts []int) [][]float64 {
	pieces := len(sortedCuts) + 1
	values := make([][]float64, len(i.agents))

	for a, agent := range i.agents {
		values[a] = make([]float64, pieces)
		for _, atom := range agent.atoms {
			values[a][PieceIndex(sortedCuts, atom.Position)] += atom.Valuation
		}
	}

	return values
}
