package solver

import (
	"fmt"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
)

// 小于这个值的嫉妒视为浮点误差
const envyTolerance = 1e-9

// Evaluator 计算分配方案的嫉妒值，只读，可以被所有个体共享
type Evaluator struct {
	instance *cake.Instance
}

func NewEvaluator(inst *cake.Instance) (*Evaluator, error) {
	if inst == nil {
		return nil, fmt.Errorf("%w: 实例为 nil", ErrInvalidArgument)
	}
	return &Evaluator{instance: inst}, nil
}

func (e *Evaluator) Instance() *cake.Instance {
	return e.instance
}

// Fitness 返回个体的嫉妒值，越小越好，0 表示无嫉妒
func (e *Evaluator) Fitness(ind *Individual) float64 {
	return e.Evaluate(ind.Cuts(), ind.Assignment())
}

/**
 * 计算嫉妒值
 * fitness = Σ_a max_{b≠a} max(0, v_a(P_b) - v_a(P_a))
 * 其中:
 * 		1. v_a(P) 为参与者 a 对块 P 的估值
 * 		2. 每个参与者只计算他最嫉妒的那一块，而不是对所有块求和
 */
func (e *Evaluator) Evaluate(sortedCuts []int, assignment []int) float64 {
	values := e.instance.PieceValues(sortedCuts)

	// pieceOf[agentID-1] = 该参与者分到的块
	pieceOf := make([]int, len(values))
	for piece, agentID := range assignment {
		pieceOf[agentID-1] = piece
	}

	fitness := 0.0
	for a, pieceValues := range values {
		own := pieceValues[pieceOf[a]]

		worst := 0.0
		for piece, other := range pieceValues {
			if piece == pieceOf[a] {
				continue
			}
			if envy := other - own; envy > worst {
				worst = envy
			}
		}

		if worst > envyTolerance {
			fitness += worst
		}
	}

	return fitness
}

// Allocation 返回每一块的原子范围及其归属，用于展示结果
func Allocation(ind *Individual) []Piece {
	cuts := ind.Cuts()
	assignment := ind.Assignment()
	positionCount := ind.instance.PositionCount()

	pieces := make([]Piece, len(assignment))
	lower := 0
	for i, agentID := range assignment {
		// 最后一块包含最后一个切点之后的所有位置
		upper := positionCount
		if i < len(cuts) {
			upper = cuts[i]
		}
		pieces[i] = Piece{From: lower + 1, To: upper, AgentID: agentID}
		lower = upper
	}

	return pieces
}

// Piece: 位置在 [From, To] 中的原子分给 AgentID，From > To 时表示空块
type Piece struct {
	From    int `json:"from"`
	To      int `json:"to"`
	AgentID int `json:"agentID"`
}
