package cake

import (
	"fmt"
	"math/rand"
)

// GenerateMatrix 随机生成一个 atoms 行 agents 列的估值矩阵
// 每个元素以 zeroProbability 的概率为 0，否则在 (0, 1] 中均匀取值并保留两位小数
// 保证每个参与者至少有一个正估值，因此结果总能通过 NewInstance 的校验
func GenerateMatrix(rng *rand.Rand, atoms int, agents int, zeroProbability float64) ([][]float64, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: 随机数生成器为 nil", ErrInvalidArgument)
	}
	if atoms <= 0 {
		return nil, fmt.Errorf("%w: 原子数量必须为正数（得到 %d）", ErrInvalidArgument, atoms)
	}
	if agents <= 0 {
		return nil, fmt.Errorf("%w: 参与者数量必须为正数（得到 %d）", ErrInvalidArgument, agents)
	}
	if zeroProbability < 0 || zeroProbability >= 1 {
		return nil, fmt.Errorf("%w: 零估值概率必须在 [0, 1) 中（得到 %f）", ErrInvalidArgument, zeroProbability)
	}

	matrix := make([][]float64, atoms)
	for i := range matrix {
		matrix[i] = make([]float64, agents)
		for j := range matrix[i] {
			if rng.Float64() < zeroProbability {
				continue
			}
			matrix[i][j] = randomValuation(rng)
		}
	}

	// 补上没有正估值的参与者
	for j := 0; j < agents; j++ {
		hasPositive := false
		for i := 0; i < atoms; i++ {
			if matrix[i][j] > 0 {
				hasPositive = true
				break
			}
		}
		if !hasPositive {
			matrix[rng.Intn(atoms)][j] = randomValuation(rng)
		}
	}

	return matrix, nil
}

// GenerateInstance 生成随机矩阵并构造实例
func GenerateInstance(rng *rand.Rand, atoms int, agents int, zeroProbability float64) (*Instance, error) {
	matrix, err := GenerateMatrix(rng, atoms, agents, zeroProbability)
	if err != nil {
		return nil, err
	}
	return NewInstance(matrix)
}

// randomValuation 返回 {0.01, 0.02, ..., 1.00} 中的一个值
func randomValuation(rng *rand.Rand) float64 {
	return float64(rng.Intn(100)+1) / 100
}
