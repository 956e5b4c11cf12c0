package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

// ValidateMatrixSize 检查上传的估值矩阵的规模，具体的内容由 cake.NewInstance 检查
func ValidateMatrixSize(matrix [][]float64, maxAtoms int, maxAgents int) error {
	if len(matrix) == 0 {
		return errors.New("估值矩阵不能为空")
	}
	if len(matrix) > maxAtoms {
		return fmt.Errorf("原子数量不能超过 %d", maxAtoms)
	}

	for i, row := range matrix {
		if len(row) > maxAgents {
			return fmt.Errorf("第 %d 行的参与者数量超过了 %d", i+1, maxAgents)
		}
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("第 %d 行第 %d 列的估值不能为负数", i+1, j+1)
			}
		}
	}

	return nil
}

// ValidateSolveResult 检查一个已经保存的染色体是否仍然适用于实例，并返回它的适应度
func ValidateSolveResult(inst *cake.Instance, variant solver.Variant, chromosome []int) (float64, error) {
	evaluator, err := solver.NewEvaluator(inst)
	if err != nil {
		return 0, err
	}

	ind, err := solver.NewIndividual(variant, chromosome, inst, evaluator)
	if err != nil {
		return 0, err
	}

	return ind.Fitness(), nil
}
