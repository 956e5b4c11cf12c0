package utils

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
	"golang.org/x/crypto/blake2b"
)

// FingerprintMatrix 计算估值矩阵的 blake2b 摘要，形状不同的矩阵不会得到相同的摘要
func FingerprintMatrix(matrix [][]float64) string {
	h, _ := blake2b.New256(nil) // key 为空时不会返回错误

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(len(matrix)))
	h.Write(buf)

	for _, row := range matrix {
		binary.LittleEndian.PutUint64(buf, uint64(len(row)))
		h.Write(buf)
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			h.Write(buf)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// SolveCacheKey 返回同一实例、同一组参数的求解结果在 redis 中的键
func SolveCacheKey(fingerprint string, params solver.Parameters) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(b)

	return "solve_cache_" + fingerprint + "_" + hex.EncodeToString(sum[:16]), nil
}

func JobProgressKey(jobID string) string {
	return "job_" + jobID + "_progress"
}

func JobCancelKey(jobID string) string {
	return "job_" + jobID + "_cancel"
}
