package domain

import "time"

// Instance: 存储在数据库中的问题实例
type Instance struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	AtomCount   int         `json:"atomCount"`
	AgentCount  int         `json:"agentCount"`
	Matrix      [][]float64 `json:"matrix,omitempty"` // 列表接口中不返回矩阵
	Fingerprint string      `json:"fingerprint"`
	CreatedAt   time.Time   `json:"createdAt"`
	Version     int32       `json:"-"`
}
