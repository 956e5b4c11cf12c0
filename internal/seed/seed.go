package seed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/utils"
)

type InstanceCreator interface {
	CreateInstance(inst *domain.Instance) error
}

// SeedInstanceFiles 将目录中所有的 .txt 实例文件插入数据库，实例名称为文件名
// 单个文件出错时只记录日志并跳过，返回成功插入的数量
func SeedInstanceFiles(repo InstanceCreator, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	cnt := 0
	for _, name := range names {
		path := filepath.Join(dir, name)

		inst, err := cake.ReadInstanceFile(path)
		if err != nil {
			slog.Error("无法读取实例文件", slog.String("file", path), slog.String("error", err.Error()))
			continue
		}

		matrix := inst.Matrix()
		record := &domain.Instance{
			Name:        strings.TrimSuffix(name, ".txt"),
			Description: fmt.Sprintf("从 %s 导入", name),
			AtomCount:   inst.AtomCount(),
			AgentCount:  inst.AgentCount(),
			Matrix:      matrix,
			Fingerprint: utils.FingerprintMatrix(matrix),
		}

		if err := repo.CreateInstance(record); err != nil {
			slog.Error("无法插入实例", slog.String("file", path), slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	return cnt, nil
}
