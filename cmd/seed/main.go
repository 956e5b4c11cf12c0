package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/config"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/repository"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/seed"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var atoms int
	var agents int
	var zeroProbability float64
	var dir string
	var out string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机实例, 2: 导入目录中的实例文件, 3: 生成随机实例文件)")
	flag.IntVar(&n, "n", 5, "要插入的实例数量")
	flag.IntVar(&atoms, "atoms", 20, "随机实例的原子数量")
	flag.IntVar(&agents, "agents", 3, "随机实例的参与者数量")
	flag.Float64Var(&zeroProbability, "zero-probability", 0.3, "随机实例中估值为 0 的概率")
	flag.StringVar(&dir, "dir", "./data", "要导入的实例文件所在的目录")
	flag.StringVar(&out, "out", "instance.txt", "生成的实例文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// 生成实例文件不需要连接数据库
	if op == 3 {
		matrix, err := cake.GenerateMatrix(rng, atoms, agents, zeroProbability)
		if err != nil {
			logger.Error("无法生成随机实例", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := cake.WriteInstanceFile(out, matrix); err != nil {
			logger.Error("无法写入实例文件", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("生成实例文件成功", slog.String("file", out), slog.Int("atoms", atoms), slog.Int("agents", agents))
		return
	}

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的实例数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			matrix, err := cake.GenerateMatrix(rng, atoms, agents, zeroProbability)
			if err != nil {
				slog.Error("无法生成随机实例", slog.String("error", err.Error()))
				return
			}

			inst, err := cake.NewInstance(matrix)
			if err != nil {
				slog.Error("无法生成随机实例", slog.String("error", err.Error()))
				continue
			}

			record := &domain.Instance{
				Name:        utils.GenerateRandomInstanceName(),
				Description: utils.GenerateRandomInstanceDescription(atoms, agents),
				AtomCount:   inst.AtomCount(),
				AgentCount:  inst.AgentCount(),
				Matrix:      matrix,
				Fingerprint: utils.FingerprintMatrix(matrix),
			}
			if err := repo.CreateInstance(record); err != nil {
				slog.Error("无法插入实例", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入实例成功", slog.Int("count", cnt))
	case 2:
		cnt, err := seed.SeedInstanceFiles(repo, dir)
		if err != nil {
			slog.Error("无法导入实例文件", slog.String("dir", dir), slog.String("error", err.Error()))
			return
		}

		slog.Info("导入实例文件成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
