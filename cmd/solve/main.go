package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/config"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

func main() {
	var file string
	var generate string
	var out string
	var zeroProbability float64
	var progressInterval int

	flag.StringVar(&file, "file", "", "实例文件路径")
	flag.StringVar(&generate, "generate", "", "随机生成实例，格式为 \"原子数量,参与者数量\"")
	flag.StringVar(&out, "out", "", "将随机生成的实例写入该文件")
	flag.Float64Var(&zeroProbability, "zero-probability", 0.3, "随机实例中估值为 0 的概率")
	flag.IntVar(&progressInterval, "progress", 100, "每多少代输出一次进度，0 表示不输出")
	flag.Parse()

	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取求解参数，命令行求解不需要其他服务的配置
	 **********************************************/
	cfg, err := config.LoadSolverConfig()
	if err != nil {
		logger.Error("无法读取配置", slog.String("error", err.Error()))
		os.Exit(1)
	}
	params := cfg.Parameters()

	/**********************************************
	 * 读取或生成实例
	 **********************************************/
	inst, err := loadInstance(file, generate, out, zeroProbability, params.Seed)
	if err != nil {
		logger.Error("无法加载实例", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 收到 CTRL+C 时取消求解，返回当前最优个体
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onProgress := func(p solver.Progress) {
		if progressInterval <= 0 || p.Generation%progressInterval != 0 {
			return
		}
		logger.Info("求解进度", slog.Int("generation", p.Generation), slog.Float64("best_fitness", p.BestFitness))
	}

	result, err := solver.Solve(ctx, inst, params, onProgress, logger)
	if err != nil {
		logger.Error("求解失败", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(result.Best.String())
	for _, piece := range solver.Allocation(result.Best) {
		if piece.From > piece.To {
			fmt.Printf("参与者 %d: 空\n", piece.AgentID)
			continue
		}
		fmt.Printf("参与者 %d: 原子 %d-%d\n", piece.AgentID, piece.From, piece.To)
	}
	fmt.Printf("状态: %s, 代数: %d, 种子: %d\n", result.Status, result.Generations, result.Seed)
}

func loadInstance(file string, generate string, out string, zeroProbability float64, seed int64) (*cake.Instance, error) {
	switch {
	case file != "" && generate != "":
		return nil, fmt.Errorf("-file 和 -generate 不能同时使用")
	case file != "":
		return cake.ReadInstanceFile(file)
	case generate != "":
		atoms, agents, err := parseSize(generate)
		if err != nil {
			return nil, err
		}

		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		matrix, err := cake.GenerateMatrix(rand.New(rand.NewSource(seed)), atoms, agents, zeroProbability)
		if err != nil {
			return nil, err
		}

		if out != "" {
			if err := cake.WriteInstanceFile(out, matrix); err != nil {
				return nil, err
			}
		}

		return cake.NewInstance(matrix)
	default:
		return nil, fmt.Errorf("必须指定 -file 或 -generate")
	}
}

func parseSize(s string) (int, int, error) {
	atomsString, agentsString, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("无效的实例规模 %q，格式应为 \"原子数量,参与者数量\"", s)
	}

	atoms, err := strconv.Atoi(strings.TrimSpace(atomsString))
	if err != nil {
		return 0, 0, fmt.Errorf("无效的原子数量 %q", atomsString)
	}
	agents, err := strconv.Atoi(strings.TrimSpace(agentsString))
	if err != nil {
		return 0, 0, fmt.Errorf("无效的参与者数量 %q", agentsString)
	}

	return atoms, agents, nil
}
