package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Admin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
	} `envPrefix:"ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 小时，14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		SolveQueue     string `env:"SOLVE_QUEUE" envDefault:"solve_queue"`
		EmailQueue     string `env:"EMAIL_QUEUE" envDefault:"email_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
		ProgressExpiration  int    `env:"PROGRESS_EXPIRATION" envDefault:"86400"` // 秒
	} `envPrefix:"REDIS_"`
	Worker struct {
		CancelPollInterval int `env:"CANCEL_POLL_INTERVAL" envDefault:"1"` // 秒
		ProgressInterval   int `env:"PROGRESS_INTERVAL" envDefault:"10"`   // 每多少代写一次进度
	} `envPrefix:"WORKER_"`
	Limits struct {
		MaxAtoms           int `env:"MAX_ATOMS" envDefault:"10000"`
		MaxAgents          int `env:"MAX_AGENTS" envDefault:"100"`
		MaxPopulationSize  int `env:"MAX_POPULATION_SIZE" envDefault:"1000"`
		MaxGenerationLimit int `env:"MAX_GENERATION_LIMIT" envDefault:"100000"`
	} `envPrefix:"LIMITS_"`
	Solver SolverConfig `envPrefix:"SOLVER_"`
}

// SolverConfig 是遗传算法的默认参数，命令行求解只需要这一部分
type SolverConfig struct {
	PopulationSize  int                   `env:"POPULATION_SIZE" envDefault:"100"`
	GenerationLimit int                   `env:"GENERATION_LIMIT" envDefault:"1000"`
	StagnationLimit int                   `env:"STAGNATION_LIMIT" envDefault:"200"`
	CrossoverRate   float64               `env:"CROSSOVER_RATE" envDefault:"0.9"`
	EliteCount      int                   `env:"ELITE_COUNT" envDefault:"2"`
	Variant         solver.Variant        `env:"VARIANT" envDefault:"optimized"`
	CutBoundary     solver.BoundaryPolicy `env:"CUT_BOUNDARY" envDefault:"wrap"`
	Seed            int64                 `env:"SEED" envDefault:"0"`
}

func (c SolverConfig) Parameters() solver.Parameters {
	return solver.Parameters{
		PopulationSize:  c.PopulationSize,
		GenerationLimit: c.GenerationLimit,
		StagnationLimit: c.StagnationLimit,
		CrossoverRate:   c.CrossoverRate,
		EliteCount:      c.EliteCount,
		Variant:         c.Variant,
		CutBoundary:     c.CutBoundary,
		Seed:            c.Seed,
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

// LoadSolverConfig 只解析 SOLVER_ 开头的环境变量
func LoadSolverConfig() (*SolverConfig, error) {
	cfg := &SolverConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "SOLVER_"}); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

func firstError(err error) error {
	aggErr := env.AggregateError{}
	if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
		// 只返回第一个错误使得日志更清晰
		return aggErr.Errors[0]
	}
	return err
}
