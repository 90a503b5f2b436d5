package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"resume-ranker/internal/config"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/processor"
	"resume-ranker/internal/storage"
	"resume-ranker/internal/types"

	"github.com/spf13/pflag"
)

// 命令行参数定义
var (
	configPath = pflag.StringP("config", "c", "config.yaml", "配置文件路径")
	skills     = pflag.StringP("skills", "s", "", "逗号分隔的必需技能，例如 \"python, docker\"")
	jsonOutput = pflag.Bool("json", false, "以JSON输出排名结果")
	watch      = pflag.Bool("watch", false, "订阅并打印排名完成事件，需启用 rabbitmq")
	initConfig = pflag.String("init-config", "", "在指定路径生成示例配置文件后退出")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "用法: %s [flags] resume1.pdf [resume2.pdf ...]\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *initConfig != "" {
		if err := config.CreateSampleConfig(*initConfig); err != nil {
			exitf("生成示例配置失败: %v", err)
		}
		fmt.Printf("示例配置已写入 %s\n", *initConfig)
		return
	}

	_ = config.LoadDotEnv()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		exitf("加载配置失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitf("配置无效: %v", err)
	}
	// 报告写到标准输出，日志统一写到标准错误
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     "pretty",
		TimeFormat: "15:04:05",
		FilePath:   cfg.Logger.FilePath,
		Output:     os.Stderr,
	}); err != nil {
		exitf("初始化日志失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		if err := watchEvents(ctx, cfg); err != nil {
			exitf("订阅排名事件失败: %v", err)
		}
		return
	}

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}
	if err := rankFiles(ctx, cfg, pflag.Args(), *skills); err != nil {
		if ve, ok := processor.AsValidationError(err); ok {
			exitf("%s", ve.UserMessage())
		}
		exitf("排名失败: %v", err)
	}
}

func rankFiles(ctx context.Context, cfg *config.Config, paths []string, required string) error {
	catalog, err := parser.LoadSkillCatalog(cfg.Catalog.Path, cfg.Catalog.Column)
	if err != nil {
		return fmt.Errorf("加载技能表失败: %w", err)
	}

	// 命令行不发布事件，只按配置复用解析缓存
	var opts []processor.ComponentOpt
	if cfg.Redis.Address != "" {
		r, err := storage.NewRedisAdapter(&cfg.Redis)
		if err != nil {
			return err
		}
		defer r.Close()
		opts = append(opts, processor.WithcompCache(r))
	}

	comps, settings, err := processor.BuildComponents(ctx, cfg, catalog, logger.Logger, opts...)
	if err != nil {
		return err
	}
	service, err := processor.NewResumeService(comps, settings)
	if err != nil {
		return err
	}

	docs := make([]processor.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("读取文件 %s 失败: %w", p, err)
		}
		docs = append(docs, processor.Document{Name: filepath.Base(p), Data: data})
	}

	result, err := service.ProcessBatch(ctx, processor.BatchRequest{Documents: docs, RequiredSkills: required})
	if err != nil {
		return err
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Print(processor.FormatBatch(result))
	return nil
}

func watchEvents(ctx context.Context, cfg *config.Config) error {
	if !cfg.RabbitMQ.Enabled {
		return fmt.Errorf("rabbitmq.enabled 为 false")
	}
	mq, err := storage.NewRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer mq.Close()

	logger.Info().Str("exchange", cfg.RabbitMQ.RankingExchange).Msg("等待排名事件，Ctrl+C 退出")
	return mq.SubscribeRankingEvents(ctx, func(event *types.RankingCompletedEvent) {
		fmt.Printf("[%s] batch %s, %d resumes, skills %v\n",
			event.CompletedAt.Format("2006-01-02 15:04:05"), event.BatchID, event.DocumentCount, event.RequiredSkills)
		fmt.Print(processor.FormatRanking(event.Ranking))
	})
}

func exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "错误: "+format+"\n", args...)
	os.Exit(1)
}
