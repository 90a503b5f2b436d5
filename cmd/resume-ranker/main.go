package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-ranker/internal/api/handler"
	"resume-ranker/internal/api/router"
	"resume-ranker/internal/config"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/processor"
	"resume-ranker/internal/storage"
	"resume-ranker/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")
	pflag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn().Err(err).Msg("加载 .env 失败")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", configPath).Msg("加载配置失败")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("配置无效")
	}

	if err := logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		FilePath:     cfg.Logger.FilePath,
	}); err != nil {
		logger.Fatal().Err(err).Msg("初始化日志失败")
	}
	logger.BridgeHertz()

	ctx := context.Background()

	shutdownTracing := tracing.NoopShutdown
	if cfg.Tracing.Enabled {
		shutdownTracing, err = tracing.InitProvider(ctx, tracing.ProviderConfig{
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("初始化链路追踪失败")
		}
		logger.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("链路追踪已启用")
	}

	catalog, err := parser.LoadSkillCatalog(cfg.Catalog.Path, cfg.Catalog.Column)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("加载技能表失败")
	}
	logger.Info().Int("skills", catalog.Len()).Msg("技能表加载完成")

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()

	// 未配置的依赖不能以 typed nil 的形式传入接口
	var compOpts []processor.ComponentOpt
	var handlerOpts []handler.HandlerOpt
	if storageManager.Redis != nil {
		compOpts = append(compOpts, processor.WithcompCache(storageManager.Redis))
		handlerOpts = append(handlerOpts, handler.WithHealthCheck("redis", storageManager.Redis.Ping))
	}
	if storageManager.RabbitMQ != nil {
		compOpts = append(compOpts, processor.WithcompPublisher(storageManager.RabbitMQ))
	}

	comps, settings, err := processor.BuildComponents(ctx, cfg, catalog, logger.Logger, compOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("组装处理组件失败")
	}
	service, err := processor.NewResumeService(comps, settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("创建简历服务失败")
	}
	resumeHandler := handler.NewResumeHandler(service, handlerOpts...)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.Default(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodyMB<<20),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		hlog.CtxInfof(c, "%s %s -> %d (%s)", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start))
	})

	router.RegisterRoutes(h, resumeHandler)
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP 服务器启动中")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("关闭链路追踪失败")
	}
	logger.Info().Msg("优雅退出完成")
}
